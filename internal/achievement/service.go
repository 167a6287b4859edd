// Package achievement tracks per-user milestones, experience and levels. An achievement
// moves locked -> in_progress -> unlocked; unlocking is terminal and grants its experience
// exactly once.
package achievement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/pkg/log"
)

var (
	ErrUnknownAchievement = errors.New("achievement: unknown id")
	ErrMissingUser        = errors.New("achievement: user id is required")
)

type progressState struct {
	Progress   int        `json:"progress"`
	IsUnlocked bool       `json:"isUnlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// record is the single stored document per user, so progress and stats change together.
type record struct {
	Progress map[string]progressState `json:"progress"`
	Stats    model.UserStats          `json:"stats"`
}

func newRecord(userID string) record {
	return record{
		Progress: map[string]progressState{},
		Stats: model.UserStats{
			UserID:              userID,
			Level:               1,
			NextLevelExperience: ExperienceForLevel(2),
			Counters:            map[model.Metric]int{},
			Languages:           []string{},
		},
	}
}

func (r *record) fill(userID string) {
	if r.Progress == nil {
		r.Progress = map[string]progressState{}
	}
	if r.Stats.Counters == nil {
		r.Stats.Counters = map[model.Metric]int{}
	}
	if r.Stats.Languages == nil {
		r.Stats.Languages = []string{}
	}
	r.Stats.UserID = userID
}

// advance raises the achievement's progress to value (never lowering it) and unlocks it
// on reaching MaxProgress.
func (r *record) advance(def model.Achievement, value int, now time.Time) (model.UserAchievement, bool) {
	st := r.Progress[def.ID]
	if value > def.MaxProgress {
		value = def.MaxProgress
	}
	if value > st.Progress {
		st.Progress = value
	}
	unlocked := false
	if !st.IsUnlocked && st.Progress >= def.MaxProgress {
		at := now
		st.IsUnlocked = true
		st.UnlockedAt = &at
		r.Stats.Experience += def.Experience
		r.Stats.UnlockedCount++
		unlocked = true
	}
	r.Progress[def.ID] = st
	return view(def, st), unlocked
}

func (r *record) relevel() {
	r.Stats.Level = LevelFromExperience(r.Stats.Experience)
	r.Stats.NextLevelExperience = ExperienceForLevel(r.Stats.Level + 1)
}

func view(def model.Achievement, st progressState) model.UserAchievement {
	return model.UserAchievement{
		Achievement: def,
		Progress:    st.Progress,
		IsUnlocked:  st.IsUnlocked,
		UnlockedAt:  st.UnlockedAt,
	}
}

type Service struct {
	Logger log.Logger
	store  store.Store
	now    func() time.Time
}

func NewService(logger log.Logger, st store.Store) *Service {
	return &Service{Logger: logger, store: st, now: time.Now}
}

func (s *Service) load(ctx context.Context, userID string) (record, error) {
	rec := newRecord(userID)
	_, err := store.GetJSON(ctx, s.store, userID, store.KeyAchievements, &rec)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
	case errors.Is(err, store.ErrCorrupt):
		s.Logger.Warn(ctx, "[ACHIEVEMENT] Unreadable progress for %s, starting over: %v", userID, err)
		rec = newRecord(userID)
	default:
		return record{}, fmt.Errorf("load achievements for %s: %w", userID, err)
	}
	rec.fill(userID)
	return rec, nil
}

// update runs fn inside a read-modify-write and reports unlocks and level changes.
func (s *Service) update(ctx context.Context, userID string, fn func(*record, time.Time) []model.UserAchievement) (model.ProgressUpdate, error) {
	if userID == "" {
		return model.ProgressUpdate{}, ErrMissingUser
	}
	var result model.ProgressUpdate
	rec, err := store.UpdateJSON(ctx, s.store, userID, store.KeyAchievements,
		func() record { return newRecord(userID) },
		func(r *record) error {
			r.fill(userID)
			now := s.now()
			result = model.ProgressUpdate{OldLevel: LevelFromExperience(r.Stats.Experience)}
			result.Unlocked = fn(r, now)
			r.relevel()
			result.NewLevel = r.Stats.Level
			result.LeveledUp = result.NewLevel > result.OldLevel
			return nil
		})
	if err != nil {
		return model.ProgressUpdate{}, fmt.Errorf("update achievements for %s: %w", userID, err)
	}
	if result.Unlocked == nil {
		result.Unlocked = []model.UserAchievement{}
	}
	result.Stats = rec.Stats
	for _, a := range result.Unlocked {
		s.Logger.Info(ctx, "[ACHIEVEMENT] %s unlocked %s (+%d xp)", userID, a.ID, a.Experience)
	}
	if result.LeveledUp {
		s.Logger.Info(ctx, "[ACHIEVEMENT] %s reached level %d", userID, result.NewLevel)
	}
	return result, nil
}

// List returns every achievement with the user's progress, in table order.
func (s *Service) List(ctx context.Context, userID string) ([]model.UserAchievement, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	rec, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserAchievement, 0, len(definitions))
	for _, def := range definitions {
		out = append(out, view(def, rec.Progress[def.ID]))
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context, userID string) (model.UserStats, error) {
	if userID == "" {
		return model.UserStats{}, ErrMissingUser
	}
	rec, err := s.load(ctx, userID)
	if err != nil {
		return model.UserStats{}, err
	}
	rec.relevel()
	return rec.Stats, nil
}

// UpdateProgress sets one achievement's progress directly.
func (s *Service) UpdateProgress(ctx context.Context, userID, achievementID string, progress int) (model.ProgressUpdate, error) {
	def, ok := definition(achievementID)
	if !ok {
		return model.ProgressUpdate{}, fmt.Errorf("%w: %s", ErrUnknownAchievement, achievementID)
	}
	return s.update(ctx, userID, func(r *record, now time.Time) []model.UserAchievement {
		if a, unlocked := r.advance(def, progress, now); unlocked {
			return []model.UserAchievement{a}
		}
		return nil
	})
}

// UpdateMetric sets a counter and advances every achievement tracking it.
func (s *Service) UpdateMetric(ctx context.Context, userID string, metric model.Metric, value int) (model.ProgressUpdate, error) {
	return s.update(ctx, userID, func(r *record, now time.Time) []model.UserAchievement {
		r.Stats.Counters[metric] = value
		return advanceMetric(r, metric, now)
	})
}

// Increment adds delta to a counter and advances every achievement tracking it.
func (s *Service) Increment(ctx context.Context, userID string, metric model.Metric, delta int) (model.ProgressUpdate, error) {
	return s.update(ctx, userID, func(r *record, now time.Time) []model.UserAchievement {
		r.Stats.Counters[metric] += delta
		if r.Stats.Counters[metric] < 0 {
			r.Stats.Counters[metric] = 0
		}
		return advanceMetric(r, metric, now)
	})
}

// RecordLanguage adds language to the set the user has explored.
func (s *Service) RecordLanguage(ctx context.Context, userID, language string) (model.ProgressUpdate, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	return s.update(ctx, userID, func(r *record, now time.Time) []model.UserAchievement {
		if language != "" && !contains(r.Stats.Languages, language) {
			r.Stats.Languages = append(r.Stats.Languages, language)
			sort.Strings(r.Stats.Languages)
		}
		r.Stats.Counters[model.MetricLanguages] = len(r.Stats.Languages)
		return advanceMetric(r, model.MetricLanguages, now)
	})
}

// RecordActivity updates the daily streak: a second activity on the same UTC day changes
// nothing, the next day extends the streak, and any gap restarts it at 1.
func (s *Service) RecordActivity(ctx context.Context, userID string) (model.ProgressUpdate, error) {
	return s.update(ctx, userID, func(r *record, now time.Time) []model.UserAchievement {
		today := day(now)
		switch last := r.Stats.LastActive; {
		case last.IsZero():
			r.Stats.CurrentStreak = 1
		case day(last).Equal(today):
			return nil
		case day(last).AddDate(0, 0, 1).Equal(today):
			r.Stats.CurrentStreak++
		default:
			r.Stats.CurrentStreak = 1
		}
		r.Stats.LastActive = now
		if r.Stats.CurrentStreak > r.Stats.LongestStreak {
			r.Stats.LongestStreak = r.Stats.CurrentStreak
		}
		r.Stats.Counters[model.MetricStreak] = r.Stats.CurrentStreak
		return advanceMetric(r, model.MetricStreak, now)
	})
}

func advanceMetric(r *record, metric model.Metric, now time.Time) []model.UserAchievement {
	var unlocked []model.UserAchievement
	for _, def := range definitions {
		if def.Metric != metric {
			continue
		}
		if a, ok := r.advance(def, r.Stats.Counters[metric], now); ok {
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
