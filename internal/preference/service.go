// Package preference owns the per-user preference record: languages, interests, skill level
// and the bounded viewed/bookmarked/contributed histories.
package preference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/pkg/log"
)

var (
	ErrInvalidSkillLevel = errors.New("preference: skill level must be beginner, intermediate or advanced")
	ErrMissingUser       = errors.New("preference: user id is required")
)

type Service struct {
	Logger log.Logger
	store  store.Store
	now    func() time.Time
}

func NewService(logger log.Logger, st store.Store) *Service {
	return &Service{Logger: logger, store: st, now: time.Now}
}

// Get loads the user's preferences. The first access creates and stores the defaults; an
// unreadable record is logged and read as the defaults.
func (s *Service) Get(ctx context.Context, userID string) (model.UserPreferences, error) {
	if userID == "" {
		return model.UserPreferences{}, ErrMissingUser
	}

	var prefs model.UserPreferences
	_, err := store.GetJSON(ctx, s.store, userID, store.KeyPreferences, &prefs)
	switch {
	case err == nil:
		return normalize(prefs), nil
	case errors.Is(err, store.ErrCorrupt):
		s.Logger.Warn(ctx, "[PREFERENCE] Unreadable preferences for %s, using defaults: %v", userID, err)
		return model.DefaultPreferences(userID, s.now()), nil
	case !errors.Is(err, store.ErrNotFound):
		return model.UserPreferences{}, fmt.Errorf("load preferences for %s: %w", userID, err)
	}

	prefs = model.DefaultPreferences(userID, s.now())
	if _, err := store.PutJSON(ctx, s.store, userID, store.KeyPreferences, prefs, 0); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Created concurrently; read theirs.
			return s.Get(ctx, userID)
		}
		return model.UserPreferences{}, fmt.Errorf("create preferences for %s: %w", userID, err)
	}
	s.Logger.Debug(ctx, "[PREFERENCE] Created default preferences for %s", userID)
	return prefs, nil
}

// Save overwrites the whole record.
func (s *Service) Save(ctx context.Context, prefs model.UserPreferences) (model.UserPreferences, error) {
	if prefs.UserID == "" {
		return model.UserPreferences{}, ErrMissingUser
	}
	prefs = normalize(prefs)
	if err := validate(prefs); err != nil {
		return model.UserPreferences{}, err
	}
	if prefs.CreatedAt.IsZero() {
		prefs.CreatedAt = s.now()
	}
	prefs.UpdatedAt = s.now()

	if _, err := store.PutJSON(ctx, s.store, prefs.UserID, store.KeyPreferences, prefs, store.AnyRevision); err != nil {
		return model.UserPreferences{}, fmt.Errorf("save preferences for %s: %w", prefs.UserID, err)
	}
	return prefs, nil
}

// Update applies fn to the stored record and writes it back, retrying if another writer
// got there first.
func (s *Service) Update(ctx context.Context, userID string, fn func(*model.UserPreferences) error) (model.UserPreferences, error) {
	if userID == "" {
		return model.UserPreferences{}, ErrMissingUser
	}
	prefs, err := store.UpdateJSON(ctx, s.store, userID, store.KeyPreferences,
		func() model.UserPreferences { return model.DefaultPreferences(userID, s.now()) },
		func(p *model.UserPreferences) error {
			*p = normalize(*p)
			if err := fn(p); err != nil {
				return err
			}
			*p = normalize(*p)
			if err := validate(*p); err != nil {
				return err
			}
			p.UserID = userID
			p.UpdatedAt = s.now()
			return nil
		})
	if err != nil {
		return model.UserPreferences{}, fmt.Errorf("update preferences for %s: %w", userID, err)
	}
	return prefs, nil
}

// SetProfile replaces the languages, interests and skill level. Nil lists and an empty skill
// level keep the stored values; history and CreatedAt are never touched.
func (s *Service) SetProfile(ctx context.Context, userID string, profile model.Profile) (model.UserPreferences, error) {
	return s.Update(ctx, userID, func(p *model.UserPreferences) error {
		if profile.Languages != nil {
			p.Languages = profile.Languages
		}
		if profile.Interests != nil {
			p.Interests = profile.Interests
		}
		if profile.SkillLevel != "" {
			p.SkillLevel = profile.SkillLevel
		}
		return nil
	})
}

func (s *Service) RecordView(ctx context.Context, userID string, projectID int64) (model.UserPreferences, error) {
	return s.Update(ctx, userID, func(p *model.UserPreferences) error {
		p.Viewed = model.PushHistory(p.Viewed, projectID, model.MaxHistory)
		return nil
	})
}

func (s *Service) Bookmark(ctx context.Context, userID string, projectID int64) (model.UserPreferences, error) {
	return s.Update(ctx, userID, func(p *model.UserPreferences) error {
		p.Bookmarked = model.PushHistory(p.Bookmarked, projectID, model.MaxHistory)
		return nil
	})
}

func (s *Service) Unbookmark(ctx context.Context, userID string, projectID int64) (model.UserPreferences, error) {
	return s.Update(ctx, userID, func(p *model.UserPreferences) error {
		p.Bookmarked = model.RemoveHistory(p.Bookmarked, projectID)
		return nil
	})
}

func (s *Service) RecordContribution(ctx context.Context, userID string, projectID int64) (model.UserPreferences, error) {
	return s.Update(ctx, userID, func(p *model.UserPreferences) error {
		p.Contributed = model.PushHistory(p.Contributed, projectID, model.MaxHistory)
		return nil
	})
}

func validate(p model.UserPreferences) error {
	if !p.SkillLevel.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSkillLevel, p.SkillLevel)
	}
	return nil
}

// normalize trims and deduplicates the free-text lists and bounds the history lists, so
// records written by older versions or whole-record saves read the same as new ones.
func normalize(p model.UserPreferences) model.UserPreferences {
	p.Languages = cleanList(p.Languages, false)
	p.Interests = cleanList(p.Interests, true)
	if p.SkillLevel == "" {
		p.SkillLevel = model.SkillBeginner
	}
	p.Viewed = model.BoundHistory(p.Viewed, model.MaxHistory)
	p.Bookmarked = model.BoundHistory(p.Bookmarked, model.MaxHistory)
	p.Contributed = model.BoundHistory(p.Contributed, model.MaxHistory)
	return p
}

func cleanList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		key := strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
