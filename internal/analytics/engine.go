// Package analytics counts user and project interactions and derives engagement,
// contribution, popularity, community health and maintainer metrics from them.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/pkg/log"
)

var ErrInvalidEvent = errors.New("analytics: invalid event")

type PreferenceReader interface {
	Get(ctx context.Context, userID string) (model.UserPreferences, error)
}

type StatsReader interface {
	Stats(ctx context.Context, userID string) (model.UserStats, error)
}

// Engine applies events to counters kept in the store. Project counters live in the
// analytics namespace, user counters in the user's own namespace.
type Engine struct {
	Logger      log.Logger
	store       store.Store
	preferences PreferenceReader
	stats       StatsReader
	now         func() time.Time
}

func NewEngine(logger log.Logger, st store.Store, preferences PreferenceReader, stats StatsReader) *Engine {
	return &Engine{
		Logger:      logger,
		store:       st,
		preferences: preferences,
		stats:       stats,
		now:         time.Now,
	}
}

// Validate rejects events the engine cannot count.
func Validate(e model.Event) error {
	if e.UserID == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidEvent)
	}
	switch e.Type {
	case model.EventView, model.EventBookmark, model.EventShare:
		if e.ProjectID <= 0 {
			return fmt.Errorf("%w: %s needs a project id", ErrInvalidEvent, e.Type)
		}
	case model.EventSession:
		if e.DurationMs < 0 {
			return fmt.Errorf("%w: negative session duration", ErrInvalidEvent)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, e.Type)
	}
	return nil
}

// Apply counts one event.
func (e *Engine) Apply(ctx context.Context, event model.Event) error {
	if err := Validate(event); err != nil {
		return err
	}
	if event.At.IsZero() {
		event.At = e.now()
	}

	_, err := store.UpdateJSON(ctx, e.store, event.UserID, store.KeyUserAnalytics,
		func() model.UserCounters { return model.UserCounters{UserID: event.UserID} },
		func(c *model.UserCounters) error {
			c.UserID = event.UserID
			switch event.Type {
			case model.EventView:
				c.Views++
			case model.EventBookmark:
				c.Bookmarks++
			case model.EventShare:
				c.Shares++
			case model.EventSession:
				c.Sessions++
				c.TotalDurationMs += event.DurationMs
			}
			if event.At.After(c.LastEventAt) {
				c.LastEventAt = event.At
			}
			return nil
		})
	if err != nil {
		return fmt.Errorf("count %s for user %s: %w", event.Type, event.UserID, err)
	}

	if event.ProjectID == 0 {
		return nil
	}
	_, err = store.UpdateJSON(ctx, e.store, store.NamespaceAnalytics, store.ProjectAnalyticsKey(event.ProjectID),
		func() model.ProjectCounters {
			return model.ProjectCounters{ProjectID: event.ProjectID, UniqueUsers: []string{}}
		},
		func(c *model.ProjectCounters) error {
			c.ProjectID = event.ProjectID
			switch event.Type {
			case model.EventView:
				c.Views++
			case model.EventBookmark:
				c.Bookmarks++
			case model.EventShare:
				c.Shares++
			}
			if !containsString(c.UniqueUsers, event.UserID) {
				c.UniqueUsers = append(c.UniqueUsers, event.UserID)
			}
			if event.At.After(c.LastEventAt) {
				c.LastEventAt = event.At
			}
			return nil
		})
	if err != nil {
		return fmt.Errorf("count %s for project %d: %w", event.Type, event.ProjectID, err)
	}
	return nil
}

// UserCounters reads the counters for userID; unknown users read as zero.
func (e *Engine) UserCounters(ctx context.Context, userID string) (model.UserCounters, error) {
	c := model.UserCounters{UserID: userID}
	if err := e.read(ctx, userID, store.KeyUserAnalytics, &c); err != nil {
		return model.UserCounters{}, err
	}
	return c, nil
}

// ProjectCounters reads the counters for projectID; unknown projects read as zero.
func (e *Engine) ProjectCounters(ctx context.Context, projectID int64) (model.ProjectCounters, error) {
	c := model.ProjectCounters{ProjectID: projectID, UniqueUsers: []string{}}
	if err := e.read(ctx, store.NamespaceAnalytics, store.ProjectAnalyticsKey(projectID), &c); err != nil {
		return model.ProjectCounters{}, err
	}
	return c, nil
}

func (e *Engine) read(ctx context.Context, namespace, key string, out interface{}) error {
	_, err := store.GetJSON(ctx, e.store, namespace, key, out)
	switch {
	case err == nil, errors.Is(err, store.ErrNotFound):
		return nil
	case errors.Is(err, store.ErrCorrupt):
		e.Logger.Warn(ctx, "[ANALYTICS] Ignoring unreadable counters %s/%s: %v", namespace, key, err)
		return nil
	default:
		return err
	}
}

func (e *Engine) Engagement(ctx context.Context, userID string) (model.EngagementMetrics, error) {
	c, err := e.UserCounters(ctx, userID)
	if err != nil {
		return model.EngagementMetrics{}, err
	}
	return EngagementScore(c), nil
}

func (e *Engine) Contribution(ctx context.Context, userID string) (model.ContributionMetrics, error) {
	prefs, err := e.preferences.Get(ctx, userID)
	if err != nil {
		return model.ContributionMetrics{}, err
	}
	stats, err := e.stats.Stats(ctx, userID)
	if err != nil {
		return model.ContributionMetrics{}, err
	}
	return ContributionScore(prefs, stats), nil
}

func (e *Engine) Popularity(ctx context.Context, p model.Project) (model.PopularityMetrics, error) {
	c, err := e.ProjectCounters(ctx, p.ID)
	if err != nil {
		return model.PopularityMetrics{}, err
	}
	return PopularityScore(p, c), nil
}

func (e *Engine) CommunityHealth(d model.ProjectDetail) model.CommunityHealthMetrics {
	return CommunityHealth(d, e.now())
}

func (e *Engine) Maintainer(d model.ProjectDetail) model.MaintainerMetrics {
	return Maintainer(d, e.now())
}

func containsString(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
