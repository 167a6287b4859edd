package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/pkg/log"
)

// DefaultHistorySize is how many queries are kept per user.
const DefaultHistorySize = 20

type HistoryEntry struct {
	Query string    `json:"query"`
	At    time.Time `json:"at"`
}

// History keeps each user's recent queries, most recent first, without duplicates.
type History struct {
	Logger log.Logger
	store  store.Store
	size   int
	now    func() time.Time
}

func NewHistory(logger log.Logger, st store.Store, size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{Logger: logger, store: st, size: size, now: time.Now}
}

// Record pushes query to the front of the user's history. Blank queries are ignored.
func (h *History) Record(ctx context.Context, userID, query string) ([]HistoryEntry, error) {
	query = strings.Join(strings.Fields(query), " ")
	if userID == "" || query == "" {
		return h.List(ctx, userID)
	}

	entries, err := store.UpdateJSON(ctx, h.store, userID, store.KeySearchHistory,
		func() []HistoryEntry { return []HistoryEntry{} },
		func(entries *[]HistoryEntry) error {
			next := make([]HistoryEntry, 0, h.size)
			next = append(next, HistoryEntry{Query: query, At: h.now()})
			for _, e := range *entries {
				if strings.EqualFold(e.Query, query) {
					continue
				}
				if len(next) == h.size {
					break
				}
				next = append(next, e)
			}
			*entries = next
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("record search history for %s: %w", userID, err)
	}
	return entries, nil
}

// List returns the user's history; a missing or unreadable record reads as empty.
func (h *History) List(ctx context.Context, userID string) ([]HistoryEntry, error) {
	entries := []HistoryEntry{}
	if userID == "" {
		return entries, nil
	}
	_, err := store.GetJSON(ctx, h.store, userID, store.KeySearchHistory, &entries)
	switch {
	case err == nil:
		return entries, nil
	case errors.Is(err, store.ErrNotFound):
		return []HistoryEntry{}, nil
	case errors.Is(err, store.ErrCorrupt):
		h.Logger.Warn(ctx, "[SEARCH] Discarding unreadable history for %s: %v", userID, err)
		return []HistoryEntry{}, nil
	default:
		return nil, err
	}
}

func (h *History) Clear(ctx context.Context, userID string) error {
	return h.store.Delete(ctx, userID, store.KeySearchHistory)
}
