package ui

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/scoring"
	"github.com/thep200/oss-finder/internal/search"
)

// activityResponse is returned by every endpoint that records a user action.
type activityResponse struct {
	Preferences *model.UserPreferences `json:"preferences,omitempty"`
	Progress    model.ProgressUpdate   `json:"progress"`
}

func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.Preferences.Get(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, prefs)
}

func (h *Handler) putPreferences(w http.ResponseWriter, r *http.Request) {
	var profile model.Profile
	if err := decodeJSON(w, r, &profile); err != nil {
		h.writeError(w, r, err)
		return
	}

	saved, err := h.Preferences.SetProfile(r.Context(), chi.URLParam(r, "userId"), profile)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, saved)
}

func (h *Handler) recordView(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")
	projectID, err := projectIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	prefs, err := h.Preferences.RecordView(ctx, userID, projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tracker := h.track(ctx, userID)
	if p, ok := h.Catalog.ProjectByID(projectID); ok && p.Language != "" {
		tracker.add(h.Achievements.RecordLanguage(ctx, userID, p.Language))
	}
	tracker.add(h.Achievements.Increment(ctx, userID, model.MetricViews, 1))
	h.emit(ctx, model.Event{Type: model.EventView, UserID: userID, ProjectID: projectID})

	h.writeJSON(w, r, http.StatusOK, activityResponse{Preferences: &prefs, Progress: tracker.done()})
}

func (h *Handler) addBookmark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")
	projectID, err := projectIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	before, err := h.Preferences.Get(ctx, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	prefs, err := h.Preferences.Bookmark(ctx, userID, projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tracker := h.track(ctx, userID)
	if !before.HasBookmarked(projectID) {
		tracker.add(h.Achievements.Increment(ctx, userID, model.MetricBookmarks, 1))
		h.emit(ctx, model.Event{Type: model.EventBookmark, UserID: userID, ProjectID: projectID})
	}
	h.writeJSON(w, r, http.StatusOK, activityResponse{Preferences: &prefs, Progress: tracker.done()})
}

func (h *Handler) removeBookmark(w http.ResponseWriter, r *http.Request) {
	projectID, err := projectIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	prefs, err := h.Preferences.Unbookmark(r.Context(), chi.URLParam(r, "userId"), projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, prefs)
}

func (h *Handler) recordContribution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")
	projectID, err := projectIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	before, err := h.Preferences.Get(ctx, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	prefs, err := h.Preferences.RecordContribution(ctx, userID, projectID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tracker := h.track(ctx, userID)
	if !before.HasContributed(projectID) {
		tracker.add(h.Achievements.Increment(ctx, userID, model.MetricContributions, 1))
	}
	h.writeJSON(w, r, http.StatusOK, activityResponse{Preferences: &prefs, Progress: tracker.done()})
}

func (h *Handler) recordShare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")
	projectID, err := projectIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tracker := h.track(ctx, userID)
	tracker.add(h.Achievements.Increment(ctx, userID, model.MetricShares, 1))
	h.emit(ctx, model.Event{Type: model.EventShare, UserID: userID, ProjectID: projectID})
	h.writeJSON(w, r, http.StatusOK, activityResponse{Progress: tracker.done()})
}

type sessionRequest struct {
	DurationMs int64 `json:"durationMs"`
}

func (h *Handler) recordSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userId")
	var req sessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.DurationMs < 0 {
		h.writeError(w, r, badRequest("durationMs must not be negative"))
		return
	}

	tracker := h.track(ctx, userID)
	h.emit(ctx, model.Event{Type: model.EventSession, UserID: userID, DurationMs: req.DurationMs})
	h.writeJSON(w, r, http.StatusOK, activityResponse{Progress: tracker.done()})
}

func (h *Handler) recommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prefs, err := h.Preferences.Get(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	projects, err := h.Catalog.Projects(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	recs := scoring.Recommend(projects, prefs, limitParam(r))
	if recs == nil {
		recs = []model.RecommendedProject{}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"coldStart":       prefs.IsColdStart(),
		"recommendations": recs,
	})
}

func (h *Handler) achievements(w http.ResponseWriter, r *http.Request) {
	list, err := h.Achievements.List(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, list)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Achievements.Stats(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, stats)
}

func (h *Handler) searchHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.History.List(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []search.HistoryEntry{}
	}
	h.writeJSON(w, r, http.StatusOK, entries)
}

func (h *Handler) clearSearchHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.History.Clear(r.Context(), chi.URLParam(r, "userId")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// emit hands an event to the analytics sink. Failures are logged, never surfaced.
func (h *Handler) emit(ctx context.Context, event model.Event) {
	if h.Events == nil {
		return
	}
	event.At = h.now()
	if err := h.Events.Record(ctx, event); err != nil {
		h.Logger.Warn(ctx, "[API] Failed to record %s event for %s: %v", event.Type, event.UserID, err)
	}
}

// progressTracker folds the updates of several achievement calls into one report.
type progressTracker struct {
	h       *Handler
	ctx     context.Context
	userID  string
	merged  model.ProgressUpdate
	started bool
}

// track starts a tracker and records the day's activity for the streak.
func (h *Handler) track(ctx context.Context, userID string) *progressTracker {
	t := &progressTracker{h: h, ctx: ctx, userID: userID}
	t.add(h.Achievements.RecordActivity(ctx, userID))
	return t
}

func (t *progressTracker) add(update model.ProgressUpdate, err error) {
	if err != nil {
		t.h.Logger.Warn(t.ctx, "[API] Achievement update failed for %s: %v", t.userID, err)
		return
	}
	if !t.started {
		t.merged.OldLevel = update.OldLevel
		t.started = true
	}
	t.merged.Unlocked = append(t.merged.Unlocked, update.Unlocked...)
	t.merged.NewLevel = update.NewLevel
	t.merged.Stats = update.Stats
	t.merged.LeveledUp = t.merged.NewLevel > t.merged.OldLevel
}

func (t *progressTracker) done() model.ProgressUpdate {
	if t.merged.Unlocked == nil {
		t.merged.Unlocked = []model.UserAchievement{}
	}
	return t.merged
}
