package ui

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/scoring"
	"github.com/thep200/oss-finder/internal/search"
	"github.com/thep200/oss-finder/internal/submission"
)

type searchResponse struct {
	Query   string          `json:"query"`
	Total   int             `json:"total"`
	Results []search.Result `json:"results"`
}

func (h *Handler) searchProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projects, err := h.Catalog.Projects(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	limit := limitParam(r)
	if maxResults := h.Config.Search.MaxResults; maxResults > 0 && limit > maxResults {
		limit = maxResults
	}
	q := search.Query{
		Text:           r.URL.Query().Get("q"),
		Languages:      queryList(r, "language"),
		Topics:         queryList(r, "topic"),
		MinStars:       queryInt(r, "minStars", 0),
		MaxStars:       queryInt(r, "maxStars", 0),
		GoodFirstIssue: queryBool(r, "goodFirstIssue"),
		Limit:          limit,
	}
	results := search.Search(projects, q, h.now())

	if userID := r.URL.Query().Get("userId"); userID != "" && q.Text != "" {
		if _, err := h.History.Record(ctx, userID, q.Text); err != nil {
			h.Logger.Warn(ctx, "[API] Failed to record search history for %s: %v", userID, err)
		}
		if _, err := h.Achievements.Increment(ctx, userID, model.MetricSearches, 1); err != nil {
			h.Logger.Warn(ctx, "[API] Failed to count search for %s: %v", userID, err)
		}
	}

	h.writeJSON(w, r, http.StatusOK, searchResponse{Query: q.Text, Total: len(results), Results: results})
}

type trendingResponse struct {
	Timeframe model.Timeframe         `json:"timeframe"`
	Projects  []model.TrendingProject `json:"projects"`
}

func (h *Handler) trendingProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Catalog.Projects(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	tf := model.ParseTimeframe(r.URL.Query().Get("timeframe"))
	var trending []model.TrendingProject
	if queryBool(r, "all") {
		trending = scoring.TrendingAll(projects, tf, limitParam(r), h.now())
	} else {
		trending = scoring.Trending(projects, tf, limitParam(r), h.now())
	}
	if trending == nil {
		trending = []model.TrendingProject{}
	}
	h.writeJSON(w, r, http.StatusOK, trendingResponse{Timeframe: tf, Projects: trending})
}

func (h *Handler) projectDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.Catalog.Detail(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, detail)
}

func (h *Handler) similarProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	source, err := h.Catalog.Project(ctx, chi.URLParam(r, "owner"), chi.URLParam(r, "repo"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	projects, err := h.Catalog.Projects(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	similar := scoring.FindSimilar(source, projects, limitParam(r), h.now())
	if similar == nil {
		similar = []model.SimilarProject{}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"source":  source,
		"similar": similar,
	})
}

func (h *Handler) projectIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.Catalog.Issues(r.Context(), chi.URLParam(r, "owner"), chi.URLParam(r, "repo"), queryBool(r, "goodFirstIssue"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if issues == nil {
		issues = []model.Issue{}
	}
	h.writeJSON(w, r, http.StatusOK, issues)
}

func (h *Handler) submitProject(w http.ResponseWriter, r *http.Request) {
	var req model.SubmissionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeJSON(w, r, http.StatusBadRequest, model.SubmissionResponse{Success: false, Message: err.Error()})
		return
	}

	resp, err := h.Submissions.Submit(r.Context(), req)
	switch {
	case errors.Is(err, submission.ErrInvalidRequest):
		h.writeJSON(w, r, http.StatusBadRequest, resp)
	case err != nil:
		h.writeError(w, r, err)
	default:
		h.writeJSON(w, r, http.StatusCreated, resp)
	}
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Catalog.Projects(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	suggestions := search.Suggest(r.URL.Query().Get("prefix"), projects, limitParam(r))
	if suggestions == nil {
		suggestions = []string{}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}
