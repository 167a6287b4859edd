package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/internal/achievement"
	"github.com/thep200/oss-finder/internal/analytics"
	"github.com/thep200/oss-finder/internal/catalog"
	githubapi "github.com/thep200/oss-finder/internal/github_api"
	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/preference"
	"github.com/thep200/oss-finder/internal/search"
	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/internal/submission"
	"github.com/thep200/oss-finder/pkg/log"
)

const (
	defaultLimit = 10
	maxBodyBytes = 1 << 20
)

// Catalog is the project pool the handlers read from.
type Catalog interface {
	Projects(ctx context.Context) ([]model.Project, error)
	Project(ctx context.Context, owner, repo string) (model.Project, error)
	ProjectByID(id int64) (model.Project, bool)
	Issues(ctx context.Context, owner, repo string, goodFirstOnly bool) ([]model.Issue, error)
	Detail(ctx context.Context, owner, repo string) (model.ProjectDetail, error)
	Status() catalog.Status
}

// Services groups everything the handlers call.
type Services struct {
	Catalog      Catalog
	Preferences  *preference.Service
	Achievements *achievement.Service
	History      *search.History
	Submissions  *submission.Service
	Analytics    *analytics.Engine
	Events       analytics.Sink
}

// Handler manages HTTP requests for the API
type Handler struct {
	Logger log.Logger
	Config *cfg.Config
	Services
	now func() time.Time
}

func NewHandler(logger log.Logger, config *cfg.Config, services Services) *Handler {
	return &Handler{
		Logger:   logger,
		Config:   config,
		Services: services,
		now:      time.Now,
	}
}

// RegisterRoutes sets up the HTTP routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.health)

	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", h.searchProjects)
		r.Get("/trending", h.trendingProjects)
		r.Post("/submit", h.submitProject)
		r.Route("/{owner}/{repo}", func(r chi.Router) {
			r.Get("/", h.projectDetail)
			r.Get("/similar", h.similarProjects)
			r.Get("/issues", h.projectIssues)
		})
	})

	r.Get("/api/search/suggest", h.suggest)

	r.Route("/api/users/{userId}", func(r chi.Router) {
		r.Get("/preferences", h.getPreferences)
		r.Put("/preferences", h.putPreferences)
		r.Post("/views/{projectId}", h.recordView)
		r.Post("/bookmarks/{projectId}", h.addBookmark)
		r.Delete("/bookmarks/{projectId}", h.removeBookmark)
		r.Post("/contributions/{projectId}", h.recordContribution)
		r.Post("/shares/{projectId}", h.recordShare)
		r.Post("/sessions", h.recordSession)
		r.Get("/recommendations", h.recommendations)
		r.Get("/achievements", h.achievements)
		r.Get("/stats", h.stats)
		r.Get("/search-history", h.searchHistory)
		r.Delete("/search-history", h.clearSearchHistory)
	})

	r.Route("/api/analytics", func(r chi.Router) {
		r.Get("/engagement", h.engagement)
		r.Get("/contribution", h.contribution)
		r.Get("/popularity", h.popularity)
		r.Get("/community-health", h.communityHealth)
		r.Get("/maintainer", h.maintainer)
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"catalog": h.Catalog.Status(),
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Error(r.Context(), "[API] Failed to encode JSON response: %v", err)
	}
}

// writeError maps domain errors to a status code and a JSON error body.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error(r.Context(), "[API] %s %s: %v", r.Method, r.URL.Path, err)
	} else {
		h.Logger.Debug(r.Context(), "[API] %s %s: %v", r.Method, r.URL.Path, err)
	}
	h.writeJSON(w, r, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, githubapi.ErrNotFound),
		errors.Is(err, submission.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, preference.ErrInvalidSkillLevel),
		errors.Is(err, preference.ErrMissingUser),
		errors.Is(err, achievement.ErrMissingUser),
		errors.Is(err, achievement.ErrUnknownAchievement),
		errors.Is(err, analytics.ErrInvalidEvent),
		errors.Is(err, submission.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, githubapi.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return fmt.Errorf("%w: %s", errBadRequest, msg)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
	}
	return nil
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

// queryList accepts repeated and comma separated values.
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, raw := range r.URL.Query()[name] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func limitParam(r *http.Request) int {
	limit := queryInt(r, "limit", defaultLimit)
	if limit == 0 {
		limit = defaultLimit
	}
	return limit
}

func projectIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "projectId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("projectId must be a positive integer")
	}
	return id, nil
}
