package ui

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/thep200/oss-finder/internal/catalog"
	"github.com/thep200/oss-finder/internal/model"
)

func (h *Handler) engagement(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, r, badRequest("userId is required"))
		return
	}
	metrics, err := h.Analytics.Engagement(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, metrics)
}

func (h *Handler) contribution(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.writeError(w, r, badRequest("userId is required"))
		return
	}
	metrics, err := h.Analytics.Contribution(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, metrics)
}

func (h *Handler) popularity(w http.ResponseWriter, r *http.Request) {
	p, ok := h.projectParam(w, r)
	if !ok {
		return
	}
	metrics, err := h.Analytics.Popularity(r.Context(), p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, metrics)
}

func (h *Handler) communityHealth(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.detailParam(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.Analytics.CommunityHealth(detail))
}

func (h *Handler) maintainer(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.detailParam(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, r, http.StatusOK, h.Analytics.Maintainer(detail))
}

// projectParam resolves ?projectId= against the catalog pool, or ?repo=owner/name
// against the pool and then GitHub.
func (h *Handler) projectParam(w http.ResponseWriter, r *http.Request) (model.Project, bool) {
	if full := r.URL.Query().Get("repo"); full != "" {
		owner, name := model.SplitFullName(full)
		if owner == "" || name == "" {
			h.writeError(w, r, badRequest("repo must be owner/name"))
			return model.Project{}, false
		}
		p, err := h.Catalog.Project(r.Context(), owner, name)
		if err != nil {
			h.writeError(w, r, err)
			return model.Project{}, false
		}
		return p, true
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("projectId"), 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, r, badRequest("projectId or repo is required"))
		return model.Project{}, false
	}
	p, found := h.Catalog.ProjectByID(id)
	if !found {
		h.writeError(w, r, fmt.Errorf("project %d: %w", id, catalog.ErrNotFound))
		return model.Project{}, false
	}
	return p, true
}

func (h *Handler) detailParam(w http.ResponseWriter, r *http.Request) (model.ProjectDetail, bool) {
	p, ok := h.projectParam(w, r)
	if !ok {
		return model.ProjectDetail{}, false
	}
	owner, name := p.Owner, p.Name
	if owner == "" || name == "" {
		owner, name = model.SplitFullName(p.FullName)
	}
	detail, err := h.Catalog.Detail(r.Context(), owner, name)
	if err != nil {
		h.writeError(w, r, err)
		return model.ProjectDetail{}, false
	}
	return detail, true
}
