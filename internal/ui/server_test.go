package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/internal/achievement"
	"github.com/thep200/oss-finder/internal/analytics"
	"github.com/thep200/oss-finder/internal/catalog"
	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/preference"
	"github.com/thep200/oss-finder/internal/search"
	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/internal/submission"
	"github.com/thep200/oss-finder/pkg/log"
)

type fakeCatalog struct {
	projects []model.Project
}

func (f *fakeCatalog) Projects(context.Context) ([]model.Project, error) { return f.projects, nil }

func (f *fakeCatalog) Project(_ context.Context, owner, repo string) (model.Project, error) {
	for _, p := range f.projects {
		if strings.EqualFold(p.FullName, owner+"/"+repo) {
			return p, nil
		}
	}
	return model.Project{}, catalog.ErrNotFound
}

func (f *fakeCatalog) ProjectByID(id int64) (model.Project, bool) {
	for _, p := range f.projects {
		if p.ID == id {
			return p, true
		}
	}
	return model.Project{}, false
}

func (f *fakeCatalog) Issues(ctx context.Context, owner, repo string, goodFirstOnly bool) ([]model.Issue, error) {
	if _, err := f.Project(ctx, owner, repo); err != nil {
		return nil, err
	}
	issues := []model.Issue{
		{ID: 1, Title: "Fix typo", IsGoodFirstIssue: true},
		{ID: 2, Title: "Rewrite scheduler"},
	}
	if goodFirstOnly {
		return issues[:1], nil
	}
	return issues, nil
}

func (f *fakeCatalog) Detail(ctx context.Context, owner, repo string) (model.ProjectDetail, error) {
	p, err := f.Project(ctx, owner, repo)
	if err != nil {
		return model.ProjectDetail{}, err
	}
	return model.ProjectDetail{
		Project:      p,
		Contributors: []model.Contributor{{Login: "octo", Contributions: 40}},
		Readme:       "# readme",
	}, nil
}

func (f *fakeCatalog) Status() catalog.Status {
	return catalog.Status{Count: len(f.projects), Source: "test"}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)

	now := time.Now()
	projects := []model.Project{
		{ID: 1, FullName: "facebook/react", Description: "A library for building user interfaces", Language: "JavaScript",
			Topics: []string{"react", "ui", "frontend"}, Stars: 220000, Forks: 45000, OpenIssues: 900, License: "MIT",
			CreatedAt: now.AddDate(-10, 0, 0), UpdatedAt: now.AddDate(0, 0, -1), HasGoodFirstIssues: true},
		{ID: 2, FullName: "vuejs/core", Description: "Progressive framework for building web UIs", Language: "TypeScript",
			Topics: []string{"vue", "frontend"}, Stars: 45000, Forks: 8000, OpenIssues: 600, License: "MIT",
			CreatedAt: now.AddDate(-5, 0, 0), UpdatedAt: now.AddDate(0, 0, -2)},
		{ID: 3, FullName: "spf13/cobra", Description: "A Commander for modern Go CLI interactions", Language: "Go",
			Topics: []string{"cli", "go"}, Stars: 37000, Forks: 2800, OpenIssues: 250, License: "Apache-2.0",
			CreatedAt: now.AddDate(-9, 0, 0), UpdatedAt: now.AddDate(0, 0, -3)},
	}
	for i := range projects {
		projects[i] = projects[i].Normalize()
	}
	cat := &fakeCatalog{projects: projects}

	logger := log.NewNopLogger()
	st := store.NewMemory()
	prefs := preference.NewService(logger, st)
	achievements := achievement.NewService(logger, st)
	engine := analytics.NewEngine(logger, st, prefs, achievements)

	handler := NewHandler(logger, config, Services{
		Catalog:      cat,
		Preferences:  prefs,
		Achievements: achievements,
		History:      search.NewHistory(logger, st, config.Search.HistorySize),
		Submissions:  submission.NewService(logger, cat, st),
		Analytics:    engine,
		Events:       analytics.NewDirectSink(engine),
	})
	return NewServer(logger, config, handler).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestSearch_RecordsHistoryAndCountsSearches(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/projects?q=frontend&userId=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp searchResponse
	decode(t, rec, &resp)
	assert.Equal(t, "frontend", resp.Query)
	require.NotEmpty(t, resp.Results)
	for _, r := range resp.Results {
		assert.NotEqual(t, int64(3), r.Project.ID)
	}

	rec = do(t, h, http.MethodGet, "/api/users/u1/search-history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []search.HistoryEntry
	decode(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "frontend", history[0].Query)

	rec = do(t, h, http.MethodGet, "/api/users/u1/stats", "")
	var stats model.UserStats
	decode(t, rec, &stats)
	assert.Equal(t, 1, stats.Counters[model.MetricSearches])

	rec = do(t, h, http.MethodDelete, "/api/users/u1/search-history", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSearch_LanguageFilter(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/projects?language=Go", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp searchResponse
	decode(t, rec, &resp)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, int64(3), resp.Results[0].Project.ID)
}

func TestTrending(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/projects/trending?timeframe=monthly&all=true&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp trendingResponse
	decode(t, rec, &resp)
	assert.Equal(t, model.TimeframeMonthly, resp.Timeframe)
	assert.Len(t, resp.Projects, 2)
}

func TestProjectRoutes(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/projects/facebook/react", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail model.ProjectDetail
	decode(t, rec, &detail)
	assert.Equal(t, int64(1), detail.Project.ID)

	rec = do(t, h, http.MethodGet, "/api/projects/nobody/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)

	rec = do(t, h, http.MethodGet, "/api/projects/facebook/react/issues?goodFirstIssue=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var issues []model.Issue
	decode(t, rec, &issues)
	require.Len(t, issues, 1)
	assert.True(t, issues[0].IsGoodFirstIssue)

	rec = do(t, h, http.MethodGet, "/api/projects/facebook/react/similar", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var similar struct {
		Similar []model.SimilarProject `json:"similar"`
	}
	decode(t, rec, &similar)
	for _, s := range similar.Similar {
		assert.NotEqual(t, int64(1), s.Project.ID)
	}
}

func TestSuggest(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/search/suggest?prefix=fro", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	decode(t, rec, &resp)
	assert.Contains(t, resp.Suggestions, "frontend")
}

func TestSubmit(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/projects/submit", `{"repoUrl":"https://gitlab.com/a/b","description":"x","reason":"y"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var bad model.SubmissionResponse
	decode(t, rec, &bad)
	assert.False(t, bad.Success)

	rec = do(t, h, http.MethodPost, "/api/projects/submit", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"repoUrl":"https://github.com/spf13/cobra","description":"A Commander for modern Go CLI apps",` +
		`"reason":"Friendly maintainers and labelled issues","tags":{"goodFirstIssues":true}}`
	rec = do(t, h, http.MethodPost, "/api/projects/submit", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var ok model.SubmissionResponse
	decode(t, rec, &ok)
	assert.True(t, ok.Success)
	assert.Equal(t, model.SubmissionApproved, ok.Status)
	assert.Equal(t, 95, ok.VerificationScore)
	assert.NotEmpty(t, ok.SubmissionID)
}

func TestPreferences(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/users/u1/preferences", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var prefs model.UserPreferences
	decode(t, rec, &prefs)
	assert.Equal(t, "u1", prefs.UserID)
	assert.Equal(t, model.SkillBeginner, prefs.SkillLevel)

	rec = do(t, h, http.MethodPut, "/api/users/u1/preferences", `{"skillLevel":"guru"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/users/u1/preferences", `{"languages":["Go"],"interests":["CLI"],"skillLevel":"intermediate"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &prefs)
	assert.Equal(t, "u1", prefs.UserID)
	assert.Equal(t, []string{"cli"}, prefs.Interests)

	rec = do(t, h, http.MethodGet, "/api/users/u1/recommendations?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var recs struct {
		ColdStart       bool                       `json:"coldStart"`
		Recommendations []model.RecommendedProject `json:"recommendations"`
	}
	decode(t, rec, &recs)
	assert.False(t, recs.ColdStart)
	require.Len(t, recs.Recommendations, 1)
	assert.Equal(t, int64(3), recs.Recommendations[0].Project.ID)
}

func TestPreferences_PartialPutKeepsHistory(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/users/u1/bookmarks/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/users/u1/views/2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users/u1/preferences", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var before model.UserPreferences
	decode(t, rec, &before)

	rec = do(t, h, http.MethodPut, "/api/users/u1/preferences", `{"languages":["Go"],"skillLevel":"advanced"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users/u1/preferences", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var after model.UserPreferences
	decode(t, rec, &after)
	assert.Equal(t, []string{"Go"}, after.Languages)
	assert.Equal(t, model.SkillAdvanced, after.SkillLevel)
	assert.Equal(t, []int64{1}, after.Bookmarked)
	assert.Equal(t, []int64{2}, after.Viewed)
	assert.True(t, after.CreatedAt.Equal(before.CreatedAt))
}

func TestPreferences_PutBoundsHistory(t *testing.T) {
	h := newTestServer(t)

	ids := make([]string, 0, 250)
	for i := 1; i <= 250; i++ {
		ids = append(ids, strconv.Itoa(i))
	}
	body := `{"viewed":[` + strings.Join(ids, ",") + `],"skillLevel":"beginner"}`
	rec := do(t, h, http.MethodPut, "/api/users/u1/preferences", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/users/u1/preferences", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var prefs model.UserPreferences
	decode(t, rec, &prefs)
	assert.Empty(t, prefs.Viewed, "history is not editable through the profile")
}

func TestRecommendations_ColdStart(t *testing.T) {
	h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/users/new/recommendations", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var recs struct {
		ColdStart       bool                       `json:"coldStart"`
		Recommendations []model.RecommendedProject `json:"recommendations"`
	}
	decode(t, rec, &recs)
	assert.True(t, recs.ColdStart)
	require.Len(t, recs.Recommendations, 3)
	assert.Equal(t, int64(1), recs.Recommendations[0].Project.ID)
}

func TestUserActivity_UpdatesAchievementsAndAnalytics(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/users/u1/views/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view activityResponse
	decode(t, rec, &view)
	require.NotNil(t, view.Preferences)
	assert.Equal(t, []int64{3}, view.Preferences.Viewed)
	assert.Equal(t, 1, view.Progress.Stats.Counters[model.MetricViews])
	assert.Equal(t, 1, view.Progress.Stats.Counters[model.MetricLanguages])

	for i := 0; i < 2; i++ {
		rec = do(t, h, http.MethodPost, "/api/users/u1/bookmarks/3", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	var bookmark activityResponse
	decode(t, rec, &bookmark)
	assert.Equal(t, []int64{3}, bookmark.Preferences.Bookmarked)
	assert.Equal(t, 1, bookmark.Progress.Stats.Counters[model.MetricBookmarks])

	rec = do(t, h, http.MethodPost, "/api/users/u1/contributions/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var contribution activityResponse
	decode(t, rec, &contribution)
	require.NotEmpty(t, contribution.Progress.Unlocked)
	assert.Equal(t, "first-contribution", contribution.Progress.Unlocked[0].ID)

	rec = do(t, h, http.MethodPost, "/api/users/u1/sessions", `{"durationMs":600000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/users/u1/sessions", `{"durationMs":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/users/u1/bookmarks/3", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/analytics/engagement?userId=u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var engagement model.EngagementMetrics
	decode(t, rec, &engagement)
	assert.Equal(t, 1, engagement.Views)
	assert.Equal(t, 1, engagement.Bookmarks)
	assert.Equal(t, 1, engagement.Sessions)

	rec = do(t, h, http.MethodGet, "/api/analytics/popularity?projectId=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var popularity model.PopularityMetrics
	decode(t, rec, &popularity)
	assert.Equal(t, 1, popularity.Views)

	rec = do(t, h, http.MethodGet, "/api/users/u1/achievements", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.UserAchievement
	decode(t, rec, &list)
	assert.Len(t, list, len(achievement.Definitions()))
}

func TestAnalytics_BadRequests(t *testing.T) {
	h := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/analytics/engagement", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/analytics/popularity?projectId=abc", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/analytics/popularity?projectId=99", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/users/u1/views/zero", "").Code)

	rec := do(t, h, http.MethodGet, "/api/analytics/community-health?repo=facebook/react", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health model.CommunityHealthMetrics
	decode(t, rec, &health)
	assert.True(t, health.HasLicense)
	assert.True(t, health.HasReadme)

	rec = do(t, h, http.MethodGet, "/api/analytics/maintainer?projectId=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var maintainer model.MaintainerMetrics
	decode(t, rec, &maintainer)
	assert.Equal(t, 1, maintainer.ActiveMaintainers)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(catalog.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(preference.ErrInvalidSkillLevel))
	assert.Equal(t, http.StatusConflict, statusFor(store.ErrConflict))
	assert.Equal(t, http.StatusBadRequest, statusFor(badRequest("x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
