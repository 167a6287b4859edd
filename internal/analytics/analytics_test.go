package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/pkg/log"
)

var now = time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)

type fakePrefs struct{ prefs model.UserPreferences }

func (f fakePrefs) Get(context.Context, string) (model.UserPreferences, error) { return f.prefs, nil }

type fakeStats struct{ stats model.UserStats }

func (f fakeStats) Stats(context.Context, string) (model.UserStats, error) { return f.stats, nil }

type fakePublisher struct {
	keys   []string
	values []interface{}
}

func (f *fakePublisher) Publish(_ context.Context, key string, value interface{}) error {
	f.keys = append(f.keys, key)
	f.values = append(f.values, value)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newEngine() *Engine {
	e := NewEngine(log.NewNopLogger(), store.NewMemory(), fakePrefs{}, fakeStats{})
	e.now = func() time.Time { return now }
	return e
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(model.Event{Type: model.EventView, UserID: "u", ProjectID: 1}))
	assert.NoError(t, Validate(model.Event{Type: model.EventSession, UserID: "u", DurationMs: 10}))
	assert.ErrorIs(t, Validate(model.Event{Type: model.EventView, UserID: "u"}), ErrInvalidEvent)
	assert.ErrorIs(t, Validate(model.Event{Type: "click", UserID: "u", ProjectID: 1}), ErrInvalidEvent)
	assert.ErrorIs(t, Validate(model.Event{Type: model.EventShare, ProjectID: 1}), ErrInvalidEvent)
	assert.ErrorIs(t, Validate(model.Event{Type: model.EventSession, UserID: "u", DurationMs: -1}), ErrInvalidEvent)
}

func TestEngine_ApplyAndEngagement(t *testing.T) {
	ctx := context.Background()
	e := newEngine()

	events := []model.Event{
		{Type: model.EventView, UserID: "u1", ProjectID: 7},
		{Type: model.EventView, UserID: "u1", ProjectID: 7},
		{Type: model.EventView, UserID: "u2", ProjectID: 7},
		{Type: model.EventBookmark, UserID: "u1", ProjectID: 7},
		{Type: model.EventShare, UserID: "u1", ProjectID: 8},
		{Type: model.EventSession, UserID: "u1", DurationMs: 4 * 60000},
		{Type: model.EventSession, UserID: "u1", DurationMs: 2 * 60000},
	}
	for _, ev := range events {
		require.NoError(t, e.Apply(ctx, ev))
	}

	m, err := e.Engagement(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Views)
	assert.Equal(t, 1, m.Bookmarks)
	assert.Equal(t, 1, m.Shares)
	assert.Equal(t, 2, m.Sessions)
	assert.Equal(t, 3.0, m.AverageSessionMinutes)
	assert.Equal(t, 0.5, m.BookmarkConversionRate)
	assert.Equal(t, 2*2+5+8+3*3.0, m.EngagementScore)

	pc, err := e.ProjectCounters(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, pc.Views)
	assert.Equal(t, 1, pc.Bookmarks)
	assert.ElementsMatch(t, []string{"u1", "u2"}, pc.UniqueUsers)
	assert.Equal(t, now, pc.LastEventAt)

	empty, err := e.Engagement(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, empty.EngagementScore)

	assert.ErrorIs(t, e.Apply(ctx, model.Event{Type: "bogus", UserID: "u1"}), ErrInvalidEvent)
}

func TestEngagementScore_Clamped(t *testing.T) {
	m := EngagementScore(model.UserCounters{Views: 500, Bookmarks: 10})
	assert.Equal(t, 100.0, m.EngagementScore)
}

func TestPopularity(t *testing.T) {
	ctx := context.Background()
	e := newEngine()
	p := model.Project{ID: 3, Stars: 9999}
	require.NoError(t, e.Apply(ctx, model.Event{Type: model.EventBookmark, UserID: "u1", ProjectID: 3}))

	m, err := e.Popularity(ctx, p)
	require.NoError(t, err)
	// log10(10000)*20 = 80; in-app 3
	assert.InDelta(t, 41.5, m.PopularityScore, 0.01)
	assert.Equal(t, 1, m.UniqueUsers)
}

func TestContribution(t *testing.T) {
	prefs := model.DefaultPreferences("u1", now)
	prefs.Contributed = []int64{1, 2}
	prefs.Bookmarked = []int64{1}
	prefs.Viewed = []int64{1, 2, 3}
	e := NewEngine(log.NewNopLogger(), store.NewMemory(), fakePrefs{prefs}, fakeStats{model.UserStats{Level: 2, Experience: 150, Languages: []string{"go"}}})

	m, err := e.Contribution(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, m.Contributions)
	assert.Equal(t, 2, m.Level)
	assert.Equal(t, 15*2+3+3+5.0, m.ContributionScore)
}

func TestCommunityHealth(t *testing.T) {
	healthy := model.ProjectDetail{
		Project: model.Project{ID: 1, License: "MIT", Description: "x", UpdatedAt: now.AddDate(0, 0, -3), OpenIssues: 10},
		Readme:  "# hi",
		Contributors: []model.Contributor{
			{Login: "a"}, {Login: "b"}, {Login: "c"}, {Login: "d"}, {Login: "e"},
			{Login: "f"}, {Login: "g"}, {Login: "h"}, {Login: "i"}, {Login: "j"},
		},
		GoodFirstIssues: []model.Issue{{ID: 1}},
	}
	m := CommunityHealth(healthy, now)
	assert.Equal(t, 100.0, m.HealthScore)
	assert.Empty(t, m.Recommendations)

	bare := model.ProjectDetail{Project: model.Project{ID: 2, UpdatedAt: now.AddDate(-2, 0, 0), OpenIssues: 500}}
	m = CommunityHealth(bare, now)
	assert.Equal(t, 0.0, m.HealthScore)
	assert.Len(t, m.Recommendations, 7)
}

func TestMaintainer(t *testing.T) {
	d := model.ProjectDetail{
		Project: model.Project{ID: 1, OpenIssues: 40, UpdatedAt: now.AddDate(0, 0, -2)},
		Contributors: []model.Contributor{
			{Login: "a", Contributions: 900},
			{Login: "b", Contributions: 60},
			{Login: "c", Contributions: 40},
		},
		Issues: []model.Issue{{Comments: 2}, {Comments: 4}},
	}
	m := Maintainer(d, now)
	assert.Equal(t, 2, m.ActiveMaintainers)
	assert.Equal(t, 0.9, m.TopContributorShare)
	assert.Equal(t, 20.0, m.IssuesPerMaintainer)
	assert.Equal(t, 3.0, m.AverageIssueComments)
	assert.Equal(t, "high", m.BusFactorRisk)
	assert.Equal(t, 40+30+15.0, m.ResponsivenessScore)

	empty := Maintainer(model.ProjectDetail{Project: model.Project{ID: 2}}, now)
	assert.Equal(t, "high", empty.BusFactorRisk)
	assert.LessOrEqual(t, empty.ResponsivenessScore, 100.0)
}

func TestKafkaSink_PublishesByType(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewKafkaSink(log.NewNopLogger(), pub)
	sink.now = func() time.Time { return now }

	require.NoError(t, sink.Record(context.Background(), model.Event{Type: model.EventShare, UserID: "u1", ProjectID: 4}))
	assert.Equal(t, []string{"share"}, pub.keys)
	assert.Equal(t, now, pub.values[0].(model.Event).At)

	assert.ErrorIs(t, sink.Record(context.Background(), model.Event{Type: model.EventShare}), ErrInvalidEvent)
	assert.Len(t, pub.keys, 1)
}

func TestBatcher_FlushesOnShutdown(t *testing.T) {
	e := newEngine()
	b := NewBatcher(log.NewNopLogger(), e, 10, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 3; i++ {
		raw, err := json.Marshal(model.Event{Type: model.EventView, UserID: "u1", ProjectID: 5, At: now})
		require.NoError(t, err)
		require.NoError(t, b.Handle(ctx, raw))
	}
	assert.Error(t, b.Handle(ctx, []byte("{")))

	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	c, err := e.ProjectCounters(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Views)
}
