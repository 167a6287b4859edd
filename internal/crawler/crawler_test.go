package crawler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/pkg/log"
)

// pagedSource serves pages of projects; pages listed in fail return an error.
type pagedSource struct {
	pages [][]model.Project
	total int
	fail  map[int]bool
	calls int
}

func (s *pagedSource) SearchRepositories(_ context.Context, _ string, page, _ int) ([]model.Project, int, error) {
	s.calls++
	if s.fail[page] {
		return nil, 0, errors.New("github down")
	}
	if page > len(s.pages) {
		return []model.Project{}, s.total, nil
	}
	return s.pages[page-1], s.total, nil
}

func testConfig(pages, perPage, max int) *cfg.Config {
	loader, _ := cfg.NewMockLoader()
	config, _ := loader.Load()
	config.Catalog.Pages = pages
	config.Catalog.PerPage = perPage
	config.Catalog.MaxProjects = max
	return config
}

func projects(ids ...int64) []model.Project {
	out := make([]model.Project, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Project{ID: id, FullName: fmt.Sprintf("o/r%d", id)})
	}
	return out
}

func TestGithubCrawler_DedupesAndBounds(t *testing.T) {
	archived := model.Project{ID: 9, FullName: "o/old", Archived: true}
	src := &pagedSource{
		pages: [][]model.Project{projects(1, 2, 3), append(projects(3, 4), archived), projects(5, 6, 7)},
		total: 100,
	}
	c := NewGithubCrawler(log.NewNopLogger(), testConfig(5, 3, 5), src)

	res, err := c.Crawl(context.Background())
	require.NoError(t, err)
	ids := []int64{}
	for _, p := range res.Projects {
		ids = append(ids, p.ID)
		assert.NotNil(t, p.Topics)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, ids)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, SourceGithub, res.Source)
}

func TestGithubCrawler_StopsAtTotal(t *testing.T) {
	src := &pagedSource{pages: [][]model.Project{projects(1, 2)}, total: 2}
	res, err := NewGithubCrawler(log.NewNopLogger(), testConfig(5, 2, 50), src).Crawl(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Projects, 2)
	assert.Equal(t, 1, src.calls)
}

func TestGithubCrawler_Failures(t *testing.T) {
	first := &pagedSource{fail: map[int]bool{1: true}}
	_, err := NewGithubCrawler(log.NewNopLogger(), testConfig(3, 2, 50), first).Crawl(context.Background())
	assert.Error(t, err)

	later := &pagedSource{pages: [][]model.Project{projects(1, 2)}, total: 10, fail: map[int]bool{2: true}}
	res, err := NewGithubCrawler(log.NewNopLogger(), testConfig(3, 2, 50), later).Crawl(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Projects, 2)

	empty := &pagedSource{total: 0}
	_, err = NewGithubCrawler(log.NewNopLogger(), testConfig(3, 2, 50), empty).Crawl(context.Background())
	assert.Error(t, err)
}

func TestFallbackCrawler(t *testing.T) {
	res, err := NewFallbackCrawler(log.NewNopLogger()).Crawl(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, res.Projects)
	assert.Equal(t, SourceFallback, res.Source)
	for _, p := range res.Projects {
		assert.NotZero(t, p.ID)
		assert.NotEmpty(t, p.Owner)
		assert.NotEmpty(t, p.Name)
		assert.False(t, p.CreatedAt.IsZero(), p.FullName)
	}

	_, err = ParseDataset([]byte("projects: ["))
	assert.Error(t, err)
}

func TestFactoryCrawler(t *testing.T) {
	config := testConfig(1, 1, 1)
	c, err := FactoryCrawler(SourceGithub, log.NewNopLogger(), config, &pagedSource{})
	require.NoError(t, err)
	assert.IsType(t, &GithubCrawler{}, c)

	c, err = FactoryCrawler(SourceFallback, log.NewNopLogger(), config, nil)
	require.NoError(t, err)
	assert.IsType(t, &FallbackCrawler{}, c)

	_, err = FactoryCrawler(SourceGithub, log.NewNopLogger(), config, nil)
	assert.Error(t, err)
	_, err = FactoryCrawler("v9", log.NewNopLogger(), config, nil)
	assert.Error(t, err)
}

func TestScheduler_RunsAndStops(t *testing.T) {
	s := NewScheduler(log.NewNopLogger())
	var runs int32
	require.NoError(t, s.Schedule("@every 1s", "tick", func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}))
	assert.Error(t, s.Schedule("not a spec", "bad", func(context.Context) error { return nil }))

	s.Start()
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
