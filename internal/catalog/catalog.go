// Package catalog holds the pool of candidate projects every ranker works on. The pool is
// refreshed from GitHub, replaced by the bundled dataset when GitHub fails, and
// snapshotted to the store so a restart does not start empty.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/internal/crawler"
	githubapi "github.com/thep200/oss-finder/internal/github_api"
	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/pkg/log"
)

const snapshotKey = "projects"

var ErrNotFound = errors.New("catalog: project not found")

// Client is the per-repository part of the GitHub API; *githubapi.Caller has it.
type Client interface {
	GetRepository(ctx context.Context, owner, repo string) (model.Project, error)
	ListIssues(ctx context.Context, owner, repo string, filter githubapi.IssueFilter) ([]model.Issue, error)
	ListContributors(ctx context.Context, owner, repo string, perPage int) ([]model.Contributor, error)
	GetReadme(ctx context.Context, owner, repo string) (string, error)
}

type snapshot struct {
	Projects    []model.Project `json:"projects"`
	Source      string          `json:"source"`
	RefreshedAt time.Time       `json:"refreshedAt"`
}

// Status describes the current pool.
type Status struct {
	Count       int       `json:"count"`
	Source      string    `json:"source"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

type Catalog struct {
	Logger   log.Logger
	Config   *cfg.Config
	primary  crawler.Crawler
	fallback crawler.Crawler
	client   Client
	store    store.Store
	ttl      time.Duration
	now      func() time.Time

	mu          sync.RWMutex
	projects    []model.Project
	byName      map[string]int
	byID        map[int64]int
	source      string
	refreshedAt time.Time

	refreshMu sync.Mutex
}

func New(logger log.Logger, config *cfg.Config, primary, fallback crawler.Crawler, client Client, st store.Store) *Catalog {
	return &Catalog{
		Logger:   logger,
		Config:   config,
		primary:  primary,
		fallback: fallback,
		client:   client,
		store:    st,
		ttl:      time.Duration(config.Catalog.TTLMinutes) * time.Minute,
		now:      time.Now,
	}
}

// Load restores the last snapshot from the store. A missing snapshot is not an error.
func (c *Catalog) Load(ctx context.Context) error {
	var snap snapshot
	_, err := store.GetJSON(ctx, c.store, store.NamespaceCatalog, snapshotKey, &snap)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load catalog snapshot: %w", err)
	}
	c.set(snap.Projects, snap.Source, snap.RefreshedAt)
	c.Logger.Info(ctx, "[CATALOG] Restored %d projects from snapshot (%s, %s)", len(snap.Projects), snap.Source, snap.RefreshedAt.Format(time.RFC3339))
	return nil
}

// Projects returns the pool, refreshing it first when it is empty or older than the TTL.
// A failed refresh keeps serving the stale pool.
func (c *Catalog) Projects(ctx context.Context) ([]model.Project, error) {
	if c.stale() {
		if err := c.refreshIfStale(ctx); err != nil {
			if c.Status().Count == 0 {
				return nil, err
			}
			c.Logger.Warn(ctx, "[CATALOG] Refresh failed, serving stale pool: %v", err)
		}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Project, len(c.projects))
	copy(out, c.projects)
	return out, nil
}

func (c *Catalog) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.projects) == 0 || c.now().Sub(c.refreshedAt) > c.ttl
}

// refreshIfStale lets only the first of several concurrent readers refresh.
func (c *Catalog) refreshIfStale(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	if !c.stale() {
		return nil
	}
	_, err := c.refresh(ctx)
	return err
}

// Refresh crawls GitHub, or loads the fallback dataset when that fails, and replaces the
// pool.
func (c *Catalog) Refresh(ctx context.Context) (Status, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()
	return c.refresh(ctx)
}

func (c *Catalog) refresh(ctx context.Context) (Status, error) {
	result, err := c.primary.Crawl(ctx)
	if err != nil {
		c.Logger.Warn(ctx, "[CATALOG] GitHub crawl failed, using fallback dataset: %v", err)
		result, err = c.fallback.Crawl(ctx)
		if err != nil {
			return Status{}, fmt.Errorf("refresh catalog: %w", err)
		}
	}

	refreshedAt := c.now()
	c.set(result.Projects, result.Source, refreshedAt)

	snap := snapshot{Projects: result.Projects, Source: result.Source, RefreshedAt: refreshedAt}
	if _, err := store.PutJSON(ctx, c.store, store.NamespaceCatalog, snapshotKey, snap, store.AnyRevision); err != nil {
		c.Logger.Warn(ctx, "[CATALOG] Failed to persist snapshot: %v", err)
	}
	c.Logger.Info(ctx, "[CATALOG] Pool refreshed with %d projects from %s", len(result.Projects), result.Source)
	return c.Status(), nil
}

func (c *Catalog) set(projects []model.Project, source string, at time.Time) {
	sorted := make([]model.Project, len(projects))
	copy(sorted, projects)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Stars > sorted[j].Stars })

	byName := make(map[string]int, len(sorted))
	byID := make(map[int64]int, len(sorted))
	for i, p := range sorted {
		byName[strings.ToLower(p.FullName)] = i
		byID[p.ID] = i
	}

	c.mu.Lock()
	c.projects = sorted
	c.byName = byName
	c.byID = byID
	c.source = source
	c.refreshedAt = at
	c.mu.Unlock()
}

func (c *Catalog) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{Count: len(c.projects), Source: c.source, RefreshedAt: c.refreshedAt}
}

// ProjectByID looks only in the pool.
func (c *Catalog) ProjectByID(id int64) (model.Project, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return model.Project{}, false
	}
	return c.projects[i], true
}

// Project looks in the pool first, then asks GitHub.
func (c *Catalog) Project(ctx context.Context, owner, repo string) (model.Project, error) {
	c.mu.RLock()
	i, ok := c.byName[strings.ToLower(owner+"/"+repo)]
	var p model.Project
	if ok {
		p = c.projects[i]
	}
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := c.client.GetRepository(ctx, owner, repo)
	if errors.Is(err, githubapi.ErrNotFound) {
		return model.Project{}, fmt.Errorf("%s/%s: %w", owner, repo, ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("lookup %s/%s: %w", owner, repo, err)
	}
	return p, nil
}

// Issues lists open issues, optionally only the good first ones.
func (c *Catalog) Issues(ctx context.Context, owner, repo string, goodFirstOnly bool) ([]model.Issue, error) {
	filter := githubapi.IssueFilter{State: "open", PerPage: 30}
	issues, err := c.client.ListIssues(ctx, owner, repo, filter)
	if err != nil {
		return nil, fmt.Errorf("list issues for %s/%s: %w", owner, repo, err)
	}
	if !goodFirstOnly {
		return issues, nil
	}
	return goodFirst(issues), nil
}

func goodFirst(issues []model.Issue) []model.Issue {
	out := make([]model.Issue, 0, len(issues))
	for _, i := range issues {
		if i.IsGoodFirstIssue {
			out = append(out, i)
		}
	}
	return out
}

// Detail loads the project and, concurrently, its issues, contributors and README. Only a
// failed project lookup is an error; other parts that fail are left empty and listed in
// Partial.
func (c *Catalog) Detail(ctx context.Context, owner, repo string) (model.ProjectDetail, error) {
	p, err := c.Project(ctx, owner, repo)
	if err != nil {
		return model.ProjectDetail{}, err
	}
	owner, repo = p.Owner, p.Name

	detail := model.ProjectDetail{
		Project:         p,
		Issues:          []model.Issue{},
		GoodFirstIssues: []model.Issue{},
		Contributors:    []model.Contributor{},
	}
	var mu sync.Mutex
	partial := func(part string, err error) {
		c.Logger.Warn(ctx, "[CATALOG] %s/%s: failed to load %s: %v", owner, repo, part, err)
		mu.Lock()
		detail.Partial = append(detail.Partial, part)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		issues, err := c.client.ListIssues(gctx, owner, repo, githubapi.IssueFilter{State: "open", PerPage: 30})
		if err != nil {
			partial("issues", err)
			return nil
		}
		mu.Lock()
		detail.Issues = issues
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		issues, err := c.client.ListIssues(gctx, owner, repo, githubapi.IssueFilter{
			State:   "open",
			Labels:  []string{"good first issue"},
			PerPage: 30,
		})
		if err != nil {
			partial("goodFirstIssues", err)
			return nil
		}
		mu.Lock()
		detail.GoodFirstIssues = issues
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		contributors, err := c.client.ListContributors(gctx, owner, repo, 30)
		if err != nil {
			partial("contributors", err)
			return nil
		}
		mu.Lock()
		detail.Contributors = contributors
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		readme, err := c.client.GetReadme(gctx, owner, repo)
		if err != nil {
			if !errors.Is(err, githubapi.ErrNotFound) {
				partial("readme", err)
			}
			return nil
		}
		mu.Lock()
		detail.Readme = readme
		mu.Unlock()
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return model.ProjectDetail{}, err
	}
	sort.Strings(detail.Partial)
	if len(detail.GoodFirstIssues) > 0 {
		detail.Project.HasGoodFirstIssues = true
	}
	return detail, nil
}
