package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/pkg/log"
)

const (
	SourceGithub = "github"

	// GitHub search returns at most 1000 results per query.
	maxApiResults = 1000
)

// GithubCrawler pages through the configured repository search, deduplicating by id and
// skipping archived repositories, until MaxProjects is reached or results run out.
type GithubCrawler struct {
	Logger log.Logger
	Config *cfg.Config
	source Source
}

func NewGithubCrawler(logger log.Logger, config *cfg.Config, source Source) *GithubCrawler {
	return &GithubCrawler{Logger: logger, Config: config, source: source}
}

// Crawl fails only when nothing was collected; a failing later page ends the crawl with
// what the earlier pages returned.
func (c *GithubCrawler) Crawl(ctx context.Context) (Result, error) {
	startTime := time.Now()
	query := c.Config.Catalog.SearchQuery
	perPage := c.Config.Catalog.PerPage
	maxProjects := c.Config.Catalog.MaxProjects
	c.Logger.Info(ctx, "[CRAWLER] Start crawling %q at %s", query, startTime.Format(time.RFC3339))

	result := Result{Source: SourceGithub}
	seen := make(map[int64]struct{})
	emptyResultsCount := 0

	for page := 1; page <= c.Config.Catalog.Pages && len(result.Projects) < maxProjects; page++ {
		if page*perPage > maxApiResults {
			break
		}

		projects, total, err := c.source.SearchRepositories(ctx, query, page, perPage)
		if err != nil {
			if len(result.Projects) == 0 {
				return Result{}, fmt.Errorf("crawl page %d: %w", page, err)
			}
			c.Logger.Warn(ctx, "[CRAWLER] Stopping at page %d, keeping %d projects: %v", page, len(result.Projects), err)
			break
		}
		result.Pages++

		if len(projects) == 0 {
			emptyResultsCount++
			if emptyResultsCount >= 2 {
				break
			}
			continue
		}
		emptyResultsCount = 0

		for _, p := range projects {
			if len(result.Projects) >= maxProjects {
				break
			}
			if _, dup := seen[p.ID]; dup || p.Archived {
				result.Skipped++
				continue
			}
			seen[p.ID] = struct{}{}
			result.Projects = append(result.Projects, p.Normalize())
		}

		if page*perPage >= total {
			break
		}
	}

	result.Duration = time.Since(startTime)
	if len(result.Projects) == 0 {
		return Result{}, fmt.Errorf("crawl %q: no projects returned", query)
	}
	c.Logger.Info(ctx, "[CRAWLER] Collected %d projects from %d pages (%d skipped) in %s",
		len(result.Projects), result.Pages, result.Skipped, result.Duration)
	return result, nil
}

var _ Crawler = (*GithubCrawler)(nil)
