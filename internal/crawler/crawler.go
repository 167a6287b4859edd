// Package crawler fills the project catalog. The GitHub crawler pages through a repository
// search; the fallback crawler serves a bundled dataset when GitHub is unavailable.
package crawler

import (
	"context"
	"time"

	"github.com/thep200/oss-finder/internal/model"
)

// Result is one crawl's output.
type Result struct {
	Projects []model.Project
	Source   string
	Pages    int
	Skipped  int
	Duration time.Duration
}

type Crawler interface {
	Crawl(ctx context.Context) (Result, error)
}

// Source is the search call the GitHub crawler pages through; *githubapi.Caller has it.
type Source interface {
	SearchRepositories(ctx context.Context, query string, page, perPage int) ([]model.Project, int, error)
}
