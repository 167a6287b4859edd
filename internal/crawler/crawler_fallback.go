package crawler

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/pkg/log"
)

const SourceFallback = "fallback"

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackDataset struct {
	Projects []model.Project `yaml:"projects"`
}

// FallbackCrawler serves the bundled dataset.
type FallbackCrawler struct {
	Logger log.Logger
	data   []byte
}

func NewFallbackCrawler(logger log.Logger) *FallbackCrawler {
	return &FallbackCrawler{Logger: logger, data: fallbackYAML}
}

func (c *FallbackCrawler) Crawl(ctx context.Context) (Result, error) {
	projects, err := ParseDataset(c.data)
	if err != nil {
		return Result{}, err
	}
	c.Logger.Info(ctx, "[CRAWLER] Loaded %d projects from the fallback dataset", len(projects))
	return Result{Projects: projects, Source: SourceFallback}, nil
}

// ParseDataset decodes a YAML project list and normalizes every entry.
func ParseDataset(data []byte) ([]model.Project, error) {
	var dataset fallbackDataset
	if err := yaml.Unmarshal(data, &dataset); err != nil {
		return nil, fmt.Errorf("parse fallback dataset: %w", err)
	}
	projects := make([]model.Project, 0, len(dataset.Projects))
	for _, p := range dataset.Projects {
		projects = append(projects, p.Normalize())
	}
	return projects, nil
}
