package crawler

import (
	"fmt"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/pkg/log"
)

func FactoryCrawler(source string, logger log.Logger, config *cfg.Config, search Source) (Crawler, error) {
	switch source {
	case SourceGithub:
		if search == nil {
			return nil, fmt.Errorf("[ERROR] Crawler %s needs a search source", source)
		}
		return NewGithubCrawler(logger, config, search), nil
	case SourceFallback:
		return NewFallbackCrawler(logger), nil
	default:
		return nil, fmt.Errorf("[ERROR] Unsupported crawler source: %s", source)
	}
}
