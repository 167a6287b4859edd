package search

import (
	"sort"
	"strings"

	"github.com/thep200/oss-finder/internal/model"
)

// Suggest completes prefix from the expansion vocabulary and the catalog's languages,
// topics and names. Terms used by more projects come first.
func Suggest(prefix string, projects []model.Project, limit int) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return []string{}
	}

	counts := make(map[string]int)
	for _, term := range Vocabulary() {
		counts[term] = 0
	}
	for _, p := range projects {
		if p.Language != "" {
			counts[strings.ToLower(p.Language)]++
		}
		for _, t := range p.Topics {
			counts[t]++
		}
		if p.Name != "" {
			counts[strings.ToLower(p.Name)]++
		}
	}

	out := make([]string, 0)
	for term := range counts {
		if strings.HasPrefix(term, prefix) {
			out = append(out, term)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] == counts[out[j]] {
			return out[i] < out[j]
		}
		return counts[out[i]] > counts[out[j]]
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
