// Package search ranks catalog projects against a free-text query. Query words are expanded
// through synonym and topic-cluster tables so "frontend" also finds projects only tagged
// "react" or "ui".
package search

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/scoring"
)

// Field weights for a single matching term.
const (
	WeightNameExact     = 0.8
	WeightNameSubstring = 0.6
	WeightLanguage      = 0.5
	WeightTopic         = 0.4
	WeightDescription   = 0.3
	WeightFallback      = 0.1

	// MinScore drops weak matches from results.
	MinScore = 0.1

	browseScore = 0.5

	languageMismatch = 0.1
	topicMismatch    = 0.3
	starsOutOfRange  = 0.5
	missingGoodFirst = 0.5

	maxPopularityBoost = 0.1
	freshnessBoost     = 0.05
	freshnessDays      = 30
)

// Query is a search request. Empty filters do not apply.
type Query struct {
	Text           string   `json:"q"`
	Languages      []string `json:"languages,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	MinStars       int      `json:"minStars,omitempty"`
	MaxStars       int      `json:"maxStars,omitempty"`
	GoodFirstIssue bool     `json:"goodFirstIssue,omitempty"`
	Limit          int      `json:"limit,omitempty"`
}

type Result struct {
	Project model.Project `json:"project"`
	Score   float64       `json:"score"`
	Matched []string      `json:"matched"`
}

// fieldWeight is the best weight a single term earns against p. Terms of two characters
// only match whole values.
func fieldWeight(p model.Project, term string) float64 {
	name := strings.ToLower(p.Name)
	substr := len(term) > 2
	switch {
	case name == term:
		return WeightNameExact
	case substr && strings.Contains(name, term):
		return WeightNameSubstring
	case strings.EqualFold(p.Language, term):
		return WeightLanguage
	case p.HasTopic(term):
		return WeightTopic
	case !substr:
		return 0
	case strings.Contains(strings.ToLower(p.Description), term):
		return WeightDescription
	case strings.Contains(strings.ToLower(p.FullName), term):
		return WeightFallback
	}
	for _, topic := range p.Topics {
		if strings.Contains(topic, term) {
			return WeightFallback
		}
	}
	return 0
}

// textScore sums the field weights of every expanded term, normalized by the number of
// words the user typed. It also returns the terms that matched.
func textScore(p model.Project, tokens []string) (float64, []string) {
	if len(tokens) == 0 {
		return browseScore, nil
	}
	total := 0.0
	var matched []string
	seen := make(map[string]struct{})
	for _, token := range tokens {
		for _, term := range Expand(token) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			if w := fieldWeight(p, term); w > 0 {
				total += w
				matched = append(matched, term)
			}
		}
	}
	return scoring.Clamp01(total / float64(len(tokens))), matched
}

func containsFold(values []string, v string) bool {
	for _, x := range values {
		if strings.EqualFold(strings.TrimSpace(x), v) {
			return true
		}
	}
	return false
}

// filterMultiplier applies the filters as penalties rather than hard excludes.
func filterMultiplier(p model.Project, q Query) float64 {
	m := 1.0
	if len(q.Languages) > 0 && !containsFold(q.Languages, p.Language) {
		m *= languageMismatch
	}
	if len(q.Topics) > 0 {
		hit := false
		for _, t := range p.Topics {
			if containsFold(q.Topics, t) {
				hit = true
				break
			}
		}
		if !hit {
			m *= topicMismatch
		}
	}
	if (q.MinStars > 0 && p.Stars < q.MinStars) || (q.MaxStars > 0 && p.Stars > q.MaxStars) {
		m *= starsOutOfRange
	}
	if q.GoodFirstIssue && !p.HasGoodFirstIssues {
		m *= missingGoodFirst
	}
	return m
}

func boost(p model.Project, now time.Time) float64 {
	b := math.Min(maxPopularityBoost, math.Log10(float64(p.Stars)+1)/50)
	if !p.UpdatedAt.IsZero() && model.DaysBetween(p.UpdatedAt, now) <= freshnessDays {
		b += freshnessBoost
	}
	return b
}

// Score is the relevance of p for q in [0,1], with the terms that matched.
func Score(p model.Project, q Query, now time.Time) (float64, []string) {
	return score(p, q, QueryTokens(q.Text), now)
}

func score(p model.Project, q Query, tokens []string, now time.Time) (float64, []string) {
	base, matched := textScore(p, tokens)
	if base == 0 {
		return 0, nil
	}
	s := base*filterMultiplier(p, q) + boost(p, now)
	return scoring.Round(scoring.Clamp01(s), 4), matched
}

// Search ranks projects for q, best first. Results under MinScore are dropped.
func Search(projects []model.Project, q Query, now time.Time) []Result {
	tokens := QueryTokens(q.Text)
	results := make([]Result, 0, len(projects))
	for _, p := range projects {
		s, matched := score(p, q, tokens, now)
		if s < MinScore {
			continue
		}
		if matched == nil {
			matched = []string{}
		}
		results = append(results, Result{Project: p, Score: s, Matched: matched})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Project.Stars > results[j].Project.Stars
		}
		return results[i].Score > results[j].Score
	})
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results
}
