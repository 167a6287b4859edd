package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/thep200/oss-finder/internal/model"
)

// Similarity weights. They sum to 1.
const (
	WeightLanguage    = 0.25
	WeightTopics      = 0.35
	WeightSize        = 0.15
	WeightActivity    = 0.15
	WeightDescription = 0.10

	// MinSimilarity is exclusive: candidates at or below it are dropped.
	MinSimilarity = 0.2

	relatedLanguageScore = 0.6
)

// LanguageSimilarity is 1 for the same language, 0.6 for related languages, else 0.
func LanguageSimilarity(a, b model.Project) float64 {
	if a.Language == "" || b.Language == "" {
		return 0
	}
	if strings.EqualFold(a.Language, b.Language) {
		return 1
	}
	if RelatedLanguage(a.Language, b.Language) {
		return relatedLanguageScore
	}
	return 0
}

// TopicSimilarity is the Jaccard similarity of the topic sets. It is symmetric.
func TopicSimilarity(a, b model.Project) float64 {
	return Jaccard(SetOf(a.Topics), SetOf(b.Topics))
}

// SizeSimilarity compares stars+2*forks on a log scale: 1 for equal sizes, falling
// towards 0 as the orders of magnitude diverge.
func SizeSimilarity(a, b model.Project) float64 {
	la, lb := log10p(a.Popularity()), log10p(b.Popularity())
	hi := math.Max(la, lb)
	if hi == 0 {
		return 1
	}
	return Clamp01(1 - math.Abs(la-lb)/hi)
}

// activityBucket groups days since the last update: week, month, quarter, year, older.
func activityBucket(updated, now time.Time) int {
	days := model.DaysBetween(updated, now)
	switch {
	case days <= 7:
		return 0
	case days <= 30:
		return 1
	case days <= 90:
		return 2
	case days <= 365:
		return 3
	default:
		return 4
	}
}

// ActivitySimilarity is 1 for the same recency bucket, 0.5 for adjacent buckets, else 0.
func ActivitySimilarity(a, b model.Project, now time.Time) float64 {
	diff := activityBucket(a.UpdatedAt, now) - activityBucket(b.UpdatedAt, now)
	switch diff {
	case 0:
		return 1
	case 1, -1:
		return 0.5
	default:
		return 0
	}
}

// DescriptionSimilarity is the Jaccard similarity of stopword-filtered description tokens.
func DescriptionSimilarity(a, b model.Project) float64 {
	return Jaccard(Keywords(a.Description), Keywords(b.Description))
}

// Similarity scores candidate against source with reasons sorted by weight.
func Similarity(source, candidate model.Project, now time.Time) model.SimilarityScore {
	var reasons []model.Reason
	total := 0.0

	add := func(kind string, sub, weight float64, explanation string) {
		contribution := sub * weight
		total += contribution
		if contribution > 0 {
			reasons = append(reasons, model.Reason{Type: kind, Weight: Round(contribution, 4), Explanation: explanation})
		}
	}

	lang := LanguageSimilarity(source, candidate)
	langText := fmt.Sprintf("Both written in %s", candidate.Language)
	if lang < 1 {
		langText = fmt.Sprintf("%s is related to %s", candidate.Language, source.Language)
	}
	add("language", lang, WeightLanguage, langText)

	topics := TopicSimilarity(source, candidate)
	shared := sharedKeys(SetOf(source.Topics), SetOf(candidate.Topics))
	sort.Strings(shared)
	add("topics", topics, WeightTopics, fmt.Sprintf("Shares topics: %s", strings.Join(shared, ", ")))

	add("size", SizeSimilarity(source, candidate), WeightSize, "Similar community size")
	add("activity", ActivitySimilarity(source, candidate, now), WeightActivity, "Similar development activity")

	desc := DescriptionSimilarity(source, candidate)
	add("description", desc, WeightDescription, "Similar project description")

	sortReasons(reasons)
	if reasons == nil {
		reasons = []model.Reason{}
	}
	return model.SimilarityScore{
		SourceID: source.ID,
		TargetID: candidate.ID,
		Score:    Round(Clamp01(total), 4),
		Reasons:  reasons,
	}
}

// FindSimilar scores every candidate except source itself, drops scores at or below
// MinSimilarity and returns at most limit results, best first. limit <= 0 means no limit.
func FindSimilar(source model.Project, candidates []model.Project, limit int, now time.Time) []model.SimilarProject {
	results := make([]model.SimilarProject, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == source.ID {
			continue
		}
		s := Similarity(source, c, now)
		if s.Score <= MinSimilarity {
			continue
		}
		results = append(results, model.SimilarProject{Project: c, Score: s.Score, Reasons: s.Reasons})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Project.Stars > results[j].Project.Stars
		}
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
