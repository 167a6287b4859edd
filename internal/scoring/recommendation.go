package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thep200/oss-finder/internal/model"
)

// Recommendation weights. They sum to 1.
const (
	WeightPreferredLanguage = 0.30
	WeightInterests         = 0.25
	WeightDifficulty        = 0.20
	WeightCommunity         = 0.15
	WeightHistory           = 0.10

	// ColdStartConfidence is the fixed confidence of the single reason on cold-start results.
	ColdStartConfidence = 0.7
)

// EstimateDifficulty buckets a project by size: big, busy projects are harder to enter.
func EstimateDifficulty(p model.Project) model.SkillLevel {
	switch {
	case p.Stars > 20000 || p.Forks > 5000 || p.OpenIssues > 1000:
		return model.SkillAdvanced
	case p.Stars > 2000 || p.Forks > 500 || p.OpenIssues > 200:
		return model.SkillIntermediate
	default:
		return model.SkillBeginner
	}
}

// DifficultyMatch is 1 when the estimate equals the user's level, 0.5 when adjacent.
func DifficultyMatch(p model.Project, level model.SkillLevel) float64 {
	if !level.Valid() {
		level = model.SkillBeginner
	}
	diff := EstimateDifficulty(p).Rank() - level.Rank()
	switch diff {
	case 0:
		return 1
	case 1, -1:
		return 0.5
	default:
		return 0
	}
}

// CommunityActivity normalizes stars, forks and open issues into [0,1].
func CommunityActivity(p model.Project) float64 {
	stars := Clamp01(log10p(p.Stars) / 5)
	forks := Clamp01(log10p(p.Forks) / 4)
	issues := Clamp01(float64(p.OpenIssues) / 100)
	return Clamp01(0.5*stars + 0.3*forks + 0.2*issues)
}

// InterestOverlap is the share of interests that appear as a substring of a topic
// (or a topic as a substring of the interest).
func InterestOverlap(p model.Project, interests []string) (float64, []string) {
	if len(interests) == 0 {
		return 0, nil
	}
	var matched []string
	for _, interest := range interests {
		interest = strings.ToLower(strings.TrimSpace(interest))
		if interest == "" {
			continue
		}
		for _, topic := range p.Topics {
			if strings.Contains(topic, interest) || strings.Contains(interest, topic) {
				matched = append(matched, interest)
				break
			}
		}
	}
	return Clamp01(float64(len(matched)) / float64(len(interests))), matched
}

// RecommendationScore scores one project for a user.
func RecommendationScore(p model.Project, prefs model.UserPreferences) (float64, []model.Reason) {
	var reasons []model.Reason
	total := 0.0

	if prefs.PrefersLanguage(p.Language) {
		total += WeightPreferredLanguage
		reasons = append(reasons, model.Reason{
			Type:        "language_match",
			Weight:      WeightPreferredLanguage,
			Explanation: fmt.Sprintf("Written in %s, one of your languages", p.Language),
		})
	}

	if overlap, matched := InterestOverlap(p, prefs.Interests); overlap > 0 {
		w := overlap * WeightInterests
		total += w
		reasons = append(reasons, model.Reason{
			Type:        "topic_interest",
			Weight:      Round(w, 4),
			Explanation: fmt.Sprintf("Matches your interests: %s", strings.Join(matched, ", ")),
		})
	}

	if match := DifficultyMatch(p, prefs.SkillLevel); match > 0 {
		w := match * WeightDifficulty
		total += w
		reasons = append(reasons, model.Reason{
			Type:        "skill_level",
			Weight:      Round(w, 4),
			Explanation: fmt.Sprintf("Estimated %s difficulty for a %s contributor", EstimateDifficulty(p), prefs.SkillLevel),
		})
	}

	if activity := CommunityActivity(p); activity > 0 {
		w := activity * WeightCommunity
		total += w
		reasons = append(reasons, model.Reason{
			Type:        "community_activity",
			Weight:      Round(w, 4),
			Explanation: "Active community",
		})
	}

	if prefs.HasBookmarked(p.ID) || prefs.HasContributed(p.ID) {
		total += WeightHistory
		reasons = append(reasons, model.Reason{
			Type:        "history",
			Weight:      WeightHistory,
			Explanation: "You bookmarked or contributed to this project",
		})
	}

	sortReasons(reasons)
	if reasons == nil {
		reasons = []model.Reason{}
	}
	return Round(Clamp01(total), 4), reasons
}

// Recommend ranks projects for prefs. Viewed projects are skipped unless also bookmarked.
// Without languages or interests it falls back to ColdStart.
func Recommend(projects []model.Project, prefs model.UserPreferences, limit int) []model.RecommendedProject {
	if prefs.IsColdStart() {
		return ColdStart(projects, limit)
	}

	results := make([]model.RecommendedProject, 0, len(projects))
	for _, p := range projects {
		if prefs.HasViewed(p.ID) && !prefs.HasBookmarked(p.ID) {
			continue
		}
		score, reasons := RecommendationScore(p, prefs)
		results = append(results, model.RecommendedProject{Project: p, Score: score, Reasons: reasons})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score == results[j].Score {
			return results[i].Project.Popularity() > results[j].Project.Popularity()
		}
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// ColdStart ranks by stars + 2*forks. Scores are popularity relative to the most popular
// project; every result carries one "trending" reason at ColdStartConfidence.
func ColdStart(projects []model.Project, limit int) []model.RecommendedProject {
	sorted := make([]model.Project, len(projects))
	copy(sorted, projects)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Popularity() > sorted[j].Popularity()
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	results := make([]model.RecommendedProject, 0, len(sorted))
	if len(sorted) == 0 {
		return results
	}
	top := log10p(sorted[0].Popularity())
	for _, p := range sorted {
		score := 0.0
		if top > 0 {
			score = log10p(p.Popularity()) / top
		}
		results = append(results, model.RecommendedProject{
			Project: p,
			Score:   Round(Clamp01(score), 4),
			Reasons: []model.Reason{{
				Type:        "trending",
				Weight:      ColdStartConfidence,
				Explanation: "Popular with the community",
			}},
		})
	}
	return results
}
