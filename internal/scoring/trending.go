package scoring

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/thep200/oss-finder/internal/model"
)

// Trending weights. They sum to 1.
const (
	WeightStarsGrowth    = 0.30
	WeightForksGrowth    = 0.20
	WeightRecentActivity = 0.25
	WeightEngagement     = 0.15
	WeightFreshness      = 0.10

	// MinTrendingScore is the cutoff for the default trending listing.
	MinTrendingScore = 0.3

	starsPerDayCeiling = 20.0
	forksPerDayCeiling = 5.0

	rapidGrowthStarsPerDay = 10.0
	establishedAgeDays     = 30.0
	buzzEngagement         = 0.6
)

// EstimateGrowth derives per-day rates from cumulative counts over the project's age.
// Age is at least one day so brand new projects do not divide by zero.
func EstimateGrowth(p model.Project, timeframe model.Timeframe, now time.Time) model.GrowthMetrics {
	age := math.Max(1, model.DaysBetween(p.CreatedAt, now))
	starsPerDay := float64(p.Stars) / age
	forksPerDay := float64(p.Forks) / age

	window := math.Min(float64(timeframe.Days()), age)
	starsGained := int(math.Round(starsPerDay * window))
	forksGained := int(math.Round(forksPerDay * window))

	base := math.Max(1, float64(p.Stars-starsGained))
	return model.GrowthMetrics{
		AgeDays:              age,
		StarsPerDay:          Round(starsPerDay, 4),
		ForksPerDay:          Round(forksPerDay, 4),
		EstimatedStarsGained: starsGained,
		EstimatedForksGained: forksGained,
		GrowthRate:           Round(float64(starsGained)/base, 4),
	}
}

// Engagement mixes the fork ratio, issue volume and absolute forks into [0,1].
func Engagement(p model.Project) float64 {
	ratio := 0.0
	if p.Stars > 0 {
		ratio = Clamp01(float64(p.Forks) / float64(p.Stars) * 5)
	}
	issues := Clamp01(float64(p.OpenIssues) / 50)
	forks := Clamp01(log10p(p.Forks) / 3)
	return Clamp01(0.4*ratio + 0.3*issues + 0.3*forks)
}

// Freshness favours young projects.
func Freshness(ageDays float64) float64 {
	switch {
	case ageDays <= 30:
		return 1
	case ageDays <= 90:
		return 0.7
	case ageDays <= 365:
		return 0.4
	default:
		return 0.1
	}
}

func updatedWithin(p model.Project, days int, now time.Time) bool {
	return !p.UpdatedAt.IsZero() && model.DaysBetween(p.UpdatedAt, now) <= float64(days)
}

// TrendingScore scores p for the timeframe and picks the dominant reason.
func TrendingScore(p model.Project, timeframe model.Timeframe, now time.Time) (float64, model.TrendingReason, model.GrowthMetrics) {
	growth := EstimateGrowth(p, timeframe, now)
	engagement := Engagement(p)
	recent := updatedWithin(p, timeframe.Days(), now)

	score := WeightStarsGrowth*Clamp01(growth.StarsPerDay/starsPerDayCeiling) +
		WeightForksGrowth*Clamp01(growth.ForksPerDay/forksPerDayCeiling) +
		WeightEngagement*engagement +
		WeightFreshness*Freshness(growth.AgeDays)
	if recent {
		score += WeightRecentActivity
	}

	switch timeframe {
	case model.TimeframeDaily:
		if updatedWithin(p, 1, now) {
			score *= 1.2
		} else {
			score *= 0.5
		}
	case model.TimeframeMonthly:
		if engagement >= 0.5 {
			score *= 1.1
		} else {
			score *= 0.8
		}
	}

	return Round(Clamp01(score), 4), trendingReason(growth, engagement, recent), growth
}

// trendingReason picks the first matching reason. Rapid growth is reserved for
// established projects; a young project with many stars is a recent release.
func trendingReason(growth model.GrowthMetrics, engagement float64, recent bool) model.TrendingReason {
	switch {
	case growth.StarsPerDay > rapidGrowthStarsPerDay && growth.AgeDays > establishedAgeDays:
		return model.TrendingRapidGrowth
	case engagement >= buzzEngagement:
		return model.TrendingCommunityBuzz
	case growth.AgeDays <= establishedAgeDays:
		return model.TrendingRecentRelease
	case recent:
		return model.TrendingConsistentActivity
	default:
		return model.TrendingSeasonal
	}
}

// Trending ranks projects for the timeframe, dropping scores below MinTrendingScore.
func Trending(projects []model.Project, timeframe model.Timeframe, limit int, now time.Time) []model.TrendingProject {
	return rankTrending(projects, timeframe, limit, now, MinTrendingScore)
}

// TrendingAll ranks every non-archived project regardless of score.
func TrendingAll(projects []model.Project, timeframe model.Timeframe, limit int, now time.Time) []model.TrendingProject {
	return rankTrending(projects, timeframe, limit, now, 0)
}

func rankTrending(projects []model.Project, timeframe model.Timeframe, limit int, now time.Time, min float64) []model.TrendingProject {
	results := make([]model.TrendingProject, 0, len(projects))
	for _, p := range projects {
		if p.Archived {
			continue
		}
		score, reason, growth := TrendingScore(p, timeframe, now)
		if score < min {
			continue
		}
		results = append(results, model.TrendingProject{
			Project:   p,
			Score:     score,
			Reason:    reason,
			Timeframe: timeframe,
			Growth:    growth,
		})
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

// DescribeTrending renders the reason for display.
func DescribeTrending(t model.TrendingProject) string {
	switch t.Reason {
	case model.TrendingRapidGrowth:
		return fmt.Sprintf("gaining ~%.0f stars/day", t.Growth.StarsPerDay)
	case model.TrendingCommunityBuzz:
		return "lots of forks and issue traffic"
	case model.TrendingRecentRelease:
		return fmt.Sprintf("created %.0f days ago", t.Growth.AgeDays)
	case model.TrendingConsistentActivity:
		return "steady recent activity"
	default:
		return "seasonal interest"
	}
}
