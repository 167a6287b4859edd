package model

// Reason explains one contribution to a score.
type Reason struct {
	Type        string  `json:"type"`
	Weight      float64 `json:"weight"`
	Explanation string  `json:"explanation"`
}

type SimilarityScore struct {
	SourceID int64    `json:"sourceProjectId"`
	TargetID int64    `json:"targetProjectId"`
	Score    float64  `json:"score"`
	Reasons  []Reason `json:"reasons"`
}

type SimilarProject struct {
	Project Project  `json:"project"`
	Score   float64  `json:"score"`
	Reasons []Reason `json:"reasons"`
}

type RecommendedProject struct {
	Project Project  `json:"project"`
	Score   float64  `json:"score"`
	Reasons []Reason `json:"reasons"`
}

// Timeframe selects the trending window.
type Timeframe string

const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// ParseTimeframe defaults unknown values to weekly.
func ParseTimeframe(s string) Timeframe {
	switch Timeframe(s) {
	case TimeframeDaily, TimeframeMonthly:
		return Timeframe(s)
	default:
		return TimeframeWeekly
	}
}

// Days is the length of the recency window for the timeframe.
func (t Timeframe) Days() int {
	switch t {
	case TimeframeDaily:
		return 1
	case TimeframeMonthly:
		return 30
	default:
		return 7
	}
}

type TrendingReason string

const (
	TrendingRapidGrowth        TrendingReason = "rapid_growth"
	TrendingConsistentActivity TrendingReason = "consistent_activity"
	TrendingCommunityBuzz      TrendingReason = "community_buzz"
	TrendingRecentRelease      TrendingReason = "recent_release"
	TrendingSeasonal           TrendingReason = "seasonal_trend"
)

// GrowthMetrics are estimated from a single snapshot (cumulative counts over age),
// not measured from a time series.
type GrowthMetrics struct {
	AgeDays              float64 `json:"ageDays"`
	StarsPerDay          float64 `json:"starsPerDay"`
	ForksPerDay          float64 `json:"forksPerDay"`
	EstimatedStarsGained int     `json:"estimatedStarsGained"`
	EstimatedForksGained int     `json:"estimatedForksGained"`
	GrowthRate           float64 `json:"growthRate"`
}

type TrendingProject struct {
	Project   Project        `json:"project"`
	Score     float64        `json:"score"`
	Reason    TrendingReason `json:"reason"`
	Timeframe Timeframe      `json:"timeframe"`
	Growth    GrowthMetrics  `json:"growth"`
}
