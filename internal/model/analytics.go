package model

import "time"

type EventType string

const (
	EventView     EventType = "view"
	EventBookmark EventType = "bookmark"
	EventShare    EventType = "share"
	EventSession  EventType = "session"
)

// Event is one client interaction. ProjectID is zero for session events.
type Event struct {
	Type       EventType `json:"type"`
	UserID     string    `json:"userId"`
	ProjectID  int64     `json:"projectId,omitempty"`
	DurationMs int64     `json:"durationMs,omitempty"`
	At         time.Time `json:"at"`
}

type ProjectCounters struct {
	ProjectID   int64     `json:"projectId"`
	Views       int       `json:"views"`
	Bookmarks   int       `json:"bookmarks"`
	Shares      int       `json:"shares"`
	UniqueUsers []string  `json:"uniqueUsers"`
	LastEventAt time.Time `json:"lastEventAt"`
}

type UserCounters struct {
	UserID          string    `json:"userId"`
	Views           int       `json:"views"`
	Bookmarks       int       `json:"bookmarks"`
	Shares          int       `json:"shares"`
	Sessions        int       `json:"sessions"`
	TotalDurationMs int64     `json:"totalDurationMs"`
	LastEventAt     time.Time `json:"lastEventAt"`
}

type EngagementMetrics struct {
	UserID                 string  `json:"userId"`
	Views                  int     `json:"views"`
	Bookmarks              int     `json:"bookmarks"`
	Shares                 int     `json:"shares"`
	Sessions               int     `json:"sessions"`
	AverageSessionMinutes  float64 `json:"averageSessionMinutes"`
	BookmarkConversionRate float64 `json:"bookmarkConversionRate"`
	EngagementScore        float64 `json:"engagementScore"`
}

type ContributionMetrics struct {
	UserID             string   `json:"userId"`
	ProjectsViewed     int      `json:"projectsViewed"`
	ProjectsBookmarked int      `json:"projectsBookmarked"`
	Contributions      int      `json:"contributions"`
	Languages          []string `json:"languages"`
	Level              int      `json:"level"`
	Experience         int      `json:"experience"`
	ContributionScore  float64  `json:"contributionScore"`
}

type PopularityMetrics struct {
	ProjectID       int64   `json:"projectId"`
	Stars           int     `json:"stars"`
	Forks           int     `json:"forks"`
	Views           int     `json:"views"`
	Bookmarks       int     `json:"bookmarks"`
	Shares          int     `json:"shares"`
	UniqueUsers     int     `json:"uniqueUsers"`
	PopularityScore float64 `json:"popularityScore"`
}

type CommunityHealthMetrics struct {
	ProjectID        int64    `json:"projectId"`
	HasLicense       bool     `json:"hasLicense"`
	HasDescription   bool     `json:"hasDescription"`
	HasReadme        bool     `json:"hasReadme"`
	DaysSinceUpdate  int      `json:"daysSinceUpdate"`
	ContributorCount int      `json:"contributorCount"`
	GoodFirstIssues  int      `json:"goodFirstIssues"`
	OpenIssues       int      `json:"openIssues"`
	HealthScore      float64  `json:"healthScore"`
	Recommendations  []string `json:"recommendations"`
}

type MaintainerMetrics struct {
	ProjectID            int64   `json:"projectId"`
	ActiveMaintainers    int     `json:"activeMaintainers"`
	TopContributorShare  float64 `json:"topContributorShare"`
	IssuesPerMaintainer  float64 `json:"issuesPerMaintainer"`
	DaysSinceUpdate      int     `json:"daysSinceUpdate"`
	AverageIssueComments float64 `json:"averageIssueComments"`
	ResponsivenessScore  float64 `json:"responsivenessScore"`
	BusFactorRisk        string  `json:"busFactorRisk"`
}
