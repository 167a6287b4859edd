package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/scoring"
)

// EngagementScore is 0-100: views*2 + bookmarks*5 + shares*8 + average session minutes*3.
func EngagementScore(c model.UserCounters) model.EngagementMetrics {
	m := model.EngagementMetrics{
		UserID:    c.UserID,
		Views:     c.Views,
		Bookmarks: c.Bookmarks,
		Shares:    c.Shares,
		Sessions:  c.Sessions,
	}
	if c.Sessions > 0 {
		m.AverageSessionMinutes = scoring.Round(float64(c.TotalDurationMs)/float64(c.Sessions)/60000, 2)
	}
	if c.Views > 0 {
		m.BookmarkConversionRate = scoring.Round(scoring.Clamp01(float64(c.Bookmarks)/float64(c.Views)), 4)
	}
	raw := float64(c.Views)*2 + float64(c.Bookmarks)*5 + float64(c.Shares)*8 + m.AverageSessionMinutes*3
	m.EngagementScore = scoring.Round(scoring.Clamp(raw, 0, 100), 2)
	return m
}

// ContributionScore is 0-100 from contributions, bookmarks, views and languages explored.
func ContributionScore(prefs model.UserPreferences, stats model.UserStats) model.ContributionMetrics {
	m := model.ContributionMetrics{
		UserID:             prefs.UserID,
		ProjectsViewed:     len(prefs.Viewed),
		ProjectsBookmarked: len(prefs.Bookmarked),
		Contributions:      len(prefs.Contributed),
		Languages:          stats.Languages,
		Level:              stats.Level,
		Experience:         stats.Experience,
	}
	if m.Languages == nil {
		m.Languages = []string{}
	}
	raw := 15*float64(m.Contributions) + 3*float64(m.ProjectsBookmarked) + float64(m.ProjectsViewed) + 5*float64(len(m.Languages))
	m.ContributionScore = scoring.Round(scoring.Clamp(raw, 0, 100), 2)
	return m
}

// PopularityScore is 0-100, half GitHub reach on a log scale and half in-app interest.
func PopularityScore(p model.Project, c model.ProjectCounters) model.PopularityMetrics {
	github := math.Min(100, math.Log10(float64(p.Stars)+1)*20)
	inApp := math.Min(100, float64(c.Views)+3*float64(c.Bookmarks)+5*float64(c.Shares))
	return model.PopularityMetrics{
		ProjectID:       p.ID,
		Stars:           p.Stars,
		Forks:           p.Forks,
		Views:           c.Views,
		Bookmarks:       c.Bookmarks,
		Shares:          c.Shares,
		UniqueUsers:     len(c.UniqueUsers),
		PopularityScore: scoring.Round(scoring.Clamp(0.5*github+0.5*inApp, 0, 100), 2),
	}
}

// CommunityHealth is 0-100 from documentation, activity and contributor signals, with a
// recommendation for every missing point.
func CommunityHealth(d model.ProjectDetail, now time.Time) model.CommunityHealthMetrics {
	p := d.Project
	m := model.CommunityHealthMetrics{
		ProjectID:        p.ID,
		HasLicense:       p.License != "",
		HasDescription:   p.Description != "",
		HasReadme:        d.Readme != "",
		DaysSinceUpdate:  int(model.DaysBetween(p.UpdatedAt, now)),
		ContributorCount: len(d.Contributors),
		GoodFirstIssues:  len(d.GoodFirstIssues),
		OpenIssues:       p.OpenIssues,
		Recommendations:  []string{},
	}

	score := 0.0
	award := func(ok bool, points float64, advice string) {
		if ok {
			score += points
		} else {
			m.Recommendations = append(m.Recommendations, advice)
		}
	}
	award(m.HasLicense, 15, "Add an open source license")
	award(m.HasDescription, 10, "Add a repository description")
	award(m.HasReadme, 15, "Add a README explaining setup and contribution")

	switch {
	case m.DaysSinceUpdate <= 30:
		score += 20
	case m.DaysSinceUpdate <= 90:
		score += 10
		m.Recommendations = append(m.Recommendations, "Push updates more regularly")
	default:
		m.Recommendations = append(m.Recommendations, "The project looks inactive; publish a roadmap or status")
	}

	switch {
	case m.ContributorCount >= 10:
		score += 15
	case m.ContributorCount >= 3:
		score += 10
	case m.ContributorCount >= 1:
		score += 5
		fallthrough
	default:
		m.Recommendations = append(m.Recommendations, "Grow the contributor base")
	}

	award(m.GoodFirstIssues > 0 || p.HasGoodFirstIssues, 15, "Label beginner friendly issues as good first issue")

	switch {
	case m.OpenIssues <= 50:
		score += 10
	case m.OpenIssues <= 200:
		score += 5
		fallthrough
	default:
		m.Recommendations = append(m.Recommendations, "Triage the open issue backlog")
	}

	m.HealthScore = scoring.Clamp(score, 0, 100)
	return m
}

// activeShare is the share of total contributions that makes a contributor count as an
// active maintainer.
const activeShare = 0.05

// Maintainer estimates maintainer load and responsiveness from the fetched contributors
// and issues.
func Maintainer(d model.ProjectDetail, now time.Time) model.MaintainerMetrics {
	p := d.Project
	m := model.MaintainerMetrics{
		ProjectID:       p.ID,
		DaysSinceUpdate: int(model.DaysBetween(p.UpdatedAt, now)),
	}

	contributions := make([]int, 0, len(d.Contributors))
	total := 0
	for _, c := range d.Contributors {
		contributions = append(contributions, c.Contributions)
		total += c.Contributions
	}
	sort.Sort(sort.Reverse(sort.IntSlice(contributions)))
	if total > 0 {
		m.TopContributorShare = scoring.Round(float64(contributions[0])/float64(total), 4)
		for _, c := range contributions {
			if float64(c)/float64(total) >= activeShare {
				m.ActiveMaintainers++
			}
		}
	}
	m.IssuesPerMaintainer = scoring.Round(float64(p.OpenIssues)/math.Max(1, float64(m.ActiveMaintainers)), 2)

	if len(d.Issues) > 0 {
		comments := 0
		for _, i := range d.Issues {
			comments += i.Comments
		}
		m.AverageIssueComments = scoring.Round(float64(comments)/float64(len(d.Issues)), 2)
	}

	score := 0.0
	switch {
	case m.DaysSinceUpdate <= 7:
		score += 40
	case m.DaysSinceUpdate <= 30:
		score += 30
	case m.DaysSinceUpdate <= 90:
		score += 15
	}
	score += 30 * scoring.Clamp01(m.AverageIssueComments/3)
	switch {
	case m.IssuesPerMaintainer <= 10:
		score += 30
	case m.IssuesPerMaintainer <= 50:
		score += 15
	default:
		score += 5
	}
	m.ResponsivenessScore = scoring.Round(scoring.Clamp(score, 0, 100), 2)

	switch {
	case m.ActiveMaintainers <= 1 || m.TopContributorShare >= 0.8:
		m.BusFactorRisk = "high"
	case m.ActiveMaintainers <= 3 || m.TopContributorShare >= 0.5:
		m.BusFactorRisk = "medium"
	default:
		m.BusFactorRisk = "low"
	}
	return m
}
