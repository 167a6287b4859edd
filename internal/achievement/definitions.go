package achievement

import (
	"math"

	"github.com/thep200/oss-finder/internal/model"
)

var definitions = []model.Achievement{
	{ID: "first-contribution", Title: "First Steps", Description: "Make your first open source contribution", Rarity: model.RarityCommon, Metric: model.MetricContributions, MaxProgress: 1, Experience: 100},
	{ID: "contributor-5", Title: "Regular Contributor", Description: "Contribute to 5 projects", Rarity: model.RarityUncommon, Metric: model.MetricContributions, MaxProgress: 5, Experience: 250},
	{ID: "contributor-25", Title: "Seasoned Contributor", Description: "Contribute to 25 projects", Rarity: model.RarityRare, Metric: model.MetricContributions, MaxProgress: 25, Experience: 1000},
	{ID: "legend", Title: "Open Source Legend", Description: "Contribute to 100 projects", Rarity: model.RarityLegendary, Metric: model.MetricContributions, MaxProgress: 100, Experience: 5000},
	{ID: "first-bookmark", Title: "Collector", Description: "Bookmark your first project", Rarity: model.RarityCommon, Metric: model.MetricBookmarks, MaxProgress: 1, Experience: 50},
	{ID: "bookmark-collector", Title: "Curator", Description: "Bookmark 10 projects", Rarity: model.RarityUncommon, Metric: model.MetricBookmarks, MaxProgress: 10, Experience: 150},
	{ID: "explorer", Title: "Explorer", Description: "View 25 projects", Rarity: model.RarityCommon, Metric: model.MetricViews, MaxProgress: 25, Experience: 100},
	{ID: "polyglot", Title: "Polyglot", Description: "Explore projects in 3 languages", Rarity: model.RarityUncommon, Metric: model.MetricLanguages, MaxProgress: 3, Experience: 200},
	{ID: "streak-7", Title: "On Fire", Description: "Be active 7 days in a row", Rarity: model.RarityEpic, Metric: model.MetricStreak, MaxProgress: 7, Experience: 300},
	{ID: "search-master", Title: "Search Master", Description: "Run 50 searches", Rarity: model.RarityUncommon, Metric: model.MetricSearches, MaxProgress: 50, Experience: 200},
	{ID: "sharer", Title: "Evangelist", Description: "Share 5 projects", Rarity: model.RarityUncommon, Metric: model.MetricShares, MaxProgress: 5, Experience: 150},
}

// Definitions returns a copy of the achievement table.
func Definitions() []model.Achievement {
	out := make([]model.Achievement, len(definitions))
	copy(out, definitions)
	return out
}

func definition(id string) (model.Achievement, bool) {
	for _, d := range definitions {
		if d.ID == id {
			return d, true
		}
	}
	return model.Achievement{}, false
}

// ExperienceForLevel is the cumulative experience needed to reach level: floor(100*(level-1)^1.5).
// The curve is shifted by one level so that level 1 starts at 0 xp; level L here needs what
// level L-1 needs on the unshifted floor(100*level^1.5) curve.
func ExperienceForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	return int(math.Floor(100 * math.Pow(float64(level-1), 1.5)))
}

// LevelFromExperience is the highest level whose threshold xp reaches. It never decreases
// as xp grows.
func LevelFromExperience(xp int) int {
	level := 1
	for ExperienceForLevel(level+1) <= xp {
		level++
	}
	return level
}
