package model

import "time"

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Metric is the counter an achievement tracks.
type Metric string

const (
	MetricContributions Metric = "totalContributions"
	MetricBookmarks     Metric = "totalBookmarks"
	MetricViews         Metric = "totalViews"
	MetricSearches      Metric = "totalSearches"
	MetricShares        Metric = "totalShares"
	MetricLanguages     Metric = "languagesExplored"
	MetricStreak        Metric = "currentStreak"
)

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Rarity      Rarity `json:"rarity"`
	Metric      Metric `json:"metric"`
	MaxProgress int    `json:"maxProgress"`
	Experience  int    `json:"experience"`
}

type UserAchievement struct {
	Achievement
	Progress   int        `json:"progress"`
	IsUnlocked bool       `json:"isUnlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// State is locked, in_progress or unlocked.
func (a UserAchievement) State() string {
	switch {
	case a.IsUnlocked:
		return "unlocked"
	case a.Progress > 0:
		return "in_progress"
	default:
		return "locked"
	}
}

type UserStats struct {
	UserID              string         `json:"userId"`
	Level               int            `json:"level"`
	Experience          int            `json:"experience"`
	NextLevelExperience int            `json:"nextLevelExperience"`
	CurrentStreak       int            `json:"currentStreak"`
	LongestStreak       int            `json:"longestStreak"`
	UnlockedCount       int            `json:"unlockedCount"`
	LastActive          time.Time      `json:"lastActive"`
	Counters            map[Metric]int `json:"counters"`
	Languages           []string       `json:"languages"`
}

// ProgressUpdate reports what a progress change did.
type ProgressUpdate struct {
	Unlocked  []UserAchievement `json:"unlocked"`
	LeveledUp bool              `json:"leveledUp"`
	OldLevel  int               `json:"oldLevel"`
	NewLevel  int               `json:"newLevel"`
	Stats     UserStats         `json:"stats"`
}
