package model

import (
	"strings"
	"time"
)

// MaxHistory bounds the viewed, bookmarked and contributed lists.
const MaxHistory = 100

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// Rank orders skill levels so adjacent levels can be detected.
func (s SkillLevel) Rank() int {
	switch s {
	case SkillIntermediate:
		return 1
	case SkillAdvanced:
		return 2
	default:
		return 0
	}
}

type UserPreferences struct {
	UserID      string     `json:"userId"`
	Languages   []string   `json:"languages"`
	Interests   []string   `json:"interests"`
	SkillLevel  SkillLevel `json:"skillLevel"`
	Viewed      []int64    `json:"viewed"`
	Bookmarked  []int64    `json:"bookmarked"`
	Contributed []int64    `json:"contributed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Profile is the user-editable part of UserPreferences.
type Profile struct {
	Languages  []string   `json:"languages"`
	Interests  []string   `json:"interests"`
	SkillLevel SkillLevel `json:"skillLevel"`
}

// DefaultPreferences is the record created on first access.
func DefaultPreferences(userID string, now time.Time) UserPreferences {
	return UserPreferences{
		UserID:      userID,
		Languages:   []string{},
		Interests:   []string{},
		SkillLevel:  SkillBeginner,
		Viewed:      []int64{},
		Bookmarked:  []int64{},
		Contributed: []int64{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsColdStart is true when the user has told us nothing to rank by.
func (p UserPreferences) IsColdStart() bool {
	return len(p.Languages) == 0 && len(p.Interests) == 0
}

func (p UserPreferences) HasViewed(id int64) bool      { return containsID(p.Viewed, id) }
func (p UserPreferences) HasBookmarked(id int64) bool  { return containsID(p.Bookmarked, id) }
func (p UserPreferences) HasContributed(id int64) bool { return containsID(p.Contributed, id) }

// PrefersLanguage compares case-insensitively.
func (p UserPreferences) PrefersLanguage(language string) bool {
	if language == "" {
		return false
	}
	for _, l := range p.Languages {
		if strings.EqualFold(l, language) {
			return true
		}
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// PushHistory moves id to the most recent position and evicts the oldest entries beyond max.
func PushHistory(ids []int64, id int64, max int) []int64 {
	out := make([]int64, 0, len(ids)+1)
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	out = append(out, id)
	if len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}

// BoundHistory removes duplicates, keeping each id at its latest position, and keeps only
// the newest max entries. It never returns nil.
func BoundHistory(ids []int64, max int) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for i := len(ids) - 1; i >= 0 && len(out) < max; i-- {
		if _, ok := seen[ids[i]]; ok {
			continue
		}
		seen[ids[i]] = struct{}{}
		out = append(out, ids[i])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// RemoveHistory drops id from ids.
func RemoveHistory(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
