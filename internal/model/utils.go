package model

import (
	"math"
	"time"
	"unicode/utf8"
)

// TruncateString cuts s to at most maxLength bytes without splitting a rune.
func TruncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	cut := s[:maxLength]
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}

// DaysBetween returns the whole days from then to now, never negative.
func DaysBetween(then, now time.Time) float64 {
	if then.IsZero() || now.Before(then) {
		return 0
	}
	return math.Floor(now.Sub(then).Hours() / 24)
}
