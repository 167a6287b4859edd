// Package scoring ranks projects. The similarity, recommendation and trending scorers are
// pure functions of their arguments: the current time is passed in, nothing is cached and
// nothing is written. Every score is a weighted sum clamped to [0,1].
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/thep200/oss-finder/internal/model"
)

// Clamp bounds v to [lo, hi]. NaN becomes lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Round rounds to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

var relatedLanguages = map[string][]string{
	"javascript":  {"typescript", "coffeescript", "html", "vue", "svelte"},
	"typescript":  {"javascript", "vue", "svelte"},
	"c":           {"c++", "objective-c", "zig"},
	"c++":         {"c", "rust", "objective-c"},
	"c#":          {"f#", "visual basic .net", "java"},
	"java":        {"kotlin", "scala", "groovy", "c#"},
	"kotlin":      {"java", "scala"},
	"scala":       {"java", "kotlin"},
	"python":      {"jupyter notebook", "cython"},
	"go":          {"rust"},
	"rust":        {"go", "c++", "c"},
	"ruby":        {"crystal", "elixir"},
	"elixir":      {"erlang", "ruby"},
	"erlang":      {"elixir"},
	"swift":       {"objective-c"},
	"objective-c": {"swift", "c"},
	"html":        {"css", "javascript"},
	"css":         {"scss", "html"},
	"scss":        {"css"},
	"php":         {"hack"},
	"shell":       {"powershell"},
	"haskell":     {"purescript", "elm"},
	"dart":        {"kotlin", "swift"},
}

// RelatedLanguage reports whether a and b are different but related languages.
func RelatedLanguage(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" || a == b {
		return false
	}
	for _, r := range relatedLanguages[a] {
		if r == b {
			return true
		}
	}
	for _, r := range relatedLanguages[b] {
		if r == a {
			return true
		}
	}
	return false
}

func sortReasons(reasons []model.Reason) {
	sort.SliceStable(reasons, func(i, j int) bool {
		return reasons[i].Weight > reasons[j].Weight
	})
}

func log10p(v int) float64 {
	if v < 0 {
		v = 0
	}
	return math.Log10(float64(v) + 1)
}
