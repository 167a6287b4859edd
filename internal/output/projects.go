package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/scoring"
	"github.com/thep200/oss-finder/internal/search"
)

const descriptionWidth = 60

// JSON writes v indented.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Score renders a 0-1 score colored by strength.
func Score(s float64) string {
	text := fmt.Sprintf("%.2f", s)
	switch {
	case s >= 0.7:
		return StyleSuccess.Render(text)
	case s >= 0.4:
		return StyleWarning.Render(text)
	default:
		return StyleMuted.Render(text)
	}
}

// Updated renders a timestamp relative to now, e.g. "3 days ago".
func Updated(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

func stars(n int) string {
	return humanize.Comma(int64(n))
}

func TrendingTable(projects []model.TrendingProject, now time.Time) *Table {
	t := NewTable("#", "PROJECT", "LANGUAGE", "STARS", "SCORE", "UPDATED", "WHY")
	for i, tp := range projects {
		t.AddRow(
			fmt.Sprint(i+1),
			StyleBold.Render(tp.Project.FullName),
			orDash(tp.Project.Language),
			stars(tp.Project.Stars),
			Score(tp.Score),
			Updated(tp.Project.UpdatedAt, now),
			scoring.DescribeTrending(tp),
		)
	}
	return t
}

func SearchTable(results []search.Result, now time.Time) *Table {
	t := NewTable("#", "PROJECT", "LANGUAGE", "STARS", "SCORE", "UPDATED", "DESCRIPTION")
	for i, r := range results {
		t.AddRow(
			fmt.Sprint(i+1),
			StyleBold.Render(r.Project.FullName),
			orDash(r.Project.Language),
			stars(r.Project.Stars),
			Score(r.Score),
			Updated(r.Project.UpdatedAt, now),
			model.TruncateString(r.Project.Description, descriptionWidth),
		)
	}
	return t
}

func RecommendationTable(recs []model.RecommendedProject) *Table {
	t := NewTable("#", "PROJECT", "LANGUAGE", "STARS", "SCORE", "REASONS")
	for i, r := range recs {
		reasons := make([]string, 0, len(r.Reasons))
		for _, reason := range r.Reasons {
			reasons = append(reasons, reason.Type)
		}
		t.AddRow(
			fmt.Sprint(i+1),
			StyleBold.Render(r.Project.FullName),
			orDash(r.Project.Language),
			stars(r.Project.Stars),
			Score(r.Score),
			strings.Join(reasons, ", "),
		)
	}
	return t
}

// Summary is a one-line "label: value" list, values in bold.
func Summary(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, StyleMuted.Render(pairs[i]+":")+" "+StyleBold.Render(pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
