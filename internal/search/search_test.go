package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/store"
	"github.com/thep200/oss-finder/pkg/log"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func catalog() []model.Project {
	projects := []model.Project{
		{ID: 1, FullName: "acme/widgets", Language: "JavaScript", Topics: []string{"ui"}, Stars: 300, Description: "Reusable widgets"},
		{ID: 2, FullName: "acme/hooks", Language: "TypeScript", Topics: []string{"react"}, Stars: 900, Description: "State helpers"},
		{ID: 3, FullName: "acme/queue", Language: "Go", Topics: []string{"kafka", "messaging"}, Stars: 1200, Description: "Durable job queue"},
		{ID: 4, FullName: "acme/ledger", Language: "Rust", Topics: []string{"database"}, Stars: 50, Description: "Append only storage engine"},
	}
	for i := range projects {
		projects[i].UpdatedAt = now.AddDate(0, 0, -3)
		projects[i].CreatedAt = now.AddDate(-1, 0, 0)
		projects[i] = projects[i].Normalize()
	}
	return projects
}

func ids(results []Result) []int64 {
	out := make([]int64, 0, len(results))
	for _, r := range results {
		out = append(out, r.Project.ID)
	}
	return out
}

func TestQueryTokens(t *testing.T) {
	assert.Equal(t, []string{"fast", "go", "queue"}, QueryTokens("a Fast, GO queue; go!"))
	assert.Empty(t, QueryTokens("a is of"))
}

func TestExpand(t *testing.T) {
	terms := Expand("frontend")
	assert.Equal(t, "frontend", terms[0])
	assert.Contains(t, terms, "ui")
	assert.Contains(t, terms, "react")
	assert.Equal(t, []string{"unknownword"}, Expand("unknownword"))
}

func TestSearch_FrontendMatchesClusterTopics(t *testing.T) {
	got := Search(catalog(), Query{Text: "frontend"}, now)
	assert.ElementsMatch(t, []int64{1, 2}, ids(got))
	for _, r := range got {
		assert.GreaterOrEqual(t, r.Score, MinScore)
		assert.LessOrEqual(t, r.Score, 1.0)
		assert.NotEmpty(t, r.Matched)
	}
}

func TestSearch_NameBeatsDescription(t *testing.T) {
	got := Search(catalog(), Query{Text: "queue"}, now)
	require.NotEmpty(t, got)
	assert.Equal(t, int64(3), got[0].Project.ID)
}

func TestSearch_FiltersArePenalties(t *testing.T) {
	projects := catalog()
	plain, _ := Score(projects[2], Query{Text: "queue"}, now)
	filtered, _ := Score(projects[2], Query{Text: "queue", Languages: []string{"python"}}, now)
	assert.Less(t, filtered, plain)
	assert.Greater(t, filtered, 0.0)

	stars, _ := Score(projects[2], Query{Text: "queue", MaxStars: 100}, now)
	assert.Less(t, stars, plain)
	assert.Greater(t, stars, filtered)
}

func TestSearch_EmptyQueryBrowses(t *testing.T) {
	got := Search(catalog(), Query{Limit: 2}, now)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].Project.ID, "popularity boost decides equal text scores")
}

func TestSearch_NoMatch(t *testing.T) {
	assert.Empty(t, Search(catalog(), Query{Text: "blockchainless zzz"}, now))
}

func TestSuggest(t *testing.T) {
	got := Suggest("re", catalog(), 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "react", got[0])
	for _, s := range got {
		assert.Regexp(t, "^re", s)
	}
	assert.Empty(t, Suggest("  ", catalog(), 5))
}

func TestHistory_RecordDedupesAndBounds(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(log.NewNopLogger(), store.NewMemory(), 3)
	h.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		_, err := h.Record(ctx, "u1", fmt.Sprintf("query %d", i))
		require.NoError(t, err)
	}
	got, err := h.Record(ctx, "u1", "  QUERY   2 ")
	require.NoError(t, err)

	queries := []string{}
	for _, e := range got {
		queries = append(queries, e.Query)
	}
	assert.Equal(t, []string{"QUERY 2", "query 4", "query 3"}, queries)

	listed, err := h.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, got, listed)

	empty, err := h.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, h.Clear(ctx, "u1"))
	cleared, err := h.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cleared)
}
