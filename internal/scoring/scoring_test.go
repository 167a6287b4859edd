package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/oss-finder/internal/model"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func project(id int64, language string, topics []string, stars, forks int) model.Project {
	return model.Project{
		ID:        id,
		FullName:  "acme/p",
		Language:  language,
		Topics:    topics,
		Stars:     stars,
		Forks:     forks,
		CreatedAt: now.AddDate(-2, 0, 0),
		UpdatedAt: now.AddDate(0, 0, -2),
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"fast", "c++", "library", "for", "go", "c#"}, Tokenize("A fast C++ library, for Go & C#!"))
	assert.Equal(t, map[string]struct{}{"fast": {}, "c++": {}}, Keywords("A fast C++ library, for Go"))
	assert.Empty(t, Tokenize("++ ## a b"))
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard(SetOf(nil), SetOf(nil)))
	assert.Equal(t, 1.0, Jaccard(SetOf([]string{"a"}), SetOf([]string{"a"})))
	assert.InDelta(t, 1.0/3, Jaccard(SetOf([]string{"web", "ui"}), SetOf([]string{"web", "api"})), 1e-9)
}

func TestTopicSimilarity_Symmetric(t *testing.T) {
	pairs := [][2][]string{
		{{"web", "ui"}, {"web", "api"}},
		{{"cli"}, {}},
		{{"go", "kafka", "streaming"}, {"kafka"}},
	}
	for _, pair := range pairs {
		a := project(1, "Go", pair[0], 10, 1)
		b := project(2, "Go", pair[1], 10, 1)
		assert.Equal(t, TopicSimilarity(a, b), TopicSimilarity(b, a))
	}
}

func TestRelatedLanguage(t *testing.T) {
	assert.True(t, RelatedLanguage("JavaScript", "TypeScript"))
	assert.True(t, RelatedLanguage("TypeScript", "JavaScript"))
	assert.False(t, RelatedLanguage("Go", "Go"))
	assert.False(t, RelatedLanguage("Go", "PHP"))
}

func TestSimilarity_JavaScriptPair(t *testing.T) {
	a := project(1, "JavaScript", []string{"web", "ui"}, 1000, 100)
	b := project(2, "JavaScript", []string{"web", "api"}, 1200, 90)

	s := Similarity(a, b, now)
	assert.Greater(t, s.Score, MinSimilarity)
	require.NotEmpty(t, s.Reasons)
	assert.Equal(t, "language", s.Reasons[0].Type)
	for i := 1; i < len(s.Reasons); i++ {
		assert.GreaterOrEqual(t, s.Reasons[i-1].Weight, s.Reasons[i].Weight)
	}
}

func TestFindSimilar_ExcludesSelfAndWeakMatches(t *testing.T) {
	source := project(1, "Go", []string{"cli", "devops"}, 500, 50)
	unrelated := project(3, "PHP", []string{"wordpress"}, 5, 0)
	unrelated.UpdatedAt = now.AddDate(-3, 0, 0)
	candidates := []model.Project{
		source,
		project(2, "Go", []string{"cli"}, 400, 40),
		unrelated,
		project(4, "Rust", []string{"cli", "devops"}, 700, 30),
	}

	got := FindSimilar(source, candidates, 10, now)
	ids := make([]int64, 0, len(got))
	for _, s := range got {
		ids = append(ids, s.Project.ID)
		assert.Greater(t, s.Score, MinSimilarity)
		assert.LessOrEqual(t, s.Score, 1.0)
	}
	assert.NotContains(t, ids, int64(1))
	assert.NotContains(t, ids, int64(3))
	assert.Len(t, ids, 2)

	assert.Len(t, FindSimilar(source, candidates, 1, now), 1)
}

func TestRecommend_ColdStart(t *testing.T) {
	prefs := model.DefaultPreferences("u1", now)
	projects := []model.Project{
		project(1, "Go", nil, 10, 1),
		project(2, "Go", nil, 5000, 100),
		project(3, "Go", nil, 300, 10),
	}

	got := Recommend(projects, prefs, 2)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].Project.ID)
	assert.Equal(t, 1.0, got[0].Score)
	assert.Equal(t, int64(3), got[1].Project.ID)
	for _, r := range got {
		require.Len(t, r.Reasons, 1)
		assert.Equal(t, "trending", r.Reasons[0].Type)
		assert.Equal(t, ColdStartConfidence, r.Reasons[0].Weight)
	}
}

func TestRecommend_Personalized(t *testing.T) {
	prefs := model.DefaultPreferences("u1", now)
	prefs.Languages = []string{"go"}
	prefs.Interests = []string{"cli"}
	prefs.Viewed = []int64{3, 4}
	prefs.Bookmarked = []int64{4}

	projects := []model.Project{
		project(1, "Python", []string{"ml"}, 100, 10),
		project(2, "Go", []string{"cli-tools"}, 100, 10),
		project(3, "Go", []string{"cli"}, 100, 10),
		project(4, "Go", []string{"cli"}, 100, 10),
	}

	got := Recommend(projects, prefs, 0)
	ids := []int64{}
	for _, r := range got {
		ids = append(ids, r.Project.ID)
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
	assert.NotContains(t, ids, int64(3), "viewed and not bookmarked")
	require.Len(t, got, 3)
	assert.Equal(t, int64(4), got[0].Project.ID, "bookmarked project gets the history bonus")
	assert.Equal(t, int64(2), got[1].Project.ID)
	assert.Equal(t, int64(1), got[2].Project.ID)
}

func TestEstimateDifficulty(t *testing.T) {
	assert.Equal(t, model.SkillBeginner, EstimateDifficulty(project(1, "Go", nil, 100, 10)))
	assert.Equal(t, model.SkillIntermediate, EstimateDifficulty(project(1, "Go", nil, 3000, 10)))
	assert.Equal(t, model.SkillAdvanced, EstimateDifficulty(project(1, "Go", nil, 100, 6000)))
	assert.Equal(t, 0.5, DifficultyMatch(project(1, "Go", nil, 3000, 10), model.SkillBeginner))
	assert.Equal(t, 0.0, DifficultyMatch(project(1, "Go", nil, 30000, 10), model.SkillBeginner))
}

func TestTrendingScore_YoungPopularProjectIsRecentRelease(t *testing.T) {
	p := project(1, "TypeScript", []string{"ai"}, 5000, 50)
	p.OpenIssues = 5
	p.CreatedAt = now.AddDate(0, 0, -10)
	p.UpdatedAt = now.Add(-2 * time.Hour)

	score, reason, growth := TrendingScore(p, model.TimeframeWeekly, now)
	assert.Equal(t, model.TrendingRecentRelease, reason)
	assert.Equal(t, 10.0, growth.AgeDays)
	assert.Equal(t, 500.0, growth.StarsPerDay)
	assert.Equal(t, 3500, growth.EstimatedStarsGained)
	assert.Greater(t, score, MinTrendingScore)
	assert.LessOrEqual(t, score, 1.0)
}

func TestTrendingScore_Reasons(t *testing.T) {
	established := project(1, "Go", nil, 20000, 100)
	established.CreatedAt = now.AddDate(0, 0, -200)
	_, reason, _ := TrendingScore(established, model.TimeframeWeekly, now)
	assert.Equal(t, model.TrendingRapidGrowth, reason)

	dormant := project(2, "Go", nil, 50, 1)
	dormant.UpdatedAt = now.AddDate(-1, 0, 0)
	_, reason, _ = TrendingScore(dormant, model.TimeframeWeekly, now)
	assert.Equal(t, model.TrendingSeasonal, reason)

	steady := project(3, "Go", nil, 50, 1)
	_, reason, _ = TrendingScore(steady, model.TimeframeWeekly, now)
	assert.Equal(t, model.TrendingConsistentActivity, reason)

	busy := project(4, "Go", nil, 100, 100)
	busy.OpenIssues = 80
	_, reason, _ = TrendingScore(busy, model.TimeframeWeekly, now)
	assert.Equal(t, model.TrendingCommunityBuzz, reason)
}

func TestTrending_FiltersAndBounds(t *testing.T) {
	hot := project(1, "Go", nil, 5000, 400)
	hot.CreatedAt = now.AddDate(0, 0, -20)
	cold := project(2, "Go", nil, 3, 0)
	cold.UpdatedAt = now.AddDate(-2, 0, 0)
	archived := hot
	archived.ID = 3
	archived.Archived = true

	for _, tf := range []model.Timeframe{model.TimeframeDaily, model.TimeframeWeekly, model.TimeframeMonthly} {
		got := Trending([]model.Project{hot, cold, archived}, tf, 10, now)
		for _, tp := range got {
			assert.GreaterOrEqual(t, tp.Score, MinTrendingScore)
			assert.LessOrEqual(t, tp.Score, 1.0)
			assert.NotEqual(t, int64(3), tp.Project.ID)
			assert.Equal(t, tf, tp.Timeframe)
		}
	}

	all := TrendingAll([]model.Project{hot, cold}, model.TimeframeWeekly, 0, now)
	require.Len(t, all, 2)
	assert.Equal(t, int64(1), all[0].Project.ID)
}
