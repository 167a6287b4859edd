package app

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/output"
	"github.com/thep200/oss-finder/internal/scoring"
	"github.com/thep200/oss-finder/internal/search"
)

var (
	searchFlagLanguages []string
	searchFlagTopics    []string
	searchFlagMinStars  int
	searchFlagMaxStars  int
	searchFlagGoodFirst bool
	searchFlagLimit     int
	searchFlagUser      string

	recommendFlagUser  string
	recommendFlagLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search the catalog by meaning, not just keywords",
	Long: `Search expands query words through synonyms and topic clusters ("frontend" also
matches react and vue projects) and ranks the catalog. Filters lower a project's score
instead of hiding it.`,
	RunE: runSearch,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Show personal recommendations for a user",
	RunE:  runRecommend,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchFlagLanguages, "language", nil, "Preferred languages (can be repeated)")
	searchCmd.Flags().StringSliceVar(&searchFlagTopics, "topic", nil, "Preferred topics (can be repeated)")
	searchCmd.Flags().IntVar(&searchFlagMinStars, "min-stars", 0, "Prefer projects with at least this many stars")
	searchCmd.Flags().IntVar(&searchFlagMaxStars, "max-stars", 0, "Prefer projects with at most this many stars")
	searchCmd.Flags().BoolVar(&searchFlagGoodFirst, "good-first-issue", false, "Prefer projects with good first issues")
	searchCmd.Flags().IntVar(&searchFlagLimit, "limit", 10, "Maximum results to show")
	searchCmd.Flags().StringVar(&searchFlagUser, "user", "", "Record the query in this user's search history")
	rootCmd.AddCommand(searchCmd)

	recommendCmd.Flags().StringVar(&recommendFlagUser, "user", "", "User id whose preferences to use")
	recommendCmd.Flags().IntVar(&recommendFlagLimit, "limit", 10, "Maximum projects to show")
	rootCmd.AddCommand(recommendCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	finder, err := newFinder(ctx, false)
	if err != nil {
		return err
	}
	defer finder.Close()

	projects, err := finder.Catalog.Projects(ctx)
	if err != nil {
		return err
	}

	q := search.Query{
		Text:           strings.Join(args, " "),
		Languages:      searchFlagLanguages,
		Topics:         searchFlagTopics,
		MinStars:       searchFlagMinStars,
		MaxStars:       searchFlagMaxStars,
		GoodFirstIssue: searchFlagGoodFirst,
		Limit:          searchFlagLimit,
	}
	now := time.Now()
	results := search.Search(projects, q, now)

	if searchFlagUser != "" && q.Text != "" {
		if _, err := finder.History.Record(ctx, searchFlagUser, q.Text); err != nil {
			finder.Logger.Warn(ctx, "[SEARCH] Failed to record history: %v", err)
		}
		if _, err := finder.Achievements.Increment(ctx, searchFlagUser, model.MetricSearches, 1); err != nil {
			finder.Logger.Warn(ctx, "[SEARCH] Failed to count search: %v", err)
		}
	}

	return render(cmd.OutOrStdout(), results, func() string {
		if len(results) == 0 {
			suggestions := search.Suggest(lastWord(q.Text), projects, 5)
			msg := "No matches."
			if len(suggestions) > 0 {
				msg += " Try: " + strings.Join(suggestions, ", ")
			}
			return output.StyleMuted.Render(msg) + "\n"
		}
		return output.SearchTable(results, now).Render()
	})
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	finder, err := newFinder(ctx, false)
	if err != nil {
		return err
	}
	defer finder.Close()

	prefs := model.DefaultPreferences(recommendFlagUser, time.Now())
	if recommendFlagUser != "" {
		if prefs, err = finder.Preferences.Get(ctx, recommendFlagUser); err != nil {
			return err
		}
	}
	projects, err := finder.Catalog.Projects(ctx)
	if err != nil {
		return err
	}
	recs := scoring.Recommend(projects, prefs, recommendFlagLimit)

	return render(cmd.OutOrStdout(), recs, func() string {
		title := "Recommended for " + recommendFlagUser
		if prefs.IsColdStart() {
			title = "Popular projects to start with"
		}
		return output.StyleHeader.Render(title) + "\n\n" + output.RecommendationTable(recs).Render()
	})
}

func lastWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
