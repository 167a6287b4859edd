package app

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/internal/output"
	"github.com/thep200/oss-finder/internal/scoring"
)

var (
	trendingFlagTimeframe string
	trendingFlagLimit     int
	trendingFlagAll       bool
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending projects",
	RunE:  runTrending,
}

func init() {
	trendingCmd.Flags().StringVar(&trendingFlagTimeframe, "timeframe", "weekly", "daily, weekly or monthly")
	trendingCmd.Flags().IntVar(&trendingFlagLimit, "limit", 10, "Maximum projects to show")
	trendingCmd.Flags().BoolVar(&trendingFlagAll, "all", false, "Include projects under the trending threshold")
	rootCmd.AddCommand(trendingCmd)
}

func runTrending(cmd *cobra.Command, args []string) error {
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

	now := time.Now()
	tf := model.ParseTimeframe(trendingFlagTimeframe)
	rank := scoring.Trending
	if trendingFlagAll {
		rank = scoring.TrendingAll
	}
	trending := rank(projects, tf, trendingFlagLimit, now)

	return render(cmd.OutOrStdout(), trending, func() string {
		if len(trending) == 0 {
			return output.StyleMuted.Render("No trending projects "+string(tf)+"; try --all.") + "\n"
		}
		return output.StyleHeader.Render("Trending ("+string(tf)+")") + "\n\n" +
			output.TrendingTable(trending, now).Render()
	})
}
