package app

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/thep200/oss-finder/internal/output"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Refresh the project catalog once",
	Long: `Crawl pages through the configured GitHub search and stores the resulting catalog.
When GitHub cannot be reached the bundled fallback dataset is stored instead.`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	finder, err := newFinder(ctx, false)
	if err != nil {
		return err
	}
	defer finder.Close()

	start := time.Now()
	status, err := finder.Catalog.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refreshing catalog: %w", err)
	}

	return render(cmd.OutOrStdout(), status, func() string {
		return output.Summary(
			"projects", humanize.Comma(int64(status.Count)),
			"source", status.Source,
			"took", time.Since(start).Round(time.Millisecond).String(),
		) + "\n"
	})
}
