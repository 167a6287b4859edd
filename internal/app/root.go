// Package app contains the Cobra command tree for ossfinder.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thep200/oss-finder/api"
	"github.com/thep200/oss-finder/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagConfig   string
	flagNoColor  bool
	flagJSON     bool
	flagMock     bool
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "ossfinder",
	Short: "Find open-source projects worth contributing to",
	Long: `ossfinder ranks GitHub projects for contributors: semantic search, trending lists,
personal recommendations and achievements, served as a JSON API or printed here.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		output.ConfigureColor(flagNoColor, os.Stdout)
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: cfg/yaml/mode.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagMock, "mock", false, "Use built-in defaults instead of a config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
}

// newFinder initializes the composition root for one command. watch keeps the config
// file under fsnotify for long-running commands.
func newFinder(ctx context.Context, watch bool) (*api.FinderAPI, error) {
	finder := api.NewFinderAPI()
	err := finder.Initialize(ctx, api.Options{
		ConfigPath: flagConfig,
		Mock:       flagMock,
		Watch:      watch,
		LogLevel:   flagLogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing: %w", err)
	}
	return finder, nil
}

// render prints v as JSON under --json, otherwise calls text.
func render(w io.Writer, v interface{}, text func() string) error {
	if flagJSON {
		return output.JSON(w, v)
	}
	_, err := fmt.Fprint(w, text())
	return err
}
