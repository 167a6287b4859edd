package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thep200/oss-finder/internal/crawler"
)

var serveFlagShutdownTimeout time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with scheduled catalog refreshes",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveFlagShutdownTimeout, "shutdown-timeout", 15*time.Second, "Grace period for in-flight requests")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finder, err := newFinder(ctx, true)
	if err != nil {
		return err
	}
	defer finder.Close()
	logger := finder.Logger

	scheduler := crawler.NewScheduler(logger)
	err = scheduler.Schedule(finder.Config.Catalog.RefreshCron, "catalog-refresh", func(ctx context.Context) error {
		_, err := finder.Catalog.Refresh(ctx)
		return err
	})
	if err != nil {
		return err
	}
	scheduler.Start()

	server := finder.Server()
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		logger.Info(context.Background(), "[SERVE] Received shutdown signal, gracefully shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serveFlagShutdownTimeout)
	defer cancel()
	return errors.Join(err, server.Stop(shutdownCtx), scheduler.Stop(shutdownCtx))
}
