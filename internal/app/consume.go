package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thep200/oss-finder/internal/analytics"
)

var (
	consumeFlagBatchSize    int
	consumeFlagBatchTimeout time.Duration
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Apply analytics events from Kafka",
	Long: `Consume reads the analytics topic the API publishes to when kafka.enabled is set and
applies the events to the analytics counters in batches.`,
	RunE: runConsume,
}

func init() {
	consumeCmd.Flags().IntVar(&consumeFlagBatchSize, "batch-size", 100, "Events applied per batch")
	consumeCmd.Flags().DurationVar(&consumeFlagBatchTimeout, "batch-timeout", 5*time.Second, "Flush a partial batch after this long")
	rootCmd.AddCommand(consumeCmd)
}

func runConsume(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	finder, err := newFinder(ctx, true)
	if err != nil {
		return err
	}
	defer finder.Close()

	consumer, err := finder.NewConsumer()
	if err != nil {
		return err
	}
	defer consumer.Close()

	batcher := analytics.NewBatcher(finder.Logger, finder.Analytics, consumeFlagBatchSize, consumeFlagBatchTimeout)
	batcher.Register(consumer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		batcher.Run(ctx)
	}()

	finder.Logger.Info(ctx, "[CONSUME] Consuming %s as %s", finder.Config.Kafka.Producer.TopicEvents, finder.Config.Kafka.GroupID)
	err = consumer.Start(ctx)
	stop()
	<-done
	finder.Logger.Info(context.Background(), "[CONSUME] Stopped")
	return err
}
