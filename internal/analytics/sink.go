package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thep200/oss-finder/internal/model"
	"github.com/thep200/oss-finder/pkg/kafka"
	"github.com/thep200/oss-finder/pkg/log"
)

// Sink accepts events from the API. DirectSink counts them in-process; KafkaSink hands
// them to the consume command through a topic.
type Sink interface {
	Record(ctx context.Context, event model.Event) error
	Close() error
}

type DirectSink struct {
	engine *Engine
}

func NewDirectSink(engine *Engine) *DirectSink {
	return &DirectSink{engine: engine}
}

func (s *DirectSink) Record(ctx context.Context, event model.Event) error {
	return s.engine.Apply(ctx, event)
}

func (s *DirectSink) Close() error { return nil }

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
	Close() error
}

type KafkaSink struct {
	Logger    log.Logger
	publisher Publisher
	now       func() time.Time
}

func NewKafkaSink(logger log.Logger, publisher Publisher) *KafkaSink {
	return &KafkaSink{Logger: logger, publisher: publisher, now: time.Now}
}

// Record validates and publishes the event keyed by its type.
func (s *KafkaSink) Record(ctx context.Context, event model.Event) error {
	if err := Validate(event); err != nil {
		return err
	}
	if event.At.IsZero() {
		event.At = s.now()
	}
	if err := s.publisher.Publish(ctx, string(event.Type), event); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}
	return nil
}

func (s *KafkaSink) Close() error {
	return s.publisher.Close()
}

// Batcher applies consumed events in batches, flushing when a batch is full or the
// timeout passes.
type Batcher struct {
	Logger  log.Logger
	engine  *Engine
	size    int
	timeout time.Duration
	events  chan model.Event
}

func NewBatcher(logger log.Logger, engine *Engine, size int, timeout time.Duration) *Batcher {
	if size <= 0 {
		size = 100
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Batcher{
		Logger:  logger,
		engine:  engine,
		size:    size,
		timeout: timeout,
		events:  make(chan model.Event, size*2),
	}
}

// Register wires a handler for every event type into consumer.
func (b *Batcher) Register(consumer *kafka.Consumer) {
	for _, t := range []model.EventType{model.EventView, model.EventBookmark, model.EventShare, model.EventSession} {
		consumer.RegisterHandler(string(t), b.Handle)
	}
}

// Handle decodes one message and queues it for the next batch.
func (b *Batcher) Handle(ctx context.Context, value []byte) error {
	var event model.Event
	if err := json.Unmarshal(value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if err := Validate(event); err != nil {
		return err
	}
	select {
	case b.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run flushes batches until ctx is cancelled, then flushes what is left.
func (b *Batcher) Run(ctx context.Context) {
	var batch []model.Event
	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			b.drain(&batch)
			b.flush(context.Background(), batch)
			return

		case event := <-b.events:
			batch = append(batch, event)
			if len(batch) >= b.size {
				b.flush(ctx, batch)
				batch = nil
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(b.timeout)
			}

		case <-timer.C:
			if len(batch) > 0 {
				b.flush(ctx, batch)
				batch = nil
			}
			timer.Reset(b.timeout)
		}
	}
}

func (b *Batcher) drain(batch *[]model.Event) {
	for {
		select {
		case event := <-b.events:
			*batch = append(*batch, event)
		default:
			return
		}
	}
}

func (b *Batcher) flush(ctx context.Context, batch []model.Event) {
	if len(batch) == 0 {
		return
	}
	failed := 0
	for _, event := range batch {
		if err := b.engine.Apply(ctx, event); err != nil {
			failed++
			b.Logger.Error(ctx, "[ANALYTICS] Failed to apply %s event for %s: %v", event.Type, event.UserID, err)
		}
	}
	b.Logger.Info(ctx, "[ANALYTICS] Applied batch of %d events (%d failed)", len(batch), failed)
}
