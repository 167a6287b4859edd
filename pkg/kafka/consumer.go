package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/pkg/log"
)

// Handler processes one message value.
type Handler func(ctx context.Context, value []byte) error

// Reader is the part of kafka.Reader the consumer uses.
type Reader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer dispatches messages from one topic to handlers by message key.
type Consumer struct {
	Config   *cfg.Config
	Logger   log.Logger
	reader   Reader
	topic    string
	handlers map[string]Handler
	fallback Handler
}

func NewConsumer(config *cfg.Config, logger log.Logger, topic, groupID string) (*Consumer, error) {
	if len(config.Kafka.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        config.Kafka.Brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        time.Second,
		StartOffset:    kafka.FirstOffset,
		RetentionTime:  7 * 24 * time.Hour,
		CommitInterval: time.Second,
	})
	return NewConsumerWithReader(config, logger, topic, reader), nil
}

// NewConsumerWithReader wraps an existing reader; tests pass a fake.
func NewConsumerWithReader(config *cfg.Config, logger log.Logger, topic string, reader Reader) *Consumer {
	return &Consumer{
		Config:   config,
		Logger:   logger,
		reader:   reader,
		topic:    topic,
		handlers: make(map[string]Handler),
	}
}

// RegisterHandler registers a handler for a message key.
func (c *Consumer) RegisterHandler(key string, handler Handler) {
	c.handlers[key] = handler
}

// RegisterFallback handles messages whose key has no handler.
func (c *Consumer) RegisterFallback(handler Handler) {
	c.fallback = handler
}

// Start consumes until ctx is cancelled. Handler errors are logged and the message is
// skipped.
func (c *Consumer) Start(ctx context.Context) error {
	c.Logger.Info(ctx, "[KAFKA] Starting consumer for topic: %s", c.topic)

	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			c.Logger.Error(ctx, "[KAFKA] Error reading message: %v", err)
			continue
		}

		key := string(message.Key)
		handler, exists := c.handlers[key]
		if !exists {
			handler = c.fallback
		}
		if handler == nil {
			c.Logger.Warn(ctx, "[KAFKA] No handler registered for message with key: %s", key)
			continue
		}
		if err := handler(ctx, message.Value); err != nil {
			c.Logger.Error(ctx, "[KAFKA] Error handling message with key %s: %v", key, err)
			continue
		}
		c.Logger.Debug(ctx, "[KAFKA] Processed message with key: %s", key)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
