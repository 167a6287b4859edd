package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thep200/oss-finder/cfg"
	"github.com/thep200/oss-finder/pkg/log"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// chanReader serves queued messages, then blocks until ctx is done.
type chanReader struct {
	msgs chan kafka.Message
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) Close() error { return nil }

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(&cfg.Config{}, log.NewNopLogger(), "t")
	assert.ErrorIs(t, err, ErrNoBrokers)
	_, err = NewConsumer(&cfg.Config{}, log.NewNopLogger(), "t", "g")
	assert.ErrorIs(t, err, ErrNoBrokers)
}

func TestProducer_PublishEncodesJSON(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(&cfg.Config{}, log.NewNopLogger(), "events", w)

	require.NoError(t, p.Publish(context.Background(), "view", map[string]int{"projectId": 7}))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "view", string(w.msgs[0].Key))
	assert.JSONEq(t, `{"projectId":7}`, string(w.msgs[0].Value))

	assert.Error(t, p.Publish(context.Background(), "bad", make(chan int)))
}

func TestConsumer_DispatchesByKey(t *testing.T) {
	r := &chanReader{msgs: make(chan kafka.Message, 4)}
	c := NewConsumerWithReader(&cfg.Config{}, log.NewNopLogger(), "events", r)

	ctx, cancel := context.WithCancel(context.Background())
	var got []string
	c.RegisterHandler("view", func(_ context.Context, v []byte) error {
		got = append(got, "view:"+string(v))
		return nil
	})
	c.RegisterHandler("broken", func(context.Context, []byte) error {
		got = append(got, "broken")
		return errors.New("boom")
	})
	c.RegisterFallback(func(_ context.Context, v []byte) error {
		got = append(got, "other:"+string(v))
		cancel()
		return nil
	})

	r.msgs <- kafka.Message{Key: []byte("view"), Value: []byte("1")}
	r.msgs <- kafka.Message{Key: []byte("broken"), Value: []byte("2")}
	r.msgs <- kafka.Message{Key: []byte("share"), Value: []byte("3")}

	require.NoError(t, c.Start(ctx))
	assert.Equal(t, []string{"view:1", "broken", "other:3"}, got)
}
