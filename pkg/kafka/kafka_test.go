package kafka

import (
	"bookly/pkg/logger"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.messages...)
}

type fakeReader struct {
	msgs    chan kafka.Message
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	commits []kafka.Message
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{msgs: make(chan kafka.Message, len(msgs)), done: make(chan struct{})}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case <-r.done:
		return kafka.Message{}, io.EOF
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits = append(r.commits, msgs...)
	return nil
}

func (r *fakeReader) Close() error {
	r.once.Do(func() { close(r.done) })
	return nil
}

func (r *fakeReader) committed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commits)
}

func raw(key string) kafka.Message {
	return kafka.Message{Key: []byte(key), Value: []byte(`{}`), Topic: "booking.status"}
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func runConsumer(t *testing.T, c *Consumer, reader *fakeReader, wantCommits int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool { return reader.committed() == wantCommits }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestMessageBuilder_Defaults(t *testing.T) {
	msg, err := NewMessage().WithKey("t1:b1").WithEventType("booking.created").WithValue(map[string]int{"n": 1}).Build()

	require.NoError(t, err)
	assert.NotEmpty(t, msg.GetEventID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])
	assert.Equal(t, "booking.created", msg.GetEventType())
	assert.JSONEq(t, `{"n":1}`, string(msg.Value))
}

func TestMessageBuilder_EncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()

	assert.Error(t, err)
}

func TestMessage_RetryCountBeyondNine(t *testing.T) {
	msg := Message{}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}

	assert.Equal(t, 12, msg.GetRetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])
}

func TestMessage_DecodeValueIsPermanent(t *testing.T) {
	msg := Message{Value: []byte("{")}
	var v map[string]any

	err := msg.DecodeValue(&v)

	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("store", errors.New("x")), ErrorTypeTransient},
		{"wrapped permanent", fmt.Errorf("ctx: %w", NewPermanentError("bad", nil)), ErrorTypePermanent},
		{"deadline", fmt.Errorf("find: %w", context.DeadlineExceeded), ErrorTypeTransient},
		{"network message", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("booking not found"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("x", nil)

	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("x", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "booking.events", logger.Nop())
	var seen []string
	p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
		seen = append(seen, msg.Topic)
		return next(ctx, msg)
	})

	msg, err := NewMessage().WithKey("t1:b1").WithEventType("booking.created").WithValue("x").Build()
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), msg))

	written := w.written()
	require.Len(t, written, 1)
	assert.Equal(t, "t1:b1", string(written[0].Key))
	assert.Equal(t, "booking.created", header(written[0], HeaderEventType))
	assert.Equal(t, []string{"booking.events"}, seen)
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := newProducer(&fakeWriter{}, "t", logger.Nop())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}), ErrProducerClosed)
}

func TestProducer_WrapsWriterError(t *testing.T) {
	boom := errors.New("broker down")
	p := newProducer(&fakeWriter{err: boom}, "t", logger.Nop())

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")})

	assert.ErrorIs(t, err, boom)
}

func TestConsumer_CommitsHandledMessages(t *testing.T) {
	reader := newFakeReader(raw("a"), raw("b"))
	var mu sync.Mutex
	var keys []string
	c := newConsumer(reader, nil, "booking.status", "bookly", 3, 0, func(_ context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		keys = append(keys, msg.Key)
		return nil
	}, logger.Nop())

	runConsumer(t, c, reader, 2)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestConsumer_RetriesTransientErrors(t *testing.T) {
	reader := newFakeReader(raw("a"))
	calls := 0
	c := newConsumer(reader, nil, "booking.status", "bookly", 3, 0, func(_ context.Context, msg Message) error {
		calls++
		if calls < 3 {
			return NewTransientError("store unavailable", nil)
		}
		assert.Equal(t, 2, msg.GetRetryCount())
		return nil
	}, logger.Nop())

	runConsumer(t, c, reader, 1)

	assert.Equal(t, 3, calls)
}

func TestConsumer_DeadLettersPermanentErrors(t *testing.T) {
	reader := newFakeReader(raw("a"))
	dlq := &fakeWriter{}
	calls := 0
	c := newConsumer(reader, dlq, "booking.status", "bookly", 3, 0, func(context.Context, Message) error {
		calls++
		return NewPermanentError("unknown action", nil)
	}, logger.Nop())

	runConsumer(t, c, reader, 1)

	assert.Equal(t, 1, calls)
	written := dlq.written()
	require.Len(t, written, 1)
	assert.Equal(t, "booking.status", header(written[0], HeaderOriginalTopic))
	assert.Equal(t, "bookly", header(written[0], HeaderDLQGroup))
	assert.Contains(t, header(written[0], HeaderDLQError), "unknown action")
}

func TestConsumer_DeadLettersAfterMaxRetries(t *testing.T) {
	reader := newFakeReader(raw("a"))
	dlq := &fakeWriter{}
	calls := 0
	c := newConsumer(reader, dlq, "booking.status", "bookly", 2, 0, func(context.Context, Message) error {
		calls++
		return NewTransientError("store unavailable", nil)
	}, logger.Nop())

	runConsumer(t, c, reader, 1)

	assert.Equal(t, 3, calls)
	written := dlq.written()
	require.Len(t, written, 1)
	assert.Equal(t, "2", header(written[0], HeaderRetryCount))
}

func TestConsumer_CloseStopsRun(t *testing.T) {
	reader := newFakeReader()
	dlq := &fakeWriter{}
	c := newConsumer(reader, dlq, "t", "g", 0, 0, func(context.Context, Message) error { return nil }, logger.Nop())

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	require.NoError(t, c.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrConsumerClosed)
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
	assert.True(t, dlq.closed)
	assert.ErrorIs(t, c.Run(context.Background()), ErrConsumerClosed)
}
