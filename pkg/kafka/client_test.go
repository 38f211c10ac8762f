package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"travelbook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// ──────────────────────────────────────────────
// Fakes
// ──────────────────────────────────────────────

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
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queue) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.queue[0]
	r.queue = r.queue[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func header(km kafka.Message, key string) string {
	for _, h := range km.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// ──────────────────────────────────────────────
// Producer
// ──────────────────────────────────────────────

func TestProducer_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := newProducer(writer, nil, "booking-events", logger.Discard())

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, "outer")
		return next(ctx, msg)
	})
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, "inner:"+msg.Topic)
		return next(ctx, msg)
	})

	msg, _ := NewMessage().WithKey("b-1").WithValue(map[string]int{"n": 1}).WithEventType("booking.created").Build()
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(seen) != 2 || seen[0] != "outer" || seen[1] != "inner:booking-events" {
		t.Errorf("middleware order = %v", seen)
	}
	out := writer.written()
	if len(out) != 1 || string(out[0].Key) != "b-1" || header(out[0], HeaderEventType) != "booking.created" {
		t.Errorf("written = %+v", out)
	}
}

func TestProducer_Rejects(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "t", logger.Discard())

	tests := []struct {
		name string
		msg  Message
		want error
	}{
		{"empty key", Message{Value: []byte("{}")}, ErrEmptyKey},
		{"empty value", Message{Key: "k"}, ErrEmptyValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.Publish(context.Background(), tt.msg); !errors.Is(err, tt.want) {
				t.Errorf("Publish() error = %v, want %v", err, tt.want)
			}
		})
	}

	_ = p.Close()
	if err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("Publish() after Close = %v, want ErrProducerClosed", err)
	}
}

func TestProducer_FailureGoesToDLQ(t *testing.T) {
	writeErr := errors.New("leader not available")
	writer := &fakeWriter{err: writeErr}
	dlq := &fakeWriter{}
	p := newProducer(writer, dlq, "booking-events", logger.Discard())

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("{}")})
	if !errors.Is(err, writeErr) {
		t.Fatalf("Publish() error = %v, want wrapped write error", err)
	}

	parked := dlq.written()
	if len(parked) != 1 {
		t.Fatalf("dlq messages = %d, want 1", len(parked))
	}
	if header(parked[0], HeaderOriginalTopic) != "booking-events" || header(parked[0], HeaderDLQError) == "" {
		t.Errorf("dlq headers = %+v", parked[0].Headers)
	}

	if err := p.Close(); err != nil || !writer.closed || !dlq.closed {
		t.Errorf("Close() = %v, writer closed %v, dlq closed %v", err, writer.closed, dlq.closed)
	}
}

// ──────────────────────────────────────────────
// Consumer
// ──────────────────────────────────────────────

func TestConsumer_RetriesThenParks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		queue: []kafka.Message{
			{Key: []byte("ok"), Offset: 1},
			{Key: []byte("flaky"), Offset: 2},
			{Key: []byte("poison"), Offset: 3},
		},
	}
	dlq := &fakeWriter{}

	attempts := map[string]int{}
	var mu sync.Mutex
	handler := func(_ context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[msg.Key]++
		switch msg.Key {
		case "flaky":
			if attempts[msg.Key] < 3 {
				return NewTransientError("broker hiccup", nil)
			}
		case "poison":
			return NewPermanentError("bad payload", nil)
		}
		return nil
	}

	c := newConsumer(reader, dlq, "booking-events", "audit", handler, logger.Discard())
	c.maxRetries = 3
	c.backoff = time.Millisecond

	if err := c.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Start() error = %v, want context.Canceled", err)
	}

	if attempts["ok"] != 1 || attempts["flaky"] != 3 || attempts["poison"] != 1 {
		t.Errorf("attempts = %v", attempts)
	}
	if len(reader.committed) != 3 {
		t.Errorf("committed = %v, want all three offsets", reader.committed)
	}

	parked := dlq.written()
	if len(parked) != 1 || string(parked[0].Key) != "poison" {
		t.Fatalf("dlq = %+v, want only the poison message", parked)
	}
	if header(parked[0], HeaderDLQGroup) != "audit" {
		t.Errorf("dlq group header = %q", header(parked[0], HeaderDLQGroup))
	}
}

func TestConsumer_StartAfterClose(t *testing.T) {
	c := newConsumer(&fakeReader{}, nil, "t", "g", func(context.Context, Message) error { return nil }, logger.Discard())
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, ErrConsumerClosed) {
		t.Errorf("Start() error = %v, want ErrConsumerClosed", err)
	}
}
