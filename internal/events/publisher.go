package events

import (
	"context"
	"fmt"
	"time"

	"travelbook/pkg/kafka"
	"travelbook/pkg/logger"
)

const source = "travelbook-api"

type Publisher interface {
	// Publish never fails the caller's operation. Errors are logged.
	Publish(ctx context.Context, event Event)
	Close() error
}

// Producer is the subset of *kafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer Producer
	timeout  time.Duration
	log      *logger.Logger
}

func NewKafkaPublisher(producer Producer, timeout time.Duration, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		timeout:  timeout,
		log:      log,
	}
}

// Publish keys the message by booking id so every event of one booking lands on the same partition.
// The send runs on a detached context bounded by the publish timeout.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	log := p.log.FromContext(ctx)

	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.Type).
		WithRequestID(logger.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		log.Error("Failed to build booking event", "type", event.Type, "booking_id", event.BookingID, "error", err)
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.producer.Publish(pubCtx, msg); err != nil {
		log.Error("Failed to publish booking event", "type", event.Type, "booking_id", event.BookingID, "error", err)
	}
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close event producer: %w", err)
	}
	return nil
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) {}

func (NoopPublisher) Close() error { return nil }
