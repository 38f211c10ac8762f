package kafka_middleware

import (
	"context"
	"time"

	"travelbook/pkg/kafka"
	"travelbook/pkg/metrics"
)

const (
	DirectionPublish = "publish"
	DirectionConsume = "consume"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)
		observe(m, DirectionPublish, start, err)
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		observe(m, DirectionConsume, start, err)
		return err
	}
}

func observe(m *metrics.Metrics, direction string, start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.KafkaMessages.WithLabelValues(direction, result).Inc()
	m.KafkaDuration.WithLabelValues(direction).Observe(time.Since(start).Seconds())
}
