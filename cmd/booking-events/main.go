package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelbook/internal/events"
	"travelbook/pkg/config"
	"travelbook/pkg/kafka"
	kafka_config "travelbook/pkg/kafka/config"
	kafkamiddleware "travelbook/pkg/kafka/middleware"
	"travelbook/pkg/metrics"
)

const (
	ServiceName      = "booking-events"
	MetricsNamespace = "travelbook_events"
)

// booking-events consumes the booking lifecycle topic and writes an audit log line per event.
func main() {
	cfg := config.Load(ServiceName)
	if !cfg.KafkaEnabled {
		cfg.Log.Fatal("KAFKA_ENABLED must be true for the booking events consumer")
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	m := metrics.New(MetricsNamespace)
	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.KafkaTopic, cfg.KafkaGroupID, cfg.KafkaDLQTopic, events.AuditHandler(cfg.Log), cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafkamiddleware.MetricsConsumerMiddleware(m))

	metricsServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           m.Handler(),
		ReadHeaderTimeout: cfg.ReadTimeout,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cfg.Log.Error("Metrics server failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting booking events consumer", "topic", cfg.KafkaTopic, "group_id", cfg.KafkaGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	cfg.Log.Info("Shutting down booking events consumer")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		cfg.Log.Error("Metrics server shutdown failed", "error", err)
	}
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
}
