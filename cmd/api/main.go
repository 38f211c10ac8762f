package main

import (
	bookinghandler "travelbook/internal/bookings/handler"
	"travelbook/internal/bookings/repository"
	bookingservice "travelbook/internal/bookings/service"
	"travelbook/internal/bookings/validator"
	"travelbook/internal/events"
	flighthandler "travelbook/internal/flights/handler"
	flightrepository "travelbook/internal/flights/repository"
	flightservice "travelbook/internal/flights/service"
	hotelhandler "travelbook/internal/hotels/handler"
	hotelrepository "travelbook/internal/hotels/repository"
	hotelservice "travelbook/internal/hotels/service"
	"travelbook/internal/inventory"
	"travelbook/pkg/app"
	"travelbook/pkg/auth"
	"travelbook/pkg/config"
	"travelbook/pkg/contracts"
	"travelbook/pkg/kafka"
	kafka_config "travelbook/pkg/kafka/config"
	kafkamiddleware "travelbook/pkg/kafka/middleware"
	"travelbook/pkg/metrics"
	"travelbook/pkg/middleware"
)

const (
	ServiceName      = "api"
	MetricsNamespace = "travelbook"
)

func main() {
	cfg := config.Load(ServiceName)
	if cfg.JWTSecret == "" {
		cfg.Log.Fatal("JWT_SECRET is required by the API")
	}
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting travel booking API")
	m := metrics.New(MetricsNamespace)
	publisher := initPublisher(cfg, m)

	serverApp := app.NewApplication(cfg, m, publisher)
	serverApp.SetApp(initHandlers(cfg, m, publisher)...)
	serverApp.Run()
}

func initHandlers(cfg *config.Config, m *metrics.Metrics, publisher events.Publisher) []contracts.Handler {
	authenticator := middleware.NewAuthenticator(auth.NewVerifier(cfg.JWTSecret), cfg.Log)
	bookingValidator := validator.NewBookingValidator(cfg.Log)

	hotelRepo := hotelrepository.NewMongoHotelRepository(cfg)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	flightRepo := flightrepository.NewMongoFlightRepository(cfg)

	gate := inventory.NewGate(hotelRepo, bookingRepo)

	hotels := hotelservice.NewHotelService(hotelRepo, gate.Calculator(), cfg, m)
	bookings := bookingservice.NewBookingService(bookingRepo, hotelRepo, gate, bookingValidator, publisher, cfg, m)
	flights := flightservice.NewFlightService(flightRepo, bookingValidator, publisher, cfg, m)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		hotelhandler.NewHotelHandler(hotels, authenticator, cfg.Log),
		bookinghandler.NewBookingHandler(bookings, authenticator, cfg.Log),
		flighthandler.NewFlightHandler(flights, authenticator, cfg.Log),
	}
}

// initPublisher falls back to a no-op publisher when Kafka is disabled. Booking writes never depend on it.
func initPublisher(cfg *config.Config, m *metrics.Metrics) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaTopic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamiddleware.MetricsProducerMiddleware(m))

	cfg.Log.Info("Booking events enabled", "topic", cfg.KafkaTopic)
	return events.NewKafkaPublisher(producer, kafkaCfg.PublishTimeout, cfg.Log)
}
