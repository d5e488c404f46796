package main

import (
	"wanderlust/internal/bookings/events"
	"wanderlust/internal/bookings/handler"
	"wanderlust/internal/bookings/repository"
	"wanderlust/internal/bookings/service"
	"wanderlust/internal/bookings/validator"
	"wanderlust/pkg/app"
	"wanderlust/pkg/auth"
	"wanderlust/pkg/config"
	"wanderlust/pkg/kafka"
	kafkaconfig "wanderlust/pkg/kafka/config"
	kafkamiddleware "wanderlust/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg, auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry))

	publisher := initPublisher(cfg, serverApp)
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingService := initServices(cfg, publisher)

	serverApp.SetApp(handler.NewBookingHandler(bookingService, bookingValidator, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher service.EventPublisher) service.BookingService {
	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewBookingLockRepository(cfg),
		repository.NewMongoListingLookup(cfg),
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

func initPublisher(cfg *config.Config, serverApp *app.Application) service.EventPublisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events are only logged")
		return events.NewLogPublisher(cfg.Log)
	}

	kafkaCfg, err := kafkaconfig.Load(ServiceName)
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	eventLog := cfg.Log.Component("booking-events")
	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, eventLog)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(eventLog))
	}
	serverApp.AddCloser("kafka-producer", producer)

	cfg.Log.Info("Publishing booking events", "topic", cfg.BookingEventsTopic)
	return events.NewKafkaPublisher(producer)
}
