package main

import (
	bookingsrepo "wanderlust/internal/bookings/repository"
	listingsrepo "wanderlust/internal/listings/repository"
	"wanderlust/internal/recommendations/cache"
	"wanderlust/internal/recommendations/engine"
	"wanderlust/internal/recommendations/events"
	rechandler "wanderlust/internal/recommendations/handler"
	recservice "wanderlust/internal/recommendations/service"
	"wanderlust/internal/users/handler"
	"wanderlust/internal/users/repository"
	"wanderlust/internal/users/service"
	"wanderlust/internal/users/validator"
	"wanderlust/pkg/app"
	"wanderlust/pkg/auth"
	"wanderlust/pkg/config"
	"wanderlust/pkg/contracts"
	"wanderlust/pkg/kafka"
	kafkaconfig "wanderlust/pkg/kafka/config"
	kafkamiddleware "wanderlust/pkg/kafka/middleware"
)

const ServiceName = "users"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Users service")
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	serverApp := app.NewApplication(cfg, tokens)

	authService, profileService := initUserServices(cfg, tokens)
	recommendations := initRecommendations(cfg)
	initInvalidationConsumer(cfg, serverApp, recommendations)

	serverApp.SetApp(contracts.Handlers{
		handler.NewUserHandler(authService, profileService, cfg.Log),
		rechandler.NewRecommendationHandler(recommendations, cfg.Log),
	})
	serverApp.Run()
}

func initUserServices(cfg *config.Config, tokens *auth.TokenManager) (service.AuthService, service.ProfileService) {
	userRepo := repository.NewMongoUserRepository(cfg)

	authService := service.NewAuthService(
		userRepo,
		repository.NewMongoCredentialsRepository(cfg),
		tokens,
		validator.NewUserValidator(cfg.Log),
		cfg,
	)
	profileService := service.NewProfileService(
		userRepo,
		listingsrepo.NewMongoListingRepository(cfg),
		bookingsrepo.NewMongoBookingRepository(cfg),
		cfg,
	)

	cfg.Log.Info("User services initialized", "database", cfg.MongoDatabaseName)
	return authService, profileService
}

func initRecommendations(cfg *config.Config) recservice.RecommendationService {
	var recCache cache.Cache = cache.Noop{}
	if cfg.Client.Redis != nil {
		recCache = cache.NewRedisCache(cfg.Client.Redis, cfg.RecommendationCacheTTL)
	}

	cfg.Log.Info("Recommendation engine configured", "url", cfg.AIURL, "timeout", cfg.AITimeout, "cached", cfg.Client.Redis != nil)
	return recservice.NewRecommendationService(engine.NewHTTPEngine(cfg.AIURL, cfg.AITimeout), recCache, cfg.Log.Component("recommendations"))
}

func initInvalidationConsumer(cfg *config.Config, serverApp *app.Application, recs recservice.RecommendationService) {
	if !cfg.KafkaEnabled || cfg.Client.Redis == nil {
		cfg.Log.Info("Recommendation cache invalidation disabled", "kafka_enabled", cfg.KafkaEnabled, "redis_enabled", cfg.Client.Redis != nil)
		return
	}

	kafkaCfg, err := kafkaconfig.Load(ServiceName)
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	eventLog := cfg.Log.Component("booking-events")
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingEventsTopic,
		cfg.BookingEventsGroup,
		cfg.BookingEventsDLQTopic,
		events.BookingInvalidator(recs, eventLog),
		eventLog,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(eventLog))
	}

	serverApp.AddWorker("booking-events-consumer", consumer.Start)
	serverApp.AddCloser("kafka-consumer", consumer)
}
