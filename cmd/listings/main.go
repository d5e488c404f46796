package main

import (
	bookingsrepo "wanderlust/internal/bookings/repository"
	"wanderlust/internal/listings/geocode"
	"wanderlust/internal/listings/handler"
	"wanderlust/internal/listings/repository"
	"wanderlust/internal/listings/service"
	"wanderlust/internal/listings/validator"
	"wanderlust/pkg/app"
	"wanderlust/pkg/auth"
	"wanderlust/pkg/config"
)

const ServiceName = "listings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Listings service")
	serverApp := app.NewApplication(cfg, auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry))

	listingService, reviewService := initServices(cfg)

	serverApp.SetApp(handler.NewListingHandler(listingService, reviewService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) (service.ListingService, service.ReviewService) {
	listingRepo := repository.NewMongoListingRepository(cfg)
	reviewRepo := repository.NewMongoReviewRepository(cfg)
	bookedRanges := repository.NewBookedRangeReader(bookingsrepo.NewMongoBookingRepository(cfg))
	listingValidator := validator.NewListingValidator(cfg.Log)

	listingService := service.NewListingService(listingRepo, reviewRepo, bookedRanges, initGeocoder(cfg), listingValidator, cfg)
	reviewService := service.NewReviewService(listingRepo, reviewRepo, listingValidator, cfg)

	cfg.Log.Info("Listing services initialized", "database", cfg.MongoDatabaseName)
	return listingService, reviewService
}

func initGeocoder(cfg *config.Config) geocode.Geocoder {
	if cfg.MapToken == "" {
		cfg.Log.Info("MAP_TOKEN not set, listings are stored without coordinates")
		return geocode.Disabled{}
	}
	return geocode.NewMapbox(geocode.DefaultMapboxURL, cfg.MapToken, cfg.GeocodeTimeout)
}
