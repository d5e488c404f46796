package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "wanderlust"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultJWTExpiry = 7 * 24 * time.Hour

	DefaultRedisDB = 0

	DefaultAIURL                  = "http://localhost:8000"
	DefaultAITimeout              = 60 * time.Second
	DefaultRecommendationCacheTTL = 10 * time.Minute

	DefaultGeocodeTimeout = 5 * time.Second

	DefaultBookingLockTTL           = 10 * time.Second
	DefaultBookingLockWait          = 3 * time.Second
	DefaultBookingLockRetryInterval = 50 * time.Millisecond

	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultBookingEventsGroup    = "recommendations"

	DefaultSearchLimit = 100
)
