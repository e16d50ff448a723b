package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "bookly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultIdempotencyTTL    = 24 * time.Hour
	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = time.Minute

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	LockBackendMongo  = "mongo"
	LockBackendRedis  = "redis"
	LockBackendMemory = "memory"

	DefaultLockBackend = LockBackendMongo
	DefaultLockTTL     = 15 * time.Second
	DefaultLockWait    = 2 * time.Second
	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisDB     = 0

	DefaultReferenceLength      = 8
	DefaultReferenceChunk       = 4
	DefaultReferenceMaxAttempts = 10

	DefaultTimeZone           = "Europe/Berlin"
	DefaultPhoneRegion        = "DE"
	DefaultAncestorMaxDepth   = 5
	DefaultDescendantMaxDepth = 100

	DefaultKafkaEnabled       = false
	DefaultBookingEventsTopic = "booking-events"
	DefaultBookingStatusTopic = "booking-status"
	DefaultBookingStatusGroup = "bookly-checkout"
	DefaultBookingDLQTopic    = "booking-status-dlq"
)
