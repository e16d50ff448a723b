package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvIdempotencyTTL    = "IDEMPOTENCY_TTL"
	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvLockBackend   = "LOCK_BACKEND"
	EnvLockTTL       = "LOCK_TTL"
	EnvLockWait      = "LOCK_WAIT"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvReferenceLength      = "REFERENCE_LENGTH"
	EnvReferenceChunk       = "REFERENCE_CHUNK"
	EnvReferenceMaxAttempts = "REFERENCE_MAX_ATTEMPTS"

	EnvDefaultTimeZone    = "DEFAULT_TIME_ZONE"
	EnvPhoneRegion        = "PHONE_REGION"
	EnvAncestorMaxDepth   = "ANCESTOR_MAX_DEPTH"
	EnvDescendantMaxDepth = "DESCENDANT_MAX_DEPTH"

	EnvKafkaEnabled       = "KAFKA_ENABLED"
	EnvBookingEventsTopic = "BOOKING_EVENTS_TOPIC"
	EnvBookingStatusTopic = "BOOKING_STATUS_TOPIC"
	EnvBookingStatusGroup = "BOOKING_STATUS_GROUP"
	EnvBookingDLQTopic    = "BOOKING_DLQ_TOPIC"
)
