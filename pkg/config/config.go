package config

import (
	"bookly/pkg/client"
	"bookly/pkg/logger"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata"
)

var phoneRegionRegex = regexp.MustCompile(`^[A-Z]{2}$`)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RequestTimeout time.Duration
	MaxRequestSize int

	IdempotencyTTL    time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	LockBackend   string
	LockTTL       time.Duration
	LockWait      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ReferenceLength      int
	ReferenceChunk       int
	ReferenceMaxAttempts int

	DefaultTimeZone    string
	PhoneRegion        string
	AncestorMaxDepth   int
	DescendantMaxDepth int

	KafkaEnabled       bool
	BookingEventsTopic string
	BookingStatusTopic string
	BookingStatusGroup string
	BookingDLQTopic    string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		IdempotencyTTL:    getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		LockBackend:   getEnvStr(EnvLockBackend, DefaultLockBackend),
		LockTTL:       getEnvDuration(EnvLockTTL, DefaultLockTTL),
		LockWait:      getEnvDuration(EnvLockWait, DefaultLockWait),
		RedisAddr:     getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		ReferenceLength:      getEnvNum(EnvReferenceLength, DefaultReferenceLength),
		ReferenceChunk:       getEnvNum(EnvReferenceChunk, DefaultReferenceChunk),
		ReferenceMaxAttempts: getEnvNum(EnvReferenceMaxAttempts, DefaultReferenceMaxAttempts),

		DefaultTimeZone:    getEnvStr(EnvDefaultTimeZone, DefaultTimeZone),
		PhoneRegion:        getEnvStr(EnvPhoneRegion, DefaultPhoneRegion),
		AncestorMaxDepth:   getEnvNum(EnvAncestorMaxDepth, DefaultAncestorMaxDepth),
		DescendantMaxDepth: getEnvNum(EnvDescendantMaxDepth, DefaultDescendantMaxDepth),

		KafkaEnabled:       getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		BookingEventsTopic: getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		BookingStatusTopic: getEnvStr(EnvBookingStatusTopic, DefaultBookingStatusTopic),
		BookingStatusGroup: getEnvStr(EnvBookingStatusGroup, DefaultBookingStatusGroup),
		BookingDLQTopic:    getEnvStr(EnvBookingDLQTopic, DefaultBookingDLQTopic),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetRedis() {
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

// Location resolves the configured default time zone, falling back to UTC.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.DefaultTimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}
	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RequestTimeout", cfg.RequestTimeout},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"LockTTL", cfg.LockTTL},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"RateLimitWindow", cfg.RateLimitWindow},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.LockWait < 0 {
		errors = append(errors, fmt.Sprintf("LockWait cannot be negative, got: %s", cfg.LockWait))
	}

	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.RateLimitRequests < 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests cannot be negative, got: %d", cfg.RateLimitRequests))
	}

	switch cfg.LockBackend {
	case LockBackendMongo, LockBackendMemory:
	case LockBackendRedis:
		if cfg.RedisAddr == "" {
			errors = append(errors, "RedisAddr cannot be empty when LockBackend is redis")
		}
	default:
		errors = append(errors, fmt.Sprintf("LockBackend must be one of [mongo, redis, memory], got: %s", cfg.LockBackend))
	}

	if cfg.ReferenceLength < 4 {
		errors = append(errors, fmt.Sprintf("ReferenceLength must be at least 4, got: %d", cfg.ReferenceLength))
	}
	if cfg.ReferenceChunk < 0 {
		errors = append(errors, fmt.Sprintf("ReferenceChunk cannot be negative, got: %d", cfg.ReferenceChunk))
	}
	if cfg.ReferenceMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("ReferenceMaxAttempts must be positive, got: %d", cfg.ReferenceMaxAttempts))
	}

	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("DefaultTimeZone is not a valid IANA zone: %s", cfg.DefaultTimeZone))
	}
	if !phoneRegionRegex.MatchString(cfg.PhoneRegion) {
		errors = append(errors, fmt.Sprintf("PhoneRegion must be an ISO 3166 alpha-2 code, got: %s", cfg.PhoneRegion))
	}
	if cfg.AncestorMaxDepth <= 0 {
		errors = append(errors, fmt.Sprintf("AncestorMaxDepth must be positive, got: %d", cfg.AncestorMaxDepth))
	}
	if cfg.DescendantMaxDepth <= 0 {
		errors = append(errors, fmt.Sprintf("DescendantMaxDepth must be positive, got: %d", cfg.DescendantMaxDepth))
	}

	if cfg.KafkaEnabled && (cfg.BookingEventsTopic == "" || cfg.BookingStatusTopic == "" || cfg.BookingStatusGroup == "") {
		errors = append(errors, "Kafka topics and consumer group must be set when Kafka is enabled")
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"request_timeout", cfg.RequestTimeout,
		"max_request_size", cfg.MaxRequestSize,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"lock_backend", cfg.LockBackend,
		"lock_ttl", cfg.LockTTL,
		"lock_wait", cfg.LockWait,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"reference_length", cfg.ReferenceLength,
		"reference_chunk", cfg.ReferenceChunk,
		"reference_max_attempts", cfg.ReferenceMaxAttempts,
		"default_time_zone", cfg.DefaultTimeZone,
		"phone_region", cfg.PhoneRegion,
		"ancestor_max_depth", cfg.AncestorMaxDepth,
		"descendant_max_depth", cfg.DescendantMaxDepth,
		"kafka_enabled", cfg.KafkaEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
		"booking_status_topic", cfg.BookingStatusTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}
