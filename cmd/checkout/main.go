package main

import (
	"bookly/internal/availability"
	bookablesrepo "bookly/internal/bookables/repository"
	"bookly/internal/bookings/events"
	bookingshandler "bookly/internal/bookings/handler"
	bookingsrepo "bookly/internal/bookings/repository"
	bookingsservice "bookly/internal/bookings/service"
	bookingsvalidator "bookly/internal/bookings/validator"
	"bookly/internal/checkout/handler"
	"bookly/internal/checkout/service"
	"bookly/internal/checkout/validator"
	couponsrepo "bookly/internal/coupons/repository"
	"bookly/internal/hierarchy"
	"bookly/internal/lockers"
	"bookly/internal/openinghours"
	"bookly/internal/permissions"
	"bookly/internal/pricing"
	tenantsrepo "bookly/internal/tenants/repository"
	"bookly/pkg/app"
	"bookly/pkg/config"
	"bookly/pkg/kafka"
	"bookly/pkg/lock"
	"context"

	kafka_config "bookly/pkg/kafka/config"
	kafka_middleware "bookly/pkg/kafka/middleware"
)

const ServiceName = "checkout"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.LockBackend == config.LockBackendRedis {
		cfg.SetRedis()
	}

	cfg.Log.Info("Starting Checkout service")
	ensureIndexes(cfg)

	serverApp := app.NewApplication(cfg)

	var publisher service.EventPublisher
	if cfg.KafkaEnabled {
		publisher = initKafka(cfg, serverApp)
	}

	checkoutService := initServices(cfg, publisher)
	serverApp.SetApp(
		handler.NewHealthHandler(cfg.Client.Mongo, cfg.Client.Redis, cfg.Log),
		handler.NewCheckoutHandler(checkoutService, cfg.Log),
	)
	serverApp.Run()
}

func ensureIndexes(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	if err := bookingsrepo.EnsureIndexes(ctx, cfg); err != nil {
		cfg.Log.Fatal("Failed to create booking indexes", "error", err)
	}
	if cfg.LockBackend == config.LockBackendMongo {
		backend := lock.NewMongoBackend(cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.WriteTimeout)
		if err := backend.EnsureIndexes(ctx); err != nil {
			cfg.Log.Fatal("Failed to create lock indexes", "error", err)
		}
	}
}

func lockBackend(cfg *config.Config) lock.Backend {
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		return lock.NewRedisBackend(cfg.Client.Redis)
	case config.LockBackendMemory:
		cfg.Log.Warn("In-memory slot locks only serialize checkouts within this process")
		return lock.NewMemoryBackend()
	default:
		return lock.NewMongoBackend(cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.WriteTimeout)
	}
}

func initServices(cfg *config.Config, publisher service.EventPublisher) *service.CheckoutService {
	bookables := bookablesrepo.NewMongoBookableRepository(cfg)
	bookings := bookingsrepo.NewMongoBookingRepository(cfg)
	tenants := tenantsrepo.NewMongoTenantRepository(cfg)
	coupons := couponsrepo.NewMongoCouponRepository(cfg)
	oracle := permissions.NewMongoOracle(cfg)

	resolver := hierarchy.NewResolver(bookables, cfg.AncestorMaxDepth, cfg.DescendantMaxDepth)
	zones := openinghours.NewZones(tenants, cfg.Location())

	checkoutService := service.NewCheckoutService(cfg, service.Dependencies{
		Bookables:    bookables,
		Bookings:     bookings,
		Tenants:      tenants,
		Hierarchy:    resolver,
		Checker:      availability.NewChecker(availability.NewOverlapEngine(bookings), bookables, cfg.AncestorMaxDepth, cfg.DescendantMaxDepth),
		Pricing:      pricing.NewEngine(coupons, oracle),
		Oracle:       oracle,
		Lockers:      lockers.NewMongoService(cfg),
		Locks:        lock.NewManager(lockBackend(cfg), cfg.LockTTL, cfg.LockWait),
		Zones:        zones,
		OpeningHours: openinghours.NewValidator(resolver, zones),
		References:   service.NewReferenceGenerator(cfg.ReferenceLength, cfg.ReferenceChunk, cfg.ReferenceMaxAttempts),
		Validator:    validator.NewCheckoutValidator(cfg.Log),
		Publisher:    publisher,
	})

	cfg.Log.Info("Checkout service initialized",
		"database", cfg.MongoDatabaseName,
		"lock_backend", cfg.LockBackend,
		"events_enabled", publisher != nil,
	)
	return checkoutService
}

// initKafka starts the booking status consumer and returns the publisher for
// booking.created events.
func initKafka(cfg *config.Config, serverApp *app.Application) service.EventPublisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	serverApp.AddCloser("booking-events-producer", producer)

	statusLog := cfg.Log.With("handler", "booking_status")
	statusService := bookingsservice.NewStatusService(
		bookingsrepo.NewMongoBookingRepository(cfg),
		bookingsvalidator.NewStatusValidator(cfg.Log),
		statusLog,
	)
	statusHandler := bookingshandler.NewStatusHandler(statusService, statusLog)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.BookingStatusTopic, cfg.BookingStatusGroup, cfg.BookingDLQTopic, statusHandler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(statusLog))
	serverApp.AddWorker("booking-status-consumer", consumer)

	return events.NewBookingEventPublisher(producer, ServiceName)
}
