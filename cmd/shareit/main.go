package main

import (
	bookinghandler "shareit/internal/bookings/handler"
	bookingrepo "shareit/internal/bookings/repository"
	bookingservice "shareit/internal/bookings/service"
	bookingvalidator "shareit/internal/bookings/validator"
	"shareit/internal/health"
	itemhandler "shareit/internal/items/handler"
	itemrepo "shareit/internal/items/repository"
	itemservice "shareit/internal/items/service"
	itemvalidator "shareit/internal/items/validator"
	requesthandler "shareit/internal/requests/handler"
	requestrepo "shareit/internal/requests/repository"
	requestservice "shareit/internal/requests/service"
	requestvalidator "shareit/internal/requests/validator"
	userhandler "shareit/internal/users/handler"
	userrepo "shareit/internal/users/repository"
	userservice "shareit/internal/users/service"
	uservalidator "shareit/internal/users/validator"
	"shareit/pkg/app"
	"shareit/pkg/config"
	"shareit/pkg/events"
	"shareit/pkg/kafka"
	kafka_config "shareit/pkg/kafka/config"
	kafka_middleware "shareit/pkg/kafka/middleware"
	"shareit/pkg/lock"
	"shareit/pkg/metrics"
)

const ServiceName = "shareit"

type repositories struct {
	users    userrepo.UserRepository
	items    itemrepo.ItemRepository
	comments itemrepo.CommentRepository
	requests requestrepo.RequestRepository
	bookings bookingrepo.BookingRepository
}

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	if cfg.UsesRedis() {
		cfg.SetRedis()
	}
	metrics.Register()

	cfg.Log.Info("Starting ShareIt service")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, serverApp)
	repos := initRepositories(cfg)

	bookingService := bookingservice.NewBookingService(
		repos.bookings,
		initLocker(cfg),
		repos.items,
		repos.users,
		publisher,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)
	itemService := itemservice.NewItemService(
		repos.items,
		repos.comments,
		repos.users,
		repos.requests,
		bookingService,
		itemvalidator.NewItemValidator(cfg.Log),
		cfg,
	)
	userService := userservice.NewUserService(
		repos.users,
		repos.items,
		uservalidator.NewUserValidator(cfg.Log),
		cfg,
	)
	requestService := requestservice.NewRequestService(
		repos.requests,
		repos.users,
		repos.items,
		requestvalidator.NewRequestValidator(cfg.Log),
		cfg,
	)
	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	var cache health.Pinger
	if cfg.Client.Redis != nil {
		cache = cfg.Client.PingRedis
	}

	serverApp.SetApp(
		health.NewHandler(cfg.Client.PingMongo, cache, cfg.Log),
		userhandler.NewUserHandler(userService, cfg.Log),
		itemhandler.NewItemHandler(itemService, cfg.Log),
		requesthandler.NewRequestHandler(requestService, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

func initRepositories(cfg *config.Config) repositories {
	return repositories{
		users:    userrepo.NewMongoUserRepository(cfg),
		items:    itemrepo.NewMongoItemRepository(cfg),
		comments: itemrepo.NewMongoCommentRepository(cfg),
		requests: requestrepo.NewMongoRequestRepository(cfg),
		bookings: bookingrepo.NewMongoBookingRepository(cfg),
	}
}

func initLocker(cfg *config.Config) lock.Locker {
	if cfg.LockBackend == config.BackendRedis {
		cfg.Log.Info("Booking locks backed by Redis", "ttl", cfg.LockTTL)
		return lock.NewRedisLocker(cfg.Client.Redis, cfg.LockTTL)
	}
	cfg.Log.Info("Booking locks backed by MongoDB", "ttl", cfg.LockTTL)
	return lock.NewMongoLocker(cfg.Client.Mongo.Database(cfg.MongoDatabaseName), cfg.LockTTL)
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events are not published")
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaBookingTopic, cfg.KafkaBookingDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware())

	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	return events.NewKafkaPublisher(producer, ServiceName, kafkaCfg.PublishTimeout)
}
