package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"apotek/internal/config"
	"apotek/internal/database"
	"apotek/internal/handlers"
	"apotek/internal/middleware"
	"apotek/internal/repositories"
	"apotek/internal/services"
	"apotek/pkg/fcm"
	"apotek/pkg/rabbitmq"
)

// Infra carries the optional outside services. Nil fields disable the
// matching feature.
type Infra struct {
	Events services.EventPublisher
	Cache  repositories.TrackingCache
	Push   services.PushSender
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setLogLevel(cfg.LogLevel)

	// --- Database ---
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}
	if cfg.SeedDemoData {
		if err := seedDemoData(context.Background(), repositories.NewGORMStore(db)); err != nil {
			log.Error().Err(err).Msg("Failed to seed demo data")
		}
	}

	// --- Outside services ---
	var infra Infra

	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: cfg.EventsExchange,
			Queue:    cfg.EventsQueue,
		})
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, events disabled")
		} else {
			infra.Events = mqClient
			defer mqClient.Close()
		}
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, tracking cache disabled")
			rdb.Close()
		} else {
			infra.Cache = repositories.NewRedisTrackingCache(rdb, cfg.TrackingCacheTTL)
			defer rdb.Close()
		}
	}

	if cfg.FCMServerKey != "" {
		infra.Push = fcm.NewClient(fcm.Config{
			URL:       cfg.FCMURL,
			ServerKey: cfg.FCMServerKey,
			Timeout:   cfg.NotifyTimeout,
		})
	}

	app, notifier := NewApp(cfg, db, infra)

	// --- Audit consumer ---
	if mqClient != nil {
		if err := mqClient.ConsumeEvents(rabbitmq.HandleEventMessage); err != nil {
			log.Error().Err(err).Msg("Failed to start event consumer")
		}
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.AppPort).Msg("Starting server")
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	notifier.Wait()
	log.Info().Msg("Server gracefully stopped")
}

// NewApp wires repositories, services and handlers into a Fiber app. The
// returned notifier must be drained with Wait on shutdown.
func NewApp(cfg config.Config, db *gorm.DB, infra Infra) (*fiber.App, *services.PushNotifier) {
	// --- Repositories ---
	store := repositories.NewGORMStore(db)

	// --- Services ---
	notifier := services.NewPushNotifier(store.Users(), infra.Push, cfg.NotifyTimeout)
	matcher := services.NewProviderMatcher(store.Medicines(), store.Providers())

	authService := services.NewAuthService(store.Users(), cfg.JWTSecret)
	userService := services.NewUserService(store.Users())
	cartService := services.NewCartService(store)
	orderService := services.NewOrderService(store, infra.Cache, infra.Events, notifier)
	deliveryService := services.NewDeliveryService(matcher)
	emergencyService := services.NewEmergencyService(store, matcher, infra.Events, notifier)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService, emergencyService)

	app := fiber.New(fiber.Config{AppName: cfg.AppName})
	app.Use(logger.New())

	app.Get("/health", healthHandler(db))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiV1 := app.Group("/api/v1")

	// Public routes must be registered before the auth group.
	authHandler.RegisterRoutes(apiV1)
	deliveryHandler.RegisterPublicRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	userHandler.RegisterRoutes(protected)
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	deliveryHandler.RegisterRoutes(protected)

	return app, notifier
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		dbStatus := "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			status, code, dbStatus = "degraded", fiber.StatusServiceUnavailable, "unreachable"
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"database": dbStatus,
			"time":     time.Now().Format(time.RFC3339),
		})
	}
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
