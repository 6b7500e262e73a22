package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boxoffice/api/routes"
	"boxoffice/internal/bookings"
	"boxoffice/internal/holds"
	"boxoffice/internal/notifications"
	"boxoffice/internal/payments"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/database"
	"boxoffice/pkg/cache"
	"boxoffice/pkg/logger"
	"boxoffice/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Lifecycle event producer (optional)
	var producer notifications.Producer
	if cfg.Kafka.Enabled {
		producer, err = notifications.NewKafkaProducer(
			notifications.DefaultKafkaProducerConfig(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		if err != nil {
			appLogger.Error("Failed to initialize Kafka producer", slog.Any("error", err))
			appLogger.Info("Continuing without lifecycle events")
			producer = nil
		} else {
			defer producer.Close()
			appLogger.Info("Kafka producer initialized",
				slog.Any("brokers", cfg.Kafka.Brokers),
				slog.String("topic", cfg.Kafka.Topic),
			)
		}
	}

	// Core engine: inventory, hold manager, booking coordinator
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	inventory := seats.NewInventory(seats.NewRepository(db.PostgreSQL))
	if err := inventory.Load(startupCtx); err != nil {
		appLogger.Error("failed to load seat inventory", slog.Any("error", err))
		os.Exit(1)
	}
	if err := seats.Seed(startupCtx, inventory, cfg.Seats); err != nil {
		appLogger.Error("failed to seed seats", slog.Any("error", err))
		os.Exit(1)
	}
	appLogger.Info("Seat inventory ready", slog.Int("total_seats", inventory.Size()))

	manager := holds.NewManager(inventory, holds.NewRepository(db.PostgreSQL), producer, cfg.Hold.TTL)
	if err := manager.Load(startupCtx); err != nil {
		appLogger.Error("failed to load holds", slog.Any("error", err))
		os.Exit(1)
	}

	gateway := payments.NewRazorpayGateway(cfg.Razorpay)
	bookingService := bookings.NewService(manager, inventory, gateway,
		bookings.NewRepository(db.PostgreSQL), producer, cfg.Razorpay.Currency)
	if err := bookingService.Load(startupCtx); err != nil {
		appLogger.Error("failed to load bookings", slog.Any("error", err))
		os.Exit(1)
	}

	// Background loops
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()
	holds.NewSweeper(manager, cfg.Hold.SweepInterval).Start(bgCtx)
	bookings.NewReconciler(bookingService, cfg.Hold.ReconcileInterval).Start(bgCtx)

	// Optional Redis layers
	var cacheService cache.Service
	var rateLimiter *ratelimit.RateLimiter
	if db.Redis != nil {
		cacheService = cache.NewService(db.Redis)

		if cfg.RateLimit.Enabled {
			rateLimiter = ratelimit.NewRateLimiter(db.Redis, &ratelimit.Config{
				Enabled:         cfg.RateLimit.Enabled,
				WindowDuration:  cfg.RateLimit.WindowDuration,
				PublicRequests:  cfg.RateLimit.PublicRequests,
				BookingRequests: cfg.RateLimit.BookingRequests,
				WhitelistedIPs:  cfg.RateLimit.WhitelistedIPs,
			})
			appLogger.Info("Rate limiter initialized",
				slog.Duration("window", cfg.RateLimit.WindowDuration),
				slog.Int("public_requests", cfg.RateLimit.PublicRequests),
				slog.Int("booking_requests", cfg.RateLimit.BookingRequests),
			)
		}
	}

	router := setupRouter(cfg, db, rateLimiter, routes.Dependencies{
		Inventory: inventory,
		Manager:   manager,
		Bookings:  bookingService,
		Cache:     cacheService,
	})

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("🚀 Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Duration("hold_ttl", cfg.Hold.TTL),
			slog.Bool("redis_cache", db.Redis != nil),
			slog.Bool("rate_limiting", rateLimiter != nil),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Server failed", slog.Any("error", err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, db *database.DB, rateLimiter *ratelimit.RateLimiter, deps routes.Dependencies) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()

	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter := routes.NewRouter(cfg, db, deps)
	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		l.LogHTTPRequest(c, duration)
	}
}
