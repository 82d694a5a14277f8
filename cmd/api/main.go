package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-admin/internal/cache"
	"github.com/fairyhunter13/coupon-admin/internal/config"
	"github.com/fairyhunter13/coupon-admin/internal/handler"
	"github.com/fairyhunter13/coupon-admin/internal/middleware"
	"github.com/fairyhunter13/coupon-admin/internal/repository"
	"github.com/fairyhunter13/coupon-admin/internal/service"
	"github.com/fairyhunter13/coupon-admin/internal/tracing"
	"github.com/fairyhunter13/coupon-admin/internal/validator"
	"github.com/fairyhunter13/coupon-admin/pkg/database"
)

const cachePrefix = "coupon-admin:"

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	ctx := context.Background()

	// Tracing is a no-op unless TRACING_ENABLED is set
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	// Initialize database pool with retry, then make sure the table exists
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	checks := map[string]handler.Pinger{"database": pool}

	// Listing cache: redis when configured, process memory otherwise
	var listCache cache.Cache
	var redisCache *cache.RedisCache
	if cfg.Cache.RedisAddr != "" {
		redisCache, err = cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cachePrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		listCache = redisCache
		checks["redis"] = redisCache
		log.Info().Str("addr", cfg.Cache.RedisAddr).Msg("using redis list cache")
	} else {
		listCache = cache.NewInMemoryCache()
		log.Info().Msg("using in-memory list cache")
	}

	app := newApp()

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.CORSOrigins}))
	app.Use(middleware.Tracing(cfg.Tracing.ServiceName))

	// Initialize coupon components (layered architecture)
	couponRepo := repository.NewCouponRepository(pool)
	couponService := service.NewCouponService(pool, couponRepo, listCache, service.Options{
		PageSize: cfg.Server.PageSize,
		CacheTTL: cfg.Cache.TTL,
	})
	couponHandler := handler.NewCouponHandler(couponService, validator.New())
	healthHandler := handler.NewHealthHandler(checks)

	registerRoutes(app, cfg.Server.BasePath(), couponHandler, healthHandler)

	// Start server with graceful shutdown
	go func() {
		log.Info().
			Str("port", cfg.Server.Port).
			Str("base_path", cfg.Server.BasePath()).
			Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Dependencies close after the server so in-flight requests can finish.
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis client")
		}
	}
	pool.Close()
	log.Info().Msg("database connections closed")

	// Flush buffered spans last
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error flushing traces")
	}
	log.Info().Msg("server stopped")
}

// newApp creates the fiber app with production limits.
// UnescapePath lets ids escaped by the client match the :id route param.
func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "Coupon Admin",
		ReadTimeout:  30 * time.Second,  // Max time to read request
		WriteTimeout: 30 * time.Second,  // Max time to write response
		IdleTimeout:  120 * time.Second, // Max time for keep-alive connections
		BodyLimit:    1 * 1024 * 1024,   // 1MB body limit
		UnescapePath: true,
	})
}

// registerRoutes mounts the coupon and health routes under basePath.
func registerRoutes(app *fiber.App, basePath string, coupons *handler.CouponHandler, health *handler.HealthHandler) {
	api := app.Group(basePath)
	api.Get("/health", health.Check)
	coupons.Register(api)
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
