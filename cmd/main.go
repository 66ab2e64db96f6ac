package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zhihong0321/ATAP-solar/internal/api"
	"github.com/Zhihong0321/ATAP-solar/internal/atap"
	"github.com/Zhihong0321/ATAP-solar/internal/cache"
	"github.com/Zhihong0321/ATAP-solar/internal/config"
	"github.com/Zhihong0321/ATAP-solar/internal/logger"
	"github.com/Zhihong0321/ATAP-solar/internal/media"
	"github.com/Zhihong0321/ATAP-solar/internal/middleware"
	"github.com/Zhihong0321/ATAP-solar/internal/newsroom"
	"github.com/Zhihong0321/ATAP-solar/internal/stocks"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Msg("Starting application...")

	// Quote cache: Redis when configured, in-memory otherwise
	var quoteCache cache.QuoteCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisQuoteCache(cfg.RedisURL, cfg.RedisPrefix, cfg.StockCacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis quote cache")
		}
		quoteCache = redisCache
	} else {
		quoteCache = cache.NewMemoryQuoteCache(cfg.StockCacheTTL)
	}
	defer func() {
		if err := quoteCache.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing quote cache")
		}
	}()

	// Remote content API client and the services built on it
	contentClient := atap.NewClient(cfg.ContentAPIBaseURL, cfg.HTTPTimeout)
	coordinator := newsroom.NewCoordinator(contentClient)
	stockService := stocks.NewService(cfg.QuoteAPIBaseURL, quoteCache)

	// R2 media uploads are optional
	var uploader *media.Uploader
	if cfg.MediaEnabled() {
		var err error
		uploader, err = media.NewUploader(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 uploader")
		}
	} else {
		log.Warn().Msg("R2 not configured, media uploads disabled")
	}

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New()) // Recover from panics
	app.Use(middleware.RequestLogger())

	// Setup API routes
	handlers := api.NewHandlers(cfg, contentClient, coordinator, stockService, uploader)
	api.SetupRoutes(app, handlers)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Shutdown the server
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
