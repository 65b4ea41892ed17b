package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "weather-pipeline/internal/api/http"
	"weather-pipeline/internal/config"
	"weather-pipeline/internal/logger"
	"weather-pipeline/internal/scheduler"
	"weather-pipeline/internal/store"
	"weather-pipeline/internal/weather"
	"weather-pipeline/internal/weather/providers"
)

func main() {
	_ = godotenv.Load()

	log := logger.Get()
	defer logger.Close()

	// Load configuration. A missing API credential fails here, at startup.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Postgres store; migrates the schema on connect.
	pgStore, err := store.Open(cfg.DSN())
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	fetcher := providers.NewOpenWeatherClient(httpClient, cfg.OpenWeatherAPIKey, cfg.BaseURL)

	// Core service running fetch -> normalize -> insert per city.
	service := weather.NewService(pgStore, fetcher, cfg.Units, log)

	// Scheduler driving collection cycles and daily retention cleanup.
	sched := scheduler.New(cfg.Cities, cfg.FetchInterval, cfg.RetentionDays, service, service, log)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-pipeline",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-pipeline",
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Read-only query interface for the dashboard.
	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()

	log.Infow("weather pipeline started",
		"cities", cfg.Cities, "interval", cfg.FetchInterval, "port", cfg.Port)

	// Wait for termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}
