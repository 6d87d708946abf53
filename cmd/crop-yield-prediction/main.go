package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/crop-yield-prediction/internal/api/http"
	"github.com/i474232898/crop-yield-prediction/internal/config"
	"github.com/i474232898/crop-yield-prediction/internal/scheduler"
	"github.com/i474232898/crop-yield-prediction/internal/store"
	"github.com/i474232898/crop-yield-prediction/internal/yield"
	"github.com/i474232898/crop-yield-prediction/internal/yield/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound predictor calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Probe history with configured retention.
	memStore := store.NewMemoryStore(cfg.StatusMaxHistory, cfg.StatusMaxAge)

	// Remote predictors with resilience (backoff + circuit breaker), tried in order.
	var preds []yield.Predictor

	gemini, err := providers.NewGeminiPredictor(context.Background(), httpClient, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Printf("ERROR: gemini predictor disabled: %v", err)
	} else {
		preds = append(preds, gemini)
	}
	if cfg.GeminiAPIKey == "" {
		log.Println("WARN: GEMINI_API_KEY missing - predictions will use the local heuristic engine")
	}

	if cfg.MLServiceURL != "" {
		preds = append(preds, providers.NewMLServicePredictor(httpClient, cfg.MLServiceURL))
	} else {
		log.Println("INFO: ML_SERVICE_URL not set - ml-service predictor disabled")
	}

	// Core service: remote predictors with the local engine as fallback.
	engine := yield.NewEngine(yield.NewLockedRand(cfg.Seed()))
	service := yield.NewService(engine, preds, memStore)

	// Scheduler that periodically probes predictor availability.
	sched := scheduler.New(cfg.ProbeInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "crop-yield-prediction",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.PredictTimeout + 5*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
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

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "crop-yield-prediction",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, cfg.PredictTimeout)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: listening on :%s", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
