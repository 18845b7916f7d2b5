package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	httpapi "github.com/pvops/cams-pipeline/internal/api/http"
	"github.com/pvops/cams-pipeline/internal/cams"
	"github.com/pvops/cams-pipeline/internal/config"
	"github.com/pvops/cams-pipeline/internal/pipeline"
	"github.com/pvops/cams-pipeline/internal/scheduler"
	"github.com/pvops/cams-pipeline/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	configPath := flag.String("config", getenvDefault("CAMS_CONFIG", config.DefaultConfigFile),
		"Path to the pipeline config file.")
	watch := flag.Duration("watch", 0,
		"Run a pipeline pass on this interval instead of once (e.g. 15m). 0 runs once and exits.")
	addr := flag.String("addr", os.Getenv("CAMS_STATUS_ADDR"),
		"Address for the status HTTP server (e.g. :8080). Empty disables it.")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound CAMS calls.
	httpClient := &http.Client{
		Timeout: cfg.ClientTimeout(),
	}
	client := cams.NewClient(httpClient, cfg.ServerName)

	// In-memory run history feeding the status API.
	runs := store.NewMemoryStore(100, 24*time.Hour)

	runner := pipeline.NewRunner(cfg, client, runs)

	// One-shot mode: a single pass, then exit.
	if *watch <= 0 && *addr == "" {
		report, err := runner.Run(context.Background())
		if err != nil {
			log.Fatalf("pipeline run failed: %v", err)
		}
		if report.Skipped {
			log.Println("nothing to process; exiting")
			return
		}
		log.Printf("pipeline run %s completed: output %s", report.ID, report.Output)
		return
	}

	if *watch > 0 {
		sched := scheduler.New(*watch, runner)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var app *fiber.App
	if *addr != "" {
		app = fiber.New(fiber.Config{
			AppName:               "cams-pipeline",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          10 * time.Second,
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
				"service": "cams-pipeline",
			})
		})

		httpapi.RegisterRoutes(app, cfg, runner, runs)

		go func() {
			if err := app.Listen(*addr); err != nil {
				log.Printf("fiber server stopped: %v", err)
			}
		}()
	}

	<-ctx.Done()

	if app != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
