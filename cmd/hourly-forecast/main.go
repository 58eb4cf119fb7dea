package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	httpapi "github.com/i474232898/hourly-forecast/internal/api/http"
	"github.com/i474232898/hourly-forecast/internal/config"
	"github.com/i474232898/hourly-forecast/internal/metrics"
	"github.com/i474232898/hourly-forecast/internal/scheduler"
	"github.com/i474232898/hourly-forecast/internal/weather"
	"github.com/i474232898/hourly-forecast/internal/weather/providers"
)

// initLogger sets the logrus level from its name.
func initLogger(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetLevel(lvl)
	return nil
}

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := initLogger(cfg.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	// Outbound client for the forecast source.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	provider := providers.NewSMHIProvider(httpClient, providers.SMHIConfig{
		BaseURL:  cfg.SMHIBaseURL,
		Location: cfg.Location,
		Breaker:  cfg.BreakerConfig(),
	})
	log.WithField("url", provider.URL()).Info("forecast source configured")

	recorder := metrics.NewPrometheusRecorder()

	service := weather.NewService(provider,
		weather.WithTimeZone(cfg.Zone),
		weather.WithRecorder(recorder),
	)

	// Periodic upstream probe feeding /health.
	sched := scheduler.New(cfg.ProbeInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "hourly-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Leave room for the outbound call.
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/metrics", adaptor.HTTPHandler(recorder.Handler()))

	httpapi.RegisterRoutes(app, service)

	go func() {
		log.Infof("listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Errorf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}
