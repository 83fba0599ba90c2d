package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/db"
	"github.com/lastros/pos-backend/pkg/kafka"
	"github.com/lastros/pos-backend/pkg/logger"
	"github.com/lastros/pos-backend/pkg/metrics"
	"github.com/lastros/pos-backend/pkg/migrate"
	"github.com/lastros/pos-backend/pkg/outbox"
	"github.com/lastros/pos-backend/pkg/outbox/registry"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "outbox-publisher"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "outbox-publisher",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(context.Background(), "outbox publisher stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "outbox publisher shut down")
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	if !cfg.Kafka.Enabled() {
		return errors.New(config.EnvKafkaBrokers + " is required for the outbox publisher")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "outbox-publisher",
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	producer, err := kafka.NewProducer(cfg.Kafka, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, producer.Close()) }()

	eventRegistry, err := registry.NewEventRegistry(cfg.Kafka)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	if addr := cfg.Outbox.MetricsAddr; addr != "" {
		srv := &http.Server{Addr: addr, Handler: metrics.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logg.Error(ctx, "metrics server failed", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = multierr.Append(err, srv.Shutdown(shutdownCtx))
		}()
	}

	service, err := NewService(ServiceParams{
		Config:     cfg.Outbox,
		Logger:     logg,
		DB:         dbClient,
		Publisher:  producer,
		Repository: outbox.NewRepository(dbClient.DB()),
		Registry:   eventRegistry,
		Metrics:    metrics.NewPublisherMetrics(reg),
	})
	if err != nil {
		return err
	}

	logg.Info(ctx, "starting outbox publisher")
	return service.Run(ctx)
}
