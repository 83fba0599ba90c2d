package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/lastros/pos-backend/internal/cron"
	"github.com/lastros/pos-backend/internal/products"
	"github.com/lastros/pos-backend/internal/uploads"
	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/db"
	"github.com/lastros/pos-backend/pkg/logger"
	"github.com/lastros/pos-backend/pkg/metrics"
	"github.com/lastros/pos-backend/pkg/migrate"
	"github.com/lastros/pos-backend/pkg/outbox"
	"github.com/lastros/pos-backend/pkg/redis"
)

const lockKeyFormat = "pos:maintenance:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "maintenance-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "maintenance-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(context.Background(), "maintenance worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "maintenance worker shut down")
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "maintenance-worker",
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	lock, closeLock, err := newLock(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeLock()) }()

	reg := metrics.NewRegistry()
	if addr := cfg.Maintenance.MetricsAddr; addr != "" {
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

	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:        logg,
		DB:            dbClient,
		Repository:    outbox.NewRepository(dbClient.DB()),
		RetentionDays: cfg.Maintenance.OutboxRetentionDays,
	})
	if err != nil {
		return err
	}
	store, err := uploads.NewStore(cfg.Uploads, logg)
	if err != nil {
		return err
	}
	orphans, err := cron.NewOrphanUploadJob(cron.OrphanUploadJobParams{
		Logger:   logg,
		Store:    store,
		Products: products.NewRepository(dbClient.DB()),
		MinAge:   time.Duration(cfg.Maintenance.OrphanUploadAgeHours) * time.Hour,
	})
	if err != nil {
		return err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(retention, orphans),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(reg),
		Interval: cfg.Maintenance.Interval(),
	})
	if err != nil {
		return err
	}

	logg.Info(ctx, "starting maintenance worker")
	return service.Run(ctx)
}

// newLock prefers a Redis lease so several workers can run side by side.
// When Redis is unreachable the lock is process local.
func newLock(ctx context.Context, cfg *config.Config, logg *logger.Logger) (cron.Lock, func() error, error) {
	client, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "redis unavailable, maintenance lock is process local")
		return &cron.LocalLock{}, func() error { return nil }, nil
	}
	env := cfg.App.Env
	if env == "" {
		env = "local"
	}
	lock, err := cron.NewRedisLock(client, fmt.Sprintf(lockKeyFormat, env), 0)
	if err != nil {
		return nil, nil, multierr.Append(err, client.Close())
	}
	return lock, client.Close, nil
}
