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

	"github.com/lastros/pos-backend/api/routes"
	"github.com/lastros/pos-backend/internal/auth"
	"github.com/lastros/pos-backend/internal/dashboard"
	"github.com/lastros/pos-backend/internal/expenses"
	"github.com/lastros/pos-backend/internal/orders"
	"github.com/lastros/pos-backend/internal/products"
	"github.com/lastros/pos-backend/internal/tenants"
	"github.com/lastros/pos-backend/internal/uploads"
	"github.com/lastros/pos-backend/internal/users"
	"github.com/lastros/pos-backend/pkg/auth/session"
	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/db"
	"github.com/lastros/pos-backend/pkg/logger"
	"github.com/lastros/pos-backend/pkg/metrics"
	"github.com/lastros/pos-backend/pkg/migrate"
	"github.com/lastros/pos-backend/pkg/outbox"
	"github.com/lastros/pos-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "api server shut down")
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := connectRedis(ctx, cfg, logg)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
	}

	var (
		sessionManager *session.Manager
		sessionChecker session.AccessSessionChecker
	)
	if cfg.FeatureFlags.Sessions {
		sessionManager, err = session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			return err
		}
		sessionChecker = sessionManager
	}

	authParams := auth.ServiceParams{
		UserRepo:          users.NewRepository(dbClient.DB()),
		TenantRepo:        tenants.NewRepository(dbClient.DB()),
		JWTConfig:         cfg.JWT,
		PasswordConfig:    cfg.Password,
		DefaultTenantSlug: cfg.App.DefaultTenantSlug,
		Logger:            logg,
	}
	if sessionManager != nil {
		authParams.SessionManager = sessionManager
	}
	authService, err := auth.NewService(authParams)
	if err != nil {
		return err
	}

	productService, err := products.NewService(products.NewRepository(dbClient.DB()), logg)
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:    orders.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Outbox:  outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Metrics: metrics.NewOrderMetrics(reg),
		Logger:  logg,
	})
	if err != nil {
		return err
	}

	expenseService, err := expenses.NewService(expenses.NewRepository(dbClient.DB()))
	if err != nil {
		return err
	}

	dashboardService, err := dashboard.NewService(dashboard.NewRepository(dbClient.DB()), cfg.Dashboard)
	if err != nil {
		return err
	}

	uploadStore, err := uploads.NewStore(cfg.Uploads, logg)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"sessions": sessionChecker != nil,
		"redis":    redisClient != nil,
	})

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			Sessions:       sessionChecker,
			HTTPMetrics:    metrics.NewHTTPMetrics(reg),
			MetricsHandler: metrics.Handler(reg),
			Uploads:        uploadStore,
			Auth:           authService,
			Products:       productService,
			Orders:         orderService,
			Expenses:       expenseService,
			Dashboard:      dashboardService,
		}),
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// connectRedis is required when sessions are enforced. Otherwise a failed
// connection only disables rate limiting and idempotent replays.
func connectRedis(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*redis.Client, error) {
	client, err := redis.New(ctx, cfg.Redis, logg)
	if err == nil {
		return client, nil
	}
	if cfg.FeatureFlags.Sessions {
		return nil, err
	}
	logg.Warn(logg.WithField(ctx, "error", err.Error()), "redis unavailable, continuing without sessions, rate limits or idempotency")
	return nil, nil
}
