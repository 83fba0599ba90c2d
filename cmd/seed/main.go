package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/lastros/pos-backend/pkg/config"
	"github.com/lastros/pos-backend/pkg/db"
	"github.com/lastros/pos-backend/pkg/logger"
	"github.com/lastros/pos-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "seed"})
	_ = godotenv.Load()

	password := flag.String("password", "password123", "admin password")
	email := flag.String("email", "admin@lastros.com", "admin email")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.App.Env)

	if err := run(ctx, cfg, logg, seedParams{
		TenantSlug: cfg.App.DefaultTenantSlug,
		AdminEmail: *email,
		Password:   *password,
		Passwords:  cfg.Password,
	}); err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger, params seedParams) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}
	_, err = seed(ctx, dbClient.DB(), params, logg)
	return err
}
