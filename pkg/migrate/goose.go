package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/pressly/goose/v3"
)

const DefaultDir = "pkg/migrate/migrations"

// The SQL files are written for Postgres; SQLite schemas come from AutoMigrate.
const gooseDialect = "postgres"

func prepare(db *sql.DB, dir string) error {
	switch {
	case db == nil:
		return errors.New("db is required")
	case dir == "":
		return errors.New("dir is required")
	}
	return goose.SetDialect(gooseDialect)
}

// Run executes a goose command (up, down, status, version, ...) against db.
func Run(ctx context.Context, db *sql.DB, dir, command string, args ...string) error {
	if err := prepare(db, dir); err != nil {
		return err
	}
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion moves the schema up or down until it sits at version.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir, version string) error {
	target, err := strconv.ParseInt(version, 10, 64)
	if err != nil || len(version) != len(versionLayout) {
		return fmt.Errorf("invalid version %q, want %s", version, versionLayout)
	}
	if err := prepare(db, dir); err != nil {
		return err
	}
	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	step, apply := "up-to", goose.UpToContext
	switch {
	case current == target:
		return nil
	case current > target:
		step, apply = "down-to", goose.DownToContext
	}
	if err := apply(ctx, db, dir, target); err != nil {
		return fmt.Errorf("goose %s %d: %w", step, target, err)
	}
	return nil
}
