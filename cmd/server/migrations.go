package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/mnemo-app/mnemo-api/internal/config"
)

// runMigrations applies pending database migrations at startup using goose.
// Migrations are plain SQL files in the configured migrations directory.
func runMigrations(db *sql.DB, cfg *config.Config, logger *slog.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	logger.Info("applying database migrations",
		"dir", cfg.Database.MigrationsDir)

	if err := goose.Up(db, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	logger.Info("database migrations applied", "version", version)
	return nil
}
