package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/jdalton/taskwell-api/migrations"
)

// runMigrations executes a single migration command and returns.
func runMigrations(db *sql.DB, command string, logger *slog.Logger) error {
	if err := prepareGoose(); err != nil {
		return err
	}

	logger.Info("running migration command", "command", command)
	switch command {
	case "up":
		return goose.Up(db, ".")
	case "down":
		return goose.Down(db, ".")
	case "status":
		return goose.Status(db, ".")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}

// migrateUp applies any outstanding migrations at startup.
func migrateUp(db *sql.DB, logger *slog.Logger) error {
	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return err
	}
	logger.Info("database schema is up to date")
	return nil
}

func prepareGoose() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return nil
}
