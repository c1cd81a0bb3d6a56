package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"booktracker/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

func init() {
	goose.SetBaseFS(migrations)
}

// SetLogger routes goose output through logger.
func SetLogger(logger *slog.Logger) {
	goose.SetLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
}

func dialect(driver config.Driver) (name, dir string, err error) {
	switch driver {
	case config.DriverPostgres:
		return "postgres", "migrations/postgres", nil
	case config.DriverSQLite:
		return "sqlite3", "migrations/sqlite", nil
	}
	return "", "", fmt.Errorf("no migrations for driver %q", driver)
}

// OpenForMigrations opens a database/sql handle suitable for goose.
func OpenForMigrations(ctx context.Context, driver config.Driver, dsn string) (*sql.DB, error) {
	switch driver {
	case config.DriverPostgres:
		db, err := goose.OpenDBWithDriver("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("goose open db: %w", err)
		}
		return db, nil
	case config.DriverSQLite:
		return OpenSQLite(ctx, dsn)
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

// Up applies all pending migrations.
func Up(db *sql.DB, driver config.Driver) error {
	name, dir, err := dialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(name); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Status logs the applied state of every migration.
func Status(db *sql.DB, driver config.Driver) error {
	name, dir, err := dialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(name); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Status(db, dir); err != nil {
		return fmt.Errorf("goose status: %w", err)
	}
	return nil
}

// Version returns the current schema version.
func Version(db *sql.DB, driver config.Driver) (int64, error) {
	name, _, err := dialect(driver)
	if err != nil {
		return 0, err
	}
	if err := goose.SetDialect(name); err != nil {
		return 0, fmt.Errorf("goose dialect: %w", err)
	}
	return goose.GetDBVersion(db)
}
