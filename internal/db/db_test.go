package db

import (
	"context"
	"path/filepath"
	"testing"

	"booktracker/internal/config"
)

func TestSQLiteMigrationsApply(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "books.db")
	sqlDB, err := OpenForMigrations(ctx, config.DriverSQLite, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sqlDB.Close()

	if err := Up(sqlDB, config.DriverSQLite); err != nil {
		t.Fatalf("up: %v", err)
	}
	// second run is a no-op
	if err := Up(sqlDB, config.DriverSQLite); err != nil {
		t.Fatalf("up again: %v", err)
	}
	v, err := Version(sqlDB, config.DriverSQLite)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != 2 {
		t.Fatalf("version = %d, want 2", v)
	}

	if _, err := sqlDB.ExecContext(ctx, `INSERT INTO books (title, total_pages, owner_id) VALUES ('Orphan', 10, 42)`); err == nil {
		t.Fatal("expected foreign key violation for unknown owner")
	}
	if _, err := sqlDB.ExecContext(ctx, `INSERT INTO users (username, password_hash) VALUES ('ann', 'x')`); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if _, err := sqlDB.ExecContext(ctx, `INSERT INTO books (title, total_pages, owner_id) VALUES ('Zero', 0, 1)`); err == nil {
		t.Fatal("expected check violation for total_pages = 0")
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	sqlDB, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer sqlDB.Close()
	if err := Up(sqlDB, config.DriverSQLite); err != nil {
		t.Fatalf("up: %v", err)
	}
}

func TestDialectUnknownDriver(t *testing.T) {
	if _, _, err := dialect(config.Driver("oracle")); err == nil {
		t.Fatal("expected error")
	}
}
