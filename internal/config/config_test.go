package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("port = %q", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeout.Duration() != 10*time.Second {
		t.Errorf("read timeout = %v", cfg.HTTP.ReadTimeout.Duration())
	}
	if cfg.Session.TTL.Duration() != 24*time.Hour {
		t.Errorf("session ttl = %v", cfg.Session.TTL.Duration())
	}
	if cfg.Cache.BookTTL.Duration() != time.Minute {
		t.Errorf("cache ttl = %v", cfg.Cache.BookTTL.Duration())
	}
	if cfg.Upload.Dir != "uploads/" {
		t.Errorf("upload dir = %q", cfg.Upload.Dir)
	}
	driver, dsn, err := cfg.DB.Source()
	if err != nil || driver != DriverSQLite || dsn != "books.db" {
		t.Errorf("db source = %q %q %v", driver, dsn, err)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("cors origins = %v", cfg.CORS.AllowedOrigins)
	}
	if err := cfg.ValidateServer(); err == nil {
		t.Error("expected missing SECRET_KEY to fail server validation")
	}
}

func TestLoadCORSOrigins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://books.example, http://localhost:5173/")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"https://books.example", "http://localhost:5173"}
	if len(cfg.CORS.AllowedOrigins) != len(want) {
		t.Fatalf("origins = %v", cfg.CORS.AllowedOrigins)
	}
	for i := range want {
		if cfg.CORS.AllowedOrigins[i] != want[i] {
			t.Errorf("origin[%d] = %q, want %q", i, cfg.CORS.AllowedOrigins[i], want[i])
		}
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg, err = Load()
	if err != nil || len(cfg.CORS.AllowedOrigins) != 0 {
		t.Errorf("empty origins = %v err = %v", cfg.CORS.AllowedOrigins, err)
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", "*")
	if _, err := Load(); err == nil {
		t.Error("expected wildcard origin to be rejected")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SECRET_KEY", "k")
	t.Setenv("HTTP_READ_TIMEOUT", "3")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("REDIS_URL", "redis://:pw@redis:6379/3")
	t.Setenv("DATABASE_URL", "postgres://app:app@db:5432/books?sslmode=disable")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.ReadTimeout.Duration() != 3*time.Second {
		t.Errorf("read timeout = %v", cfg.HTTP.ReadTimeout.Duration())
	}
	if cfg.Session.TTL.Duration() != 2*time.Hour {
		t.Errorf("session ttl = %v", cfg.Session.TTL.Duration())
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.Password != "pw" || cfg.Redis.DB != 3 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	driver, _, err := cfg.DB.Source()
	if err != nil || driver != DriverPostgres {
		t.Errorf("driver = %q err = %v", driver, err)
	}
	if err := cfg.ValidateServer(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoadRejectsUnknownDatabase(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "mysql://root@localhost/books")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for mysql URL")
	}
}

func TestDBSourceSQLitePaths(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"sqlite://books.db", "books.db"},
		{"sqlite:///books.db", "books.db"},
		{"sqlite:////var/lib/booktracker/books.db", "/var/lib/booktracker/books.db"},
		{"sqlite://:memory:", ":memory:"},
	}
	for _, tt := range tests {
		driver, got, err := DBConfig{URL: tt.url}.Source()
		if err != nil {
			t.Errorf("%s: %v", tt.url, err)
			continue
		}
		if driver != DriverSQLite || got != tt.want {
			t.Errorf("%s: got %q %q, want sqlite %q", tt.url, driver, got, tt.want)
		}
	}
	if _, _, err := (DBConfig{URL: "sqlite://"}).Source(); err == nil {
		t.Error("expected error for empty sqlite path")
	}
}
