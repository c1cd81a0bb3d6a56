// @title           Book Tracker API
// @version         1.0
// @description     Track reading progress and PDF uploads per user.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey CookieAuth
// @in              cookie
// @name            session_id
package main

import (
	"log/slog"
	"os"

	"booktracker/internal/config"
	"booktracker/internal/db"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "booktracker",
		Short:        "Per-user reading tracker with PDF uploads",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newUserCmd())
	return root
}

// loadConfig reads the configuration and builds the process logger from it.
func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	log := newLogger(cfg.App)
	db.SetLogger(log)
	return cfg, log, nil
}

func newLogger(cfg config.AppConfig) *slog.Logger {
	var h slog.Handler
	if cfg.IsProd() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(h).With("version", cfg.Version)
}
