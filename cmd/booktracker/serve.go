package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booktracker/internal/app"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateServer(); err != nil {
				return err
			}
			log.Info("config loaded, connecting to database and Redis")

			application, err := app.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			server := &http.Server{
				Addr:         "0.0.0.0:" + cfg.HTTP.Port,
				Handler:      application.Router(),
				ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
				WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
				IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("HTTP server listening", "addr", server.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			var serveErr error
			select {
			case sig := <-quit:
				log.Info("shutting down", "signal", sig.String())
			case serveErr = <-errCh:
				log.Error("HTTP server error", "error", serveErr)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				log.Error("shutdown", "error", err)
			}
			if err := application.Close(ctx); err != nil {
				log.Error("close", "error", err)
			}
			return serveErr
		},
	}
}
