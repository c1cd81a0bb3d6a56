package main

import (
	"database/sql"

	"booktracker/internal/config"
	"booktracker/internal/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrationDB(cmd, db.Up)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the state of every migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrationDB(cmd, db.Status)
			},
		},
	)
	return cmd
}

func withMigrationDB(cmd *cobra.Command, fn func(*sql.DB, config.Driver) error) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	driver, dsn, err := cfg.DB.Source()
	if err != nil {
		return err
	}
	conn, err := db.OpenForMigrations(cmd.Context(), driver, dsn)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(conn, driver)
}
