package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"accountsvc/internal/config"
	"accountsvc/internal/database"
)

type schemaMigrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Close() error
}

var openMigrator = func(dsn string) (schemaMigrator, error) {
	return database.NewMigrator(dsn)
}

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			cmd.Println("Migrations applied")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			cmd.Println("Migrations rolled back")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: withMigrator(func(cmd *cobra.Command, m schemaMigrator) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if dirty {
				cmd.Printf("%d (dirty)\n", version)
				return nil
			}
			cmd.Printf("%d\n", version)
			return nil
		}),
	})

	return cmd
}

func withMigrator(run func(*cobra.Command, schemaMigrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if strings.TrimSpace(cfg.Postgres.DSN) == "" {
			return config.ErrMissingDSN
		}

		m, err := openMigrator(cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		runErr := run(cmd, m)
		return errors.Join(runErr, m.Close())
	}
}

func migrateUp(dsn string) error {
	m, err := openMigrator(dsn)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil {
		return errors.Join(fmt.Errorf("auto migrate: %w", err), m.Close())
	}
	return m.Close()
}
