package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/database"
	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var dir string
	var steps int

	// withMigrator opens the configured database and runs fn against it
	withMigrator := func(fn func(m *migrate.Migrate) error) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := database.Connect(context.Background(), cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()

		m, err := database.NewMigrator(db, cfg.DB, dir)
		if err != nil {
			return err
		}
		// Closing a sqlite instance migrator would close db itself
		if !cfg.DB.IsMemory() {
			defer m.Close()
		}
		return fn(m)
	}

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the communes database schema",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dir, "dir", "migrations", "directory holding the postgres and sqlite migration sets")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				logger.Info("Running migrations UP")
				if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return err
				}
				return nil
			})
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Revert migrations (all of them unless --steps is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				logger.Info("Running migrations DOWN", zap.Int("steps", steps))
				var err error
				if steps > 0 {
					err = m.Steps(-steps)
				} else {
					err = m.Down()
				}
				if err != nil && !errors.Is(err, migrate.ErrNoChange) {
					return err
				}
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 0, "number of migrations to revert")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *migrate.Migrate) error {
				v, dirty, err := m.Version()
				if errors.Is(err, migrate.ErrNilVersion) {
					logger.Info("No migration applied yet")
					return nil
				}
				if err != nil {
					return err
				}
				logger.Info("Migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
				return nil
			})
		},
	}

	root.AddCommand(up, down, version)

	if err := root.Execute(); err != nil {
		logger.Error("Migration command failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("Migration command completed successfully")
}
