package main

import (
	"fmt"
	"os"

	"synapse/database"
	"synapse/internal/config"
	internaldb "synapse/internal/database"
	"synapse/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the Postgres schema",
		SilenceUsage: true,
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration, or --steps of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *internaldb.Migrator) error {
				if err := m.Down(steps); err != nil {
					return err
				}
				logger.Get().Info("Migrations rolled back", zap.Int("steps", steps))
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back, 0 for all")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m *internaldb.Migrator) error {
					if err := m.Up(); err != nil {
						return err
					}
					logger.Get().Info("Migrations applied")
					return nil
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(m *internaldb.Migrator) error {
					v, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

// withMigrator loads the config, opens the database and hands a migrator
// to fn. Everything is closed before it returns.
func withMigrator(fn func(m *internaldb.Migrator) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		return err
	}
	defer logger.Sync()

	db, err := internaldb.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := internaldb.NewMigrator(db.DB, database.Migrations, database.MigrationsDir)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}
