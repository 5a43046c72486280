package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gastos/internal/cli"
	"gastos/internal/log"
	"gastos/internal/storage"
)

func migrateCmd() *cobra.Command {
	var down int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Long: `Apply every pending migration to the SQLite database at SQLITE_DB_PATH.
With --down N the last N migrations are rolled back instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := cli.SetupLogger(cfg, log.ComponentStorage)

			if cfg.DataBackend != "sqlite" {
				return fmt.Errorf("migrate needs DATA_BACKEND=sqlite, got %q", cfg.DataBackend)
			}
			if err := os.MkdirAll(filepath.Dir(cfg.SQLiteDBPath), 0o755); err != nil {
				return fmt.Errorf("create db directory: %w", err)
			}

			var version uint
			if down > 0 {
				version, err = storage.RollbackMigrations(cfg.SQLiteDBPath, down)
			} else {
				version, err = storage.RunMigrations(cfg.SQLiteDBPath)
			}
			if err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "Schema migrated",
				"db_path", cfg.SQLiteDBPath,
				"version", version,
				"rolled_back", down)
			return nil
		},
	}
	cmd.Flags().IntVar(&down, "down", 0, "roll back N migrations")
	return cmd
}
