package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/log"
	"gastos/internal/sheets/google"
	"gastos/internal/storage"
	"gastos/internal/worker"
)

var cfgFile string

func main() {
	cli.LoadEnvFile()

	cmd := &cobra.Command{
		Use:   "gastos-worker",
		Short: "Mirror the ledger to Google Sheets",
		Long: `gastos-worker consumes ledger events from AMQP and rewrites the mirror
spreadsheet from the SQLite store after each one. A periodic full resync
covers events lost while the worker was down.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			format, _ := cmd.Flags().GetString("log-format")
			cfg, err := cli.LoadAndValidateConfig(cfgFile, map[string]string{
				"log_level":  level,
				"log_format": format,
			})
			if err != nil {
				return err
			}
			if err := cfg.ValidateWorker(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cli.SetupLogger(cfg, log.ComponentWorker))
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	cmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "", "log format (text, json, tint)")

	ctx, stop := cli.SignalContext(context.Background())
	err := cmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	logger.InfoContext(ctx, "Starting gastos-worker",
		"db_path", cfg.SQLiteDBPath,
		"queue", cfg.AMQPQueue,
		"sync_interval", cfg.SyncInterval.String())

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer repo.Close()

	mirror, err := google.New(ctx, cfg.GoogleSpreadsheetID, google.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return fmt.Errorf("google sheets: %w", err)
	}

	consumer, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return fmt.Errorf("amqp: %w", err)
	}
	defer consumer.Close()

	syncWorker := worker.NewSyncWorker(repo, mirror, cfg.SyncInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.ConsumeLedgerEvents(gctx, syncWorker.HandleLedgerEvent)
	})
	g.Go(func() error {
		return syncWorker.Run(gctx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	stats := syncWorker.Stats()
	logger.InfoContext(context.WithoutCancel(ctx), "Worker stopped",
		"syncs", stats.Syncs,
		"failures", stats.Failures)
	return err
}
