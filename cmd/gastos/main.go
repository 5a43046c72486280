package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gastos/internal/cli"
	"gastos/internal/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "gastos",
		Short: "Household expense ledger",
		Long: `gastos records the people of a household, the categories their money
goes to and every income or expense entry, and reports totals per person and
per category.`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml); environment variables still apply")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json, tint)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reportCmd())
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := cli.SignalContext(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and --config, with the logging flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	return cli.LoadAndValidateConfig(cfgFile, map[string]string{
		"log_level":  level,
		"log_format": format,
	})
}
