package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sagarc03/helloapi/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "helloapi",
	Short:   "Minimal hello world web API",
	Long: `helloapi serves a small JSON and HTML API behind an
environment-dependent request pipeline.

In development, unhandled failures render a detailed error page.
In production they are forwarded to the error path and every response
carries Strict-Transport-Security.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringArray("config", nil, "config file path, repeatable, later files override earlier (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("env", "", "environment: development or production (default: production, env: HELLOAPI_ENV)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: none, sqlite, postgres (env: HELLOAPI_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (env: HELLOAPI_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: HELLOAPI_LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(incidentsCmd)
}

// loadConfig reads .env, loads the configuration, and sets up logging before
// any subcommand runs.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("error reading .env file", "err", err)
	}

	configFiles, _ := cmd.Flags().GetStringArray("config")

	cfg, err := config.Load(configFiles, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	setupLogging(cfg)
	cmd.SetContext(config.WithContext(cmd.Context(), cfg))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
