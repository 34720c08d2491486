// ABOUTME: Root Cobra command for the weather-etl CLI.
// ABOUTME: Opens the configured store before subcommands and closes it after.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/config"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/storage"
)

var (
	cfg   *config.Config
	store *storage.DB

	flagDBPath  string
	flagBackend string
	flagPGDSN   string
)

var rootCmd = &cobra.Command{
	Use:   "weather-etl",
	Short: "Weather data pipeline and store",
	Long: `Weather ETL tracks current weather for a roster of cities.

The pipeline fetches observations from OpenWeatherMap, archives the raw
payloads, and loads them into a dimensional store: a city registry, a
condition registry, a measurement fact table, and a latest-weather view.

QUICK START:

  $ export OPENWEATHER_API_KEY=yourkey
  $ weather-etl fetch                   # Fetch the configured roster once
  $ weather-etl latest                  # Current conditions per city
  $ weather-etl latest London           # One city in detail
  $ weather-etl history London --from 2026-08-01

MANUAL ENTRY:

  $ weather-etl record London 21.5 --condition Clouds
  $ weather-etl cities --add Reykjavik --country IS

RUNNING AS A SERVICE:

  $ weather-etl run                     # Scheduled fetches, every 60 minutes
  $ weather-etl run --api               # Also serve the HTTP API on :8080

MCP INTEGRATION:

  Run 'weather-etl mcp' to start the Model Context Protocol server for
  use with Claude Desktop or other MCP-compatible AI assistants.

DATA STORAGE:

  SQLite by default at ~/.local/share/weather-etl/weather.db. Set
  backend "postgres" plus a DSN in the config (or --backend/--pg-dsn)
  to use PostgreSQL. Config lives at ~/.config/weather-etl/config.json;
  environment variables override file values.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store setup for commands that don't need it
		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if flagBackend != "" {
			cfg.Backend = flagBackend
		}
		if flagPGDSN != "" {
			cfg.PostgresDSN = flagPGDSN
		}

		if flagDBPath != "" {
			var opts []storage.Option
			if !cfg.RangeValidation() {
				opts = append(opts, storage.WithRangeValidation(false))
			}
			store, err = storage.Open(config.ExpandPath(flagDBPath), opts...)
		} else {
			store, err = cfg.OpenStorage()
		}
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		return nil
	},
}

// Execute runs the root command and closes the store on the way out.
// The close happens here rather than in PersistentPostRunE because
// Cobra skips post-hooks when a RunE fails.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeStore(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func closeStore() error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}

func init() {
	rootCmd.Version = "1.0.0"
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite or postgres (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagPGDSN, "pg-dsn", "", "PostgreSQL connection string (overrides config)")
}
