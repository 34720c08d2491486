// ABOUTME: CLI command probing the store and provider connections.
// ABOUTME: Checks the database first, then OpenWeatherMap when a key is set.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/owm"
)

var dbtestCmd = &cobra.Command{
	Use:   "dbtest",
	Short: "Test store and provider connections",
	Long: `Probe the configured storage backend and, when an API key is set,
the OpenWeatherMap endpoint.

EXAMPLES:

  weather-etl dbtest
  weather-etl dbtest --backend postgres --pg-dsn postgres://localhost/weather`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := store.TestConnection(ctx); err != nil {
			color.Red("✗ Store unreachable (%s)", store.Engine())
			return err
		}
		color.Green("✓ Store reachable (%s)", store.Engine())

		if cfg.APIKey == "" {
			fmt.Printf("  %s\n", color.New(color.Faint).Sprint(
				"no OPENWEATHER_API_KEY set, skipping provider probe"))
			return nil
		}

		client, err := owm.New(cfg.APIKey, owm.WithBaseURL(cfg.GetAPIBaseURL()))
		if err != nil {
			return err
		}
		if err := client.TestConnection(ctx); err != nil {
			color.Red("✗ OpenWeatherMap unreachable")
			return err
		}
		color.Green("✓ OpenWeatherMap reachable")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbtestCmd)
}
