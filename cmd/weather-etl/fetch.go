// ABOUTME: CLI command for a one-shot fetch of the city roster.
// ABOUTME: Runs extract, archive, transform, load once and prints a summary.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/config"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/ingest"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/owm"
)

var (
	fetchCity      string
	fetchCountry   string
	fetchAll       bool
	fetchNoArchive bool
)

var fetchCmd = &cobra.Command{
	Use:     "fetch",
	Aliases: []string{"f"},
	Short:   "Fetch current weather once",
	Long: `Fetch current weather for the configured city roster and load it
into the store.

Raw provider payloads are archived under <data-dir>/archive before
transformation so a run can be re-processed later with 'weather-etl
replay'. Measurements already present count as duplicates, not errors.

EXAMPLES:

  weather-etl fetch                    # Fetch the configured roster
  weather-etl fetch --all              # Same, spelled out
  weather-etl fetch --city London      # Fetch a single city
  weather-etl fetch --city Perth --country AU
  weather-etl fetch --no-archive       # Skip the raw payload archive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchAll && fetchCity != "" {
			return fmt.Errorf("--all and --city are mutually exclusive")
		}

		client, err := owm.New(cfg.APIKey, owm.WithBaseURL(cfg.GetAPIBaseURL()))
		if err != nil {
			return err
		}

		cities := cfg.GetCities()
		if fetchCity != "" {
			cities = []config.CityRef{{Name: fetchCity, CountryCode: fetchCountry}}
		}

		var archive *ingest.Archive
		if !fetchNoArchive {
			archive, err = ingest.OpenArchive(cfg.ArchiveDir())
			if err != nil {
				color.Yellow("⚠ Archive unavailable, continuing without: %v", err)
				archive = nil
			} else {
				defer archive.Close()
			}
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		pipeline := ingest.NewPipeline(client, store, cities, archive, logger)

		summary, err := pipeline.Run(cmd.Context())
		if err != nil {
			return err
		}

		color.Green("✓ Fetch complete")
		fmt.Printf("  %s\n", color.New(color.Faint).Sprintf("run %s", summary.RunID))
		fmt.Printf("  fetched %d/%d  loaded %d  duplicates %d  skipped %d  failed %d\n",
			summary.Fetched, len(cities), summary.Loaded, summary.Duplicates,
			summary.Skipped, summary.Failed)
		if summary.Failed > 0 {
			color.Yellow("⚠ %d failures; details in the log output above", summary.Failed)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchCity, "city", "", "fetch a single city instead of the roster")
	fetchCmd.Flags().StringVar(&fetchCountry, "country", "", "country code for --city")
	fetchCmd.Flags().BoolVar(&fetchAll, "all", false, "fetch the whole configured roster (the default)")
	fetchCmd.Flags().BoolVar(&fetchNoArchive, "no-archive", false, "skip archiving raw payloads")
	rootCmd.AddCommand(fetchCmd)
}
