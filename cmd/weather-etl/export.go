// ABOUTME: CLI commands for exporting and importing weather data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportOutput  string
	exportCity    string
	exportCountry string
	exportSince   string
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export weather data",
	Long: `Export weather data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export grouped by city (human-readable)
  markdown   Markdown tables per city (for documentation/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --city         Restrict to one city (markdown only)
  --country      Country code to disambiguate --city
  --since        Only include data since this date (YYYY-MM-DD, markdown only)

EXAMPLES:

  weather-etl export json                      # Export all data as JSON
  weather-etl export json -o backup.json       # Save to file
  weather-etl export yaml                      # Export as YAML
  weather-etl export markdown --city London    # One city as Markdown
  weather-etl export markdown --since 2026-01-01`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]
		ctx := cmd.Context()

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = store.ExportJSON(ctx)
		case "yaml":
			data, err = store.ExportYAML(ctx)
		case "markdown":
			var cityID *int64
			if exportCity != "" {
				city, err := findCityByName(ctx, exportCity, exportCountry)
				if err != nil {
					return err
				}
				cityID = &city.ID
			}
			var since *time.Time
			if exportSince != "" {
				t, err := time.Parse("2006-01-02", exportSince)
				if err != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			md, err := store.ExportMarkdown(ctx, cityID, since)
			if err != nil {
				return err
			}
			data = []byte(md)
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import weather data from JSON",
	Long: `Import weather data from a JSON export.

Cities and conditions are resolved against the registries and
measurement ids are remapped, so importing into a store that already
holds some of the data is safe; measurements already present are
skipped.

EXAMPLES:

  weather-etl import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		if err := store.ImportJSON(cmd.Context(), data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportCity, "city", "", "restrict to one city (markdown only)")
	exportCmd.Flags().StringVar(&exportCountry, "country", "", "country code to disambiguate --city")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD, markdown only)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
