// ABOUTME: CLI command showing current conditions from the latest-weather view.
// ABOUTME: Lists every city or shows one city as a detail card.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
)

var latestCountry string

var latestCmd = &cobra.Command{
	Use:     "latest [city]",
	Aliases: []string{"now"},
	Short:   "Show current conditions",
	Long: `Show the most recent measurement per city.

Without arguments, prints one line per tracked city. With a city name,
prints a detail card for that city.

EXAMPLES:

  weather-etl latest                 # Every tracked city
  weather-etl latest London          # One city in detail
  weather-etl latest London --country CA`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if len(args) == 0 {
			rows, err := store.GetLatest(ctx)
			if err != nil {
				return fmt.Errorf("latest weather: %w", err)
			}
			if len(rows) == 0 {
				fmt.Println("No measurements recorded yet. Run 'weather-etl fetch' first.")
				return nil
			}

			faint := color.New(color.Faint)
			for _, row := range rows {
				fmt.Printf("%s %s %s %s\n",
					padRight(truncate(row.CityDisplayName(), 24), 24),
					padRight(fmt.Sprintf("%.1f°C", row.TemperatureCelsius), 8),
					padRight(truncate(row.Description, 22), 22),
					faint.Sprint(row.MeasuredAt.Local().Format("2006-01-02 15:04")))
			}
			return nil
		}

		city, err := findCityByName(ctx, args[0], latestCountry)
		if err != nil {
			return err
		}
		rows, err := store.GetLatestForCity(ctx, city.ID)
		if err != nil {
			return fmt.Errorf("latest weather: %w", err)
		}
		if len(rows) == 0 {
			fmt.Printf("No measurements recorded for %s yet.\n", city.DisplayName())
			return nil
		}

		row := rows[0]
		faint := color.New(color.Faint)
		fmt.Printf("%s  %s\n",
			color.New(color.Bold).Sprint(row.CityDisplayName()),
			faint.Sprint(row.MeasuredAt.Local().Format("2006-01-02 15:04")))
		fmt.Printf("  %.1f°C, feels like %.1f°C (range %.1f to %.1f)\n",
			row.TemperatureCelsius, row.FeelsLikeCelsius, row.TempMinCelsius, row.TempMaxCelsius)
		fmt.Printf("  %s (%s)\n", row.MainCondition, row.Description)
		fmt.Printf("  pressure %d hPa, humidity %d%%\n", row.PressureHPa, row.HumidityPercent)
		if row.WindSpeedMPS != nil {
			wind := fmt.Sprintf("  wind %.1f m/s", *row.WindSpeedMPS)
			if row.WindDirectionDegrees != nil {
				wind += fmt.Sprintf(" from %d°", *row.WindDirectionDegrees)
			}
			fmt.Println(wind)
		}
		if row.CloudinessPercent != nil {
			fmt.Printf("  clouds %d%%\n", *row.CloudinessPercent)
		}
		if row.VisibilityMeters != nil {
			fmt.Printf("  visibility %.1f km\n", float64(*row.VisibilityMeters)/1000)
		}
		return nil
	},
}

// findCityByName looks up a registered city case-insensitively. A country
// code narrows the match when two cities share a name.
func findCityByName(ctx context.Context, name, country string) (*models.City, error) {
	cities, err := store.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	var match *models.City
	for _, c := range cities {
		if !strings.EqualFold(c.Name, name) {
			continue
		}
		if country != "" {
			if c.CountryCode == nil || !strings.EqualFold(*c.CountryCode, country) {
				continue
			}
		}
		if match != nil {
			return nil, fmt.Errorf("multiple cities named %s; disambiguate with --country", name)
		}
		match = c
	}
	if match == nil {
		return nil, fmt.Errorf("unknown city: %s (fetch it or register it with 'weather-etl cities --add')", name)
	}
	return match, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	latestCmd.Flags().StringVar(&latestCountry, "country", "", "country code to disambiguate the city")
	rootCmd.AddCommand(latestCmd)
}
