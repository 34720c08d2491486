// ABOUTME: CLI command for the city registry.
// ABOUTME: Lists tracked cities and registers new ones with --add.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/config"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
)

var (
	citiesAdd     string
	citiesCountry string
	citiesLat     string
	citiesLon     string
)

var citiesCmd = &cobra.Command{
	Use:     "cities",
	Aliases: []string{"city"},
	Short:   "List or register cities",
	Long: `List the city registry, or register a city with --add.

Cities enter the registry automatically on first fetch or record; --add
pre-registers one before any measurement exists. Registering here does
not change the fetch roster; edit the cities list in the config file
for that.

EXAMPLES:

  weather-etl cities
  weather-etl cities --add Reykjavik --country IS
  weather-etl cities --add Quito --country EC --lat -0.18 --lon -78.47`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if citiesAdd != "" {
			city := models.NewCity(citiesAdd)
			if citiesCountry != "" {
				city.WithCountryCode(strings.ToUpper(citiesCountry))
			}
			if (citiesLat == "") != (citiesLon == "") {
				return fmt.Errorf("--lat and --lon must be given together")
			}
			if citiesLat != "" {
				lat, err := strconv.ParseFloat(citiesLat, 64)
				if err != nil {
					return fmt.Errorf("invalid --lat: %s", citiesLat)
				}
				lon, err := strconv.ParseFloat(citiesLon, 64)
				if err != nil {
					return fmt.Errorf("invalid --lon: %s", citiesLon)
				}
				city.WithCoordinates(lat, lon)
			}

			id, err := store.ResolveCity(ctx, city)
			if err != nil {
				return fmt.Errorf("register city: %w", err)
			}

			color.Green("✓ Registered %s", city.DisplayName())
			faint := color.New(color.Faint)
			fmt.Printf("  %s\n", faint.Sprintf("#%d", id))
			fmt.Printf("  %s\n", faint.Sprintf("add it to the cities list in %s to include it in scheduled fetches",
				config.GetConfigPath()))
			return nil
		}

		cities, err := store.ListCities(ctx)
		if err != nil {
			return fmt.Errorf("list cities: %w", err)
		}
		if len(cities) == 0 {
			fmt.Println("No cities registered yet.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, c := range cities {
			coords := ""
			if c.Latitude != nil && c.Longitude != nil {
				coords = faint.Sprintf(" (%.2f, %.2f)", *c.Latitude, *c.Longitude)
			}
			fmt.Printf("%s %s%s\n",
				faint.Sprintf("#%-4d", c.ID),
				padRight(c.DisplayName(), 28),
				coords)
		}
		return nil
	},
}

func init() {
	citiesCmd.Flags().StringVar(&citiesAdd, "add", "", "register a city by name")
	citiesCmd.Flags().StringVar(&citiesCountry, "country", "", "ISO country code for --add")
	citiesCmd.Flags().StringVar(&citiesLat, "lat", "", "latitude for --add (decimal degrees)")
	citiesCmd.Flags().StringVar(&citiesLon, "lon", "", "longitude for --add (decimal degrees)")
	rootCmd.AddCommand(citiesCmd)
}
