// ABOUTME: CLI command for recording a weather measurement by hand.
// ABOUTME: Resolves the city and condition registries before the insert.
package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/storage"
)

var (
	recordCountry     string
	recordCondition   string
	recordDescription string
	recordFeelsLike   string
	recordMin         string
	recordMax         string
	recordPressure    int
	recordHumidity    int
	recordWindSpeed   string
	recordAt          string
)

var recordCmd = &cobra.Command{
	Use:     "record <city> <temperature>",
	Aliases: []string{"r"},
	Short:   "Record a weather measurement",
	Long: `Record a weather measurement by hand, bypassing the provider.

The city and condition are registered on first use. Feels-like and the
min/max range default to the measured temperature when not given.
Recording the same city and instant twice is rejected with the id of
the existing measurement.

Negative temperatures: put '--' before the arguments so they are not
read as flags.

EXAMPLES:

  weather-etl record London 21.5
  weather-etl record London 21.5 --condition Rain --description "light rain"
  weather-etl record Perth 33.0 --country AU --humidity 20
  weather-etl record --at "2026-01-15 08:00" -- Oslo -4.2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		temp, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid temperature: %s", args[1])
		}
		feels, err := optionalFloat(recordFeelsLike, temp)
		if err != nil {
			return fmt.Errorf("invalid --feels-like: %s", recordFeelsLike)
		}
		low, err := optionalFloat(recordMin, temp)
		if err != nil {
			return fmt.Errorf("invalid --min: %s", recordMin)
		}
		high, err := optionalFloat(recordMax, temp)
		if err != nil {
			return fmt.Errorf("invalid --max: %s", recordMax)
		}

		measuredAt := time.Now().UTC()
		if recordAt != "" {
			measuredAt, err = parseTime(recordAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", recordAt)
			}
		}

		ctx := cmd.Context()

		city := models.NewCity(args[0])
		if recordCountry != "" {
			city.WithCountryCode(strings.ToUpper(recordCountry))
		}
		cityID, err := store.ResolveCity(ctx, city)
		if err != nil {
			return fmt.Errorf("resolve city: %w", err)
		}

		description := recordDescription
		if description == "" {
			description = strings.ToLower(recordCondition)
		}
		conditionID, err := store.ResolveCondition(ctx, models.NewCondition(recordCondition, description))
		if err != nil {
			return fmt.Errorf("resolve condition: %w", err)
		}

		m := models.NewMeasurement(cityID, conditionID, measuredAt).
			WithTemperatures(temp, feels, low, high).
			WithAtmosphere(recordPressure, recordHumidity)
		if recordWindSpeed != "" {
			mps, err := strconv.ParseFloat(recordWindSpeed, 64)
			if err != nil {
				return fmt.Errorf("invalid --wind-speed: %s", recordWindSpeed)
			}
			m.WithWindSpeed(mps)
		}

		id, err := store.RecordMeasurement(ctx, m)
		if err != nil {
			var dup *storage.DuplicateError
			if errors.As(err, &dup) {
				return fmt.Errorf("measurement for %s at %s already recorded (ID: %d)",
					city.DisplayName(), measuredAt.Format(time.RFC3339), dup.ExistingID)
			}
			return fmt.Errorf("record measurement: %w", err)
		}

		color.Green("✓ Recorded %s", city.DisplayName())
		fmt.Printf("  %s %.1f°C %s\n",
			color.New(color.Faint).Sprintf("#%d", id), temp, description)
		return nil
	},
}

// optionalFloat parses s, falling back when the flag was not given.
func optionalFloat(s string, fallback float64) (float64, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func init() {
	recordCmd.Flags().StringVar(&recordCountry, "country", "", "ISO country code for the city")
	recordCmd.Flags().StringVarP(&recordCondition, "condition", "c", "Clear", "condition group (Clear, Clouds, Rain, ...)")
	recordCmd.Flags().StringVarP(&recordDescription, "description", "d", "", "condition detail (default: lowercased condition)")
	recordCmd.Flags().StringVar(&recordFeelsLike, "feels-like", "", "feels-like temperature in °C (default: temperature)")
	recordCmd.Flags().StringVar(&recordMin, "min", "", "range low in °C (default: temperature)")
	recordCmd.Flags().StringVar(&recordMax, "max", "", "range high in °C (default: temperature)")
	recordCmd.Flags().IntVar(&recordPressure, "pressure", 1013, "pressure in hPa")
	recordCmd.Flags().IntVar(&recordHumidity, "humidity", 50, "relative humidity in percent")
	recordCmd.Flags().StringVar(&recordWindSpeed, "wind-speed", "", "wind speed in m/s")
	recordCmd.Flags().StringVar(&recordAt, "at", "", "observation time (YYYY-MM-DD HH:MM, default: now)")
	rootCmd.AddCommand(recordCmd)
}
