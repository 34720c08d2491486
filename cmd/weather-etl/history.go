// ABOUTME: CLI command for querying measurement history in a time range.
// ABOUTME: Defaults to the last 24 hours when no range is given.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	historyCountry string
	historyFrom    string
	historyTo      string
)

var historyCmd = &cobra.Command{
	Use:     "history <city>",
	Aliases: []string{"hist"},
	Short:   "Show measurement history for a city",
	Long: `Show measurements for one city within a time range, inclusive on
both ends and ascending by instant. Without --from/--to the last 24
hours are shown.

EXAMPLES:

  weather-etl history London
  weather-etl history London --from 2026-08-01 --to 2026-08-07
  weather-etl history "New York" --country US --from "2026-08-20 06:00"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		city, err := findCityByName(ctx, args[0], historyCountry)
		if err != nil {
			return err
		}

		to := time.Now().UTC()
		if historyTo != "" {
			to, err = parseTime(historyTo)
			if err != nil {
				return fmt.Errorf("invalid --to: %s", historyTo)
			}
		}
		from := to.Add(-24 * time.Hour)
		if historyFrom != "" {
			from, err = parseTime(historyFrom)
			if err != nil {
				return fmt.Errorf("invalid --from: %s", historyFrom)
			}
		}
		if to.Before(from) {
			return fmt.Errorf("--to must not precede --from")
		}

		measurements, err := store.GetMeasurementsInRange(ctx, city.ID, from, to)
		if err != nil {
			return fmt.Errorf("query history: %w", err)
		}
		if len(measurements) == 0 {
			fmt.Printf("No measurements for %s between %s and %s.\n",
				city.DisplayName(),
				from.Format("2006-01-02 15:04"), to.Format("2006-01-02 15:04"))
			return nil
		}

		conditions, err := store.ListConditions(ctx)
		if err != nil {
			return fmt.Errorf("list conditions: %w", err)
		}
		descriptions := make(map[int64]string, len(conditions))
		for _, c := range conditions {
			descriptions[c.ID] = c.Description
		}

		fmt.Printf("%s: %d measurements\n", city.DisplayName(), len(measurements))
		faint := color.New(color.Faint)
		for _, m := range measurements {
			desc := descriptions[m.ConditionID]
			if desc == "" {
				desc = "unknown"
			}
			fmt.Printf("%s %s %s hum %d%%\n",
				faint.Sprint(m.MeasuredAt.Local().Format("2006-01-02 15:04")),
				padRight(fmt.Sprintf("%.1f°C", m.TemperatureCelsius), 8),
				padRight(truncate(desc, 22), 22),
				m.HumidityPercent)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyCountry, "country", "", "country code to disambiguate the city")
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "range start (YYYY-MM-DD [HH:MM], default: 24h before --to)")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "range end (YYYY-MM-DD [HH:MM], default: now)")
	rootCmd.AddCommand(historyCmd)
}
