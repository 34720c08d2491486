// ABOUTME: CLI command listing the weather-condition registry.
// ABOUTME: Conditions enter the registry as measurements reference them.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var conditionsCmd = &cobra.Command{
	Use:     "conditions",
	Aliases: []string{"cond"},
	Short:   "List weather conditions",
	Long: `List the weather-condition registry.

Conditions are registered automatically as measurements reference them;
each row is a group and description pair such as Rain / "light rain".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conditions, err := store.ListConditions(cmd.Context())
		if err != nil {
			return fmt.Errorf("list conditions: %w", err)
		}
		if len(conditions) == 0 {
			fmt.Println("No conditions registered yet.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, c := range conditions {
			icon := ""
			if c.IconCode != nil && *c.IconCode != "" {
				icon = faint.Sprintf(" [%s]", *c.IconCode)
			}
			fmt.Printf("%s %s %s%s\n",
				faint.Sprintf("#%-4d", c.ID),
				padRight(c.Main, 14),
				c.Description,
				icon)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(conditionsCmd)
}
