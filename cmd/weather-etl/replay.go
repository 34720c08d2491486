// ABOUTME: CLI command replaying archived provider payloads into the store.
// ABOUTME: Re-runs transform and load without touching the provider.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/ingest"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay archived payloads",
	Long: `Re-process every archived raw payload through transform and load,
without calling the provider.

Useful after a transform fix, or to rebuild a store from the archive.
Measurements already present count as duplicates, not failures.

EXAMPLES:

  weather-etl replay
  weather-etl replay --db /tmp/rebuilt.db   # Rebuild into a fresh store`,
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := ingest.OpenArchive(cfg.ArchiveDir())
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer archive.Close()

		n, err := archive.Count()
		if err != nil {
			return err
		}
		if n == 0 {
			fmt.Println("Archive is empty. Run 'weather-etl fetch' first.")
			return nil
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		pipeline := ingest.NewPipeline(nil, store, nil, archive, logger)

		summary, err := pipeline.ReplayArchive(cmd.Context())
		if err != nil {
			return err
		}

		color.Green("✓ Replay complete")
		fmt.Printf("  replayed %d  loaded %d  duplicates %d  skipped %d  failed %d\n",
			summary.Fetched, summary.Loaded, summary.Duplicates,
			summary.Skipped, summary.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
