// ABOUTME: CLI command copying the store between sqlite and postgres.
// ABOUTME: Dimension ids are re-resolved; existing measurements count as duplicates.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/config"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/storage"
)

var (
	migrateFromDB    string
	migrateToBackend string
	migrateToDB      string
	migrateToDSN     string
	migrateDryRun    bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage engine",
	Long: `Copy every city, condition, and measurement from the current store
to another engine.

The source is whatever the root flags and config select (--from-db
overrides it with a SQLite file); the destination is named by
--to-backend plus --to-db (sqlite) or --to-dsn (postgres). Surrogate
ids are re-resolved in the destination, so it may already contain
data; measurements already present are counted as duplicates and left
alone.

EXAMPLES:

  weather-etl migrate --dry-run
  weather-etl migrate --to-backend postgres --to-dsn postgres://localhost/weather
  weather-etl migrate --from-db ./old.db --to-backend sqlite --to-db ./new.db
  weather-etl migrate --backend postgres --pg-dsn postgres://... --to-backend sqlite --to-db ./weather.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		src := store
		if migrateFromDB != "" {
			var err error
			src, err = storage.Open(config.ExpandPath(migrateFromDB))
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer src.Close()
		}

		if migrateDryRun {
			data, err := src.GetAllData(ctx)
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			color.Yellow("Dry run: no changes will be made")
			fmt.Printf("  source (%s): %d cities, %d conditions, %d measurements\n",
				src.Engine(), len(data.Cities), len(data.Conditions), len(data.Measurements))
			return nil
		}

		var dst *storage.DB
		var err error
		switch migrateToBackend {
		case "sqlite":
			if migrateToDB == "" {
				return fmt.Errorf("--to-db is required with --to-backend sqlite")
			}
			dst, err = storage.Open(config.ExpandPath(migrateToDB))
		case "postgres":
			if migrateToDSN == "" {
				return fmt.Errorf("--to-dsn is required with --to-backend postgres")
			}
			dst, err = storage.OpenPostgres(migrateToDSN)
		case "":
			return fmt.Errorf("--to-backend is required (sqlite or postgres)")
		default:
			return fmt.Errorf("unknown backend %q: must be sqlite or postgres", migrateToBackend)
		}
		if err != nil {
			return fmt.Errorf("open destination: %w", err)
		}
		defer dst.Close()

		summary, err := storage.MigrateData(ctx, src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migration complete")
		fmt.Printf("  %d cities, %d conditions, %d measurements (%d already present)\n",
			summary.Cities, summary.Conditions, summary.Measurements, summary.Duplicates)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFromDB, "from-db", "", "source SQLite file (default: the configured store)")
	migrateCmd.Flags().StringVar(&migrateToBackend, "to-backend", "", "destination backend: sqlite or postgres")
	migrateCmd.Flags().StringVar(&migrateToDB, "to-db", "", "destination SQLite file (with --to-backend sqlite)")
	migrateCmd.Flags().StringVar(&migrateToDSN, "to-dsn", "", "destination PostgreSQL DSN (with --to-backend postgres)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "show source counts without copying")
	rootCmd.AddCommand(migrateCmd)
}
