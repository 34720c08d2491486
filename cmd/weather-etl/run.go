// ABOUTME: CLI command running scheduled fetches as a long-lived process.
// ABOUTME: Optionally serves the HTTP API alongside the scheduler.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/api"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/ingest"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/owm"
)

// apiShutdownTimeout bounds the HTTP drain on Ctrl-C.
const apiShutdownTimeout = 5 * time.Second

var (
	runInterval  int
	runAPI       bool
	runListen    string
	runNoArchive bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run scheduled fetches",
	Long: `Run the pipeline on a fixed interval until interrupted.

The first fetch happens immediately, then every N minutes (60 by
default, settable via fetch_interval_minutes in the config or
--interval). Press Ctrl-C to stop; an in-flight run finishes first.

EXAMPLES:

  weather-etl run                  # Fetch every 60 minutes
  weather-etl run --interval 15    # Fetch every 15 minutes
  weather-etl run --api            # Also serve the HTTP API on :8080
  weather-etl run --api --listen :9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := owm.New(cfg.APIKey, owm.WithBaseURL(cfg.GetAPIBaseURL()))
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		var archive *ingest.Archive
		if !runNoArchive {
			archive, err = ingest.OpenArchive(cfg.ArchiveDir())
			if err != nil {
				logger.Warn("archive unavailable, continuing without", "error", err)
				archive = nil
			} else {
				defer archive.Close()
			}
		}

		interval := cfg.GetFetchIntervalMinutes()
		if runInterval > 0 {
			interval = runInterval
		}

		pipeline := ingest.NewPipeline(client, store, cfg.GetCities(), archive, logger)
		scheduler := ingest.NewScheduler(pipeline, interval, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := scheduler.Start(); err != nil {
			return err
		}
		defer scheduler.Stop()

		apiErr := make(chan error, 1)
		var apiServer *api.Server
		if runAPI {
			addr := cfg.GetListenAddr()
			if runListen != "" {
				addr = runListen
			}
			apiServer = api.NewServer(store, addr, logger)
			go func() {
				apiErr <- apiServer.Listen()
			}()
		}

		color.Green("✓ Scheduler running every %d minutes (Ctrl-C to stop)", interval)

		select {
		case <-ctx.Done():
		case err := <-apiErr:
			return fmt.Errorf("http api: %w", err)
		}

		if apiServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), apiShutdownTimeout)
			defer cancel()
			if err := apiServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("api shutdown", "error", err)
			}
		}
		fmt.Println("shutting down")
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runInterval, "interval", 0, "minutes between fetches (default: config, or 60)")
	runCmd.Flags().BoolVar(&runAPI, "api", false, "serve the HTTP API alongside the scheduler")
	runCmd.Flags().StringVar(&runListen, "listen", "", "HTTP API bind address (default: config, or :8080)")
	runCmd.Flags().BoolVar(&runNoArchive, "no-archive", false, "skip archiving raw payloads")
	rootCmd.AddCommand(runCmd)
}
