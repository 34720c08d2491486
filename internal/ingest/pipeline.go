// ABOUTME: ETL pipeline orchestrating extract, archive, transform, load.
// ABOUTME: Duplicate measurements count as already-loaded, never as failures.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/config"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/owm"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/storage"
)

// Extractor is the provider-facing side of the pipeline.
type Extractor interface {
	FetchCities(ctx context.Context, cities []config.CityRef) []owm.FetchResult
	TestConnection(ctx context.Context) error
}

// RunSummary reports one pipeline run. Fetched counts successful provider
// responses; Loaded counts newly recorded measurements; Duplicates counts
// measurements already present (a success); Skipped counts payloads
// rejected by validation; Failed counts fetch and load errors.
type RunSummary struct {
	RunID      uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Fetched    int       `json:"fetched"`
	Loaded     int       `json:"loaded"`
	Duplicates int       `json:"duplicates"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
}

// Pipeline runs extract, archive, transform, load over a city roster.
type Pipeline struct {
	extractor Extractor
	store     storage.Repository
	archive   *Archive
	transform *Transformer
	cities    []config.CityRef
	logger    *slog.Logger
}

// NewPipeline creates a Pipeline. The archive may be nil, in which case
// raw payloads are not retained.
func NewPipeline(extractor Extractor, store storage.Repository, cities []config.CityRef, archive *Archive, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		extractor: extractor,
		store:     store,
		archive:   archive,
		transform: NewTransformer(),
		cities:    cities,
		logger:    logger,
	}
}

// Run executes one extract-archive-transform-load cycle over the roster.
// The store is probed before any provider call so a dead database fails
// the run without burning API quota.
func (p *Pipeline) Run(ctx context.Context) (*RunSummary, error) {
	summary := &RunSummary{RunID: uuid.New(), StartedAt: time.Now().UTC()}

	if err := p.store.TestConnection(ctx); err != nil {
		return nil, fmt.Errorf("store connection test: %w", err)
	}

	p.logger.Info("pipeline run starting", "run_id", summary.RunID, "cities", len(p.cities))

	results := p.extractor.FetchCities(ctx, p.cities)
	for _, res := range results {
		if res.Err != nil {
			summary.Failed++
			continue
		}
		summary.Fetched++

		if p.archive != nil {
			if err := p.archive.Store(res.Weather); err != nil {
				// Archive failures never block the load path.
				p.logger.Warn("archive write failed", "city", res.City.String(), "error", err)
			}
		}

		if err := p.loadOne(ctx, res.Weather, summary); err != nil {
			p.logger.Warn("load failed", "city", res.City.String(), "error", err)
		}
	}

	summary.FinishedAt = time.Now().UTC()
	p.logger.Info("pipeline run finished",
		"run_id", summary.RunID,
		"fetched", summary.Fetched,
		"loaded", summary.Loaded,
		"duplicates", summary.Duplicates,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return summary, nil
}

// ReplayArchive re-runs transform and load over every archived payload
// without touching the provider. Useful after fixing a transform bug.
// Fetched counts replayed payloads.
func (p *Pipeline) ReplayArchive(ctx context.Context) (*RunSummary, error) {
	if p.archive == nil {
		return nil, fmt.Errorf("no archive configured")
	}

	summary := &RunSummary{RunID: uuid.New(), StartedAt: time.Now().UTC()}

	if err := p.store.TestConnection(ctx); err != nil {
		return nil, fmt.Errorf("store connection test: %w", err)
	}

	p.logger.Info("archive replay starting", "run_id", summary.RunID)

	err := p.archive.Replay(ctx, func(w *owm.CurrentWeather) error {
		summary.Fetched++
		if err := p.loadOne(ctx, w, summary); err != nil {
			p.logger.Warn("replay load failed", "city", w.Name, "error", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("replay archive: %w", err)
	}

	summary.FinishedAt = time.Now().UTC()
	p.logger.Info("archive replay finished",
		"run_id", summary.RunID,
		"replayed", summary.Fetched,
		"loaded", summary.Loaded,
		"duplicates", summary.Duplicates,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return summary, nil
}

// loadOne transforms one payload and records it, resolving the city and
// condition dimensions first. Counting happens here so Run and
// ReplayArchive stay consistent.
func (p *Pipeline) loadOne(ctx context.Context, w *owm.CurrentWeather, summary *RunSummary) error {
	obs, err := p.transform.Transform(w)
	if err != nil {
		summary.Skipped++
		return err
	}

	cityID, err := p.store.ResolveCity(ctx, obs.City)
	if err != nil {
		summary.Failed++
		return fmt.Errorf("resolve city %s: %w", obs.City.DisplayName(), err)
	}

	conditionID, err := p.store.ResolveCondition(ctx, obs.Condition)
	if err != nil {
		summary.Failed++
		return fmt.Errorf("resolve condition %s: %w", obs.Condition.Main, err)
	}

	obs.Measurement.CityID = cityID
	obs.Measurement.ConditionID = conditionID

	if _, err := p.store.RecordMeasurement(ctx, obs.Measurement); err != nil {
		var dup *storage.DuplicateError
		if errors.As(err, &dup) {
			summary.Duplicates++
			p.logger.Debug("measurement already recorded",
				"city", obs.City.Name, "existing_id", dup.ExistingID)
			return nil
		}
		summary.Failed++
		return fmt.Errorf("record measurement for %s: %w", obs.City.Name, err)
	}

	summary.Loaded++
	return nil
}
