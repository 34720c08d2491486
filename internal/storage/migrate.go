// ABOUTME: Data migration between weather storage backends.
// ABOUTME: Copies registries and measurements, remapping ids via resolve.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Cities       int
	Conditions   int
	Measurements int
	Duplicates   int
}

// MigrateData copies all data from src to dst storage. Surrogate ids are
// not stable across engines, so dimension rows go through resolve in the
// destination and measurement foreign keys are remapped through the
// resulting id maps. Measurements already present in the destination are
// counted as duplicates, not errors, so migration is rerunnable.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	summary := &MigrateSummary{}

	cities, err := src.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source cities: %w", err)
	}

	cityIDs := make(map[int64]int64, len(cities))
	for _, c := range cities {
		oldID := c.ID
		newID, err := dst.ResolveCity(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("resolve city %s: %w", c.Name, err)
		}
		cityIDs[oldID] = newID
		summary.Cities++
	}

	conditions, err := src.ListConditions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source conditions: %w", err)
	}

	conditionIDs := make(map[int64]int64, len(conditions))
	for _, c := range conditions {
		oldID := c.ID
		newID, err := dst.ResolveCondition(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("resolve condition %s: %w", c.Main, err)
		}
		conditionIDs[oldID] = newID
		summary.Conditions++
	}

	measurements, err := src.ListMeasurements(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list source measurements: %w", err)
	}

	for _, m := range measurements {
		migrated := *m
		migrated.ID = 0
		migrated.CityID = cityIDs[m.CityID]
		migrated.ConditionID = conditionIDs[m.ConditionID]

		if _, err := dst.RecordMeasurement(ctx, &migrated); err != nil {
			if errors.Is(err, ErrDuplicate) {
				summary.Duplicates++
				continue
			}
			return nil, fmt.Errorf("record measurement %d: %w", m.ID, err)
		}
		summary.Measurements++
	}

	return summary, nil
}
