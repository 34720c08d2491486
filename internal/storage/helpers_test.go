// ABOUTME: Shared test helpers for storage tests.
// ABOUTME: Provides setupTestDB and seed helpers for cities and measurements.
package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
)

func setupTestDB(t *testing.T, opts ...Option) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbPath, opts...)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func resolveTestCity(t *testing.T, db *DB, name, country string) int64 {
	t.Helper()
	id, err := db.ResolveCity(context.Background(), models.NewCity(name).WithCountryCode(country))
	if err != nil {
		t.Fatalf("failed to resolve city %s: %v", name, err)
	}
	return id
}

func resolveTestCondition(t *testing.T, db *DB, main, description string) int64 {
	t.Helper()
	id, err := db.ResolveCondition(context.Background(), models.NewCondition(main, description))
	if err != nil {
		t.Fatalf("failed to resolve condition %s: %v", main, err)
	}
	return id
}

func recordTestMeasurement(t *testing.T, db *DB, cityID, conditionID int64, instant time.Time, temp float64) int64 {
	t.Helper()
	m := models.NewMeasurement(cityID, conditionID, instant).
		WithTemperatures(temp, temp-0.5, temp-2, temp+2).
		WithAtmosphere(1013, 60)
	id, err := db.RecordMeasurement(context.Background(), m)
	if err != nil {
		t.Fatalf("failed to record measurement at %v: %v", instant, err)
	}
	return id
}
