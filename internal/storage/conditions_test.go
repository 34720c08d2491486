// ABOUTME: Tests for the weather condition registry.
// ABOUTME: Covers resolve-or-create idempotency, validation, and lookups.
package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
)

func TestResolveConditionCreates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	cond := models.NewCondition("Rain", "light rain").WithIconCode("10d")
	id, err := db.ResolveCondition(ctx, cond)
	if err != nil {
		t.Fatalf("ResolveCondition failed: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1 on a fresh store", id)
	}

	got, err := db.GetCondition(ctx, id)
	if err != nil {
		t.Fatalf("GetCondition failed: %v", err)
	}
	if got.Main != "Rain" {
		t.Errorf("Main = %s, want Rain", got.Main)
	}
	if got.Description != "light rain" {
		t.Errorf("Description = %s, want light rain", got.Description)
	}
	if got.IconCode == nil || *got.IconCode != "10d" {
		t.Errorf("IconCode = %v, want 10d", got.IconCode)
	}
}

func TestResolveConditionIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.ResolveCondition(ctx, models.NewCondition("Clear", "clear sky"))
	if err != nil {
		t.Fatalf("first ResolveCondition failed: %v", err)
	}
	second, err := db.ResolveCondition(ctx, models.NewCondition("Clear", "clear sky").WithIconCode("01d"))
	if err != nil {
		t.Fatalf("second ResolveCondition failed: %v", err)
	}

	if first != second {
		t.Errorf("ids differ: first = %d, second = %d", first, second)
	}

	conditions, err := db.ListConditions(ctx)
	if err != nil {
		t.Fatalf("ListConditions failed: %v", err)
	}
	if len(conditions) != 1 {
		t.Errorf("len(conditions) = %d, want 1", len(conditions))
	}
}

func TestResolveConditionConcurrent(t *testing.T) {
	db := setupTestDB(t)

	const workers = 16
	ids := make([]int64, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = db.ResolveCondition(context.Background(),
				models.NewCondition("Clouds", "scattered clouds"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d failed: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d got id %d, want %d", i, ids[i], ids[0])
		}
	}
}

func TestResolveConditionSameMainDifferentDescription(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	light, err := db.ResolveCondition(ctx, models.NewCondition("Rain", "light rain"))
	if err != nil {
		t.Fatalf("ResolveCondition light failed: %v", err)
	}
	heavy, err := db.ResolveCondition(ctx, models.NewCondition("Rain", "heavy intensity rain"))
	if err != nil {
		t.Fatalf("ResolveCondition heavy failed: %v", err)
	}

	if light == heavy {
		t.Errorf("same id %d for different descriptions, want distinct rows", light)
	}
}

func TestResolveConditionValidation(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name        string
		main        string
		description string
		wantField   string
	}{
		{"empty main", "", "clear sky", "main"},
		{"empty description", "Clear", "", "description"},
		{"whitespace main", "  ", "clear sky", "main"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.ResolveCondition(context.Background(),
				models.NewCondition(tt.main, tt.description))
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("error = %v, want ErrValidation", err)
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %s, want %s", vErr.Field, tt.wantField)
			}
		})
	}
}

func TestGetConditionNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetCondition(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
