// ABOUTME: Tests for the badger-backed raw payload archive.
// ABOUTME: Covers store, replay ordering, overwrite semantics, key shape.
package ingest

import (
	"context"
	"testing"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/owm"
)

func setupTestArchive(t *testing.T) *Archive {
	t.Helper()
	archive, err := OpenArchive(t.TempDir())
	if err != nil {
		t.Fatalf("OpenArchive() failed: %v", err)
	}
	t.Cleanup(func() {
		if err := archive.Close(); err != nil {
			t.Errorf("Close() failed: %v", err)
		}
	})
	return archive
}

func TestArchiveStoreAndReplay(t *testing.T) {
	archive := setupTestArchive(t)

	if err := archive.Store(samplePayload("London", "GB", 1609459200)); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if err := archive.Store(samplePayload("Berlin", "DE", 1609462800)); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	var names []string
	err := archive.Replay(context.Background(), func(w *owm.CurrentWeather) error {
		names = append(names, w.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}

	if len(names) != 2 {
		t.Fatalf("replayed %d payloads, want 2", len(names))
	}
	// Keys iterate in byte order: berlin-de before london-gb.
	if names[0] != "Berlin" || names[1] != "London" {
		t.Errorf("replay order = %v, want [Berlin London]", names)
	}
}

func TestArchiveReplayDecodesFullPayload(t *testing.T) {
	archive := setupTestArchive(t)

	original := samplePayload("London", "GB", 1609459200)
	if err := archive.Store(original); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	var got *owm.CurrentWeather
	err := archive.Replay(context.Background(), func(w *owm.CurrentWeather) error {
		got = w
		return nil
	})
	if err != nil {
		t.Fatalf("Replay() failed: %v", err)
	}

	if got == nil {
		t.Fatal("replay yielded no payload")
	}
	if got.Name != "London" || got.Sys.Country != "GB" || got.Dt != 1609459200 {
		t.Errorf("payload = %s/%s/%d, want London/GB/1609459200", got.Name, got.Sys.Country, got.Dt)
	}
	if got.Main.Temp != original.Main.Temp {
		t.Errorf("temp = %v, want %v", got.Main.Temp, original.Main.Temp)
	}
	if got.Wind == nil || got.Wind.Deg == nil || *got.Wind.Deg != 180 {
		t.Errorf("wind = %+v, want deg 180", got.Wind)
	}
}

func TestArchiveOverwritesSameInstant(t *testing.T) {
	archive := setupTestArchive(t)

	payload := samplePayload("London", "GB", 1609459200)
	if err := archive.Store(payload); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}
	if err := archive.Store(payload); err != nil {
		t.Fatalf("second Store() failed: %v", err)
	}

	count, err := archive.Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1 (same city and instant overwrite)", count)
	}
}

func TestArchiveCountEmpty(t *testing.T) {
	archive := setupTestArchive(t)

	count, err := archive.Count()
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}

func TestArchiveReplayHonorsCancellation(t *testing.T) {
	archive := setupTestArchive(t)

	if err := archive.Store(samplePayload("London", "GB", 1609459200)); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := archive.Replay(ctx, func(w *owm.CurrentWeather) error { return nil })
	if err == nil {
		t.Error("Replay() with cancelled context should fail")
	}
}

func TestArchiveKeyShape(t *testing.T) {
	tests := []struct {
		name    string
		payload *owm.CurrentWeather
		want    string
	}{
		{"simple", samplePayload("London", "GB", 1609459200), "owm/london-gb/1609459200"},
		{"spaces folded", samplePayload("New York", "US", 42), "owm/new-york-us/42"},
		{"no country", samplePayload("Springfield", "", 7), "owm/springfield/7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := archiveKey(tt.payload); got != tt.want {
				t.Errorf("archiveKey() = %q, want %q", got, tt.want)
			}
		})
	}
}
