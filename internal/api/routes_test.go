// ABOUTME: Tests for the read-only weather API routes.
// ABOUTME: Exercises status mapping, range semantics, and response shapes.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/storage"
)

func setupTestServer(t *testing.T) (*Server, *storage.DB) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "weather.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(db, ":0", logger), db
}

func seedCity(t *testing.T, db *storage.DB, name, country string) int64 {
	t.Helper()
	id, err := db.ResolveCity(context.Background(), models.NewCity(name).WithCountryCode(country))
	if err != nil {
		t.Fatalf("failed to seed city %s: %v", name, err)
	}
	return id
}

func seedMeasurement(t *testing.T, db *storage.DB, cityID int64, instant time.Time, temp float64) int64 {
	t.Helper()
	condID, err := db.ResolveCondition(context.Background(), models.NewCondition("Clear", "clear sky"))
	if err != nil {
		t.Fatalf("failed to seed condition: %v", err)
	}
	m := models.NewMeasurement(cityID, condID, instant).
		WithTemperatures(temp, temp-1, temp-2, temp+2).
		WithAtmosphere(1013, 65)
	id, err := db.RecordMeasurement(context.Background(), m)
	if err != nil {
		t.Fatalf("failed to seed measurement: %v", err)
	}
	return id
}

func doRequest(t *testing.T, s *Server, method, target string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, target, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var body map[string]any
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			t.Fatalf("decode response %s: %v", data, err)
		}
	}
	return resp, body
}

func TestHealthz(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, body := doRequest(t, server, http.MethodGet, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestHealthzStoreDown(t *testing.T) {
	server, db := setupTestServer(t)
	db.Close()

	resp, _ := doRequest(t, server, http.MethodGet, "/healthz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestListCitiesEmpty(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, body := doRequest(t, server, http.MethodGet, "/api/v1/cities")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["count"].(float64) != 0 {
		t.Errorf("count = %v, want 0", body["count"])
	}
}

func TestListCities(t *testing.T) {
	server, db := setupTestServer(t)
	seedCity(t, db, "Berlin", "DE")
	seedCity(t, db, "London", "GB")

	resp, body := doRequest(t, server, http.MethodGet, "/api/v1/cities")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", body["count"])
	}

	cities := body["cities"].([]any)
	first := cities[0].(map[string]any)
	if first["name"] != "Berlin" {
		t.Errorf("first city = %v, want Berlin", first["name"])
	}
}

func TestListConditions(t *testing.T) {
	server, db := setupTestServer(t)
	if _, err := db.ResolveCondition(context.Background(), models.NewCondition("Rain", "light rain")); err != nil {
		t.Fatalf("failed to seed condition: %v", err)
	}
	if _, err := db.ResolveCondition(context.Background(), models.NewCondition("Clear", "clear sky")); err != nil {
		t.Fatalf("failed to seed condition: %v", err)
	}

	resp, body := doRequest(t, server, http.MethodGet, "/api/v1/conditions")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["count"].(float64) != 2 {
		t.Fatalf("count = %v, want 2", body["count"])
	}

	conditions := body["conditions"].([]any)
	first := conditions[0].(map[string]any)
	if first["main"] != "Clear" {
		t.Errorf("first condition = %v, want Clear (ordered by classification)", first["main"])
	}
}

func TestLatestEmptyStore(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, body := doRequest(t, server, http.MethodGet, "/api/v1/weather/latest")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["count"].(float64) != 0 {
		t.Errorf("count = %v, want 0 on an empty store", body["count"])
	}
}

func TestLatestAllCities(t *testing.T) {
	server, db := setupTestServer(t)
	berlin := seedCity(t, db, "Berlin", "DE")
	london := seedCity(t, db, "London", "GB")
	seedMeasurement(t, db, berlin, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), 18.5)
	seedMeasurement(t, db, london, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), 15.5)

	resp, body := doRequest(t, server, http.MethodGet, "/api/v1/weather/latest")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["count"].(float64) != 2 {
		t.Fatalf("count = %v, want 2", body["count"])
	}

	rows := body["latest"].([]any)
	first := rows[0].(map[string]any)
	if first["city_name"] != "Berlin" {
		t.Errorf("first row city = %v, want Berlin (ordered by name)", first["city_name"])
	}
}

func TestLatestForCity(t *testing.T) {
	server, db := setupTestServer(t)
	berlin := seedCity(t, db, "Berlin", "DE")
	seedMeasurement(t, db, berlin, time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC), 17.0)
	newest := seedMeasurement(t, db, berlin, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), 18.5)

	resp, body := doRequest(t, server, http.MethodGet, fmt.Sprintf("/api/v1/weather/latest/%d", berlin))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["city_name"] != "Berlin" {
		t.Errorf("city_name = %v, want Berlin", body["city_name"])
	}
	if int64(body["measurement_id"].(float64)) != newest {
		t.Errorf("measurement_id = %v, want %d (the most recent)", body["measurement_id"], newest)
	}
	if body["temperature_celsius"].(float64) != 18.5 {
		t.Errorf("temperature = %v, want 18.5", body["temperature_celsius"])
	}
}

func TestLatestForCityUnknown(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := doRequest(t, server, http.MethodGet, "/api/v1/weather/latest/99")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestLatestForCityWithoutMeasurements(t *testing.T) {
	server, db := setupTestServer(t)
	berlin := seedCity(t, db, "Berlin", "DE")

	resp, _ := doRequest(t, server, http.MethodGet, fmt.Sprintf("/api/v1/weather/latest/%d", berlin))
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestLatestForCityBadID(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := doRequest(t, server, http.MethodGet, "/api/v1/weather/latest/abc")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHistoryInclusiveRange(t *testing.T) {
	server, db := setupTestServer(t)
	berlin := seedCity(t, db, "Berlin", "DE")

	t1 := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 6, 1, 11, 0, 0, 0, time.UTC)
	t3 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seedMeasurement(t, db, berlin, t1, 16.0)
	seedMeasurement(t, db, berlin, t2, 17.0)
	seedMeasurement(t, db, berlin, t3, 18.0)

	target := fmt.Sprintf("/api/v1/weather/history/%d?from=%s&to=%s",
		berlin, t1.Format(time.RFC3339), t2.Format(time.RFC3339))
	resp, body := doRequest(t, server, http.MethodGet, target)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	// Both boundary instants are included; t3 is outside.
	if body["count"].(float64) != 2 {
		t.Fatalf("count = %v, want 2", body["count"])
	}
	rows := body["measurements"].([]any)
	firstTemp := rows[0].(map[string]any)["temperature_celsius"].(float64)
	if firstTemp != 16.0 {
		t.Errorf("first row temp = %v, want 16.0 (ascending order)", firstTemp)
	}
}

func TestHistoryAcceptsUnixSeconds(t *testing.T) {
	server, db := setupTestServer(t)
	berlin := seedCity(t, db, "Berlin", "DE")
	instant := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seedMeasurement(t, db, berlin, instant, 18.5)

	target := fmt.Sprintf("/api/v1/weather/history/%d?from=%d&to=%d",
		berlin, instant.Unix()-60, instant.Unix()+60)
	resp, body := doRequest(t, server, http.MethodGet, target)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestHistoryMissingParams(t *testing.T) {
	server, db := setupTestServer(t)
	berlin := seedCity(t, db, "Berlin", "DE")

	resp, _ := doRequest(t, server, http.MethodGet, fmt.Sprintf("/api/v1/weather/history/%d", berlin))
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHistoryBadTimeFormat(t *testing.T) {
	server, db := setupTestServer(t)
	berlin := seedCity(t, db, "Berlin", "DE")

	target := fmt.Sprintf("/api/v1/weather/history/%d?from=yesterday&to=today", berlin)
	resp, _ := doRequest(t, server, http.MethodGet, target)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHistoryReversedRange(t *testing.T) {
	server, db := setupTestServer(t)
	berlin := seedCity(t, db, "Berlin", "DE")

	target := fmt.Sprintf("/api/v1/weather/history/%d?from=2024-06-02T00:00:00Z&to=2024-06-01T00:00:00Z", berlin)
	resp, _ := doRequest(t, server, http.MethodGet, target)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHistoryUnknownCity(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := doRequest(t, server, http.MethodGet,
		"/api/v1/weather/history/99?from=2024-06-01T00:00:00Z&to=2024-06-02T00:00:00Z")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestWriteMethodsRejected(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, _ := doRequest(t, server, http.MethodPost, "/api/v1/cities")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405 (api is read-only)", resp.StatusCode)
	}
}
