// ABOUTME: Tests for the transform stage.
// ABOUTME: Covers field mapping, rounding, optional blocks, and rejection rules.
package ingest

import (
	"testing"
	"time"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/owm"
)

// samplePayload builds a complete valid payload for the given city.
func samplePayload(name, country string, dt int64) *owm.CurrentWeather {
	vis := 10000
	deg := 180
	tz := 3600
	return &owm.CurrentWeather{
		Coord:      owm.Coord{Lon: -0.1257, Lat: 51.5085},
		Weather:    []owm.Condition{{ID: 800, Main: "Clear", Description: "clear sky", Icon: "01d"}},
		Main:       owm.Readings{Temp: 15.5, FeelsLike: 14.2, TempMin: 13.0, TempMax: 17.0, Pressure: 1013, Humidity: 65},
		Visibility: &vis,
		Wind:       &owm.Wind{Speed: 3.5, Deg: &deg},
		Clouds:     &owm.Clouds{All: 20},
		Dt:         dt,
		Sys:        owm.Sys{Country: country},
		Timezone:   &tz,
		Name:       name,
		Cod:        200,
	}
}

func TestTransformMapsAllFields(t *testing.T) {
	tr := NewTransformer()

	obs, err := tr.Transform(samplePayload("London", "GB", 1609459200))
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	city := obs.City
	if city.Name != "London" {
		t.Errorf("city name = %q, want %q", city.Name, "London")
	}
	if city.CountryCode == nil || *city.CountryCode != "GB" {
		t.Errorf("country = %v, want GB", city.CountryCode)
	}
	if city.Latitude == nil || *city.Latitude != 51.5085 {
		t.Errorf("latitude = %v, want 51.5085", city.Latitude)
	}
	if city.Longitude == nil || *city.Longitude != -0.1257 {
		t.Errorf("longitude = %v, want -0.1257", city.Longitude)
	}
	if city.TimezoneOffsetSeconds == nil || *city.TimezoneOffsetSeconds != 3600 {
		t.Errorf("timezone offset = %v, want 3600", city.TimezoneOffsetSeconds)
	}

	cond := obs.Condition
	if cond.Main != "Clear" || cond.Description != "clear sky" {
		t.Errorf("condition = %q/%q, want Clear/clear sky", cond.Main, cond.Description)
	}
	if cond.IconCode == nil || *cond.IconCode != "01d" {
		t.Errorf("icon = %v, want 01d", cond.IconCode)
	}

	m := obs.Measurement
	if m.TemperatureCelsius != 15.5 || m.FeelsLikeCelsius != 14.2 {
		t.Errorf("temps = %v/%v, want 15.5/14.2", m.TemperatureCelsius, m.FeelsLikeCelsius)
	}
	if m.PressureHPa != 1013 || m.HumidityPercent != 65 {
		t.Errorf("atmosphere = %d/%d, want 1013/65", m.PressureHPa, m.HumidityPercent)
	}
	if m.VisibilityMeters == nil || *m.VisibilityMeters != 10000 {
		t.Errorf("visibility = %v, want 10000", m.VisibilityMeters)
	}
	if m.WindSpeedMPS == nil || *m.WindSpeedMPS != 3.5 {
		t.Errorf("wind speed = %v, want 3.5", m.WindSpeedMPS)
	}
	if m.WindDirectionDegrees == nil || *m.WindDirectionDegrees != 180 {
		t.Errorf("wind direction = %v, want 180", m.WindDirectionDegrees)
	}
	if m.CloudinessPercent == nil || *m.CloudinessPercent != 20 {
		t.Errorf("cloudiness = %v, want 20", m.CloudinessPercent)
	}

	wantInstant := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	if !m.MeasuredAt.Equal(wantInstant) {
		t.Errorf("measured at = %v, want %v", m.MeasuredAt, wantInstant)
	}
	if m.MeasuredAt.Location() != time.UTC {
		t.Error("measured at should be UTC")
	}

	// Foreign keys stay unresolved until the loader fills them in.
	if m.CityID != 0 || m.ConditionID != 0 {
		t.Errorf("ids = %d/%d, want unresolved zeros", m.CityID, m.ConditionID)
	}
}

func TestTransformRoundsTemperatures(t *testing.T) {
	payload := samplePayload("London", "GB", 1609459200)
	payload.Main.Temp = 15.456
	payload.Main.FeelsLike = 14.249
	payload.Main.TempMin = 13.004
	payload.Main.TempMax = 17.0049

	obs, err := NewTransformer().Transform(payload)
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	m := obs.Measurement
	if m.TemperatureCelsius != 15.46 {
		t.Errorf("temperature = %v, want 15.46", m.TemperatureCelsius)
	}
	if m.FeelsLikeCelsius != 14.25 {
		t.Errorf("feels like = %v, want 14.25", m.FeelsLikeCelsius)
	}
	if m.TempMinCelsius != 13.0 {
		t.Errorf("temp min = %v, want 13.0", m.TempMinCelsius)
	}
	if m.TempMaxCelsius != 17.0 {
		t.Errorf("temp max = %v, want 17.0", m.TempMaxCelsius)
	}
}

func TestTransformOptionalBlocksAbsent(t *testing.T) {
	payload := samplePayload("London", "GB", 1609459200)
	payload.Visibility = nil
	payload.Wind = nil
	payload.Clouds = nil
	payload.Timezone = nil

	obs, err := NewTransformer().Transform(payload)
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	m := obs.Measurement
	if m.VisibilityMeters != nil {
		t.Errorf("visibility = %v, want nil", m.VisibilityMeters)
	}
	if m.WindSpeedMPS != nil || m.WindDirectionDegrees != nil {
		t.Errorf("wind = %v/%v, want nil", m.WindSpeedMPS, m.WindDirectionDegrees)
	}
	if m.CloudinessPercent != nil {
		t.Errorf("cloudiness = %v, want nil", m.CloudinessPercent)
	}

	// Missing timezone defaults to offset 0, matching the provider contract.
	if obs.City.TimezoneOffsetSeconds == nil || *obs.City.TimezoneOffsetSeconds != 0 {
		t.Errorf("timezone offset = %v, want 0", obs.City.TimezoneOffsetSeconds)
	}
}

func TestTransformWindWithoutDirection(t *testing.T) {
	payload := samplePayload("London", "GB", 1609459200)
	payload.Wind = &owm.Wind{Speed: 2.1}

	obs, err := NewTransformer().Transform(payload)
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}

	m := obs.Measurement
	if m.WindSpeedMPS == nil || *m.WindSpeedMPS != 2.1 {
		t.Errorf("wind speed = %v, want 2.1", m.WindSpeedMPS)
	}
	if m.WindDirectionDegrees != nil {
		t.Errorf("wind direction = %v, want nil", m.WindDirectionDegrees)
	}
}

func TestTransformRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *owm.CurrentWeather)
	}{
		{"missing city name", func(w *owm.CurrentWeather) { w.Name = "" }},
		{"missing country", func(w *owm.CurrentWeather) { w.Sys.Country = "" }},
		{"no weather entries", func(w *owm.CurrentWeather) { w.Weather = nil }},
		{"missing condition main", func(w *owm.CurrentWeather) { w.Weather[0].Main = "" }},
		{"missing description", func(w *owm.CurrentWeather) { w.Weather[0].Description = "" }},
		{"temperature too high", func(w *owm.CurrentWeather) { w.Main.Temp = 80 }},
		{"temperature too low", func(w *owm.CurrentWeather) { w.Main.Temp = -120 }},
		{"humidity above range", func(w *owm.CurrentWeather) { w.Main.Humidity = 150 }},
		{"humidity below range", func(w *owm.CurrentWeather) { w.Main.Humidity = -1 }},
		{"zero observation instant", func(w *owm.CurrentWeather) { w.Dt = 0 }},
	}

	tr := NewTransformer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := samplePayload("London", "GB", 1609459200)
			tt.mutate(payload)
			if _, err := tr.Transform(payload); err == nil {
				t.Error("Transform() should reject the payload")
			}
		})
	}
}

func TestTransformAcceptsBoundaryReadings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(w *owm.CurrentWeather)
	}{
		{"temperature at upper bound", func(w *owm.CurrentWeather) { w.Main.Temp = 60 }},
		{"temperature at lower bound", func(w *owm.CurrentWeather) { w.Main.Temp = -100 }},
		{"humidity zero", func(w *owm.CurrentWeather) { w.Main.Humidity = 0 }},
		{"humidity full", func(w *owm.CurrentWeather) { w.Main.Humidity = 100 }},
	}

	tr := NewTransformer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := samplePayload("London", "GB", 1609459200)
			tt.mutate(payload)
			if _, err := tr.Transform(payload); err != nil {
				t.Errorf("Transform() rejected a boundary reading: %v", err)
			}
		})
	}
}

func TestTransformNilPayload(t *testing.T) {
	if _, err := NewTransformer().Transform(nil); err == nil {
		t.Error("Transform(nil) should fail")
	}
}

func TestTransformMissingIcon(t *testing.T) {
	payload := samplePayload("London", "GB", 1609459200)
	payload.Weather[0].Icon = ""

	obs, err := NewTransformer().Transform(payload)
	if err != nil {
		t.Fatalf("Transform() failed: %v", err)
	}
	if obs.Condition.IconCode != nil {
		t.Errorf("icon = %v, want nil when the provider omits it", obs.Condition.IconCode)
	}
}
