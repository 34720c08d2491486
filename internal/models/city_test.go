// ABOUTME: Tests for City model and builders.
// ABOUTME: Validates constructor defaults and optional field setters.
package models

import (
	"testing"
)

func TestNewCity(t *testing.T) {
	c := NewCity("Berlin")

	if c.Name != "Berlin" {
		t.Errorf("Name = %s, want Berlin", c.Name)
	}
	if c.CountryCode != nil {
		t.Error("expected CountryCode to be nil by default")
	}
	if c.Latitude != nil || c.Longitude != nil {
		t.Error("expected coordinates to be nil by default")
	}
	if c.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestCityBuilders(t *testing.T) {
	c := NewCity("Tokyo").
		WithCountryCode("JP").
		WithCoordinates(35.6895, 139.6917).
		WithTimezoneOffset(32400)

	if c.CountryCode == nil || *c.CountryCode != "JP" {
		t.Errorf("CountryCode = %v, want JP", c.CountryCode)
	}
	if c.Latitude == nil || *c.Latitude != 35.6895 {
		t.Errorf("Latitude = %v, want 35.6895", c.Latitude)
	}
	if c.Longitude == nil || *c.Longitude != 139.6917 {
		t.Errorf("Longitude = %v, want 139.6917", c.Longitude)
	}
	if c.TimezoneOffsetSeconds == nil || *c.TimezoneOffsetSeconds != 32400 {
		t.Errorf("TimezoneOffsetSeconds = %v, want 32400", c.TimezoneOffsetSeconds)
	}
}

func TestCityDisplayName(t *testing.T) {
	tests := []struct {
		name string
		city *City
		want string
	}{
		{"with country", NewCity("Berlin").WithCountryCode("DE"), "Berlin, DE"},
		{"without country", NewCity("Springfield"), "Springfield"},
		{"empty country", NewCity("Springfield").WithCountryCode(""), "Springfield"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.city.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %s, want %s", got, tt.want)
			}
		})
	}
}
