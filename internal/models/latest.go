// ABOUTME: LatestWeather projection row, the current conditions per city.
// ABOUTME: Derived from measurements joined with both registries, never stored.
package models

import (
	"time"
)

// LatestWeather is one row of the latest-weather projection: the most
// recent measurement for a city joined with descriptive fields from the
// city and condition registries. It is recomputed on every read.
type LatestWeather struct {
	MeasurementID        int64     `json:"measurement_id"`
	CityID               int64     `json:"city_id"`
	CityName             string    `json:"city_name"`
	CountryCode          *string   `json:"country_code,omitempty"`
	MainCondition        string    `json:"main_condition"`
	Description          string    `json:"description"`
	IconCode             *string   `json:"icon_code,omitempty"`
	TemperatureCelsius   float64   `json:"temperature_celsius"`
	FeelsLikeCelsius     float64   `json:"feels_like_celsius"`
	TempMinCelsius       float64   `json:"temp_min_celsius"`
	TempMaxCelsius       float64   `json:"temp_max_celsius"`
	PressureHPa          int       `json:"pressure_hpa"`
	HumidityPercent      int       `json:"humidity_percent"`
	VisibilityMeters     *int      `json:"visibility_meters,omitempty"`
	WindSpeedMPS         *float64  `json:"wind_speed_mps,omitempty"`
	WindDirectionDegrees *int      `json:"wind_direction_degrees,omitempty"`
	CloudinessPercent    *int      `json:"cloudiness_percent,omitempty"`
	MeasuredAt           time.Time `json:"measured_at"`
}

// CityDisplayName returns "Name, CC" or just the name when no country is set.
func (l *LatestWeather) CityDisplayName() string {
	if l.CountryCode != nil && *l.CountryCode != "" {
		return l.CityName + ", " + *l.CountryCode
	}
	return l.CityName
}
