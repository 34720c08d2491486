// ABOUTME: Measurement model, one observation snapshot per city per instant.
// ABOUTME: References one city and one condition; unique on (city, measured_at).
package models

import (
	"time"
)

// Measurement represents a single weather observation for one city
// at one instant. Wind, visibility, and cloudiness are pointers because
// the provider omits them when unknown.
type Measurement struct {
	ID                   int64     `json:"id"`
	CityID               int64     `json:"city_id"`
	ConditionID          int64     `json:"condition_id"`
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
	CreatedAt            time.Time `json:"created_at"`
}

// NewMeasurement creates a Measurement for the given city, condition,
// and observation instant.
func NewMeasurement(cityID, conditionID int64, measuredAt time.Time) *Measurement {
	return &Measurement{
		CityID:      cityID,
		ConditionID: conditionID,
		MeasuredAt:  measuredAt.UTC(),
		CreatedAt:   time.Now().UTC(),
	}
}

// WithTemperatures sets the four temperature readings in Celsius.
func (m *Measurement) WithTemperatures(current, feelsLike, min, max float64) *Measurement {
	m.TemperatureCelsius = current
	m.FeelsLikeCelsius = feelsLike
	m.TempMinCelsius = min
	m.TempMaxCelsius = max
	return m
}

// WithAtmosphere sets pressure in hPa and relative humidity in percent.
func (m *Measurement) WithAtmosphere(pressureHPa, humidityPercent int) *Measurement {
	m.PressureHPa = pressureHPa
	m.HumidityPercent = humidityPercent
	return m
}

// WithVisibility sets visibility distance in meters.
func (m *Measurement) WithVisibility(meters int) *Measurement {
	m.VisibilityMeters = &meters
	return m
}

// WithWindSpeed sets wind speed in meters per second.
func (m *Measurement) WithWindSpeed(mps float64) *Measurement {
	m.WindSpeedMPS = &mps
	return m
}

// WithWindDirection sets wind direction in degrees from north.
func (m *Measurement) WithWindDirection(degrees int) *Measurement {
	m.WindDirectionDegrees = &degrees
	return m
}

// WithCloudiness sets cloud coverage in percent.
func (m *Measurement) WithCloudiness(percent int) *Measurement {
	m.CloudinessPercent = &percent
	return m
}
