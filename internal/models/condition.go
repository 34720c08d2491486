// ABOUTME: WeatherCondition model for the condition registry.
// ABOUTME: Conditions are deduplicated on (main, description) and append-only.
package models

import (
	"time"
)

// WeatherCondition represents a classification of weather state,
// e.g. main "Rain" with description "light rain".
type WeatherCondition struct {
	ID          int64     `json:"id"`
	Main        string    `json:"main"`
	Description string    `json:"description"`
	IconCode    *string   `json:"icon_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewCondition creates a WeatherCondition with the given classification.
func NewCondition(main, description string) *WeatherCondition {
	return &WeatherCondition{
		Main:        main,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// WithIconCode sets the provider icon token (e.g. "01d").
func (c *WeatherCondition) WithIconCode(code string) *WeatherCondition {
	c.IconCode = &code
	return c
}
