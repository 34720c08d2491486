// ABOUTME: City model for the location registry.
// ABOUTME: Cities are deduplicated on (name, country code) and append-only.
package models

import (
	"time"
)

// City represents a trackable geographic location.
// The ID is assigned by the store on first insert and never changes.
type City struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	CountryCode           *string   `json:"country_code,omitempty"`
	Latitude              *float64  `json:"latitude,omitempty"`
	Longitude             *float64  `json:"longitude,omitempty"`
	TimezoneOffsetSeconds *int      `json:"timezone_offset_seconds,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// NewCity creates a City with the given name and current timestamp.
func NewCity(name string) *City {
	return &City{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}

// WithCountryCode sets the ISO 3166-1 alpha-2 country code.
func (c *City) WithCountryCode(code string) *City {
	c.CountryCode = &code
	return c
}

// WithCoordinates sets latitude and longitude in decimal degrees.
func (c *City) WithCoordinates(lat, lon float64) *City {
	c.Latitude = &lat
	c.Longitude = &lon
	return c
}

// WithTimezoneOffset sets the offset east of UTC in seconds.
func (c *City) WithTimezoneOffset(seconds int) *City {
	c.TimezoneOffsetSeconds = &seconds
	return c
}

// DisplayName returns "Name, CC" or just the name when no country is set.
func (c *City) DisplayName() string {
	if c.CountryCode != nil && *c.CountryCode != "" {
		return c.Name + ", " + *c.CountryCode
	}
	return c.Name
}
