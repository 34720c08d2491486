// ABOUTME: MCP tool implementations for the weather store.
// ABOUTME: Provides city listing, latest/history reads, and measurement recording.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// list_cities
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_cities",
		Description: "List all tracked cities in the registry",
	}, s.handleListCities)

	// get_latest_weather
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_latest_weather",
		Description: "Get the most recent weather for one city or for all tracked cities",
	}, s.handleGetLatestWeather)

	// query_weather_history
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "query_weather_history",
		Description: "Query measurements for a city within an inclusive time range",
	}, s.handleQueryWeatherHistory)

	// record_measurement
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "record_measurement",
		Description: "Record a weather measurement for a city",
	}, s.handleRecordMeasurement)
}

// Tool input/output types

type listCitiesInput struct{}

type getLatestWeatherInput struct {
	City        string `json:"city,omitempty" jsonschema:"City name; omit to get every tracked city"`
	CountryCode string `json:"country_code,omitempty" jsonschema:"ISO 3166-1 alpha-2 code to disambiguate cities sharing a name"`
}

type queryWeatherHistoryInput struct {
	City        string `json:"city" jsonschema:"City name"`
	CountryCode string `json:"country_code,omitempty" jsonschema:"ISO 3166-1 alpha-2 code to disambiguate cities sharing a name"`
	From        string `json:"from" jsonschema:"Range start (ISO 8601 or YYYY-MM-DD), inclusive"`
	To          string `json:"to" jsonschema:"Range end (ISO 8601 or YYYY-MM-DD), inclusive"`
}

type recordMeasurementInput struct {
	City               string  `json:"city" jsonschema:"City name"`
	CountryCode        string  `json:"country_code,omitempty" jsonschema:"ISO 3166-1 alpha-2 country code"`
	Condition          string  `json:"condition" jsonschema:"Condition group (Clear, Clouds, Rain, ...)"`
	Description        string  `json:"description" jsonschema:"Condition detail (light rain, overcast clouds, ...)"`
	TemperatureCelsius float64 `json:"temperature_celsius" jsonschema:"Current temperature in Celsius"`
	FeelsLikeCelsius   float64 `json:"feels_like_celsius,omitempty" jsonschema:"Perceived temperature, defaults to temperature_celsius"`
	TempMinCelsius     float64 `json:"temp_min_celsius,omitempty" jsonschema:"Minimum temperature, defaults to temperature_celsius"`
	TempMaxCelsius     float64 `json:"temp_max_celsius,omitempty" jsonschema:"Maximum temperature, defaults to temperature_celsius"`
	PressureHPa        int     `json:"pressure_hpa,omitempty" jsonschema:"Atmospheric pressure in hPa, defaults to 1013"`
	HumidityPercent    int     `json:"humidity_percent,omitempty" jsonschema:"Relative humidity 0-100"`
	MeasuredAt         string  `json:"measured_at,omitempty" jsonschema:"Observation instant (ISO 8601), defaults to now"`
}

type recordMeasurementOutput struct {
	MeasurementID int64  `json:"measurement_id"`
	City          string `json:"city"`
	MeasuredAt    string `json:"measured_at"`
	Message       string `json:"message"`
}

// Tool handlers

func (s *Server) handleListCities(ctx context.Context, req *mcp.CallToolRequest, input listCitiesInput) (*mcp.CallToolResult, any, error) {
	cities, err := s.repo.ListCities(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list cities: %w", err)
	}

	if len(cities) == 0 {
		return nil, map[string]interface{}{"message": "No cities tracked yet."}, nil
	}

	return nil, cities, nil
}

func (s *Server) handleGetLatestWeather(ctx context.Context, req *mcp.CallToolRequest, input getLatestWeatherInput) (*mcp.CallToolResult, any, error) {
	if input.City == "" {
		latest, err := s.repo.GetLatest(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get latest weather: %w", err)
		}
		if len(latest) == 0 {
			return nil, map[string]interface{}{"message": "No measurements recorded yet."}, nil
		}
		return nil, latest, nil
	}

	city, err := s.findCity(ctx, input.City, input.CountryCode)
	if err != nil {
		return nil, nil, err
	}

	latest, err := s.repo.GetLatestForCity(ctx, city.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get latest weather: %w", err)
	}
	if len(latest) == 0 {
		return nil, map[string]interface{}{
			"message": fmt.Sprintf("No measurements recorded for %s.", city.DisplayName()),
		}, nil
	}

	return nil, latest[0], nil
}

func (s *Server) handleQueryWeatherHistory(ctx context.Context, req *mcp.CallToolRequest, input queryWeatherHistoryInput) (*mcp.CallToolResult, any, error) {
	city, err := s.findCity(ctx, input.City, input.CountryCode)
	if err != nil {
		return nil, nil, err
	}

	from, err := parseTimestamp(input.From)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid from: %w", err)
	}
	to, err := parseTimestamp(input.To)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid to: %w", err)
	}
	if to.Before(from) {
		return nil, nil, fmt.Errorf("to must not precede from")
	}

	measurements, err := s.repo.GetMeasurementsInRange(ctx, city.ID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query history: %w", err)
	}

	return nil, map[string]interface{}{
		"city":         city.DisplayName(),
		"city_id":      city.ID,
		"from":         from.UTC().Format(time.RFC3339),
		"to":           to.UTC().Format(time.RFC3339),
		"count":        len(measurements),
		"measurements": measurements,
	}, nil
}

func (s *Server) handleRecordMeasurement(ctx context.Context, req *mcp.CallToolRequest, input recordMeasurementInput) (*mcp.CallToolResult, recordMeasurementOutput, error) {
	city := models.NewCity(input.City)
	if input.CountryCode != "" {
		city.WithCountryCode(input.CountryCode)
	}
	cityID, err := s.repo.ResolveCity(ctx, city)
	if err != nil {
		return nil, recordMeasurementOutput{}, fmt.Errorf("failed to resolve city: %w", err)
	}

	cond := models.NewCondition(input.Condition, input.Description)
	condID, err := s.repo.ResolveCondition(ctx, cond)
	if err != nil {
		return nil, recordMeasurementOutput{}, fmt.Errorf("failed to resolve condition: %w", err)
	}

	measuredAt := time.Now().UTC()
	if input.MeasuredAt != "" {
		if t, err := parseTimestamp(input.MeasuredAt); err == nil {
			measuredAt = t.UTC()
		}
	}

	feels, low, high := input.FeelsLikeCelsius, input.TempMinCelsius, input.TempMaxCelsius
	if feels == 0 {
		feels = input.TemperatureCelsius
	}
	if low == 0 {
		low = input.TemperatureCelsius
	}
	if high == 0 {
		high = input.TemperatureCelsius
	}
	pressure := input.PressureHPa
	if pressure == 0 {
		pressure = 1013
	}

	m := models.NewMeasurement(cityID, condID, measuredAt).
		WithTemperatures(input.TemperatureCelsius, feels, low, high).
		WithAtmosphere(pressure, input.HumidityPercent)

	id, err := s.repo.RecordMeasurement(ctx, m)
	if err != nil {
		var dup *storage.DuplicateError
		if errors.As(err, &dup) {
			return nil, recordMeasurementOutput{}, fmt.Errorf("measurement for %s at %s already recorded (ID: %d)",
				city.DisplayName(), measuredAt.Format(time.RFC3339), dup.ExistingID)
		}
		return nil, recordMeasurementOutput{}, fmt.Errorf("failed to record measurement: %w", err)
	}

	return nil, recordMeasurementOutput{
		MeasurementID: id,
		City:          city.DisplayName(),
		MeasuredAt:    measuredAt.Format(time.RFC3339),
		Message: fmt.Sprintf("Recorded %.1f°C %s for %s (ID: %d)",
			input.TemperatureCelsius, strings.ToLower(input.Description), city.DisplayName(), id),
	}, nil
}

// findCity matches a registered city by name, case-insensitively. A country
// code narrows the match when cities in different countries share a name.
func (s *Server) findCity(ctx context.Context, name, countryCode string) (*models.City, error) {
	cities, err := s.repo.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	for _, c := range cities {
		if !strings.EqualFold(c.Name, name) {
			continue
		}
		if countryCode != "" {
			if c.CountryCode == nil || !strings.EqualFold(*c.CountryCode, countryCode) {
				continue
			}
		}
		return c, nil
	}

	return nil, fmt.Errorf("unknown city: %s", name)
}

// parseTimestamp accepts RFC 3339 plus the short forms agents tend to send.
func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp: %s", value)
}
