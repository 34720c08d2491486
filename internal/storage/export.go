// ABOUTME: Export and import functionality for weather data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for weather data.
type ExportData struct {
	Version      string                     `json:"version" yaml:"version"`
	ExportedAt   time.Time                  `json:"exported_at" yaml:"exported_at"`
	Tool         string                     `json:"tool" yaml:"tool"`
	Cities       []*models.City             `json:"cities" yaml:"cities"`
	Conditions   []*models.WeatherCondition `json:"conditions" yaml:"conditions"`
	Measurements []*models.Measurement      `json:"measurements" yaml:"measurements"`
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData(ctx context.Context) (*ExportData, error) {
	cities, err := d.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}

	conditions, err := d.ListConditions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conditions: %w", err)
	}

	measurements, err := d.ListMeasurements(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}

	return &ExportData{
		Version:      "1.0",
		ExportedAt:   time.Now(),
		Tool:         "weather-etl",
		Cities:       cities,
		Conditions:   conditions,
		Measurements: measurements,
	}, nil
}

// ImportData imports data from an export file. Registry rows are
// resolved rather than inserted blindly, so ids from the source store
// are remapped; measurements already present count as skipped.
func (d *DB) ImportData(ctx context.Context, data *ExportData) error {
	cityIDs := make(map[int64]int64, len(data.Cities))
	for _, c := range data.Cities {
		oldID := c.ID
		newID, err := d.ResolveCity(ctx, c)
		if err != nil {
			return fmt.Errorf("import city %s: %w", c.Name, err)
		}
		cityIDs[oldID] = newID
	}

	conditionIDs := make(map[int64]int64, len(data.Conditions))
	for _, c := range data.Conditions {
		oldID := c.ID
		newID, err := d.ResolveCondition(ctx, c)
		if err != nil {
			return fmt.Errorf("import condition %s: %w", c.Main, err)
		}
		conditionIDs[oldID] = newID
	}

	for _, m := range data.Measurements {
		cityID, ok := cityIDs[m.CityID]
		if !ok {
			return fmt.Errorf("import measurement %d: city %d missing from export: %w",
				m.ID, m.CityID, ErrNotFound)
		}
		conditionID, ok := conditionIDs[m.ConditionID]
		if !ok {
			return fmt.Errorf("import measurement %d: condition %d missing from export: %w",
				m.ID, m.ConditionID, ErrNotFound)
		}

		imported := *m
		imported.ID = 0
		imported.CityID = cityID
		imported.ConditionID = conditionID
		if _, err := d.RecordMeasurement(ctx, &imported); err != nil {
			if errors.Is(err, ErrDuplicate) {
				continue
			}
			return fmt.Errorf("import measurement: %w", err)
		}
	}

	return nil
}

// ExportJSON exports all data as JSON.
func (d *DB) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportYAML exports all data as YAML with measurements grouped by city.
func (d *DB) ExportYAML(ctx context.Context) ([]byte, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return nil, err
	}

	cityNames := make(map[int64]string, len(data.Cities))
	for _, c := range data.Cities {
		cityNames[c.ID] = c.DisplayName()
	}
	conditionNames := make(map[int64]string, len(data.Conditions))
	for _, c := range data.Conditions {
		conditionNames[c.ID] = c.Main + " / " + c.Description
	}

	yamlData := struct {
		Version      string                       `yaml:"version"`
		ExportedAt   string                       `yaml:"exported_at"`
		Tool         string                       `yaml:"tool"`
		Measurements map[string][]yamlMeasurement `yaml:"measurements"`
	}{
		Version:      data.Version,
		ExportedAt:   data.ExportedAt.Format(time.RFC3339),
		Tool:         data.Tool,
		Measurements: make(map[string][]yamlMeasurement),
	}

	for _, m := range data.Measurements {
		city := cityNames[m.CityID]
		ym := yamlMeasurement{
			MeasuredAt:  m.MeasuredAt.Format(time.RFC3339),
			Condition:   conditionNames[m.ConditionID],
			Temperature: m.TemperatureCelsius,
			FeelsLike:   m.FeelsLikeCelsius,
			Pressure:    m.PressureHPa,
			Humidity:    m.HumidityPercent,
		}
		if m.WindSpeedMPS != nil {
			ym.WindSpeed = *m.WindSpeedMPS
		}
		if m.CloudinessPercent != nil {
			ym.Cloudiness = *m.CloudinessPercent
		}
		yamlData.Measurements[city] = append(yamlData.Measurements[city], ym)
	}

	return yaml.Marshal(yamlData)
}

type yamlMeasurement struct {
	MeasuredAt  string  `yaml:"measured_at"`
	Condition   string  `yaml:"condition"`
	Temperature float64 `yaml:"temperature_celsius"`
	FeelsLike   float64 `yaml:"feels_like_celsius"`
	Pressure    int     `yaml:"pressure_hpa"`
	Humidity    int     `yaml:"humidity_percent"`
	WindSpeed   float64 `yaml:"wind_speed_mps,omitempty"`
	Cloudiness  int     `yaml:"cloudiness_percent,omitempty"`
}

// ExportMarkdown exports measurements as Markdown, grouped per city,
// optionally restricted to one city and to instants at or after since.
func (d *DB) ExportMarkdown(ctx context.Context, cityID *int64, since *time.Time) (string, error) {
	data, err := d.GetAllData(ctx)
	if err != nil {
		return "", err
	}

	cityNames := make(map[int64]string, len(data.Cities))
	for _, c := range data.Cities {
		cityNames[c.ID] = c.DisplayName()
	}
	conditionNames := make(map[int64]string, len(data.Conditions))
	for _, c := range data.Conditions {
		conditionNames[c.ID] = c.Description
	}

	measurements := data.Measurements
	if cityID != nil {
		var filtered []*models.Measurement
		for _, m := range measurements {
			if m.CityID == *cityID {
				filtered = append(filtered, m)
			}
		}
		measurements = filtered
	}
	if since != nil {
		var filtered []*models.Measurement
		for _, m := range measurements {
			if m.MeasuredAt.After(*since) || m.MeasuredAt.Equal(*since) {
				filtered = append(filtered, m)
			}
		}
		measurements = filtered
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# Weather Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	// Group by city
	grouped := make(map[int64][]*models.Measurement)
	for _, m := range measurements {
		grouped[m.CityID] = append(grouped[m.CityID], m)
	}

	// Sort cities by display name for consistent output
	var ids []int64
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return cityNames[ids[i]] < cityNames[ids[j]]
	})

	for _, id := range ids {
		sb.WriteString(fmt.Sprintf("## %s\n\n", cityNames[id]))
		sb.WriteString("| Measured | Temp | Humidity | Pressure | Condition |\n")
		sb.WriteString("|----------|------|----------|----------|-----------|\n")
		for _, m := range grouped[id] {
			sb.WriteString(fmt.Sprintf("| %s | %.2f °C | %d%% | %d hPa | %s |\n",
				m.MeasuredAt.Format("2006-01-02 15:04"),
				m.TemperatureCelsius, m.HumidityPercent, m.PressureHPa,
				conditionNames[m.ConditionID]))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// ImportJSON imports data from JSON bytes.
func (d *DB) ImportJSON(ctx context.Context, data []byte) error {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return d.ImportData(ctx, &exportData)
}
