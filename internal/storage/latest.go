// ABOUTME: Latest-weather projection reads over the latest_weather view.
// ABOUTME: One row per city with measurements; recomputed on every call.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
)

const latestColumns = `
	measurement_id, city_id, city_name, country_code,
	main_condition, description, icon_code,
	temperature_celsius, feels_like_celsius, temp_min_celsius, temp_max_celsius,
	pressure_hpa, humidity_percent, visibility_meters,
	wind_speed_mps, wind_direction_degrees, cloudiness_percent,
	measured_at
`

// GetLatest returns the most recent measurement per city for every city
// with at least one measurement, ordered by city name. An empty store
// yields an empty slice.
func (d *DB) GetLatest(ctx context.Context) ([]*models.LatestWeather, error) {
	query := `SELECT ` + latestColumns + ` FROM latest_weather ORDER BY city_name, city_id`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translateErr("get latest", err)
	}
	defer rows.Close()

	return scanLatestRows(rows)
}

// GetLatestForCity returns zero or one latest-weather rows for the given
// city. An unknown city yields an empty slice, not an error.
func (d *DB) GetLatestForCity(ctx context.Context, cityID int64) ([]*models.LatestWeather, error) {
	query := d.rebind(`SELECT ` + latestColumns + ` FROM latest_weather WHERE city_id = ?`)
	rows, err := d.db.QueryContext(ctx, query, cityID)
	if err != nil {
		return nil, translateErr("get latest", err)
	}
	defer rows.Close()

	return scanLatestRows(rows)
}

// LatestForCity returns the single latest row for a city, or ErrNotFound
// when the city has no measurements. Convenience for CLI and MCP lookups.
func (d *DB) LatestForCity(ctx context.Context, cityID int64) (*models.LatestWeather, error) {
	latest, err := d.GetLatestForCity(ctx, cityID)
	if err != nil {
		return nil, err
	}
	if len(latest) == 0 {
		return nil, fmt.Errorf("latest for city %d: %w", cityID, ErrNotFound)
	}
	return latest[0], nil
}

func scanLatestRows(rows *sql.Rows) ([]*models.LatestWeather, error) {
	latest := []*models.LatestWeather{}
	for rows.Next() {
		l, err := scanLatest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan latest weather: %w", err)
		}
		latest = append(latest, l)
	}
	return latest, rows.Err()
}

// scanLatest scans one row of the latest_weather view.
func scanLatest(row rowScanner) (*models.LatestWeather, error) {
	var l models.LatestWeather
	var country, icon sql.NullString
	var visibility, windDir, clouds sql.NullInt64
	var windSpeed sql.NullFloat64
	var measuredAt int64

	err := row.Scan(&l.MeasurementID, &l.CityID, &l.CityName, &country,
		&l.MainCondition, &l.Description, &icon,
		&l.TemperatureCelsius, &l.FeelsLikeCelsius, &l.TempMinCelsius, &l.TempMaxCelsius,
		&l.PressureHPa, &l.HumidityPercent, &visibility,
		&windSpeed, &windDir, &clouds,
		&measuredAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if country.Valid {
		l.CountryCode = &country.String
	}
	if icon.Valid {
		l.IconCode = &icon.String
	}
	if visibility.Valid {
		v := int(visibility.Int64)
		l.VisibilityMeters = &v
	}
	if windSpeed.Valid {
		l.WindSpeedMPS = &windSpeed.Float64
	}
	if windDir.Valid {
		v := int(windDir.Int64)
		l.WindDirectionDegrees = &v
	}
	if clouds.Valid {
		v := int(clouds.Int64)
		l.CloudinessPercent = &v
	}
	l.MeasuredAt = time.Unix(measuredAt, 0).UTC()

	return &l, nil
}
