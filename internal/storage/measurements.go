// ABOUTME: Measurement fact table operations: record, get, range queries.
// ABOUTME: Unique on (city_id, measured_at); duplicates surface as DuplicateError.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
)

// RecordMeasurement inserts one observation snapshot. When a measurement
// already exists for (city_id, measured_at) the engine's unique violation
// is translated into a DuplicateError naming the existing row; the
// original row is never touched. A reference to a missing city or
// condition surfaces as ErrNotFound.
func (d *DB) RecordMeasurement(ctx context.Context, m *models.Measurement) (int64, error) {
	if err := d.validateMeasurement(m); err != nil {
		return 0, err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	args := []interface{}{
		m.CityID,
		m.ConditionID,
		m.TemperatureCelsius,
		m.FeelsLikeCelsius,
		m.TempMinCelsius,
		m.TempMaxCelsius,
		m.PressureHPa,
		m.HumidityPercent,
		m.VisibilityMeters,
		m.WindSpeedMPS,
		m.WindDirectionDegrees,
		m.CloudinessPercent,
		m.MeasuredAt.Unix(),
		m.CreatedAt.Unix(),
	}

	const columns = `
		(city_id, condition_id,
		temperature_celsius, feels_like_celsius, temp_min_celsius, temp_max_celsius,
		pressure_hpa, humidity_percent, visibility_meters,
		wind_speed_mps, wind_direction_degrees, cloudiness_percent,
		measured_at, created_at)
	`

	var insertErr error
	switch d.engine {
	case enginePostgres:
		query := d.rebind(`
			INSERT INTO weather_measurements ` + columns + `
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		var id int64
		if insertErr = d.db.QueryRowContext(ctx, query, args...).Scan(&id); insertErr == nil {
			m.ID = id
			return id, nil
		}
	default:
		query := `
			INSERT INTO weather_measurements ` + columns + `
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		var res sql.Result
		if res, insertErr = d.db.ExecContext(ctx, query, args...); insertErr == nil {
			id, err := res.LastInsertId()
			if err != nil {
				return 0, translateErr("record measurement", err)
			}
			m.ID = id
			return id, nil
		}
	}

	// Referential failures before uniqueness: the SQLite message for both
	// contains "constraint failed".
	if isForeignKeyViolation(insertErr) {
		return 0, fmt.Errorf("record measurement: city %d or condition %d: %w",
			m.CityID, m.ConditionID, ErrNotFound)
	}
	if isUniqueViolation(insertErr) {
		existing, err := d.measurementIDAt(ctx, m.CityID, m.MeasuredAt)
		if err != nil {
			return 0, translateErr("record measurement", err)
		}
		return 0, &DuplicateError{ExistingID: existing}
	}
	return 0, translateErr("record measurement", insertErr)
}

// measurementIDAt returns the id of the measurement occupying
// (city_id, measured_at).
func (d *DB) measurementIDAt(ctx context.Context, cityID int64, instant time.Time) (int64, error) {
	query := d.rebind(`
		SELECT id FROM weather_measurements
		WHERE city_id = ? AND measured_at = ?
	`)
	var id int64
	err := d.db.QueryRowContext(ctx, query, cityID, instant.Unix()).Scan(&id)
	return id, err
}

// GetMeasurement retrieves a measurement by id.
func (d *DB) GetMeasurement(ctx context.Context, id int64) (*models.Measurement, error) {
	query := d.rebind(`
		SELECT id, city_id, condition_id,
			temperature_celsius, feels_like_celsius, temp_min_celsius, temp_max_celsius,
			pressure_hpa, humidity_percent, visibility_meters,
			wind_speed_mps, wind_direction_degrees, cloudiness_percent,
			measured_at, created_at
		FROM weather_measurements
		WHERE id = ?
	`)
	m, err := scanMeasurement(d.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateErr("get measurement", err)
	}
	return m, nil
}

// GetMeasurementsInRange retrieves measurements for a city with
// measured_at in [from, to], both ends inclusive, ascending by instant.
// An empty result is an empty slice, not an error.
func (d *DB) GetMeasurementsInRange(ctx context.Context, cityID int64, from, to time.Time) ([]*models.Measurement, error) {
	query := d.rebind(`
		SELECT id, city_id, condition_id,
			temperature_celsius, feels_like_celsius, temp_min_celsius, temp_max_celsius,
			pressure_hpa, humidity_percent, visibility_meters,
			wind_speed_mps, wind_direction_degrees, cloudiness_percent,
			measured_at, created_at
		FROM weather_measurements
		WHERE city_id = ? AND measured_at >= ? AND measured_at <= ?
		ORDER BY measured_at ASC
	`)
	rows, err := d.db.QueryContext(ctx, query, cityID, from.Unix(), to.Unix())
	if err != nil {
		return nil, translateErr("get range", err)
	}
	defer rows.Close()

	measurements := []*models.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("get range: %w", err)
		}
		measurements = append(measurements, m)
	}
	return measurements, rows.Err()
}

// ListMeasurements retrieves all measurements ordered by instant, newest
// first, optionally limited. Used by export and the history CLI.
func (d *DB) ListMeasurements(ctx context.Context, limit int) ([]*models.Measurement, error) {
	query := `
		SELECT id, city_id, condition_id,
			temperature_celsius, feels_like_celsius, temp_min_celsius, temp_max_celsius,
			pressure_hpa, humidity_percent, visibility_meters,
			wind_speed_mps, wind_direction_degrees, cloudiness_percent,
			measured_at, created_at
		FROM weather_measurements
		ORDER BY measured_at DESC, id DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, d.rebind(query), args...)
	if err != nil {
		return nil, translateErr("list measurements", err)
	}
	defer rows.Close()

	var measurements []*models.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("list measurements: %w", err)
		}
		measurements = append(measurements, m)
	}
	return measurements, rows.Err()
}

// validateMeasurement enforces required fields always, and the range
// policy on humidity and wind direction only when enabled.
func (d *DB) validateMeasurement(m *models.Measurement) error {
	if m.MeasuredAt.IsZero() {
		return &ValidationError{Field: "measured_at", Reason: "must not be zero"}
	}
	if !d.validateRanges {
		return nil
	}
	if m.HumidityPercent < 0 || m.HumidityPercent > 100 {
		return &ValidationError{Field: "humidity_percent", Reason: "must be within 0..100"}
	}
	if m.WindDirectionDegrees != nil && (*m.WindDirectionDegrees < 0 || *m.WindDirectionDegrees > 360) {
		return &ValidationError{Field: "wind_direction_degrees", Reason: "must be within 0..360"}
	}
	return nil
}

// scanMeasurement scans one measurement row.
func scanMeasurement(row rowScanner) (*models.Measurement, error) {
	var m models.Measurement
	var visibility, windDir, clouds sql.NullInt64
	var windSpeed sql.NullFloat64
	var measuredAt, createdAt int64

	err := row.Scan(&m.ID, &m.CityID, &m.ConditionID,
		&m.TemperatureCelsius, &m.FeelsLikeCelsius, &m.TempMinCelsius, &m.TempMaxCelsius,
		&m.PressureHPa, &m.HumidityPercent, &visibility,
		&windSpeed, &windDir, &clouds,
		&measuredAt, &createdAt)
	if err != nil {
		return nil, err
	}

	if visibility.Valid {
		v := int(visibility.Int64)
		m.VisibilityMeters = &v
	}
	if windSpeed.Valid {
		m.WindSpeedMPS = &windSpeed.Float64
	}
	if windDir.Valid {
		v := int(windDir.Int64)
		m.WindDirectionDegrees = &v
	}
	if clouds.Valid {
		v := int(clouds.Int64)
		m.CloudinessPercent = &v
	}
	m.MeasuredAt = time.Unix(measuredAt, 0).UTC()
	m.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &m, nil
}
