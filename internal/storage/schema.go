// ABOUTME: Schema definition for cities, conditions, measurements, latest view.
// ABOUTME: Per-engine DDL; timestamps persist as unix seconds in BIGINT columns.
package storage

import (
	"fmt"
)

// latestWeatherSelect is the body of the latest_weather view: for each
// city the measurement with maximum measured_at, ties broken by highest
// id so the projection yields one deterministic row per city.
const latestWeatherSelect = `
SELECT
	m.id AS measurement_id,
	c.id AS city_id,
	c.name AS city_name,
	c.country_code,
	w.main_condition,
	w.description,
	w.icon_code,
	m.temperature_celsius,
	m.feels_like_celsius,
	m.temp_min_celsius,
	m.temp_max_celsius,
	m.pressure_hpa,
	m.humidity_percent,
	m.visibility_meters,
	m.wind_speed_mps,
	m.wind_direction_degrees,
	m.cloudiness_percent,
	m.measured_at
FROM weather_measurements m
JOIN cities c ON c.id = m.city_id
JOIN weather_conditions w ON w.id = m.condition_id
WHERE NOT EXISTS (
	SELECT 1 FROM weather_measurements newer
	WHERE newer.city_id = m.city_id
	AND (newer.measured_at > m.measured_at
		OR (newer.measured_at = m.measured_at AND newer.id > m.id))
)`

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	var schema string

	switch d.engine {
	case enginePostgres:
		schema = `
		CREATE TABLE IF NOT EXISTS cities (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			country_code TEXT,
			latitude NUMERIC(9,6),
			longitude NUMERIC(9,6),
			timezone_offset_seconds INTEGER,
			created_at BIGINT NOT NULL,
			CONSTRAINT cities_natural_key UNIQUE (name, country_code)
		);

		CREATE TABLE IF NOT EXISTS weather_conditions (
			id BIGSERIAL PRIMARY KEY,
			main_condition TEXT NOT NULL,
			description TEXT NOT NULL,
			icon_code TEXT,
			created_at BIGINT NOT NULL,
			CONSTRAINT conditions_natural_key UNIQUE (main_condition, description)
		);

		CREATE TABLE IF NOT EXISTS weather_measurements (
			id BIGSERIAL PRIMARY KEY,
			city_id BIGINT NOT NULL REFERENCES cities(id),
			condition_id BIGINT NOT NULL REFERENCES weather_conditions(id),
			temperature_celsius NUMERIC(5,2) NOT NULL,
			feels_like_celsius NUMERIC(5,2) NOT NULL,
			temp_min_celsius NUMERIC(5,2) NOT NULL,
			temp_max_celsius NUMERIC(5,2) NOT NULL,
			pressure_hpa INTEGER NOT NULL,
			humidity_percent INTEGER NOT NULL,
			visibility_meters INTEGER,
			wind_speed_mps NUMERIC(5,2),
			wind_direction_degrees INTEGER,
			cloudiness_percent INTEGER,
			measured_at BIGINT NOT NULL,
			created_at BIGINT NOT NULL,
			CONSTRAINT measurements_city_instant UNIQUE (city_id, measured_at)
		);

		CREATE INDEX IF NOT EXISTS idx_measurements_city_measured ON weather_measurements(city_id, measured_at DESC);
		CREATE INDEX IF NOT EXISTS idx_measurements_measured ON weather_measurements(measured_at DESC);

		CREATE OR REPLACE VIEW latest_weather AS ` + latestWeatherSelect + `;`

	default:
		schema = `
		CREATE TABLE IF NOT EXISTS cities (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			country_code TEXT,
			latitude REAL,
			longitude REAL,
			timezone_offset_seconds INTEGER,
			created_at BIGINT NOT NULL,
			CONSTRAINT cities_natural_key UNIQUE (name, country_code)
		);

		CREATE TABLE IF NOT EXISTS weather_conditions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			main_condition TEXT NOT NULL,
			description TEXT NOT NULL,
			icon_code TEXT,
			created_at BIGINT NOT NULL,
			CONSTRAINT conditions_natural_key UNIQUE (main_condition, description)
		);

		CREATE TABLE IF NOT EXISTS weather_measurements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			city_id INTEGER NOT NULL REFERENCES cities(id),
			condition_id INTEGER NOT NULL REFERENCES weather_conditions(id),
			temperature_celsius REAL NOT NULL,
			feels_like_celsius REAL NOT NULL,
			temp_min_celsius REAL NOT NULL,
			temp_max_celsius REAL NOT NULL,
			pressure_hpa INTEGER NOT NULL,
			humidity_percent INTEGER NOT NULL,
			visibility_meters INTEGER,
			wind_speed_mps REAL,
			wind_direction_degrees INTEGER,
			cloudiness_percent INTEGER,
			measured_at BIGINT NOT NULL,
			created_at BIGINT NOT NULL,
			CONSTRAINT measurements_city_instant UNIQUE (city_id, measured_at)
		);

		CREATE INDEX IF NOT EXISTS idx_measurements_city_measured ON weather_measurements(city_id, measured_at DESC);
		CREATE INDEX IF NOT EXISTS idx_measurements_measured ON weather_measurements(measured_at DESC);

		CREATE VIEW IF NOT EXISTS latest_weather AS ` + latestWeatherSelect + `;`
	}

	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
