// ABOUTME: City registry operations: race-safe resolve-or-create and lookups.
// ABOUTME: Dedup key is (name, country_code); rows are append-only.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
)

// ResolveCity returns the id of the city matching (name, country_code),
// inserting it first if absent. Safe under concurrent callers racing to
// create the same city: it attempts the insert, lets the engine swallow
// the natural-key conflict, then re-selects. Never check-then-insert.
func (d *DB) ResolveCity(ctx context.Context, c *models.City) (int64, error) {
	if strings.TrimSpace(c.Name) == "" {
		return 0, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	args := []interface{}{
		c.Name,
		c.CountryCode,
		c.Latitude,
		c.Longitude,
		c.TimezoneOffsetSeconds,
		c.CreatedAt.Unix(),
	}

	switch d.engine {
	case enginePostgres:
		query := `
			INSERT INTO cities (name, country_code, latitude, longitude, timezone_offset_seconds, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT ON CONSTRAINT cities_natural_key DO NOTHING
			RETURNING id
		`
		var id int64
		err := d.db.QueryRowContext(ctx, query, args...).Scan(&id)
		if err == nil {
			c.ID = id
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, translateErr("resolve city", err)
		}
	default:
		query := `
			INSERT INTO cities (name, country_code, latitude, longitude, timezone_offset_seconds, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`
		res, err := d.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, translateErr("resolve city", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			id, err := res.LastInsertId()
			if err != nil {
				return 0, translateErr("resolve city", err)
			}
			c.ID = id
			return id, nil
		}
	}

	// Natural key already present; re-select it. The comparison must be
	// NULL-safe because country_code is nullable.
	var query string
	switch d.engine {
	case enginePostgres:
		query = `
			SELECT id FROM cities
			WHERE name = $1 AND country_code IS NOT DISTINCT FROM $2
			ORDER BY id LIMIT 1
		`
	default:
		query = `
			SELECT id FROM cities
			WHERE name = ? AND country_code IS ?
			ORDER BY id LIMIT 1
		`
	}

	var id int64
	if err := d.db.QueryRowContext(ctx, query, c.Name, c.CountryCode).Scan(&id); err != nil {
		return 0, translateErr("resolve city", err)
	}
	c.ID = id
	return id, nil
}

// GetCity retrieves a city by id.
func (d *DB) GetCity(ctx context.Context, id int64) (*models.City, error) {
	query := d.rebind(`
		SELECT id, name, country_code, latitude, longitude, timezone_offset_seconds, created_at
		FROM cities
		WHERE id = ?
	`)
	c, err := scanCity(d.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateErr("get city", err)
	}
	return c, nil
}

// ListCities retrieves all registered cities ordered by name.
func (d *DB) ListCities(ctx context.Context) ([]*models.City, error) {
	query := `
		SELECT id, name, country_code, latitude, longitude, timezone_offset_seconds, created_at
		FROM cities
		ORDER BY name, id
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translateErr("list cities", err)
	}
	defer rows.Close()

	var cities []*models.City
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, fmt.Errorf("list cities: %w", err)
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanCity scans one city row.
func scanCity(row rowScanner) (*models.City, error) {
	var c models.City
	var country sql.NullString
	var lat, lon sql.NullFloat64
	var tz sql.NullInt64
	var createdAt int64

	err := row.Scan(&c.ID, &c.Name, &country, &lat, &lon, &tz, &createdAt)
	if err != nil {
		return nil, err
	}

	if country.Valid {
		c.CountryCode = &country.String
	}
	if lat.Valid {
		c.Latitude = &lat.Float64
	}
	if lon.Valid {
		c.Longitude = &lon.Float64
	}
	if tz.Valid {
		offset := int(tz.Int64)
		c.TimezoneOffsetSeconds = &offset
	}
	c.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &c, nil
}
