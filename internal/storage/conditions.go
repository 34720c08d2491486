// ABOUTME: Weather condition registry: race-safe resolve-or-create and lookups.
// ABOUTME: Dedup key is (main_condition, description); rows are append-only.
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

// ResolveCondition returns the id of the condition matching
// (main, description), inserting it first if absent. Same conflict
// absorption as ResolveCity: insert, ignore the natural-key violation,
// re-select.
func (d *DB) ResolveCondition(ctx context.Context, c *models.WeatherCondition) (int64, error) {
	if strings.TrimSpace(c.Main) == "" {
		return 0, &ValidationError{Field: "main", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.Description) == "" {
		return 0, &ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	args := []interface{}{
		c.Main,
		c.Description,
		c.IconCode,
		c.CreatedAt.Unix(),
	}

	switch d.engine {
	case enginePostgres:
		query := `
			INSERT INTO weather_conditions (main_condition, description, icon_code, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT ON CONSTRAINT conditions_natural_key DO NOTHING
			RETURNING id
		`
		var id int64
		err := d.db.QueryRowContext(ctx, query, args...).Scan(&id)
		if err == nil {
			c.ID = id
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, translateErr("resolve condition", err)
		}
	default:
		query := `
			INSERT INTO weather_conditions (main_condition, description, icon_code, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`
		res, err := d.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, translateErr("resolve condition", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			id, err := res.LastInsertId()
			if err != nil {
				return 0, translateErr("resolve condition", err)
			}
			c.ID = id
			return id, nil
		}
	}

	// Both key columns are NOT NULL, so plain equality is safe here.
	query := d.rebind(`
		SELECT id FROM weather_conditions
		WHERE main_condition = ? AND description = ?
	`)
	var id int64
	if err := d.db.QueryRowContext(ctx, query, c.Main, c.Description).Scan(&id); err != nil {
		return 0, translateErr("resolve condition", err)
	}
	c.ID = id
	return id, nil
}

// GetCondition retrieves a weather condition by id.
func (d *DB) GetCondition(ctx context.Context, id int64) (*models.WeatherCondition, error) {
	query := d.rebind(`
		SELECT id, main_condition, description, icon_code, created_at
		FROM weather_conditions
		WHERE id = ?
	`)
	c, err := scanCondition(d.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateErr("get condition", err)
	}
	return c, nil
}

// ListConditions retrieves all registered conditions ordered by
// classification.
func (d *DB) ListConditions(ctx context.Context) ([]*models.WeatherCondition, error) {
	query := `
		SELECT id, main_condition, description, icon_code, created_at
		FROM weather_conditions
		ORDER BY main_condition, description
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, translateErr("list conditions", err)
	}
	defer rows.Close()

	var conditions []*models.WeatherCondition
	for rows.Next() {
		c, err := scanCondition(rows)
		if err != nil {
			return nil, fmt.Errorf("list conditions: %w", err)
		}
		conditions = append(conditions, c)
	}
	return conditions, rows.Err()
}

// scanCondition scans one condition row.
func scanCondition(row rowScanner) (*models.WeatherCondition, error) {
	var c models.WeatherCondition
	var icon sql.NullString
	var createdAt int64

	err := row.Scan(&c.ID, &c.Main, &c.Description, &icon, &createdAt)
	if err != nil {
		return nil, err
	}

	if icon.Valid {
		c.IconCode = &icon.String
	}
	c.CreatedAt = time.Unix(createdAt, 0).UTC()

	return &c, nil
}
