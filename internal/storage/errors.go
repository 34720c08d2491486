// ABOUTME: Error taxonomy for the weather storage layer.
// ABOUTME: Sentinels and typed errors for not-found, validation, duplicate, timeout.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound means a lookup by identifier matched no row, or a
	// measurement referenced a registry id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means a required field was empty or a value fell
	// outside its declared range under the active validation policy.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate means a measurement already exists for the same
	// (city, instant) pair. Producers treat it as already-done, not failure.
	ErrDuplicate = errors.New("already recorded")

	// ErrTimeout means the underlying store operation exceeded its bound.
	// Callers may retry with backoff; the storage layer never retries.
	ErrTimeout = errors.New("operation timed out")
)

// ValidationError reports which field failed validation and why.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrValidation) work.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// DuplicateError identifies the measurement that already occupies a
// (city, instant) slot.
type DuplicateError struct {
	ExistingID int64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("already recorded as measurement %d", e.ExistingID)
}

// Unwrap makes errors.Is(err, ErrDuplicate) work.
func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

// isUniqueViolation reports whether err is the engine's unique-constraint
// failure. Both engines are matched by message because database/sql does
// not expose a portable error code.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "sqlstate 23505")
}

// isForeignKeyViolation reports whether err is the engine's referential
// integrity failure.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key") ||
		strings.Contains(msg, "sqlstate 23503")
}

// translateErr maps driver and context errors into the storage taxonomy.
// Unrecognized errors pass through wrapped with op context by callers.
func translateErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", op, ErrTimeout)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: referenced registry row: %w", op, ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
