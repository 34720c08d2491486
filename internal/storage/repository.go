// ABOUTME: Repository interface for the weather store.
// ABOUTME: Defines the contract for registries, measurements, and the projection.
package storage

import (
	"context"
	"time"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
)

// Repository defines the storage interface for weather data.
// This interface allows swapping implementations (e.g., for testing)
// and lets migration copy data between engines.
type Repository interface {
	// City registry
	ResolveCity(ctx context.Context, c *models.City) (int64, error)
	GetCity(ctx context.Context, id int64) (*models.City, error)
	ListCities(ctx context.Context) ([]*models.City, error)

	// Condition registry
	ResolveCondition(ctx context.Context, c *models.WeatherCondition) (int64, error)
	GetCondition(ctx context.Context, id int64) (*models.WeatherCondition, error)
	ListConditions(ctx context.Context) ([]*models.WeatherCondition, error)

	// Measurement store
	RecordMeasurement(ctx context.Context, m *models.Measurement) (int64, error)
	GetMeasurement(ctx context.Context, id int64) (*models.Measurement, error)
	GetMeasurementsInRange(ctx context.Context, cityID int64, from, to time.Time) ([]*models.Measurement, error)
	ListMeasurements(ctx context.Context, limit int) ([]*models.Measurement, error)

	// Latest-weather projection
	GetLatest(ctx context.Context) ([]*models.LatestWeather, error)
	GetLatestForCity(ctx context.Context, cityID int64) ([]*models.LatestWeather, error)

	// Export/Import
	GetAllData(ctx context.Context) (*ExportData, error)
	ImportData(ctx context.Context, data *ExportData) error

	// Lifecycle
	TestConnection(ctx context.Context) error
	Close() error
}
