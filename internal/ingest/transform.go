// ABOUTME: Transform stage mapping provider payloads to storage models.
// ABOUTME: Rounds temperatures, converts instants to UTC, rejects bad readings.
package ingest

import (
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/models"
	"github.com/Makhosetive7/weather-etl-pipeline/internal/owm"
)

// Observation bundles the model rows extracted from one payload. City and
// Condition carry no ids; the loader resolves them and fills in the
// measurement's foreign keys.
type Observation struct {
	City        *models.City
	Condition   *models.WeatherCondition
	Measurement *models.Measurement
}

// payloadChecks is the validated projection of one payload. Temperature
// and humidity bounds follow the sanity ranges the loader refuses to store.
type payloadChecks struct {
	CityName    string  `validate:"required"`
	CountryCode string  `validate:"required"`
	Main        string  `validate:"required"`
	Description string  `validate:"required"`
	Temperature float64 `validate:"gte=-100,lte=60"`
	Humidity    int     `validate:"gte=0,lte=100"`
	MeasuredAt  int64   `validate:"required,gt=0"`
}

// Transformer converts provider payloads into storage models.
type Transformer struct {
	validate *validator.Validate
}

// NewTransformer creates a Transformer with the standard validation rules.
func NewTransformer() *Transformer {
	return &Transformer{validate: validator.New()}
}

// Transform maps one payload into model rows. Payloads missing required
// fields or carrying out-of-range readings are rejected with an error;
// the caller counts them as skipped and never loads them.
func (t *Transformer) Transform(w *owm.CurrentWeather) (*Observation, error) {
	if w == nil {
		return nil, fmt.Errorf("transform: nil payload")
	}
	if len(w.Weather) == 0 {
		return nil, fmt.Errorf("transform %s: payload has no weather conditions", w.Name)
	}

	checked := payloadChecks{
		CityName:    w.Name,
		CountryCode: w.Sys.Country,
		Main:        w.Weather[0].Main,
		Description: w.Weather[0].Description,
		Temperature: w.Main.Temp,
		Humidity:    w.Main.Humidity,
		MeasuredAt:  w.Dt,
	}
	if err := t.validate.Struct(&checked); err != nil {
		return nil, fmt.Errorf("validate payload for %q: %w", w.Name, err)
	}

	city := models.NewCity(w.Name).
		WithCountryCode(w.Sys.Country).
		WithCoordinates(w.Coord.Lat, w.Coord.Lon)
	offset := 0
	if w.Timezone != nil {
		offset = *w.Timezone
	}
	city.WithTimezoneOffset(offset)

	condition := models.NewCondition(w.Weather[0].Main, w.Weather[0].Description)
	if w.Weather[0].Icon != "" {
		condition.WithIconCode(w.Weather[0].Icon)
	}

	measurement := models.NewMeasurement(0, 0, time.Unix(w.Dt, 0).UTC()).
		WithTemperatures(round2(w.Main.Temp), round2(w.Main.FeelsLike),
			round2(w.Main.TempMin), round2(w.Main.TempMax)).
		WithAtmosphere(w.Main.Pressure, w.Main.Humidity)

	if w.Visibility != nil {
		measurement.WithVisibility(*w.Visibility)
	}
	if w.Wind != nil {
		measurement.WithWindSpeed(w.Wind.Speed)
		if w.Wind.Deg != nil {
			measurement.WithWindDirection(*w.Wind.Deg)
		}
	}
	if w.Clouds != nil {
		measurement.WithCloudiness(w.Clouds.All)
	}

	return &Observation{City: city, Condition: condition, Measurement: measurement}, nil
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
