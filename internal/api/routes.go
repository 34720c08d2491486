// ABOUTME: Route handlers for the read-only weather API.
// ABOUTME: Cities, conditions, latest weather, and inclusive history ranges.
package api

import (
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// historyQuery holds the validated time range for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.handleHealthz)

	v1 := s.app.Group("/api/v1")
	v1.Get("/cities", s.handleListCities)
	v1.Get("/conditions", s.handleListConditions)
	v1.Get("/weather/latest", s.handleLatest)
	v1.Get("/weather/latest/:cityID", s.handleLatestForCity)
	v1.Get("/weather/history/:cityID", s.handleHistory)
}

func (s *Server) handleHealthz(c *fiber.Ctx) error {
	if err := s.repo.TestConnection(c.Context()); err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "store unreachable")
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "weather-etl",
	})
}

func (s *Server) handleListCities(c *fiber.Ctx) error {
	cities, err := s.repo.ListCities(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"cities": cities,
		"count":  len(cities),
	})
}

func (s *Server) handleListConditions(c *fiber.Ctx) error {
	conditions, err := s.repo.ListConditions(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"conditions": conditions,
		"count":      len(conditions),
	})
}

func (s *Server) handleLatest(c *fiber.Ctx) error {
	latest, err := s.repo.GetLatest(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"latest": latest,
		"count":  len(latest),
	})
}

func (s *Server) handleLatestForCity(c *fiber.Ctx) error {
	cityID, err := parseCityID(c)
	if err != nil {
		return err
	}

	// Unknown city is 404; a known city without measurements is too,
	// with a message that says which.
	if _, err := s.repo.GetCity(c.Context(), cityID); err != nil {
		return err
	}

	latest, err := s.repo.GetLatestForCity(c.Context(), cityID)
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no measurements recorded for city")
	}
	return c.JSON(latest[0])
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	cityID, err := parseCityID(c)
	if err != nil {
		return err
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	to, err := parseTime(toStr)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	q := historyQuery{From: from, To: to}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "to must not precede from")
	}

	if _, err := s.repo.GetCity(c.Context(), cityID); err != nil {
		return err
	}

	measurements, err := s.repo.GetMeasurementsInRange(c.Context(), cityID, from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"city_id":      cityID,
		"from":         from,
		"to":           to,
		"measurements": measurements,
		"count":        len(measurements),
	})
}

func parseCityID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("cityID")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "city id must be a positive integer")
	}
	return int64(id), nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
