// ABOUTME: Read-only HTTP API over the weather store, built on fiber.
// ABOUTME: Maps storage errors onto HTTP statuses via a central handler.
package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Makhosetive7/weather-etl-pipeline/internal/storage"
)

// Server serves the read-only weather API.
type Server struct {
	app    *fiber.App
	repo   storage.Repository
	addr   string
	logger *slog.Logger
}

// NewServer builds the fiber app and registers all routes.
func NewServer(repo storage.Repository, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "weather-etl",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(fiberrecover.New())

	s := &Server{app: app, repo: repo, addr: addr, logger: logger}
	s.registerRoutes()
	return s
}

// Listen serves until Shutdown is called or the listener fails.
func (s *Server) Listen() error {
	s.logger.Info("http api listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http api shutting down")
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying fiber app for in-process tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// errorHandler renders every handler error as a JSON envelope, mapping
// storage errors onto HTTP statuses.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, storage.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, storage.ErrValidation):
		code = fiber.StatusBadRequest
	case errors.Is(err, storage.ErrTimeout):
		code = fiber.StatusGatewayTimeout
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
