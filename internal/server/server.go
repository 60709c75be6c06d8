// Package server exposes the image generator over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/basel-ax/aiimage/internal/lib/sl"
	"github.com/basel-ax/aiimage/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ImageService is the part of the generation service the HTTP API uses
type ImageService interface {
	Generate(ctx context.Context, in service.GenerateInput) (*domain.Image, error)
	IsGenerating() bool
	Images(ctx context.Context) ([]domain.Image, error)
	Image(ctx context.Context, id string) (*domain.Image, error)
	Defaults() (domain.Size, domain.Quality, domain.Style)
}

// Fetcher loads image bytes for download
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// Config holds HTTP server settings
type Config struct {
	ReadTimeout time.Duration
	// AccessLog receives request log lines. Defaults to stdout.
	AccessLog io.Writer
}

// Server is the HTTP API
type Server struct {
	app     *fiber.App
	svc     ImageService
	fetcher Fetcher
	log     *slog.Logger
}

// New creates the server and registers its routes
func New(svc ImageService, fetcher Fetcher, log *slog.Logger, cfg Config) *Server {
	if cfg.AccessLog == nil {
		cfg.AccessLog = os.Stdout
	}

	s := &Server{
		svc:     svc,
		fetcher: fetcher,
		log:     log.With(sl.Module("server")),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "aiimage",
		ReadTimeout:           cfg.ReadTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(recover.New())

	api := s.app.Group("/api", logger.New(logger.Config{Output: cfg.AccessLog}))
	api.Get("/health", s.health)
	api.Get("/options", s.options)
	api.Get("/examples", s.examples)
	api.Get("/status", s.status)

	api.Get("/images", s.listImages)
	api.Post("/images", s.generateImage)
	api.Get("/images/:id/download", s.downloadImage)

	return s
}

// App returns the underlying fiber application
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown
func (s *Server) Listen(addr string) error {
	s.log.With(slog.String("addr", addr)).Info("http server listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func success(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func failure(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
		"data":    nil,
	})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return failure(c, fe.Code, fe.Message)
	}
	s.log.Error("request failed", slog.String("path", c.Path()), sl.Err(err))
	return failure(c, fiber.StatusInternalServerError, fiber.ErrInternalServerError.Message)
}
