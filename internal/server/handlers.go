package server

import (
	"errors"
	"log/slog"

	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/basel-ax/aiimage/internal/export"
	"github.com/basel-ax/aiimage/internal/lib/sl"
	"github.com/basel-ax/aiimage/internal/notify"
	"github.com/basel-ax/aiimage/internal/service"
	"github.com/gofiber/fiber/v2"
)

type optionValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type generateRequest struct {
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	Style   string `json:"style"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, "ok", nil)
}

func (s *Server) options(c *fiber.Ctx) error {
	sizes := make([]optionValue, 0, len(domain.Sizes))
	for _, size := range domain.Sizes {
		sizes = append(sizes, optionValue{Value: string(size), Label: size.Label()})
	}
	qualities := make([]string, 0, len(domain.Qualities))
	for _, q := range domain.Qualities {
		qualities = append(qualities, string(q))
	}
	styles := make([]string, 0, len(domain.Styles))
	for _, st := range domain.Styles {
		styles = append(styles, string(st))
	}

	size, quality, style := s.svc.Defaults()
	return success(c, fiber.StatusOK, "options", fiber.Map{
		"sizes":     sizes,
		"qualities": qualities,
		"styles":    styles,
		"defaults": fiber.Map{
			"size":    size,
			"quality": quality,
			"style":   style,
		},
	})
}

func (s *Server) examples(c *fiber.Ctx) error {
	return success(c, fiber.StatusOK, "examples", service.ExamplePrompts)
}

func (s *Server) status(c *fiber.Ctx) error {
	images, err := s.svc.Images(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, "status", fiber.Map{
		"generating": s.svc.IsGenerating(),
		"count":      len(images),
		"summary":    service.GallerySummary(len(images)),
	})
}

func (s *Server) listImages(c *fiber.Ctx) error {
	images, err := s.svc.Images(c.UserContext())
	if err != nil {
		return err
	}
	return success(c, fiber.StatusOK, service.GallerySummary(len(images)), images)
}

func (s *Server) generateImage(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, fiber.StatusBadRequest, "Invalid request body")
	}

	img, err := s.svc.Generate(c.UserContext(), service.GenerateInput{
		Prompt:  req.Prompt,
		Size:    req.Size,
		Quality: req.Quality,
		Style:   req.Style,
	})

	var optErr *domain.InvalidOptionError
	switch {
	case err == nil:
		return success(c, fiber.StatusCreated, notify.MsgGenerated, img)
	case errors.Is(err, domain.ErrEmptyPrompt):
		return failure(c, fiber.StatusBadRequest, notify.MsgEmptyPrompt)
	case errors.As(err, &optErr):
		return failure(c, fiber.StatusBadRequest, optErr.Error())
	case errors.Is(err, domain.ErrBusy):
		return failure(c, fiber.StatusConflict, notify.MsgBusy)
	default:
		return failure(c, fiber.StatusBadGateway, notify.MsgGenerateFailed)
	}
}

func (s *Server) downloadImage(c *fiber.Ctx) error {
	id := c.Params("id")
	img, err := s.svc.Image(c.UserContext(), id)
	if errors.Is(err, domain.ErrImageNotFound) {
		return failure(c, fiber.StatusNotFound, "Image not found")
	}
	if err != nil {
		return err
	}

	data, contentType, err := s.fetcher.Fetch(c.UserContext(), img.URL)
	if err != nil {
		s.log.With(slog.String("id", id)).Debug("download failed", sl.Err(err))
		return failure(c, fiber.StatusBadGateway, notify.MsgDownloadFailed)
	}

	c.Attachment(export.FileName(img.Prompt))
	if contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.Status(fiber.StatusOK).Send(data)
}
