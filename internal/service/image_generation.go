package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/basel-ax/aiimage/internal/lib/sl"
	"github.com/basel-ax/aiimage/internal/notify"
	"github.com/basel-ax/aiimage/internal/repository"
	"github.com/google/uuid"
)

// Options configures the ImageGenerationService
type Options struct {
	DefaultSize     domain.Size
	DefaultQuality  domain.Quality
	DefaultStyle    domain.Style
	MaxPromptLength int
	// Timeout bounds a single generation call. Zero means no timeout.
	Timeout time.Duration
}

// GenerateInput is what the user submitted. Empty options fall back to the defaults.
type GenerateInput struct {
	Prompt  string
	Size    string
	Quality string
	Style   string
}

// ImageGenerationService composes generation requests and maintains the gallery
type ImageGenerationService struct {
	generator domain.ImageGenerator
	repo      repository.ImageRepository
	notifier  notify.Notifier
	log       *slog.Logger
	opts      Options

	busy atomic.Bool
	now  func() time.Time
}

// NewImageGenerationService creates a new image generation service
func NewImageGenerationService(
	generator domain.ImageGenerator,
	repo repository.ImageRepository,
	notifier notify.Notifier,
	log *slog.Logger,
	opts Options,
) *ImageGenerationService {
	if opts.DefaultSize == "" {
		opts.DefaultSize = domain.DefaultSize
	}
	if opts.DefaultQuality == "" {
		opts.DefaultQuality = domain.DefaultQuality
	}
	if opts.DefaultStyle == "" {
		opts.DefaultStyle = domain.DefaultStyle
	}
	return &ImageGenerationService{
		generator: generator,
		repo:      repo,
		notifier:  notifier,
		log:       log.With(sl.Module("service.generation")),
		opts:      opts,
		now:       time.Now,
	}
}

// Defaults returns the options used when the input leaves them empty
func (s *ImageGenerationService) Defaults() (domain.Size, domain.Quality, domain.Style) {
	return s.opts.DefaultSize, s.opts.DefaultQuality, s.opts.DefaultStyle
}

// IsGenerating reports whether a generation call is in flight
func (s *ImageGenerationService) IsGenerating() bool {
	return s.busy.Load()
}

// Generate validates the input, calls the provider for one image and prepends the result
// to the gallery. Every outcome is reported through the notifier.
func (s *ImageGenerationService) Generate(ctx context.Context, in GenerateInput) (*domain.Image, error) {
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		s.notifier.Error(notify.MsgEmptyPrompt)
		return nil, domain.ErrEmptyPrompt
	}

	req, err := s.composeRequest(prompt, in)
	if err != nil {
		s.notifier.Error(notify.MsgInvalidOption)
		return nil, err
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.notifier.Error(notify.MsgBusy)
		return nil, domain.ErrBusy
	}
	defer s.busy.Store(false)

	img, err := s.generate(ctx, req)
	if err != nil {
		s.log.With(sl.Prompt(prompt)).Debug("image generation failed", sl.Err(err))
		s.notifier.Error(notify.MsgGenerateFailed)
		return nil, err
	}

	s.log.With(
		slog.String("id", img.ID),
		slog.String("size", string(img.Size)),
		slog.String("quality", string(img.Quality)),
	).Info("image generated")
	s.notifier.Success(notify.MsgGenerated)
	return img, nil
}

func (s *ImageGenerationService) composeRequest(prompt string, in GenerateInput) (domain.ImageGenerationRequest, error) {
	req := domain.ImageGenerationRequest{
		Size:      s.opts.DefaultSize,
		Quality:   s.opts.DefaultQuality,
		Style:     s.opts.DefaultStyle,
		NumImages: 1,
	}

	var err error
	if in.Size != "" {
		if req.Size, err = domain.ParseSize(in.Size); err != nil {
			return req, err
		}
	}
	if in.Quality != "" {
		if req.Quality, err = domain.ParseQuality(in.Quality); err != nil {
			return req, err
		}
	}
	if in.Style != "" {
		if req.Style, err = domain.ParseStyle(in.Style); err != nil {
			return req, err
		}
	}

	req.Prompt = prompt
	if s.opts.MaxPromptLength > 0 {
		req.Prompt = TruncatePrompt(prompt, s.opts.MaxPromptLength)
		if len(req.Prompt) != len(prompt) {
			s.log.With(
				slog.Int("from", len(prompt)),
				slog.Int("to", len(req.Prompt)),
			).Warn("prompt truncated")
		}
	}

	return req, nil
}

func (s *ImageGenerationService) generate(ctx context.Context, req domain.ImageGenerationRequest) (*domain.Image, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	resp, err := s.generator.GenerateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	if resp == nil || len(resp.Images) == 0 || resp.Images[0].URL == "" {
		return nil, domain.ErrNoImages
	}

	createdAt := s.now()
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to create image id: %w", err)
	}

	img := domain.Image{
		ID:        id.String(),
		URL:       resp.Images[0].URL,
		Prompt:    req.Prompt,
		Size:      req.Size,
		Quality:   req.Quality,
		CreatedAt: createdAt,
	}

	if err := s.repo.Prepend(ctx, img); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	return &img, nil
}

// Images returns the gallery, newest first
func (s *ImageGenerationService) Images(ctx context.Context) ([]domain.Image, error) {
	return s.repo.List(ctx)
}

// Image returns a single gallery record
func (s *ImageGenerationService) Image(ctx context.Context, id string) (*domain.Image, error) {
	return s.repo.Get(ctx, id)
}

// Summary renders the gallery header line
func (s *ImageGenerationService) Summary(ctx context.Context) (string, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return "", err
	}
	return GallerySummary(count), nil
}

// GallerySummary renders the gallery header for count images
func GallerySummary(count int) string {
	switch count {
	case 0:
		return "Your generated images will appear here"
	case 1:
		return "1 image generated"
	}
	return fmt.Sprintf("%d images generated", count)
}

// IsUserError reports whether err was caused by the input rather than the provider
func IsUserError(err error) bool {
	var optErr *domain.InvalidOptionError
	return errors.Is(err, domain.ErrEmptyPrompt) || errors.As(err, &optErr)
}
