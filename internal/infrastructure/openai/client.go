package openai

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/basel-ax/aiimage/internal/domain"
	goopenai "github.com/sashabaranov/go-openai"
)

// Client generates images through the OpenAI images API
type Client struct {
	client *goopenai.Client
	model  string
}

// NewClient creates a new OpenAI image client. An empty baseURL uses the public API.
func NewClient(apiKey, baseURL, model string, httpClient *http.Client) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if model == "" {
		model = goopenai.CreateImageModelDallE3
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpClient

	return &Client{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// GenerateImage implements domain.ImageGenerator
func (c *Client) GenerateImage(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageGenerationResponse, error) {
	n := req.NumImages
	if n <= 0 {
		n = 1
	}

	resp, err := c.client.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          c.model,
		N:              n,
		Size:           string(req.Size),
		Quality:        string(req.Quality),
		Style:          string(req.Style),
		ResponseFormat: goopenai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: create image: %w", err)
	}

	out := &domain.ImageGenerationResponse{}
	for _, d := range resp.Data {
		if d.URL == "" {
			continue
		}
		out.Images = append(out.Images, domain.GeneratedImage{URL: d.URL})
	}
	return out, nil
}

var _ domain.ImageGenerator = (*Client)(nil)
