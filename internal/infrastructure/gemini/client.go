package gemini

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/basel-ax/aiimage/internal/domain"
	"google.golang.org/genai"
)

const outputMIMEType = "image/png"

// imagesAPI is the part of *genai.Models used by the client
type imagesAPI interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Client generates images with Imagen models through the Gemini API.
// Results arrive as bytes and are returned as data URIs.
type Client struct {
	models imagesAPI
	model  string
}

// NewClient creates a new Gemini image client
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return newClient(client.Models, model), nil
}

func newClient(models imagesAPI, model string) *Client {
	if model == "" {
		model = "imagen-3.0-generate-002"
	}
	return &Client{models: models, model: model}
}

// GenerateImage implements domain.ImageGenerator. Quality and style have no Imagen
// counterpart and are ignored.
func (c *Client) GenerateImage(ctx context.Context, req domain.ImageGenerationRequest) (*domain.ImageGenerationResponse, error) {
	n := req.NumImages
	if n <= 0 {
		n = 1
	}

	resp, err := c.models.GenerateImages(ctx, c.model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(n),
		AspectRatio:    aspectRatio(req.Size),
		OutputMIMEType: outputMIMEType,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: generate images: %w", err)
	}

	out := &domain.ImageGenerationResponse{}
	if resp == nil {
		return out, nil
	}
	for _, generated := range resp.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		mimeType := generated.Image.MIMEType
		if mimeType == "" {
			mimeType = outputMIMEType
		}
		out.Images = append(out.Images, domain.GeneratedImage{
			URL: DataURI(mimeType, generated.Image.ImageBytes),
		})
	}
	return out, nil
}

// DataURI encodes image bytes as a base64 data URI
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func aspectRatio(size domain.Size) string {
	switch size {
	case domain.SizePortrait:
		return "9:16"
	case domain.SizeLandscape:
		return "16:9"
	}
	return "1:1"
}

var _ domain.ImageGenerator = (*Client)(nil)
