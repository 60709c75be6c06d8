package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	model  string
	prompt string
	config *genai.GenerateImagesConfig
	resp   *genai.GenerateImagesResponse
	err    error
}

func (f *fakeModels) GenerateImages(_ context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	f.model, f.prompt, f.config = model, prompt, config
	return f.resp, f.err
}

func TestClientGenerateImage(t *testing.T) {
	fake := &fakeModels{
		resp: &genai.GenerateImagesResponse{
			GeneratedImages: []*genai.GeneratedImage{
				{Image: &genai.Image{ImageBytes: []byte("png-bytes"), MIMEType: "image/png"}},
				{RAIFilteredReason: "filtered"},
			},
		},
	}
	client := newClient(fake, "")

	resp, err := client.GenerateImage(context.Background(), domain.ImageGenerationRequest{
		Prompt:    "a lighthouse",
		Size:      domain.SizeLandscape,
		NumImages: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "imagen-3.0-generate-002", fake.model)
	assert.Equal(t, "a lighthouse", fake.prompt)
	assert.Equal(t, int32(1), fake.config.NumberOfImages)
	assert.Equal(t, "16:9", fake.config.AspectRatio)

	require.Len(t, resp.Images, 1)
	assert.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", resp.Images[0].URL)
}

func TestClientGenerateImage_Error(t *testing.T) {
	client := newClient(&fakeModels{err: errors.New("permission denied")}, "imagen-4")

	_, err := client.GenerateImage(context.Background(), domain.ImageGenerationRequest{Prompt: "x"})
	assert.EqualError(t, err, "gemini: generate images: permission denied")
}

func TestAspectRatio(t *testing.T) {
	assert.Equal(t, "1:1", aspectRatio(domain.SizeSquare))
	assert.Equal(t, "9:16", aspectRatio(domain.SizePortrait))
	assert.Equal(t, "16:9", aspectRatio(domain.SizeLandscape))
}
