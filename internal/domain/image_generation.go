package domain

import (
	"context"
	"strings"
)

// Size is the requested image resolution
type Size string

const (
	SizeSquare    Size = "1024x1024"
	SizePortrait  Size = "1024x1792"
	SizeLandscape Size = "1792x1024"
)

// Quality is the requested rendering quality
type Quality string

const (
	QualityStandard Quality = "standard"
	QualityHD       Quality = "hd"
)

// Style is the requested rendering style
type Style string

const (
	StyleNatural Style = "natural"
	StyleVivid   Style = "vivid"
)

// Defaults used when no option is selected
const (
	DefaultSize    = SizeSquare
	DefaultQuality = QualityStandard
	DefaultStyle   = StyleNatural
)

var (
	Sizes     = []Size{SizeSquare, SizePortrait, SizeLandscape}
	Qualities = []Quality{QualityStandard, QualityHD}
	Styles    = []Style{StyleNatural, StyleVivid}
)

// Label returns the human readable name of the size
func (s Size) Label() string {
	switch s {
	case SizeSquare:
		return "square"
	case SizePortrait:
		return "portrait"
	case SizeLandscape:
		return "landscape"
	}
	return string(s)
}

// Dimensions returns width and height in pixels
func (s Size) Dimensions() (int, int) {
	switch s {
	case SizePortrait:
		return 1024, 1792
	case SizeLandscape:
		return 1792, 1024
	}
	return 1024, 1024
}

// ParseSize accepts either the resolution or its label
func ParseSize(v string) (Size, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, s := range Sizes {
		if v == string(s) || v == s.Label() {
			return s, nil
		}
	}
	return "", &InvalidOptionError{Option: "size", Value: v}
}

// ParseQuality accepts "standard" or "hd"
func ParseQuality(v string) (Quality, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, q := range Qualities {
		if v == string(q) {
			return q, nil
		}
	}
	return "", &InvalidOptionError{Option: "quality", Value: v}
}

// ParseStyle accepts "natural" or "vivid"
func ParseStyle(v string) (Style, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, s := range Styles {
		if v == string(s) {
			return s, nil
		}
	}
	return "", &InvalidOptionError{Option: "style", Value: v}
}

// ImageGenerationRequest represents the parameters for image generation
type ImageGenerationRequest struct {
	Prompt    string
	Size      Size
	Quality   Quality
	Style     Style
	NumImages int
}

// GeneratedImage is a single result returned by a provider
type GeneratedImage struct {
	URL string
}

// ImageGenerationResponse represents the response from the image generation service
type ImageGenerationResponse struct {
	Images []GeneratedImage
}

// ImageGenerator is implemented by every image generation provider
type ImageGenerator interface {
	// GenerateImage generates images based on the provided prompt and options
	GenerateImage(ctx context.Context, req ImageGenerationRequest) (*ImageGenerationResponse, error)
}
