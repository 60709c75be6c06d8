package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Supported providers
const (
	ProviderOpenAI      = "openai"
	ProviderGemini      = "gemini"
	ProviderFusionBrain = "fusionbrain"
)

// OpenAIConfig holds OpenAI image API configuration
type OpenAIConfig struct {
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model   string `env:"IMAGE_MODEL" envDefault:"dall-e-3"`
}

// GeminiConfig holds Google Gemini (Imagen) configuration
type GeminiConfig struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"IMAGE_MODEL" envDefault:"imagen-3.0-generate-002"`
}

// FusionBrainConfig holds Fusion Brain API configuration
type FusionBrainConfig struct {
	APIKey        string        `env:"API_KEY"`
	SecretKey     string        `env:"SECRET_KEY"`
	BaseURL       string        `env:"BASE_URL" envDefault:"https://api-key.fusionbrain.ai"`
	CheckInterval time.Duration `env:"CHECK_INTERVAL" envDefault:"2s"`
	MaxAttempts   int           `env:"MAX_ATTEMPTS" envDefault:"30"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port        string        `env:"PORT" envDefault:"3000"`
	ReadTimeout time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
}

// Config holds all configuration for the application
type Config struct {
	Env      string `env:"ENV" envDefault:"local"`
	Provider string `env:"PROVIDER" envDefault:"openai"`

	DefaultSize    string `env:"DEFAULT_SIZE" envDefault:"1024x1024"`
	DefaultQuality string `env:"DEFAULT_QUALITY" envDefault:"standard"`
	DefaultStyle   string `env:"DEFAULT_STYLE" envDefault:"natural"`

	MaxPromptLength    int           `env:"MAX_PROMPT_LENGTH" envDefault:"4000"`
	GenerationTimeout  time.Duration `env:"GENERATION_TIMEOUT" envDefault:"0s"`
	CopyIndicatorDelay time.Duration `env:"COPY_INDICATOR_DELAY" envDefault:"2s"`
	DownloadDir        string        `env:"DOWNLOAD_DIR" envDefault:"."`
	DownloadTimeout    time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"30s"`
	ReportSchedule     string        `env:"REPORT_SCHEDULE" envDefault:"0 */5 * * * *"`

	OpenAI      OpenAIConfig      `envPrefix:"OPENAI_"`
	Gemini      GeminiConfig      `envPrefix:"GEMINI_"`
	FusionBrain FusionBrainConfig `envPrefix:"FUSION_BRAIN_"`
	HTTP        HTTPConfig        `envPrefix:"HTTP_"`
}

// Load loads the configuration from the environment, reading .env first when it exists
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks option defaults and the credentials of the selected provider
func (c *Config) Validate() error {
	if _, err := domain.ParseSize(c.DefaultSize); err != nil {
		return fmt.Errorf("DEFAULT_SIZE: %w", err)
	}
	if _, err := domain.ParseQuality(c.DefaultQuality); err != nil {
		return fmt.Errorf("DEFAULT_QUALITY: %w", err)
	}
	if _, err := domain.ParseStyle(c.DefaultStyle); err != nil {
		return fmt.Errorf("DEFAULT_STYLE: %w", err)
	}
	if c.MaxPromptLength <= 0 {
		return fmt.Errorf("MAX_PROMPT_LENGTH must be positive")
	}
	if c.GenerationTimeout < 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must not be negative")
	}

	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required")
		}
	case ProviderFusionBrain:
		if c.FusionBrain.APIKey == "" {
			return fmt.Errorf("FUSION_BRAIN_API_KEY is required")
		}
		if c.FusionBrain.SecretKey == "" {
			return fmt.Errorf("FUSION_BRAIN_SECRET_KEY is required")
		}
		if c.FusionBrain.MaxAttempts <= 0 {
			return fmt.Errorf("FUSION_BRAIN_MAX_ATTEMPTS must be positive")
		}
	default:
		return fmt.Errorf("unknown PROVIDER %q", c.Provider)
	}

	return nil
}

// Defaults returns the parsed default options
func (c *Config) Defaults() (domain.Size, domain.Quality, domain.Style) {
	size, err := domain.ParseSize(c.DefaultSize)
	if err != nil {
		size = domain.DefaultSize
	}
	quality, err := domain.ParseQuality(c.DefaultQuality)
	if err != nil {
		quality = domain.DefaultQuality
	}
	style, err := domain.ParseStyle(c.DefaultStyle)
	if err != nil {
		style = domain.DefaultStyle
	}
	return size, quality, style
}
