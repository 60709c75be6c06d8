package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves the test into an empty directory so no stray .env is picked up
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "dall-e-3", cfg.OpenAI.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.CopyIndicatorDelay)
	assert.Equal(t, time.Duration(0), cfg.GenerationTimeout)
	assert.Equal(t, 4000, cfg.MaxPromptLength)
	assert.Equal(t, "3000", cfg.HTTP.Port)

	size, quality, style := cfg.Defaults()
	assert.Equal(t, domain.SizeSquare, size)
	assert.Equal(t, domain.QualityStandard, quality)
	assert.Equal(t, domain.StyleNatural, style)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := chdir(t)
	content := "PROVIDER=fusionbrain\nFUSION_BRAIN_API_KEY=key\nFUSION_BRAIN_SECRET_KEY=secret\nDEFAULT_SIZE=portrait\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{"PROVIDER", "FUSION_BRAIN_API_KEY", "FUSION_BRAIN_SECRET_KEY", "DEFAULT_SIZE"} {
			_ = os.Unsetenv(k)
		}
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderFusionBrain, cfg.Provider)
	assert.Equal(t, "key", cfg.FusionBrain.APIKey)
	assert.Equal(t, 30, cfg.FusionBrain.MaxAttempts)
	size, _, _ := cfg.Defaults()
	assert.Equal(t, domain.SizePortrait, size)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Provider:        ProviderOpenAI,
			DefaultSize:     "1024x1024",
			DefaultQuality:  "standard",
			DefaultStyle:    "natural",
			MaxPromptLength: 4000,
			OpenAI:          OpenAIConfig{APIKey: "sk"},
			FusionBrain:     FusionBrainConfig{MaxAttempts: 1},
		}
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing openai key", func(c *Config) { c.OpenAI.APIKey = "" }, "OPENAI_API_KEY is required"},
		{"missing gemini key", func(c *Config) { c.Provider = ProviderGemini }, "GEMINI_API_KEY is required"},
		{"missing fusionbrain secret", func(c *Config) {
			c.Provider = ProviderFusionBrain
			c.FusionBrain.APIKey = "k"
		}, "FUSION_BRAIN_SECRET_KEY is required"},
		{"unknown provider", func(c *Config) { c.Provider = "midjourney" }, `unknown PROVIDER "midjourney"`},
		{"bad size", func(c *Config) { c.DefaultSize = "huge" }, "DEFAULT_SIZE: invalid size: huge"},
		{"bad quality", func(c *Config) { c.DefaultQuality = "ultra" }, "DEFAULT_QUALITY: invalid quality: ultra"},
		{"negative timeout", func(c *Config) { c.GenerationTimeout = -time.Second }, "GENERATION_TIMEOUT must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
