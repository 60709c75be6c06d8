package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncatePrompt(t *testing.T) {
	assert.Equal(t, "hello", TruncatePrompt("hello", 10))
	assert.Equal(t, "hel", TruncatePrompt("hello", 3))
	assert.Equal(t, "привет", TruncatePrompt("привет мир", 6))
	assert.Equal(t, "", TruncatePrompt("abc", 0))
}

func TestPreviewPrompt(t *testing.T) {
	assert.Equal(t, "A futuristic city with neon li...", PreviewPrompt(ExamplePrompts[0], 30))
	assert.Equal(t, "short", PreviewPrompt("short", 30))
}
