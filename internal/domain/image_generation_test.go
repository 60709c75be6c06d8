package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	cases := map[string]Size{
		"1024x1024":  SizeSquare,
		"square":     SizeSquare,
		" Portrait ": SizePortrait,
		"1792x1024":  SizeLandscape,
		"LANDSCAPE":  SizeLandscape,
		"1024x1792":  SizePortrait,
	}
	for in, want := range cases {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseSize("512x512")
	var optErr *InvalidOptionError
	require.True(t, errors.As(err, &optErr))
	assert.Equal(t, "size", optErr.Option)
	assert.Equal(t, "invalid size: 512x512", err.Error())
}

func TestParseQualityAndStyle(t *testing.T) {
	q, err := ParseQuality("HD")
	require.NoError(t, err)
	assert.Equal(t, QualityHD, q)

	_, err = ParseQuality("ultra")
	assert.Error(t, err)

	s, err := ParseStyle("vivid")
	require.NoError(t, err)
	assert.Equal(t, StyleVivid, s)

	_, err = ParseStyle("")
	assert.Error(t, err)
}

func TestSizeDimensions(t *testing.T) {
	w, h := SizePortrait.Dimensions()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 1792, h)

	w, h = SizeLandscape.Dimensions()
	assert.Equal(t, 1792, w)
	assert.Equal(t, 1024, h)

	assert.Equal(t, "square", SizeSquare.Label())
}
