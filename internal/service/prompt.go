package service

import "unicode/utf8"

// ExamplePrompts are offered to users who need inspiration
var ExamplePrompts = []string{
	"A futuristic city with neon lights and flying cars",
	"A magical forest with glowing mushrooms and fairy lights",
	"A majestic dragon soaring through clouds at sunset",
	"A cozy coffee shop on a rainy day with warm lighting",
	"A space station orbiting a distant planet",
	"A vintage robot playing chess in a library",
}

// TruncatePrompt safely truncates a string to the specified length while preserving UTF-8 characters
func TruncatePrompt(s string, length int) string {
	if utf8.RuneCountInString(s) <= length {
		return s
	}

	var size, n int
	for i := 0; i < length && n < len(s); i++ {
		_, size = utf8.DecodeRuneInString(s[n:])
		n += size
	}

	return s[:n]
}

// PreviewPrompt shortens a prompt for list display, marking the cut with "..."
func PreviewPrompt(s string, length int) string {
	short := TruncatePrompt(s, length)
	if short != s {
		return short + "..."
	}
	return s
}
