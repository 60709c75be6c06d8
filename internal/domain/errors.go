package domain

import "errors"

var (
	// ErrEmptyPrompt is returned when the prompt is blank after trimming.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrBusy is returned when a generation is already in flight.
	ErrBusy = errors.New("generation already in progress")

	// ErrNoImages is returned when a provider succeeds without any image.
	ErrNoImages = errors.New("provider returned no images")

	// ErrImageNotFound is returned when a gallery lookup misses.
	ErrImageNotFound = errors.New("image not found")
)

// InvalidOptionError reports an unknown size, quality or style value.
type InvalidOptionError struct {
	Option string
	Value  string
}

func (e *InvalidOptionError) Error() string {
	return "invalid " + e.Option + ": " + e.Value
}
