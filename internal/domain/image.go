package domain

import "time"

// Image represents a generated image kept in the gallery
type Image struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Prompt    string    `json:"prompt"`
	Size      Size      `json:"size"`
	Quality   Quality   `json:"quality"`
	CreatedAt time.Time `json:"timestamp"`
}
