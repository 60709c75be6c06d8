package repository

import (
	"context"
	"sync"

	"github.com/basel-ax/aiimage/internal/domain"
)

// ImageRepository defines the interface for gallery access
type ImageRepository interface {
	// Prepend stores a new image in front of all existing ones
	Prepend(ctx context.Context, img domain.Image) error
	// List returns all images, newest first
	List(ctx context.Context) ([]domain.Image, error)
	// Get returns the image with the given ID
	Get(ctx context.Context, id string) (*domain.Image, error)
	// Count returns the number of stored images
	Count(ctx context.Context) (int, error)
}

// MemoryImageRepository keeps the gallery in process memory for the lifetime of the session.
// There is no capacity bound and no deletion.
type MemoryImageRepository struct {
	mutex  sync.RWMutex
	images []domain.Image
}

// NewMemoryImageRepository creates an empty in-memory gallery
func NewMemoryImageRepository() *MemoryImageRepository {
	return &MemoryImageRepository{}
}

// Prepend stores a new image in front of all existing ones
func (r *MemoryImageRepository) Prepend(_ context.Context, img domain.Image) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	images := make([]domain.Image, 0, len(r.images)+1)
	images = append(images, img)
	r.images = append(images, r.images...)
	return nil
}

// List returns a copy of all images, newest first
func (r *MemoryImageRepository) List(_ context.Context) ([]domain.Image, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]domain.Image, len(r.images))
	copy(out, r.images)
	return out, nil
}

// Get returns a copy of the image with the given ID
func (r *MemoryImageRepository) Get(_ context.Context, id string) (*domain.Image, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, img := range r.images {
		if img.ID == id {
			found := img
			return &found, nil
		}
	}
	return nil, domain.ErrImageNotFound
}

// Count returns the number of stored images
func (r *MemoryImageRepository) Count(_ context.Context) (int, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.images), nil
}
