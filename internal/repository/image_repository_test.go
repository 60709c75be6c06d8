package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/basel-ax/aiimage/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryImageRepository_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryImageRepository()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Prepend(ctx, domain.Image{ID: fmt.Sprint(i)}))
	}

	images, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, "3", images[0].ID)
	assert.Equal(t, "2", images[1].ID)
	assert.Equal(t, "1", images[2].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMemoryImageRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryImageRepository()
	require.NoError(t, repo.Prepend(ctx, domain.Image{ID: "a", Prompt: "original"}))

	images, err := repo.List(ctx)
	require.NoError(t, err)
	images[0].Prompt = "changed"

	img, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	img.URL = "changed"

	stored, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Prompt)
	assert.Empty(t, stored.URL)
}

func TestMemoryImageRepository_GetMissing(t *testing.T) {
	_, err := NewMemoryImageRepository().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrImageNotFound)
}

func TestMemoryImageRepository_ConcurrentPrepend(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryImageRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = repo.Prepend(ctx, domain.Image{ID: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}
