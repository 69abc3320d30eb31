package embedder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelCacheFirstLoadWins(t *testing.T) {
	cache := NewModelCache()
	calls := 0

	handle, err := cache.Load(func() (*ModelHandle, error) {
		calls++
		return &ModelHandle{Name: "first", Device: "cpu"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "first", handle.Name)
	assert.True(t, cache.Loaded())

	// Later loads return the cached handle without invoking the loader,
	// even when they would load a different model.
	handle, err = cache.Load(func() (*ModelHandle, error) {
		calls++
		return &ModelHandle{Name: "second", Device: "cuda"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "first", handle.Name)
	assert.Equal(t, 1, calls)
}

func TestModelCacheFailedLoadLeavesCacheEmpty(t *testing.T) {
	cache := NewModelCache()
	boom := errors.New("server unreachable")

	_, err := cache.Load(func() (*ModelHandle, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, cache.Loaded())

	// A later call can retry and succeed.
	handle, err := cache.Load(func() (*ModelHandle, error) {
		return &ModelHandle{Name: "retry"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "retry", handle.Name)
	assert.True(t, cache.Loaded())
}
