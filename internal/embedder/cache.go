package embedder

import "sync"

// ModelHandle identifies a model loaded into the embeddings server.
type ModelHandle struct {
	Name   string
	Device string
}

// ModelCache memoizes a single loaded model for the life of the process.
// The first successful load wins; later calls return the cached handle
// regardless of their arguments and there is no invalidation or reload.
// Switching embedding models within one process requires a fresh cache,
// which is also how tests construct an embedder with clean state.
type ModelCache struct {
	mu     sync.Mutex
	handle *ModelHandle
}

// NewModelCache creates an empty cache.
func NewModelCache() *ModelCache {
	return &ModelCache{}
}

// Load returns the cached handle, or runs load once to populate it.
// Failed loads leave the cache empty so a later call can retry.
func (c *ModelCache) Load(load func() (*ModelHandle, error)) (*ModelHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle != nil {
		return c.handle, nil
	}
	handle, err := load()
	if err != nil {
		return nil, err
	}
	c.handle = handle
	return handle, nil
}

// Loaded reports whether a model has been cached.
func (c *ModelCache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != nil
}
