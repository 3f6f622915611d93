package cache

import (
	"time"

	"github.com/ppiankov/xingming/internal/logger"
)

// LayeredCache keeps recent entries in memory in front of a disk cache.
// Disk failures degrade to memory-only caching.
type LayeredCache struct {
	front Cache
	back  Cache
}

// NewLayeredCache creates a memory cache over a disk cache in diskDir
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return Layer(NewMemoryCache(memoryTTL, 10*time.Minute), NewDiskCache(diskDir, diskTTL))
}

// Layer stacks front over back. Reads try front first; hits in back are
// copied into front with its default TTL.
func Layer(front, back Cache) *LayeredCache {
	return &LayeredCache{front: front, back: back}
}

// Get retrieves a value, front layer first
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.front.Get(key); found {
		return val, true
	}

	val, found := c.back.Get(key)
	if !found {
		return nil, false
	}
	_ = c.front.Set(key, val, 0)
	return val, true
}

// Set stores a value in both layers. A failing back layer is logged, not
// returned, since the front layer still holds the value.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.front.Set(key, value, ttl); err != nil {
		return err
	}
	if err := c.back.Set(key, value, ttl); err != nil {
		logger.Log.WithError(err).Warn("disk cache write failed, keeping entry in memory only")
	}
	return nil
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.front.Delete(key)
	return c.back.Delete(key)
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	_ = c.front.Clear()
	return c.back.Clear()
}
