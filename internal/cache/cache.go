// Package cache memoizes fetched chart pages and generated commentary in
// memory and on disk.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/ppiankov/xingming/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Kinds of cached values
const (
	KindPage       = "page"       // fetched chart export, keyed by URL
	KindCommentary = "commentary" // LLM commentary, keyed by model and diagnosis
)

const keyPrefix = "xingming:v1:"

// Key generates a cache key of the given kind from one or more parts
func Key(kind string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + kind + ":" + hex.EncodeToString(hash[:])
}

// CacheKey generates a page cache key from a URL
func CacheKey(url string) string {
	return Key(KindPage, url)
}

// New builds the cache described by cfg: nil when disabled, memory only
// when no directory is configured, memory over disk otherwise
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// GetJSON decodes a cached JSON value into dst. A missing or undecodable
// entry reports false.
func GetJSON(c Cache, key string, dst any) bool {
	if c == nil {
		return false
	}
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetJSON stores v as JSON. It is a no-op on a nil cache.
func SetJSON(c Cache, key string, v any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}
