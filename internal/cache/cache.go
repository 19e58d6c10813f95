package cache

import (
	"encoding/json"
)

// EvictCallback is called when an entry is evicted from the cache.
// Providers that delegate eviction to an external server never call it.
type EvictCallback func(key string, value []byte)

// Logger receives error reports from cache operations.
type Logger interface {
	Error(msg string, err error)
}

// Cache is a byte-oriented key/value store with expiring entries.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Contains(key string) bool
	Len() int
	Close() error
}

// GetJSON reads key and decodes it into a T. Undecodable entries count as misses.
func GetJSON[T any](c Cache, key string) (T, bool) {
	var out T
	raw, ok := c.Get(key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}

// SetJSON encodes value as JSON and stores it under key.
func SetJSON[T any](c Cache, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.Set(key, raw)
	return nil
}
