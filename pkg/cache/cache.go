// Package cache provides byte caches for hyperscene hosts.
//
// Hosts use a cache to remember node positions between runs and to keep
// rendered artifacts, so reopening a model restores the scene the user left.
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per key, for the CLI
//   - [RedisCache]: a shared Redis instance, for several servers on one model
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer], which hashes the inputs that determine a cached
// value. [NewScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores opaque byte values under string keys.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// Expired and corrupt entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GetJSON decodes the value stored under key into v.
// It returns ErrCacheMiss when the key is absent.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
