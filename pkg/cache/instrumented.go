package cache

import (
	"context"
	"time"

	"github.com/matzehuels/hyperscene/pkg/observability"
)

// Instrumented wraps c so every Get and Set is reported to the
// registered observability cache hooks under keyType.
func Instrumented(c Cache, keyType string) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return &instrumented{inner: c, keyType: keyType}
}

type instrumented struct {
	inner   Cache
	keyType string
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, c.keyType)
		} else {
			observability.Cache().OnCacheMiss(ctx, c.keyType)
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.inner.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, c.keyType, len(data))
	return nil
}

func (c *instrumented) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *instrumented) Close() error { return c.inner.Close() }
