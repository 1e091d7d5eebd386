package identify

import (
	"context"
	"time"

	"tenseii/internal/cache"
)

// cacheGet reads and decodes a cached value. Any cache error or unparseable
// payload is a miss, never an error: the cache is not the source of truth.
func cacheGet[T any](ctx context.Context, c cache.Cache, key string) (T, bool) {
	var v T
	ok, err := c.GetJSON(ctx, key, &v)
	if err != nil || !ok {
		var zero T
		return zero, false
	}
	return v, true
}

// cacheSet writes through best-effort. A failed write never aborts the
// pipeline.
func cacheSet(ctx context.Context, c cache.Cache, key string, value any, ttl time.Duration) {
	_ = c.SetJSON(ctx, key, value, ttl)
}
