// Package cache is the keyed JSON store used by the identification pipeline.
// It is never the source of truth: callers treat read errors as misses and
// write errors as no-ops.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// GetJSON unmarshals the value stored at key into dest. It returns false
	// when the key is absent.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)

	// SetJSON stores value at key as JSON with a per-key TTL.
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Null is the fallback when Redis is unreachable: every read misses and every
// write is dropped, so the service keeps working without a cache.
type Null struct{}

func (Null) GetJSON(context.Context, string, any) (bool, error) { return false, nil }

func (Null) SetJSON(context.Context, string, any, time.Duration) error { return nil }
