package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	var c Cache = Null{}
	ctx := context.Background()

	var dest string
	found, err := c.GetJSON(ctx, "any", &dest)
	if err != nil {
		t.Fatalf("null get: %v", err)
	}
	if found {
		t.Fatal("null cache must always miss")
	}

	if err := c.SetJSON(ctx, "any", "value", time.Minute); err != nil {
		t.Fatalf("null set: %v", err)
	}

	found, err = c.GetJSON(ctx, "any", &dest)
	if err != nil || found {
		t.Fatalf("null cache must not retain values: found=%v err=%v", found, err)
	}
}

func TestNewRedisRejectsBadDSN(t *testing.T) {
	_, err := NewRedis(context.Background(), "not-a-dsn", time.Second, time.Second)
	if err == nil {
		t.Fatal("malformed dsn must be rejected")
	}
}

func TestNewRedisUnreachable(t *testing.T) {
	// Reserved TEST-NET-1 address, nothing listens there.
	_, err := NewRedis(context.Background(), "redis://192.0.2.1:6379/0", 100*time.Millisecond, 100*time.Millisecond)
	if err == nil {
		t.Fatal("unreachable redis must fail the ping")
	}
}
