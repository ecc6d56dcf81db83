package domain

import (
	"context"
	"time"
)

// CacheError is returned by Cache implementations.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned by Get for absent keys.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the shared key/value store behind the stats cache.
type Cache interface {
	// Get returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A zero expiration keeps it until deleted.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error

	// Incr atomically increments the integer at key, starting from 0.
	Incr(ctx context.Context, key string) (int64, error)

	Ping(ctx context.Context) error
}
