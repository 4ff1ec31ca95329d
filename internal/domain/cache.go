package domain

import (
	"context"
	"time"
)

// CacheError is a sentinel error type for cache lookups.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key or hash field does not exist.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value and hash store used for leaderboards, the
// achievement catalog and quiz presence.
type Cache interface {
	// Get returns ErrCacheMiss for an unknown key.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value; an expiration of 0 keeps it until deleted.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	// Delete is a no-op for unknown keys.
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error

	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HSet(ctx context.Context, key string, field string, value string) error
	HDel(ctx context.Context, key string, fields ...string) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
}
