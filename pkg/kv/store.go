package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired
var ErrNotFound = errors.New("not found")

// ErrBackendUnavailable is returned when the backend storage is unavailable
var ErrBackendUnavailable = errors.New("backend unavailable")

// Store holds int64 counters that expire.
type Store interface {
	// IncrBy adds n to the counter at key and returns the new value. A
	// missing or expired key starts from zero; ttl is applied only when the
	// key is created, so repeated increments do not extend its life.
	IncrBy(ctx context.Context, key string, n int64, ttl time.Duration) (int64, error)

	// Get returns the current value of the counter at key.
	Get(ctx context.Context, key string) (int64, error)

	// TTL returns the time left before key expires, or 0 when the key has
	// no expiry.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Del removes keys and reports how many existed.
	Del(ctx context.Context, keys ...string) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}
