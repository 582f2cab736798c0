package kv

import (
	"context"
	"errors"
	"sync"
	"time"
)

// FailoverStore sends calls to the primary store and switches to the
// fallback when the primary reports ErrBackendUnavailable. The primary is
// skipped for retryInterval after each failure and then tried again.
//
// Counters do not move between the stores: after a switch each one keeps
// its own values until they expire.
type FailoverStore struct {
	primary       Store
	fallback      Store
	retryInterval time.Duration
	logger        LogFunc
	now           func() time.Time

	mu        sync.Mutex
	degraded  bool
	downUntil time.Time
}

// NewFailoverStore creates a store that prefers primary and falls back to fallback.
func NewFailoverStore(primary, fallback Store, retryInterval time.Duration, logger LogFunc) *FailoverStore {
	if logger == nil {
		logger = func(string, ...any) {}
	}
	if retryInterval <= 0 {
		retryInterval = defaultRetryInterval
	}
	return &FailoverStore{
		primary:       primary,
		fallback:      fallback,
		retryInterval: retryInterval,
		logger:        logger,
		now:           time.Now,
	}
}

// ActiveBackend returns "primary" or "fallback".
func (fs *FailoverStore) ActiveBackend() string {
	if _, primary := fs.pick(); primary {
		return "primary"
	}
	return "fallback"
}

func (fs *FailoverStore) pick() (Store, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.degraded && fs.now().Before(fs.downUntil) {
		return fs.fallback, false
	}
	return fs.primary, true
}

func (fs *FailoverStore) markDown() {
	fs.mu.Lock()
	wasHealthy := !fs.degraded
	fs.degraded = true
	fs.downUntil = fs.now().Add(fs.retryInterval)
	fs.mu.Unlock()

	if wasHealthy {
		fs.logger("Primary store unavailable; switched to fallback", "retry_in", fs.retryInterval.String())
	}
}

func (fs *FailoverStore) markUp() {
	fs.mu.Lock()
	recovered := fs.degraded
	fs.degraded = false
	fs.mu.Unlock()

	if recovered {
		fs.logger("Primary store recovered")
	}
}

func run[T any](fs *FailoverStore, fn func(Store) (T, error)) (T, error) {
	store, primary := fs.pick()
	v, err := fn(store)
	if !primary {
		return v, err
	}
	if errors.Is(err, ErrBackendUnavailable) {
		fs.markDown()
		return fn(fs.fallback)
	}
	fs.markUp()
	return v, err
}

func (fs *FailoverStore) IncrBy(ctx context.Context, key string, n int64, ttl time.Duration) (int64, error) {
	return run(fs, func(s Store) (int64, error) { return s.IncrBy(ctx, key, n, ttl) })
}

func (fs *FailoverStore) Get(ctx context.Context, key string) (int64, error) {
	return run(fs, func(s Store) (int64, error) { return s.Get(ctx, key) })
}

func (fs *FailoverStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	return run(fs, func(s Store) (time.Duration, error) { return s.TTL(ctx, key) })
}

func (fs *FailoverStore) Del(ctx context.Context, keys ...string) (int64, error) {
	return run(fs, func(s Store) (int64, error) { return s.Del(ctx, keys...) })
}

// Ping checks the primary store only.
func (fs *FailoverStore) Ping(ctx context.Context) error {
	return fs.primary.Ping(ctx)
}

func (fs *FailoverStore) Close() error {
	return errors.Join(fs.primary.Close(), fs.fallback.Close())
}
