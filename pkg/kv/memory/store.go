package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sampleprojects/postandcomments/pkg/kv"
)

type counter struct {
	value   int64
	expires time.Time // zero when the key never expires
}

// Store is an in-memory implementation of the kv.Store interface
type Store struct {
	mu       sync.Mutex
	counters map[string]counter
	now      func() time.Time

	janitorInterval time.Duration
	janitorStop     chan struct{}
	janitorDone     chan struct{}
	closeOnce       sync.Once
}

// New creates a new in-memory store. A positive janitorInterval starts a
// goroutine that drops expired keys; expired keys are invisible either way.
func New(janitorInterval time.Duration) *Store {
	s := &Store{
		counters:        make(map[string]counter),
		now:             time.Now,
		janitorInterval: janitorInterval,
		janitorStop:     make(chan struct{}),
		janitorDone:     make(chan struct{}),
	}

	if janitorInterval > 0 {
		go s.janitor()
	} else {
		close(s.janitorDone)
	}

	return s
}

func (s *Store) janitor() {
	defer close(s.janitorDone)
	ticker := time.NewTicker(s.janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.janitorStop:
			return
		}
	}
}

func (s *Store) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, c := range s.counters {
		if c.expired(now) {
			delete(s.counters, key)
		}
	}
}

func (c counter) expired(now time.Time) bool {
	return !c.expires.IsZero() && !now.Before(c.expires)
}

// lookup returns the live counter at key (must hold lock)
func (s *Store) lookup(key string) (counter, bool) {
	c, ok := s.counters[key]
	if !ok {
		return counter{}, false
	}
	if c.expired(s.now()) {
		delete(s.counters, key)
		return counter{}, false
	}
	return c, true
}

func (s *Store) IncrBy(ctx context.Context, key string, n int64, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.lookup(key)
	if !ok && ttl > 0 {
		c.expires = s.now().Add(ttl)
	}
	c.value += n
	s.counters[key] = c
	return c.value, nil
}

func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.lookup(key)
	if !ok {
		return 0, kv.ErrNotFound
	}
	return c.value, nil
}

func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.lookup(key)
	if !ok {
		return 0, kv.ErrNotFound
	}
	if c.expires.IsZero() {
		return 0, nil
	}
	return c.expires.Sub(s.now()), nil
}

func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		if _, ok := s.lookup(key); ok {
			delete(s.counters, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close stops the background janitor and drops every key
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.janitorStop)
		<-s.janitorDone

		s.mu.Lock()
		s.counters = make(map[string]counter)
		s.mu.Unlock()
	})
	return nil
}
