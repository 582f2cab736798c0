package kv

import (
	"context"
	"fmt"
	"time"
)

// Backend represents the storage backend type
type Backend string

const (
	// BackendMemory uses the in-memory store
	BackendMemory Backend = "memory"
	// BackendRedis uses Redis as the backend
	BackendRedis Backend = "redis"
)

const (
	defaultJanitorInterval     = 30 * time.Second
	defaultRetryInterval       = 5 * time.Second
	defaultStartupProbeTimeout = time.Second
)

// LogFunc is a function type for structured logging
type LogFunc func(msg string, fields ...any)

// Config holds configuration for creating a Store instance
type Config struct {
	Backend Backend

	// RedisURL is required when Backend is "redis".
	// Format: redis://localhost:6379/0 or redis://:password@localhost:6379/1
	RedisURL string

	// JanitorInterval controls how often the in-memory store drops expired
	// keys. Default: 30 seconds
	JanitorInterval time.Duration

	// RetryInterval is how long a failed Redis is skipped before the next
	// attempt. Default: 5 seconds
	RetryInterval time.Duration

	// StartupProbeTimeout bounds the first Redis ping. Default: 1 second
	StartupProbeTimeout time.Duration

	// Logger receives failover events. If nil, nothing is logged.
	Logger LogFunc
}

// StoreFactory defines a function that creates a Store instance
type StoreFactory func(cfg Config) (Store, error)

var factories = make(map[Backend]StoreFactory)

// RegisterBackend registers a store factory for a given backend
func RegisterBackend(backend Backend, factory StoreFactory) {
	factories[backend] = factory
}

// NewStoreFromConfig creates a Store for cfg.Backend. A Redis backend is
// wrapped in a FailoverStore with an in-memory fallback; if Redis does not
// answer the startup probe the fallback starts out active.
func NewStoreFromConfig(cfg Config) (Store, error) {
	cfg = withDefaults(cfg)

	factory, ok := factories[cfg.Backend]
	if !ok {
		return nil, fmt.Errorf("unsupported backend: %s (is the backend package imported?)", cfg.Backend)
	}
	if cfg.Backend != BackendRedis {
		return factory(cfg)
	}

	memoryFactory, ok := factories[BackendMemory]
	if !ok {
		return nil, fmt.Errorf("redis backend requires the memory backend for failover")
	}
	fallback, err := memoryFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create fallback store: %w", err)
	}

	primary, err := factory(cfg)
	if err != nil {
		fallback.Close()
		return nil, err
	}

	fs := NewFailoverStore(primary, fallback, cfg.RetryInterval, cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StartupProbeTimeout)
	defer cancel()
	if err := primary.Ping(ctx); err != nil {
		cfg.Logger("Redis unavailable at startup; counting in memory", "error", err)
		fs.markDown()
	}
	return fs, nil
}

func withDefaults(cfg Config) Config {
	if cfg.JanitorInterval == 0 {
		cfg.JanitorInterval = defaultJanitorInterval
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	if cfg.StartupProbeTimeout == 0 {
		cfg.StartupProbeTimeout = defaultStartupProbeTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = func(string, ...any) {}
	}
	return cfg
}
