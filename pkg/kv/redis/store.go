package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sampleprojects/postandcomments/pkg/kv"
)

// IsConnectionError reports whether err means Redis could not be reached,
// as opposed to a missing key or a command error.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, redis.Nil) {
		return false
	}
	// Cancellation by the caller is not a backend failure.
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var sysErr syscall.Errno
	if errors.As(err, &sysErr) {
		switch sysErr {
		case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ECONNABORTED, syscall.ETIMEDOUT:
			return true
		}
	}

	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
		"timeout",
		"connection closed",
		"client is closed",
		"EOF",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func wrapConnectionError(err error) error {
	if err == nil {
		return nil
	}
	if IsConnectionError(err) {
		return fmt.Errorf("%w: %v", kv.ErrBackendUnavailable, err)
	}
	return err
}

// Store is a Redis-backed implementation of the kv.Store interface
type Store struct {
	client *redis.Client
}

// New creates a Redis store. The connection is opened lazily, so New does
// not fail when the server is down; use Ping to probe it.
func New(redisURL string) (*Store, error) {
	opt, err := parseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &Store{client: redis.NewClient(opt)}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// parseURL accepts redis:// URLs and bare host:port[/db] addresses.
func parseURL(redisURL string) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err == nil {
		return opt, nil
	}

	u, parseErr := url.Parse("redis://" + redisURL)
	if parseErr != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid redis URL %q: %w", redisURL, err)
	}

	opt = &redis.Options{Addr: u.Host}
	if u.Path != "" && u.Path != "/" {
		if db, dbErr := strconv.Atoi(strings.TrimPrefix(u.Path, "/")); dbErr == nil {
			opt.DB = db
		}
	}
	if u.User != nil {
		if password, ok := u.User.Password(); ok {
			opt.Password = password
		}
	}
	return opt, nil
}

func (s *Store) IncrBy(ctx context.Context, key string, n int64, ttl time.Duration) (int64, error) {
	v, err := s.client.IncrBy(ctx, key, n).Result()
	if err != nil {
		return 0, wrapConnectionError(err)
	}
	// The increment that created the key sets its expiry, in milliseconds.
	if ttl > 0 && v == n {
		if err := s.client.PExpire(ctx, key, ttl).Err(); err != nil {
			return 0, wrapConnectionError(err)
		}
	}
	return v, nil
}

func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	v, err := s.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, kv.ErrNotFound
	}
	if err != nil {
		return 0, wrapConnectionError(err)
	}
	return v, nil
}

func (s *Store) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, wrapConnectionError(err)
	}
	// -2 means the key is missing, -1 that it has no expiry.
	switch d {
	case -2:
		return 0, kv.ErrNotFound
	case -1:
		return 0, nil
	}
	return d, nil
}

func (s *Store) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, wrapConnectionError(err)
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return wrapConnectionError(s.client.Ping(ctx).Err())
}

func (s *Store) Close() error {
	return s.client.Close()
}
