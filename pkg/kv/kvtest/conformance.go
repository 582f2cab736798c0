// Package kvtest provides conformance tests for kv.Store implementations
package kvtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sampleprojects/postandcomments/pkg/kv"
)

// StoreFactory creates a fresh Store instance for testing
type StoreFactory func(t *testing.T) kv.Store

// RunConformanceTests runs all conformance tests against a Store implementation.
// Keys are prefixed with the test name so a shared Redis can be used.
func RunConformanceTests(t *testing.T, factory StoreFactory) {
	tests := []struct {
		name string
		test func(t *testing.T, store kv.Store, key string)
	}{
		{"IncrByCreatesAndAccumulates", testIncrBy},
		{"GetMissing", testGetMissing},
		{"TTLSetOnCreateOnly", testTTLSetOnCreate},
		{"TTLWithoutExpiry", testTTLWithoutExpiry},
		{"ExpiredCounterRestarts", testExpiredCounterRestarts},
		{"Del", testDel},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := factory(t)
			key := "kvtest:" + t.Name()
			t.Cleanup(func() {
				_, _ = store.Del(context.Background(), key, key+":other")
				store.Close()
			})
			tt.test(t, store, key)
		})
	}
}

func testIncrBy(t *testing.T, store kv.Store, key string) {
	ctx := context.Background()

	n, err := store.IncrBy(ctx, key, 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.IncrBy(ctx, key, 5, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	n, err = store.IncrBy(ctx, key, -2, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

func testGetMissing(t *testing.T, store kv.Store, key string) {
	_, err := store.Get(context.Background(), key)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	_, err = store.TTL(context.Background(), key)
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func testTTLSetOnCreate(t *testing.T, store kv.Store, key string) {
	ctx := context.Background()

	_, err := store.IncrBy(ctx, key, 1, 10*time.Second)
	require.NoError(t, err)
	// A later increment with a longer ttl leaves the expiry alone.
	_, err = store.IncrBy(ctx, key, 1, time.Hour)
	require.NoError(t, err)

	ttl, err := store.TTL(ctx, key)
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 10*time.Second)
}

func testTTLWithoutExpiry(t *testing.T, store kv.Store, key string) {
	ctx := context.Background()

	_, err := store.IncrBy(ctx, key, 1, 0)
	require.NoError(t, err)

	ttl, err := store.TTL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), ttl)
}

func testExpiredCounterRestarts(t *testing.T, store kv.Store, key string) {
	ctx := context.Background()

	_, err := store.IncrBy(ctx, key, 3, 100*time.Millisecond)
	require.NoError(t, err)

	time.Sleep(250 * time.Millisecond)

	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	n, err := store.IncrBy(ctx, key, 1, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func testDel(t *testing.T, store kv.Store, key string) {
	ctx := context.Background()
	other := key + ":other"

	_, err := store.IncrBy(ctx, key, 1, time.Minute)
	require.NoError(t, err)

	deleted, err := store.Del(ctx, key, other)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, kv.ErrNotFound)

	deleted, err = store.Del(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func testPing(t *testing.T, store kv.Store, _ string) {
	assert.NoError(t, store.Ping(context.Background()))
}
