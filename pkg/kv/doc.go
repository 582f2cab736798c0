// Package kv provides expiring counters with in-memory and Redis-backed
// implementations. The API uses them for per-client rate limiting, so that
// several replicas sharing one Redis enforce a single budget.
//
// Backends register themselves from their package init functions; import
// the ones a binary needs for side effects:
//
//	import (
//		_ "github.com/sampleprojects/postandcomments/pkg/kv/memory"
//		_ "github.com/sampleprojects/postandcomments/pkg/kv/redis"
//	)
//
//	store, err := kv.NewStoreFromConfig(kv.Config{
//		Backend:  kv.BackendRedis,
//		RedisURL: "redis://localhost:6379/0",
//	})
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	n, err := store.IncrBy(ctx, "ratelimit:10.0.0.1:1700000000", 1, time.Minute)
//
// When Redis is the configured backend the returned store is a
// FailoverStore that keeps counting in memory while Redis is unreachable.
package kv
