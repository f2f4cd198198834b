package cachemanager

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zjrosen/biliterm/internal/log"
)

// ReadThroughCache loads values with fetch on a miss and caches successful
// results. Concurrent misses on one key share a single fetch.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache CacheManager[K, V]
	key   func(I) K
	fetch func(ctx context.Context, input I) (V, error)
	ttl   time.Duration
	group singleflight.Group

	hits, misses, shared, failures atomic.Uint64
}

// NewReadThroughCache builds a cache over fetch. key derives the cache key
// from the fetch input; a zero ttl uses the manager's default.
func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	key func(I) K,
	fetch func(ctx context.Context, input I) (V, error),
	ttl time.Duration,
) *ReadThroughCache[K, V, I] {
	return &ReadThroughCache[K, V, I]{
		cache: cache,
		key:   key,
		fetch: fetch,
		ttl:   ttl,
	}
}

// Get returns the cached value for input or fetches it. Errors are never
// cached.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, input I) (V, error) {
	k := r.key(input)
	if value, ok := r.cache.Get(ctx, k); ok {
		r.hits.Add(1)
		return value, nil
	}
	r.misses.Add(1)

	v, err, shared := r.group.Do(string(k), func() (any, error) {
		value, err := r.fetch(ctx, input)
		if err != nil {
			return value, err
		}
		r.cache.Set(ctx, k, value, r.ttl)
		return value, nil
	})
	if shared {
		r.shared.Add(1)
	}
	if err != nil {
		r.failures.Add(1)
		log.Debug(log.CatCache, "read-through fetch failed", "key", k, "error", err)
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Invalidate drops the entry for input so the next Get fetches again.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context, input I) {
	k := r.key(input)
	r.group.Forget(string(k))
	_ = r.cache.Delete(ctx, k)
}

// Stats returns lookup counters since creation.
func (r *ReadThroughCache[K, V, I]) Stats() Stats {
	return Stats{
		Hits:     r.hits.Load(),
		Misses:   r.misses.Load(),
		Shared:   r.shared.Load(),
		Failures: r.failures.Load(),
	}
}
