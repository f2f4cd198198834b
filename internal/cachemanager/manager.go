// Package cachemanager provides typed caches for API lookups that rarely
// change, such as room id resolution and danmaku server info.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a typed key/value cache with per-entry ttl.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}

// Stats counts read-through lookups.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Shared   uint64
	Failures uint64
}
