// Package cache memoizes consolidated charts.
package cache

import (
	"context"
	"math"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/okian/perfdash/pkg/metrics"
)

const defaultMaxSize = 256

// Cache stores values by key.
type Cache[V any] interface {
	// Get returns the value for key and marks it recently used.
	Get(ctx context.Context, key string) (V, bool)
	// Put stores value under key, evicting the least recently used entry when full.
	Put(ctx context.Context, key string, value V)
	// Purge drops every entry.
	Purge(ctx context.Context)
	// Len returns the number of entries.
	Len() int
}

// chartLRU implements Cache on a thread-safe LRU and reports hits, misses,
// evictions and size.
type chartLRU[V any] struct {
	entries *lru.Cache[string, V]
}

// NewLRU creates a cache. The default bound is 256 entries.
func NewLRU[V any](opts ...Option) Cache[V] {
	cfg := config{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	size := cfg.maxSize
	if size <= 0 {
		size = math.MaxInt
	}
	// lru.New only fails for a non-positive size.
	entries, _ := lru.New[string, V](size)
	return &chartLRU[V]{entries: entries}
}

// Key joins parts into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, "\x1f")
}

func (c *chartLRU[V]) Get(_ context.Context, key string) (V, bool) {
	v, ok := c.entries.Get(key)
	if !ok {
		metrics.RecordCacheMiss()
		return v, false
	}
	metrics.RecordCacheHit()
	return v, true
}

func (c *chartLRU[V]) Put(_ context.Context, key string, value V) {
	if evicted := c.entries.Add(key, value); evicted {
		metrics.RecordCacheEviction()
	}
	metrics.UpdateCacheEntries(c.entries.Len())
}

func (c *chartLRU[V]) Purge(_ context.Context) {
	c.entries.Purge()
	metrics.UpdateCacheEntries(0)
}

func (c *chartLRU[V]) Len() int {
	return c.entries.Len()
}
