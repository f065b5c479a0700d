// Package cache provides the sharded TTL cache used by the authorization
// resolver.
//
// Expiry is checked on every read, so an entry is never served after its TTL
// even if the sweeper is not running. Each shard carries a generation counter
// that Invalidate and Clear bump; a load that started before the bump is
// returned to its callers but not stored.
package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultShards = 16

// Options configures a Cache.
type Options struct {
	// TTL is the hard lifetime of an entry. Zero or less disables caching:
	// nothing is stored and every GetOrLoad calls load.
	TTL time.Duration
	// Shards defaults to 16.
	Shards int
	// MaxEntries bounds the total size; 0 means unbounded.
	MaxEntries int
	// Now overrides the clock, for tests.
	Now func() time.Time
	// Name labels log lines.
	Name string
}

type entry[V any] struct {
	value   V
	expires time.Time
}

type shard[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]entry[V]
	gen   uint64
}

// Cache is a sharded map with per-key expiry. Safe for concurrent use.
type Cache[K comparable, V any] struct {
	ttl      time.Duration
	now      func() time.Time
	name     string
	hash     func(K) uint64
	perShard int
	shards   []*shard[K, V]
	group    singleflight.Group
}

// New creates a cache. hash spreads keys over the shards.
func New[K comparable, V any](opts Options, hash func(K) uint64) *Cache[K, V] {
	n := opts.Shards
	if n <= 0 {
		n = defaultShards
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	perShard := 0
	if opts.MaxEntries > 0 {
		perShard = (opts.MaxEntries + n - 1) / n
	}

	c := &Cache[K, V]{
		ttl:      opts.TTL,
		now:      now,
		name:     opts.Name,
		hash:     hash,
		perShard: perShard,
		shards:   make([]*shard[K, V], n),
	}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{items: make(map[K]entry[V])}
	}
	return c
}

// Int64Hash is a hash for int64 keys (Fibonacci hashing).
func Int64Hash(k int64) uint64 {
	return uint64(k) * 0x9E3779B97F4A7C15
}

func (c *Cache[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hash(key)%uint64(len(c.shards))]
}

// Get returns the live value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || !c.now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with a fresh TTL.
func (c *Cache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	c.storeLocked(s, key, value)
	s.mu.Unlock()
}

func (c *Cache[K, V]) storeLocked(s *shard[K, V], key K, value V) {
	if c.ttl <= 0 {
		return
	}
	now := c.now()
	if c.perShard > 0 && len(s.items) >= c.perShard {
		if _, exists := s.items[key]; !exists {
			c.evictLocked(s, now)
		}
	}
	s.items[key] = entry[V]{value: value, expires: now.Add(c.ttl)}
}

// evictLocked frees one slot, preferring expired entries.
func (c *Cache[K, V]) evictLocked(s *shard[K, V], now time.Time) {
	var victim K
	found := false
	for k, e := range s.items {
		if !now.Before(e.expires) {
			delete(s.items, k)
			return
		}
		if !found {
			victim, found = k, true
		}
	}
	if found {
		delete(s.items, victim)
	}
}

// GetOrLoad returns the live value for key, calling load on a miss.
// Concurrent misses for the same key share one load. Load errors are not
// cached.
func (c *Cache[K, V]) GetOrLoad(ctx context.Context, key K, load func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	s := c.shardFor(key)
	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	flight := fmt.Sprintf("%v/%d", key, gen)
	v, err, _ := c.group.Do(flight, func() (any, error) {
		// another flight may have stored it while we queued
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.gen == gen {
			c.storeLocked(s, key, v)
		}
		s.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Invalidate drops key and discards any load of its shard already in flight.
func (c *Cache[K, V]) Invalidate(key K) {
	s := c.shardFor(key)
	s.mu.Lock()
	delete(s.items, key)
	s.gen++
	s.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.items = make(map[K]entry[V])
		s.gen++
		s.mu.Unlock()
	}
}

// Len counts stored entries, expired ones included.
func (c *Cache[K, V]) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// Sweep removes expired entries and returns how many were removed.
func (c *Cache[K, V]) Sweep() int {
	now := c.now()
	removed := 0
	for _, s := range c.shards {
		s.mu.Lock()
		for k, e := range s.items {
			if !now.Before(e.expires) {
				delete(s.items, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done.
// The returned channel is closed when the sweeper exits.
func (c *Cache[K, V]) StartSweeper(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					log.Printf("cache %s: swept %d expired entries", c.name, n)
				}
			}
		}
	}()
	return done
}
