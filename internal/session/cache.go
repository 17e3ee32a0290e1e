// Package session holds the per-session key/value store: fetched snapshots,
// generated AI text and synthesized audio, keyed by logical name.
//
// A present, unexpired entry is authoritative. Expiry is checked lazily on
// read; there is no background sweeper. Keys are independent: clearing one
// never touches another.
package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value    any
	expireAt time.Time // zero => no TTL
}

func (e entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// Cache is safe for use from the tea.Cmd goroutines of one session.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	generation uint64
	now        func() time.Time

	// sf collapses concurrent loads of the same key into one call.
	sf singleflight.Group
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value for key. Expired entries behave as absent and are
// evicted.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if ent.expired(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return ent.value, true
}

// Set replaces the entry for key. A ttl <= 0 means the entry never expires.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value, ttl)
}

func (c *Cache) set(key string, value any, ttl time.Duration) {
	ent := entry{value: value}
	if ttl > 0 {
		ent.expireAt = c.now().Add(ttl)
	}
	c.entries[key] = ent
}

// Delete removes key. Removing a missing key is a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll clears every entry regardless of TTL. Loads already in
// flight when it is called do not write their results back.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.generation++
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrLoad returns the cached value for key, or calls load and stores a
// successful result with ttl. Errors are returned and never cached.
func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	v, err, _ := c.sf.Do(strconv.FormatUint(gen, 10)+"/"+key, func() (any, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.generation == gen {
			c.set(key, val, ttl)
		}
		c.mu.Unlock()
		return val, nil
	})
	return v, err
}

// Lookup is a typed Get. A stored value of another type reports absent.
func Lookup[T any](c *Cache, key string) (T, bool) {
	v, ok := c.Get(key)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
