// Package respcache is an in-memory TTL cache for generated assistant
// replies. State is process-lifetime only; there is deliberately no
// persistent or distributed backend.
package respcache

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type entry struct {
	value     string
	createdAt time.Time
	expiresAt time.Time
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Size      int     `json:"size"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// Cache stores replies keyed by query fingerprint. Reads and writes are
// serialized by a single mutex; entries are expired lazily on Get and
// proactively by the background sweep.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry

	hits      int64
	misses    int64
	evictions int64

	now func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Get returns the stored value verbatim, or ok=false on absence or expiry.
// Expired entries are deleted on the spot and counted as evictions.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return "", false
	}

	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		c.misses++
		c.evictions++
		return "", false
	}

	c.hits++
	return e.value, true
}

// Set unconditionally overwrites any existing entry at key. Concurrent
// writers for the same key converge to last-writer-wins.
func (c *Cache) Set(key, value string, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &entry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

// Clear drops every entry. Dropped entries count as evictions.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[string]*entry)
	c.evictions += int64(removed)
	logrus.Infof("[CACHE] Cleared: %d entries removed", removed)
}

// Stats returns current counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.hits + c.misses
	rate := 0.0
	if total > 0 {
		rate = float64(c.hits) / float64(total)
	}
	return Stats{
		Size:      len(c.entries),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   rate,
	}
}

// StartSweeper removes expired entries at a fixed interval so memory does
// not grow unbounded between reads. Stops when ctx is cancelled.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := c.sweep(); removed > 0 {
					logrus.Debugf("[CACHE] Sweep removed %d expired entries", removed)
				}
			}
		}
	}()
}

func (c *Cache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.evictions += int64(removed)
	return removed
}
