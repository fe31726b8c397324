package cache

import (
	"strings"
	"sync"
	"time"
)

// Cache is the keyed TTL cache each service owns. Implementations must be
// safe for concurrent use.
type Cache interface {
	Set(key string, value any, ttl time.Duration)
	Get(key string) (any, bool)
	ClearPrefix(prefix string)
	Clear()
	Len() int
}

type entry struct {
	value     any
	timestamp time.Time
	ttl       time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.timestamp) > e.ttl
}

// TTLCache is a mutex-guarded map with per-entry time-to-live. Entries
// expire lazily on read and are also swept by the Janitor.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewTTL() *TTLCache {
	return &TTLCache{entries: make(map[string]entry)}
}

func (c *TTLCache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	c.mu.Lock()
	c.entries[key] = entry{value: value, timestamp: time.Now(), ttl: ttl}
	c.mu.Unlock()
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// ClearPrefix removes every entry whose key starts with prefix. Services
// call this after a mutation so stale reads cannot outlive the write.
func (c *TTLCache) ClearPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

func (c *TTLCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// sweep removes expired entries and reports how many were dropped.
func (c *TTLCache) sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// NopCache satisfies Cache while storing nothing. Used by tests that need
// every read to hit the transport.
type NopCache struct{}

func (NopCache) Set(string, any, time.Duration) {}
func (NopCache) Get(string) (any, bool)         { return nil, false }
func (NopCache) ClearPrefix(string)             {}
func (NopCache) Clear()                         {}
func (NopCache) Len() int                       { return 0 }
