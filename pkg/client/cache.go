package client

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultCacheTTL is how long a cached response stays readable.
const DefaultCacheTTL = 30 * time.Second

type cacheEntry struct {
	status     int
	body       []byte
	insertedAt time.Time
	timer      *time.Timer
}

// Cache holds successful GET responses for a fixed TTL. Every entry owns an
// eviction timer; storing a key again stops the previous entry's timer.
type Cache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewCache returns a cache with the given TTL. A non-positive TTL disables
// caching entirely.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, entries: make(map[string]*cacheEntry)}
}

// Get returns a copy of the stored body, so callers can never mutate what a
// later hit will see.
func (c *Cache) Get(key string) (int, []byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, nil, false
	}
	if time.Since(e.insertedAt) >= c.ttl {
		e.timer.Stop()
		delete(c.entries, key)
		return 0, nil, false
	}
	return e.status, append([]byte(nil), e.body...), true
}

func (c *Cache) Set(key string, status int, body []byte) {
	if c.ttl <= 0 {
		return
	}

	e := &cacheEntry{
		status:     status,
		body:       append([]byte(nil), body...),
		insertedAt: time.Now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		old.timer.Stop()
	}
	e.timer = time.AfterFunc(c.ttl, func() { c.evict(key, e) })
	c.entries[key] = e
}

// evict removes key only if it still maps to e; a superseding entry keeps
// its own timer.
func (c *Cache) evict(key string, e *cacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries[key] == e {
		delete(c.entries, key)
	}
}

// Purge drops every entry and stops all pending timers.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		e.timer.Stop()
	}
	c.entries = make(map[string]*cacheEntry)
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey identifies a request by method, normalized URL and a digest of the
// options that can change the response.
func cacheKey(method, rawURL string, header map[string]string, body []byte) string {
	h := sha256.New()

	names := make([]string, 0, len(header))
	for name := range header {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)
	lowered := make(map[string]string, len(header))
	for name, v := range header {
		lowered[strings.ToLower(name)] = v
	}
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write([]byte(lowered[name]))
		h.Write([]byte{0})
	}
	h.Write(body)

	return strings.ToUpper(method) + " " + normalizeURL(rawURL) + " " + hex.EncodeToString(h.Sum(nil))
}

// normalizeURL lowercases scheme and host and sorts the query so equivalent
// URLs share a key.
func normalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawQuery = u.Query().Encode()
	return u.String()
}
