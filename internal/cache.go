package internal

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	// DefaultCacheTTL is how long a generated response stays valid
	DefaultCacheTTL = time.Hour
	// DefaultCacheSize is the maximum number of cached responses
	DefaultCacheSize = 100
)

// Fingerprinter derives cache keys from (prompt, context) pairs
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter creates a fingerprinter keyed with key.
// An empty key is replaced with 32 random bytes.
func NewFingerprinter(key []byte) *Fingerprinter {
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
	}
	return &Fingerprinter{key: key}
}

// Fingerprint returns the hex HMAC-SHA256 of the length-prefixed prompt and context,
// so ("ab", "c") and ("a", "bc") never share a key
func (f *Fingerprinter) Fingerprint(prompt, context string) string {
	mac := hmac.New(sha256.New, f.key)
	var n [8]byte
	for _, part := range []string{prompt, context} {
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		mac.Write(n[:])
		mac.Write([]byte(part))
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// cacheEntry is a cached response with its insertion time
type cacheEntry struct {
	insertedAt time.Time
	value      string
}

// CacheStats reports cache counters
type CacheStats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// ResponseCache maps fingerprints to generated responses.
// Entries expire lazily on lookup; at capacity the oldest insertion is evicted.
// Hits do not refresh an entry's position.
type ResponseCache struct {
	mu       sync.Mutex
	entries  *orderedmap.OrderedMap[string, cacheEntry]
	ttl      time.Duration
	capacity int
	now      func() time.Time

	hits, misses, evictions int64
}

// CacheOption customizes a ResponseCache
type CacheOption func(*ResponseCache)

// WithClock replaces the cache's time source
func WithClock(now func() time.Time) CacheOption {
	return func(c *ResponseCache) {
		c.now = now
	}
}

// NewResponseCache creates a cache; non-positive ttl or capacity fall back to the defaults
func NewResponseCache(ttl time.Duration, capacity int, options ...CacheOption) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}

	c := &ResponseCache{
		entries:  orderedmap.New[string, cacheEntry](),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Get returns the cached value for fingerprint if it is younger than the TTL
func (c *ResponseCache) Get(fingerprint string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(fingerprint)
	if !ok {
		c.misses++
		return "", false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.entries.Delete(fingerprint)
		c.misses++
		return "", false
	}

	c.hits++
	return e.value, true
}

// Put stores value under fingerprint and reports how many entries were evicted to make room
func (c *ResponseCache) Put(fingerprint, value string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	// replacing moves the entry to the newest position
	c.entries.Delete(fingerprint)

	evicted := 0
	for c.entries.Len() >= c.capacity {
		oldest := c.entries.Oldest()
		if oldest == nil {
			break
		}
		c.entries.Delete(oldest.Key)
		evicted++
	}
	c.evictions += int64(evicted)

	c.entries.Set(fingerprint, cacheEntry{insertedAt: c.now(), value: value})
	return evicted
}

// Contains reports whether fingerprint is stored, ignoring expiry
func (c *ResponseCache) Contains(fingerprint string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries.Get(fingerprint)
	return ok
}

// Len returns the number of stored entries, including expired ones not yet looked up
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Len()
}

// Purge removes all entries
func (c *ResponseCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = orderedmap.New[string, cacheEntry]()
}

// Stats returns a snapshot of the cache counters
func (c *ResponseCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries:   c.entries.Len(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
