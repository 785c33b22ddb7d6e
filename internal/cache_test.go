package internal

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprinter_Deterministic(t *testing.T) {
	f := NewFingerprinter([]byte("key"))

	assert.Equal(t, f.Fingerprint("prompt", "context"), f.Fingerprint("prompt", "context"))
	assert.Len(t, f.Fingerprint("prompt", "context"), 64)
}

func TestFingerprinter_BoundaryCollision(t *testing.T) {
	f := NewFingerprinter([]byte("key"))

	assert.NotEqual(t, f.Fingerprint("ab", "c"), f.Fingerprint("a", "bc"))
	assert.NotEqual(t, f.Fingerprint("", "abc"), f.Fingerprint("abc", ""))
}

func TestFingerprinter_Keys(t *testing.T) {
	a := NewFingerprinter([]byte("one"))
	b := NewFingerprinter([]byte("two"))
	sameAsA := NewFingerprinter([]byte("one"))

	assert.NotEqual(t, a.Fingerprint("p", "c"), b.Fingerprint("p", "c"))
	assert.Equal(t, a.Fingerprint("p", "c"), sameAsA.Fingerprint("p", "c"))
	assert.NotEqual(t, NewFingerprinter(nil).Fingerprint("p", "c"), NewFingerprinter(nil).Fingerprint("p", "c"))
}

func TestResponseCache_GetPut(t *testing.T) {
	c := NewResponseCache(time.Hour, 10)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Put("k", "v1")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v1", got)

	c.Put("k", "v2")
	got, _ = c.Get("k")
	assert.Equal(t, "v2", got)
	assert.Equal(t, 1, c.Len())
}

func TestResponseCache_LazyExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	c := NewResponseCache(10*time.Second, 10, WithClock(func() time.Time { return now }))

	c.Put("k", "v")
	now = now.Add(9 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	assert.True(t, c.Contains("k"), "expired entries stay until looked up")
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.False(t, c.Contains("k"))
}

func TestResponseCache_EvictsOldestInsertion(t *testing.T) {
	c := NewResponseCache(time.Hour, 3)

	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("k%d", i), "v")
	}
	// a hit does not refresh k0
	_, ok := c.Get("k0")
	require.True(t, ok)

	evicted := c.Put("k3", "v")
	assert.Equal(t, 1, evicted)
	assert.False(t, c.Contains("k0"))
	for _, k := range []string{"k1", "k2", "k3"} {
		assert.True(t, c.Contains(k), k)
	}
	assert.Equal(t, 3, c.Len())
	assert.EqualValues(t, 1, c.Stats().Evictions)
}

func TestResponseCache_ReplaceDoesNotEvict(t *testing.T) {
	c := NewResponseCache(time.Hour, 2)
	c.Put("a", "1")
	c.Put("b", "2")

	assert.Zero(t, c.Put("a", "3"))
	assert.Equal(t, 2, c.Len())

	// a is now the newest insertion, so b goes first
	c.Put("c", "4")
	assert.False(t, c.Contains("b"))
	assert.True(t, c.Contains("a"))
}

func TestResponseCache_Defaults(t *testing.T) {
	c := NewResponseCache(0, 0)
	assert.Equal(t, DefaultCacheTTL, c.ttl)
	assert.Equal(t, DefaultCacheSize, c.capacity)

	for i := 0; i < DefaultCacheSize+5; i++ {
		c.Put(fmt.Sprintf("k%d", i), "v")
	}
	assert.Equal(t, DefaultCacheSize, c.Len())

	c.Purge()
	assert.Zero(t, c.Len())
}
