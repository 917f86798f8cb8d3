package cache

import (
	"fmt"
	"testing"
	"time"
)

func newTestMemoryCache(t *testing.T, cfg ProviderConfig) (Cache, *evictRecorder) {
	t.Helper()
	rec := &evictRecorder{}
	cfg.OnEvict = rec.record
	c, err := New(ProviderMemory, cfg)
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, rec
}

func TestMemoryCache_SelectionRoundTrip(t *testing.T) {
	c, _ := newTestMemoryCache(t, ProviderConfig{Size: 10, TTL: time.Hour})

	if val, ok := c.Get("new_releases:2026-10-16"); ok || val != nil {
		t.Fatalf("Expected a nil miss, got %q (ok=%v)", val, ok)
	}

	c.Set("new_releases:2026-10-16", []byte(`{"content":[],"expiry":1}`))
	c.Set("new_releases:2026-10-16", []byte(`{"content":[],"expiry":2}`))

	val, ok := c.Get("new_releases:2026-10-16")
	if !ok || string(val) != `{"content":[],"expiry":2}` {
		t.Fatalf("Expected the overwritten envelope, got %q (ok=%v)", val, ok)
	}
	if c.Len() != 1 || !c.Contains("new_releases:2026-10-16") {
		t.Fatalf("Expected one entry, got Len %d", c.Len())
	}
}

func TestMemoryCache_DefaultSize(t *testing.T) {
	c, rec := newTestMemoryCache(t, ProviderConfig{TTL: time.Hour})

	for i := 0; i <= defaultMemorySize; i++ {
		c.Set(fmt.Sprintf("k%d", i), []byte("v"))
	}
	if c.Len() != defaultMemorySize {
		t.Fatalf("Expected Len %d, got %d", defaultMemorySize, c.Len())
	}
	if got := rec.Keys(); len(got) != 1 || got[0] != "k0" {
		t.Fatalf("Expected the oldest key evicted, got %v", got)
	}
}

func TestMemoryCache_LRU_Eviction(t *testing.T) {
	c, rec := newTestMemoryCache(t, ProviderConfig{Size: 2, TTL: time.Hour})

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	_, _ = c.Get("a")
	c.Set("c", []byte("3"))

	if got := rec.Keys(); len(got) != 1 || got[0] != "b" {
		t.Fatalf("Expected 'b' evicted as least recently used, got %v", got)
	}
	if !c.Contains("a") || !c.Contains("c") {
		t.Fatal("Expected 'a' and 'c' to remain")
	}
}

func TestMemoryCache_DeleteAndPurgeReportEvictions(t *testing.T) {
	c, rec := newTestMemoryCache(t, ProviderConfig{Size: 10, TTL: time.Hour})

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Delete("a")
	c.Delete("missing")

	if keys := c.Keys(); len(keys) != 1 || keys[0] != "b" {
		t.Fatalf("Expected keys [b], got %v", keys)
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Expected Len 0 after Purge, got %d", c.Len())
	}
	if got := rec.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Expected a then b reported, got %v", got)
	}
}

func TestMemoryCache_BackendTTL(t *testing.T) {
	c, _ := newTestMemoryCache(t, ProviderConfig{Size: 10, TTL: 50 * time.Millisecond})

	c.Set("k", []byte("v"))
	time.Sleep(150 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected entry dropped after the backend TTL")
	}
}

func TestMemoryCache_Close(t *testing.T) {
	c, err := New(ProviderMemory, ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
