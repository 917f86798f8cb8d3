package cache

import (
	"sort"
	"testing"
	"time"
)

func newTestBadgerCache(t *testing.T, ttl time.Duration) Cache {
	t.Helper()
	c, err := New("badger", ProviderConfig{TTL: ttl})
	if err != nil {
		t.Fatalf("New badger cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestBadgerCache_GetSet(t *testing.T) {
	c := newTestBadgerCache(t, time.Hour)

	if _, ok := c.Get("key1"); ok {
		t.Fatal("Expected miss for key1")
	}

	c.Set("key1", []byte("value1"))
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("Expected hit for key1")
	}
	if string(val) != "value1" {
		t.Fatalf("Expected value1, got %s", string(val))
	}
	if !c.Contains("key1") {
		t.Fatal("Expected key1 to be contained")
	}
}

func TestBadgerCache_Overwrite(t *testing.T) {
	c := newTestBadgerCache(t, time.Hour)

	c.Set("key", []byte("v1"))
	c.Set("key", []byte("v2"))

	val, _ := c.Get("key")
	if string(val) != "v2" {
		t.Fatalf("Expected v2, got %s", string(val))
	}
	if c.Len() != 1 {
		t.Fatalf("Expected Len 1 after overwrite, got %d", c.Len())
	}
}

func TestBadgerCache_DeleteKeysPurge(t *testing.T) {
	c := newTestBadgerCache(t, time.Hour)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Set("c", []byte("3"))
	c.Delete("b")

	keys := c.Keys()
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Fatalf("Expected keys [a c], got %v", keys)
	}

	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Expected Len 0 after Purge, got %d", c.Len())
	}
}

func TestBadgerCache_KeyPrefixIsolation(t *testing.T) {
	c, err := New("badger", ProviderConfig{TTL: time.Hour, KeyPrefix: "releases:"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	c.Set("k", []byte("v"))
	keys := c.Keys()
	if len(keys) != 1 || keys[0] != "k" {
		t.Fatalf("Expected prefix to be stripped from keys, got %v", keys)
	}
}

func TestBadgerCache_Expiry(t *testing.T) {
	// Badger TTLs have one-second resolution.
	c := newTestBadgerCache(t, time.Second)

	c.Set("short", []byte("v"))
	time.Sleep(2100 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Fatal("Expected entry to expire")
	}
}
