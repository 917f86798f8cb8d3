package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/cinebrain/releases/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestContentCache(t *testing.T) (*ContentCache, *fakeClock) {
	t.Helper()
	store, err := New("memory", ProviderConfig{Size: 100, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New memory cache: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	clock := &fakeClock{now: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)}
	return NewContentCache(store, WithClock(clock.Now)), clock
}

func sampleItems() []models.ContentItem {
	return []models.ContentItem{
		{ID: 1, Title: "Pushpa", ContentType: models.ContentTypeMovie},
		{ID: 2, Title: "Dark", ContentType: models.ContentTypeTV},
	}
}

func TestContentCache_TTL(t *testing.T) {
	c, clock := newTestContentCache(t)

	c.Set("k", sampleItems(), 1000*time.Millisecond)

	items, ok := c.Get("k")
	if !ok {
		t.Fatal("Expected hit immediately after Set")
	}
	if len(items) != 2 || items[0].ID != 1 || items[1].Title != "Dark" {
		t.Fatalf("Expected stored items back, got %+v", items)
	}

	clock.Advance(999 * time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Expected hit just before TTL")
	}

	clock.Advance(1 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected miss once TTL has elapsed")
	}
}

func TestContentCache_TTLWithRealClock(t *testing.T) {
	store, err := New("memory", ProviderConfig{Size: 10, TTL: time.Hour})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()
	c := NewContentCache(store)

	c.Set("k", sampleItems(), 1000*time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("Expected hit immediately after Set")
	}

	time.Sleep(1100 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected miss after sleeping past the TTL")
	}
}

func TestContentCache_LazyExpiry(t *testing.T) {
	c, clock := newTestContentCache(t)

	c.Set("k", sampleItems(), time.Second)
	clock.Advance(2 * time.Second)

	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected expired entry to read as absent")
	}
	if !c.store.Contains("k") {
		t.Fatal("Expected Get to leave the expired entry in place")
	}
}

func TestContentCache_Invalidate(t *testing.T) {
	c, _ := newTestContentCache(t)

	c.Set("k", sampleItems(), time.Minute)
	c.Invalidate("k")

	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected miss after Invalidate")
	}
}

func TestContentCache_Clear(t *testing.T) {
	c, _ := newTestContentCache(t)

	c.Set("a", sampleItems(), time.Minute)
	c.Set("b", sampleItems(), time.Minute)
	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Fatal("Expected miss for a after Clear")
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("Expected miss for b after Clear")
	}
}

func TestContentCache_ClearExpired(t *testing.T) {
	c, clock := newTestContentCache(t)

	c.Set("short", sampleItems(), time.Second)
	c.Set("long", sampleItems(), time.Hour)
	c.store.Set("garbage", []byte("not json"))

	clock.Advance(time.Minute)

	if removed := c.ClearExpired(); removed != 2 {
		t.Fatalf("Expected 2 entries removed, got %d", removed)
	}
	if c.store.Contains("short") || c.store.Contains("garbage") {
		t.Fatal("Expected expired and unreadable entries to be gone")
	}
	if _, ok := c.Get("long"); !ok {
		t.Fatal("Expected unexpired entry to survive")
	}
}

func TestContentCache_EmptyListIsAHit(t *testing.T) {
	c, _ := newTestContentCache(t)

	c.Set("empty", nil, time.Minute)
	items, ok := c.Get("empty")
	if !ok {
		t.Fatal("Expected an empty list to be cached")
	}
	if len(items) != 0 {
		t.Fatalf("Expected no items, got %d", len(items))
	}
}

func TestContentCache_NonPositiveTTLStoresNothing(t *testing.T) {
	c, _ := newTestContentCache(t)

	c.Set("k", sampleItems(), 0)
	if _, ok := c.Get("k"); ok {
		t.Fatal("Expected nothing stored for zero TTL")
	}
}

func TestContentCache_EnvelopeFormat(t *testing.T) {
	c, _ := newTestContentCache(t)

	c.Set("k", sampleItems()[:1], time.Second)
	raw, ok := c.store.Get("k")
	if !ok {
		t.Fatal("Expected raw entry in store")
	}
	want := `{"content":[`
	if string(raw[:len(want)]) != want {
		t.Fatalf("Expected envelope to start with %s, got %s", want, raw)
	}
}

func TestContentCache_WithBadgerStore(t *testing.T) {
	store := newTestBadgerCache(t, time.Hour)
	c := NewContentCache(store)

	c.Set("k", sampleItems(), time.Minute)
	items, ok := c.Get("k")
	if !ok || len(items) != 2 {
		t.Fatalf("Expected 2 items from badger-backed cache, got %v (ok=%v)", items, ok)
	}
}
