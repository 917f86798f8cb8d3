package cache

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/cinebrain/releases/internal/models"
)

// envelope is the stored form of a content entry. Expiry is a Unix timestamp in
// milliseconds after which the entry counts as absent.
type envelope struct {
	Content []models.ContentItem `json:"content"`
	Expiry  int64                `json:"expiry"`
}

// ContentCache stores selected content lists in a Cache with a per-entry TTL.
// Expiry is lazy: Get reports an expired entry as absent without removing it,
// and ClearExpired reclaims the space.
type ContentCache struct {
	store Cache
	group string
	now   func() time.Time
}

// DefaultContentGroup labels content metrics when the store is not instrumented.
const DefaultContentGroup = "content"

// ContentCacheOption configures a ContentCache.
type ContentCacheOption func(*ContentCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ContentCacheOption {
	return func(c *ContentCache) {
		c.now = now
	}
}

// NewContentCache wraps store. Metrics use the store's Group when it was built
// by New with one, DefaultContentGroup otherwise.
func NewContentCache(store Cache, opts ...ContentCacheOption) *ContentCache {
	group := DefaultContentGroup
	if g, ok := store.(interface{ Group() string }); ok {
		group = g.Group()
	}
	c := &ContentCache{store: store, group: group, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the items stored under key, or false when the key is absent,
// expired or unreadable.
func (c *ContentCache) Get(key string) ([]models.ContentItem, bool) {
	env, result := c.load(key)
	if result == LookupHit && c.expired(env) {
		result = LookupExpired
	}
	ContentLookupsTotal.WithLabelValues(c.group, result).Inc()
	if result != LookupHit {
		return nil, false
	}
	return env.Content, true
}

// Set stores items under key for ttl. A non-positive ttl stores nothing.
func (c *ContentCache) Set(key string, items []models.ContentItem, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if items == nil {
		items = []models.ContentItem{}
	}
	data, err := json.Marshal(envelope{
		Content: items,
		Expiry:  c.now().Add(ttl).UnixMilli(),
	})
	if err != nil {
		return
	}
	c.store.Set(key, data)
}

// Invalidate removes key so the next Get misses.
func (c *ContentCache) Invalidate(key string) {
	if !c.store.Contains(key) {
		return
	}
	c.store.Delete(key)
	ContentRemovalsTotal.WithLabelValues(c.group, RemovalInvalidated).Inc()
}

// Clear removes every entry.
func (c *ContentCache) Clear() {
	n := c.store.Len()
	c.store.Purge()
	ContentRemovalsTotal.WithLabelValues(c.group, RemovalCleared).Add(float64(n))
}

// ClearExpired removes expired or unreadable entries and returns how many were removed.
func (c *ContentCache) ClearExpired() int {
	removed := 0
	for _, key := range c.store.Keys() {
		env, result := c.load(key)
		if result == LookupHit && !c.expired(env) {
			continue
		}
		c.store.Delete(key)
		removed++
	}
	ContentRemovalsTotal.WithLabelValues(c.group, RemovalExpired).Add(float64(removed))
	return removed
}

// load reads and decodes key, returning LookupHit, LookupMiss or LookupUnreadable.
func (c *ContentCache) load(key string) (envelope, string) {
	data, ok := c.store.Get(key)
	if !ok {
		return envelope{}, LookupMiss
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, LookupUnreadable
	}
	return env, LookupHit
}

func (c *ContentCache) expired(env envelope) bool {
	return c.now().UnixMilli() >= env.Expiry
}
