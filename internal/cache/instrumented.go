package cache

// instrumentedCache counts backend hits and misses for one group and keeps the
// group's cache_entries gauge pointed at the live backend.
type instrumentedCache struct {
	inner Cache
	group string
}

func newInstrumentedCache(inner Cache, group string) *instrumentedCache {
	entries.track(group, inner.Len)
	return &instrumentedCache{inner: inner, group: group}
}

func (c *instrumentedCache) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		HitsTotal.WithLabelValues(c.group).Inc()
	} else {
		MissesTotal.WithLabelValues(c.group).Inc()
	}
	return val, ok
}

func (c *instrumentedCache) Set(key string, value []byte) { c.inner.Set(key, value) }

func (c *instrumentedCache) Contains(key string) bool { return c.inner.Contains(key) }

func (c *instrumentedCache) Delete(key string) { c.inner.Delete(key) }

func (c *instrumentedCache) Keys() []string { return c.inner.Keys() }

func (c *instrumentedCache) Purge() { c.inner.Purge() }

func (c *instrumentedCache) Len() int { return c.inner.Len() }

// Group returns the metrics label of this cache.
func (c *instrumentedCache) Group() string { return c.group }

// Close stops reporting the group's size and closes the backend.
func (c *instrumentedCache) Close() error {
	entries.untrack(c.group)
	return c.inner.Close()
}
