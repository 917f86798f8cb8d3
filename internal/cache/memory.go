package cache

import (
	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// defaultMemorySize bounds the memory provider when no Size is configured. A day
// of selections is a handful of keys per viewer bucket, so this is generous.
const defaultMemorySize = 256

func init() {
	Register(ProviderMemory, newMemoryCache)
}

// memoryCache is the process-local provider. Entries disappear on restart, so the
// first run after a restart always fetches.
type memoryCache struct {
	lru *lru.LRU[string, []byte]
}

func newMemoryCache(cfg ProviderConfig) (Cache, error) {
	size := cfg.Size
	if size <= 0 {
		size = defaultMemorySize
	}
	var onEvict lru.EvictCallback[string, []byte]
	if cfg.OnEvict != nil {
		onEvict = lru.EvictCallback[string, []byte](cfg.OnEvict)
	}
	return &memoryCache{lru: lru.NewLRU[string, []byte](size, onEvict, cfg.TTL)}, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) { return m.lru.Get(key) }

func (m *memoryCache) Set(key string, value []byte) { m.lru.Add(key, value) }

func (m *memoryCache) Contains(key string) bool { return m.lru.Contains(key) }

// Delete reports the removal to OnEvict, like LRU pressure does.
func (m *memoryCache) Delete(key string) { m.lru.Remove(key) }

func (m *memoryCache) Keys() []string { return m.lru.Keys() }

func (m *memoryCache) Purge() { m.lru.Purge() }

func (m *memoryCache) Len() int { return m.lru.Len() }

func (m *memoryCache) Close() error { return nil }
