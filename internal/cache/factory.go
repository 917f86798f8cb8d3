package cache

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Built-in provider names, selected with cache.provider.
const (
	ProviderMemory = "memory"
	ProviderRedis  = "redis"
	ProviderBadger = "badger"
)

// defaultKeyPrefix namespaces keys in shared backends.
const defaultKeyPrefix = "cbcache:"

// ProviderConfig holds the configuration needed to create a cache instance.
type ProviderConfig struct {
	// Size bounds the entry count of LRU providers. Badger ignores it.
	Size int

	// TTL is the backend lifetime of an entry. ContentCache applies its own,
	// shorter expiry inside the stored envelope.
	TTL time.Duration

	// OnEvict is called when an entry is evicted. Badger never calls it.
	OnEvict EvictCallback

	// Logger receives backend errors. Nil drops them.
	Logger Logger

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// KeyPrefix namespaces keys in Redis and Badger. Defaults to "cbcache:".
	KeyPrefix string

	// BadgerPath is the directory of the Badger database. Empty runs Badger in memory.
	BadgerPath string

	// Group labels the cache_* metrics. A non-empty Group wraps the cache with
	// instrumentation and is picked up by NewContentCache.
	Group string
}

// Provider builds a Cache from config.
type Provider func(cfg ProviderConfig) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a provider available to New. It panics on a nil provider or a
// duplicate name, both of which are programming errors in an init function.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New builds the named provider. Names are case-insensitive and an empty name
// selects the memory provider. With a Group set, backend evictions are counted
// and the result is instrumented.
func New(name string, cfg ProviderConfig) (Cache, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = ProviderMemory
	}

	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}

	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	if cfg.Group == "" {
		return p(cfg)
	}

	group := cfg.Group
	onEvict := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if onEvict != nil {
			onEvict(key, value)
		}
	}

	inner, err := p(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, group), nil
}

// RegisteredProviders returns the registered provider names in sorted order.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
