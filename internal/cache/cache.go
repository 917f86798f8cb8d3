// Package cache stores serialized release selections. Providers (memory, redis,
// badger) hold raw bytes behind Cache; ContentCache layers typed envelopes with
// their own expiry on top.
package cache

// EvictCallback receives keys leaving an LRU provider, through size pressure,
// Delete or Purge. Redis passes a nil value.
type EvictCallback func(key string, value []byte)

// Logger receives errors from providers that talk to an external backend.
type Logger interface {
	Error(msg string, err error)
}

// Cache is a byte store with optional LRU bound and backend TTL.
type Cache interface {
	// Get returns the value and true, or nil and false on a miss. LRU providers
	// count it as a use.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)

	// Contains reports presence without counting as a use.
	Contains(key string) bool

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string)

	// Keys returns the live keys. Order is provider-specific.
	Keys() []string

	// Purge removes every entry.
	Purge()

	// Len returns the number of live entries.
	Len() int

	// Close releases connections or database handles.
	Close() error
}
