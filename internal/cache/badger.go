package cache

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

func init() {
	Register(ProviderBadger, newBadgerCache)
}

// badgerCache stores entries in a Badger database with a per-entry TTL.
// Badger drops expired keys on its own, so reads never see them.
//
// There is no LRU bound: Size is ignored and OnEvict never fires.
// Entries leave the store through TTL expiry, Delete or Purge.
type badgerCache struct {
	db     *badger.DB
	cfg    ProviderConfig
	prefix []byte
	logger Logger
}

func newBadgerCache(cfg ProviderConfig) (Cache, error) {
	opts := badger.DefaultOptions(cfg.BadgerPath).WithLogger(nil)
	if cfg.BadgerPath == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &badgerCache{
		db:     db,
		cfg:    cfg,
		prefix: []byte(prefix),
		logger: cfg.Logger,
	}, nil
}

func (b *badgerCache) key(key string) []byte {
	return append(append([]byte{}, b.prefix...), key...)
}

func (b *badgerCache) logError(msg string, err error) {
	if b.logger != nil {
		b.logger.Error(msg, err)
	}
}

func (b *badgerCache) Get(key string) ([]byte, bool) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			b.logError("badger cache Get failed", err)
		}
		return nil, false
	}
	return value, true
}

func (b *badgerCache) Set(key string, value []byte) {
	err := b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(b.key(key), value)
		if b.cfg.TTL > 0 {
			entry = entry.WithTTL(b.cfg.TTL)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		b.logError("badger cache Set failed", err)
	}
}

func (b *badgerCache) Contains(key string) bool {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(b.key(key))
		return err
	})
	return err == nil
}

func (b *badgerCache) Delete(key string) {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(b.key(key))
	})
	if err != nil {
		b.logError("badger cache Delete failed", err)
	}
}

func (b *badgerCache) Keys() []string {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = b.prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, string(it.Item().Key()[len(b.prefix):]))
		}
		return nil
	})
	if err != nil {
		b.logError("badger cache Keys failed", err)
	}
	return keys
}

func (b *badgerCache) Purge() {
	if err := b.db.DropPrefix(b.prefix); err != nil {
		b.logError("badger cache Purge failed", err)
	}
}

func (b *badgerCache) Len() int {
	return len(b.Keys())
}

func (b *badgerCache) Close() error {
	return b.db.Close()
}
