package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisOpTimeout bounds every round trip so a slow Redis degrades to a cache miss.
const redisOpTimeout = 2 * time.Second

func init() {
	Register(ProviderRedis, newRedisCache)
}

// redisCache shares selections between instances through Redis or Valkey.
//
// Layout under the key prefix:
//
//   - {prefix}e:{key}: one string per entry, written with PX so Redis drops it
//     once ProviderConfig.TTL has passed.
//   - {prefix}lru: a sorted set of live keys scored by last access in µs.
//     Members whose entry already expired are pruned by Keys, Len and eviction.
//
// Scripts touch entry keys that are not declared in KEYS, so the provider
// targets a single Redis node, not a cluster.
type redisCache struct {
	rdb         *redis.Client
	ttl         time.Duration
	maxSize     int
	onEvict     EvictCallback
	logger      Logger
	entryPrefix string
	lruKey      string
}

// KEYS[1] = lru set. ARGV = entry prefix, now µs, key.
// A miss also drops the key from the lru set.
var getAndTouch = redis.NewScript(`
local val = redis.call('GET', ARGV[1] .. ARGV[3])
if val then
    redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
else
    redis.call('ZREM', KEYS[1], ARGV[3])
end
return val
`)

// KEYS[1] = lru set. ARGV = entry prefix, value, now µs, key, max size, ttl ms.
// Returns the live keys evicted to get back under max size.
var setAndEvict = redis.NewScript(`
local prefix  = ARGV[1]
local member  = ARGV[4]
local maxSize = tonumber(ARGV[5])
local ttlMs   = tonumber(ARGV[6])

if ttlMs > 0 then
    redis.call('SET', prefix .. member, ARGV[2], 'PX', ttlMs)
else
    redis.call('SET', prefix .. member, ARGV[2])
end
redis.call('ZADD', KEYS[1], ARGV[3], member)

local evicted = {}
if maxSize > 0 then
    local size = redis.call('ZCARD', KEYS[1])
    while size > maxSize do
        local oldest = redis.call('ZPOPMIN', KEYS[1], 1)
        if #oldest == 0 then break end
        if redis.call('DEL', prefix .. oldest[1]) == 1 then
            table.insert(evicted, oldest[1])
        end
        size = size - 1
    end
end
return evicted
`)

// KEYS[1] = lru set. ARGV[1] = entry prefix. Returns the live keys, oldest first.
var pruneLive = redis.NewScript(`
local live = {}
for _, m in ipairs(redis.call('ZRANGE', KEYS[1], 0, -1)) do
    if redis.call('EXISTS', ARGV[1] .. m) == 1 then
        table.insert(live, m)
    else
        redis.call('ZREM', KEYS[1], m)
    end
end
return live
`)

// KEYS[1] = lru set. ARGV[1] = entry prefix. Returns the live keys removed.
var purgeAll = redis.NewScript(`
local removed = {}
for _, m in ipairs(redis.call('ZRANGE', KEYS[1], 0, -1)) do
    if redis.call('DEL', ARGV[1] .. m) == 1 then
        table.insert(removed, m)
    end
end
redis.call('DEL', KEYS[1])
return removed
`)

func newRedisCache(cfg ProviderConfig) (Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisCache{
		rdb:         rdb,
		ttl:         cfg.TTL,
		maxSize:     cfg.Size,
		onEvict:     cfg.OnEvict,
		logger:      cfg.Logger,
		entryPrefix: prefix + "e:",
		lruKey:      prefix + "lru",
	}, nil
}

func (r *redisCache) logError(msg string, err error) {
	if r.logger != nil {
		r.logger.Error(msg, err)
	}
}

// evicted reports removed keys to OnEvict. Values are not read back, so they are nil.
func (r *redisCache) evicted(keys []string) {
	if r.onEvict == nil {
		return
	}
	for _, key := range keys {
		r.onEvict(key, nil)
	}
}

func nowMicros() string {
	return strconv.FormatInt(time.Now().UnixMicro(), 10)
}

func (r *redisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	val, err := getAndTouch.Run(ctx, r.rdb, []string{r.lruKey}, r.entryPrefix, nowMicros(), key).Text()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logError("redis cache Get failed", err)
		}
		return nil, false
	}
	return []byte(val), true
}

func (r *redisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	evicted, err := setAndEvict.Run(ctx, r.rdb, []string{r.lruKey},
		r.entryPrefix, value, nowMicros(), key,
		strconv.Itoa(r.maxSize), strconv.FormatInt(r.ttl.Milliseconds(), 10),
	).StringSlice()
	if err != nil {
		r.logError("redis cache Set failed", err)
		return
	}
	r.evicted(evicted)
}

func (r *redisCache) Contains(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := r.rdb.Exists(ctx, r.entryPrefix+key).Result()
	if err != nil {
		r.logError("redis cache Contains failed", err)
		return false
	}
	return n == 1
}

// Delete reports the removal to OnEvict when the entry was still live.
func (r *redisCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	pipe := r.rdb.TxPipeline()
	del := pipe.Del(ctx, r.entryPrefix+key)
	pipe.ZRem(ctx, r.lruKey, key)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logError("redis cache Delete failed", err)
		return
	}
	if del.Val() == 1 {
		r.evicted([]string{key})
	}
}

func (r *redisCache) live() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return pruneLive.Run(ctx, r.rdb, []string{r.lruKey}, r.entryPrefix).StringSlice()
}

// Keys returns the live keys, least recently used first.
func (r *redisCache) Keys() []string {
	keys, err := r.live()
	if err != nil {
		r.logError("redis cache Keys failed", err)
		return nil
	}
	return keys
}

func (r *redisCache) Purge() {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	removed, err := purgeAll.Run(ctx, r.rdb, []string{r.lruKey}, r.entryPrefix).StringSlice()
	if err != nil {
		r.logError("redis cache Purge failed", err)
		return
	}
	r.evicted(removed)
}

// Len counts live entries. It walks the lru set, which stays small for this cache.
func (r *redisCache) Len() int {
	keys, err := r.live()
	if err != nil {
		r.logError("redis cache Len failed", err)
		return 0
	}
	return len(keys)
}

func (r *redisCache) Close() error {
	return r.rdb.Close()
}
