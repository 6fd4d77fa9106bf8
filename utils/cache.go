package utils

import (
	"context"
	"encoding/json"
	"time"
)

const (
	defaultCacheTTL = time.Hour
	cacheOpTimeout  = 2 * time.Second
)

// CacheGetJSON decodes the value cached under key into out and reports a hit.
// Every call misses when Redis is disabled.
func CacheGetJSON(ctx context.Context, key string, out interface{}) bool {
	rc := GetRedis()
	if rc == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()

	raw, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		Sugar.Debugw("cache miss", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		Sugar.Warnw("cache entry undecodable, dropping", "key", key, "error", err)
		_ = rc.Del(ctx, key).Err()
		return false
	}
	return true
}

// CacheSetJSON stores v under key. ttl <= 0 selects an hour.
func CacheSetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		Sugar.Warnw("cache value not encodable", "key", key, "error", err)
		return
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	ctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	if err := rc.Set(ctx, key, raw, ttl).Err(); err != nil {
		Sugar.Warnw("cache set failed", "key", key, "error", err)
	}
}

// InvalidateByPrefix drops every key starting with prefix.
func InvalidateByPrefix(ctx context.Context, prefix string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	iter := rc.Scan(ctx, 0, prefix+"*", 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		Sugar.Warnw("cache invalidate scan failed", "prefix", prefix, "error", err)
	}
	if len(keys) == 0 {
		return
	}
	if err := rc.Del(ctx, keys...).Err(); err != nil {
		Sugar.Warnw("cache invalidate failed", "prefix", prefix, "keys", len(keys), "error", err)
	}
}
