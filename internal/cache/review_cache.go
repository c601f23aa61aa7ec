package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Logger is the minimal logging surface the cache needs.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// ReviewCache stores serialized review listings in Redis. Cached data is a
// disposable projection of the review store, so every operation here is
// fail-open: a cache failure is logged and never reaches the caller.
type ReviewCache struct {
	rdb *redis.Client
	log Logger
}

func NewReviewCache(rdb *redis.Client, log Logger) *ReviewCache {
	return &ReviewCache{rdb: rdb, log: log}
}

// Get unmarshals the entry for key into dest and reports whether it was
// present. Connectivity and decode failures count as a miss.
func (c *ReviewCache) Get(ctx context.Context, key string, dest interface{}) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.log.Infof("CACHE MISS: %s", key)
		} else {
			c.log.Errorf("cache get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.log.Errorf("cache decode %s: %v", key, err)
		return false
	}
	c.log.Infof("CACHE HIT: %s", key)
	return true
}

// Set stores value under key with the given expiry, best-effort. The store
// write is the authoritative one; a failed cache write only costs a re-read.
func (c *ReviewCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Errorf("cache encode %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Errorf("cache set %s: %v", key, err)
		return
	}
	c.log.Infof("CACHE SET: %s (expires in %s)", key, ttl)
}

// InvalidatePlace drops every cached listing a review write for placeID can
// have gone stale: all parameter variants of that place's listing, all
// variants of the global listing, and the three place-entity keys (aggregate
// rating data embedded there changes too). Keys are removed in one batched
// delete; deleting absent keys is a no-op, so retries are harmless.
func (c *ReviewCache) InvalidatePlace(ctx context.Context, placeID string) {
	keys := make([]string, 0, 16)
	for _, pattern := range []string{placeReviewsPattern(placeID), allReviewsPattern()} {
		found, err := c.rdb.Keys(ctx, pattern).Result()
		if err != nil {
			c.log.Errorf("cache scan %s: %v", pattern, err)
			continue
		}
		keys = append(keys, found...)
	}
	for _, placeType := range []string{"hotel", "restaurant", "thing-to-do"} {
		keys = append(keys, PlaceKey(placeType, placeID))
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Errorf("cache invalidate place %s: %v", placeID, err)
		return
	}
	c.log.Infof("CACHE INVALIDATED: %d keys for place %s", len(keys), placeID)
}
