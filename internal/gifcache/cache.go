// Package gifcache is an optional Redis byte cache for rendered replays,
// used by the serving layer only. The render pipeline itself stays stateless.
package gifcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New connects to redisURL (redis://host:port/db). ttl bounds how long a
// rendered GIF stays retrievable.
func New(redisURL string, ttl time.Duration) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

// Key derives a stable cache key from the full request description: moves,
// orientation, geometry, anything that changes output bytes.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "gif:" + hex.EncodeToString(h.Sum(nil))[:32]
}

// Get returns the cached bytes, or nil on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Set stores the bytes with the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, data []byte) error {
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

// Close releases the underlying client.
func (c *Cache) Close() error { return c.rdb.Close() }
