package insights

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/craftmart/storefront/internal/obs"
)

// Cache stores computed insight payloads in Redis with one shared TTL. It is
// constructed once at startup and injected; a nil client disables caching.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs the insights cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Key builds a stable cache key from an endpoint name and its inputs.
func Key(endpoint string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return "insights:" + endpoint + ":" + hex.EncodeToString(sum[:8])
}

// Get unmarshals a cached payload into dst, reporting whether it existed.
func (c *Cache) Get(ctx context.Context, endpoint, key string, dst any) bool {
	if c == nil || c.client == nil {
		return false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		countCache(endpoint, "miss")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		countCache(endpoint, "miss")
		return false
	}
	countCache(endpoint, "hit")
	return true
}

// Set stores a payload under the configured TTL.
func (c *Cache) Set(ctx context.Context, key string, v any) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}

func countCache(endpoint, result string) {
	if obs.InsightsCacheTotal != nil {
		obs.InsightsCacheTotal.WithLabelValues(endpoint, result).Inc()
	}
}
