package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"baul-admin-api/internal/models"
)

// DefaultCacheTTL bounds how long a cached product may be served.
const DefaultCacheTTL = 5 * time.Minute

// Cache holds products looked up by id for the pricing endpoint. Failures
// are logged and treated as misses.
type Cache interface {
	Get(ctx context.Context, id string) (*models.Product, bool)
	Set(ctx context.Context, product *models.Product)
	Invalidate(ctx context.Context, ids ...string)
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (*models.Product, bool) { return nil, false }
func (NoopCache) Set(context.Context, *models.Product)                {}
func (NoopCache) Invalidate(context.Context, ...string)               {}

// RedisCache stores products as JSON under "precios:producto:<id>".
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisCache creates a new redis-backed product cache
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(id string) string {
	return "precios:producto:" + id
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, id string) (*models.Product, bool) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).WithField("product_id", id).Warn("Pricing cache read failed")
		}
		return nil, false
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		c.logger.WithError(err).WithField("product_id", id).Warn("Discarding unreadable cache entry")
		return nil, false
	}
	return &product, true
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, product *models.Product) {
	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKey(product.ID), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("product_id", product.ID).Warn("Pricing cache write failed")
	}
}

// Invalidate implements Cache.
func (c *RedisCache) Invalidate(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WithError(err).WithField("product_ids", ids).Warn("Pricing cache eviction failed")
	}
}

// Ping checks the redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
