package cache

import (
	"context"
	"fmt"
	"time"

	"efris-bridge/internal/config"
	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const defaultKeyPrefix = "efris:rate:"

// RedisRateCache shares the daily EFRIS rates between bridge instances.
// Entries expire through the redis TTL.
type RedisRateCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	log       *logger.Logger
}

// NewRedisRateCache connects and pings the server before returning.
func NewRedisRateCache(cfg config.RedisConfig, ttl time.Duration, log *logger.Logger) (*RedisRateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRateCacheWithClient(client, ttl, log), nil
}

func NewRedisRateCacheWithClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisRateCache {
	return &RedisRateCache{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       ttl,
		log:       log,
	}
}

func (c *RedisRateCache) key(query model.RateQuery, date time.Time) string {
	return c.keyPrefix + getCacheKey(query, date)
}

// Get treats any redis failure as a miss so that lookups fall through to the ERP.
func (c *RedisRateCache) Get(ctx context.Context, query model.RateQuery, date time.Time) (decimal.Decimal, bool) {
	key := c.key(query, date)

	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("Redis cache lookup failed", "key", key, "error", err)
		}
		return decimal.Decimal{}, false
	}

	rate, err := decimal.NewFromString(raw)
	if err != nil {
		c.log.Warn("Discarding malformed cached rate", "key", key, "value", raw)
		return decimal.Decimal{}, false
	}
	return rate, true
}

func (c *RedisRateCache) Set(ctx context.Context, query model.RateQuery, date time.Time, rate decimal.Decimal) error {
	key := c.key(query, date)
	if err := c.client.Set(ctx, key, rate.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rate: %w", err)
	}
	return nil
}

// ClearExpired is a no-op; redis evicts expired keys itself.
func (c *RedisRateCache) ClearExpired(ctx context.Context) error {
	return nil
}

func (c *RedisRateCache) Close() error {
	return c.client.Close()
}

var _ ports.RateCache = (*RedisRateCache)(nil)
