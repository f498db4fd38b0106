package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"efris-bridge/internal/domain/model"
	"efris-bridge/internal/domain/ports"
	"efris-bridge/pkg/logger"
	"efris-bridge/pkg/utils"

	"github.com/shopspring/decimal"
)

type cachedRate struct {
	rate     decimal.Decimal
	storedAt time.Time
}

// MemoryCache keeps EFRIS rates per currency, company and day in process memory.
type MemoryCache struct {
	cacheMap map[string]cachedRate
	mutex    sync.RWMutex
	cacheTTL time.Duration
	now      func() time.Time
	log      *logger.Logger
}

func NewMemoryCache(cacheTTL time.Duration, log *logger.Logger) *MemoryCache {
	return &MemoryCache{
		cacheMap: make(map[string]cachedRate),
		cacheTTL: cacheTTL,
		now:      time.Now,
		log:      log,
	}
}

func getCacheKey(query model.RateQuery, date time.Time) string {
	return fmt.Sprintf("%s-%s-%s", query.CurrencyCode.Normalize(), query.OrganizationID, utils.FormatDate(date))
}

func (c *MemoryCache) Get(ctx context.Context, query model.RateQuery, date time.Time) (decimal.Decimal, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	key := getCacheKey(query, date)
	entry, found := c.cacheMap[key]
	if !found {
		c.log.Debug("Cache miss", "key", key)
		return decimal.Decimal{}, false
	}
	if c.now().Sub(entry.storedAt) > c.cacheTTL {
		c.log.Debug("Cache entry expired", "key", key)
		return decimal.Decimal{}, false
	}

	c.log.Debug("Cache hit", "key", key)
	return entry.rate, true
}

func (c *MemoryCache) Set(ctx context.Context, query model.RateQuery, date time.Time, rate decimal.Decimal) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	key := getCacheKey(query, date)
	c.cacheMap[key] = cachedRate{rate: rate, storedAt: c.now()}
	c.log.Debug("Cache set", "key", key)
	return nil
}

func (c *MemoryCache) ClearExpired(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.cacheMap {
		if now.Sub(entry.storedAt) > c.cacheTTL {
			delete(c.cacheMap, key)
			removed++
		}
	}

	c.log.Info("Cleared expired cache entries", "count", removed)
	return nil
}

func (c *MemoryCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.cacheMap)
}

var _ ports.RateCache = (*MemoryCache)(nil)
