package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stock-empire/internal/domain"
	"stock-empire/internal/metrics"
	"stock-empire/pkg/redis"
)

// CacheService provides cache-aside lookups backed by Redis
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// GetQuoteWithCache returns the cached quote for symbol or calls fetch on a
// miss. Cache failures fall through to fetch. A nil quote from fetch means
// the symbol is unknown and is not cached.
func (c *CacheService) GetQuoteWithCache(ctx context.Context, symbol string, fetch func(ctx context.Context, symbol string) (*domain.Quote, error)) (*domain.Quote, error) {
	cacheKey := c.redis.KeyBuilder.KeyQuote(symbol)

	cachedData, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cachedData != "" {
		var quote domain.Quote
		if marshalErr := json.Unmarshal([]byte(cachedData), &quote); marshalErr == nil {
			metrics.QuoteCacheTotal.WithLabelValues("hit").Inc()
			c.logger.Debug("Quote cache hit", zap.String("symbol", symbol))
			return &quote, nil
		} else {
			c.logger.Warn("Quote cache corrupted, falling back to provider",
				zap.String("symbol", symbol),
				zap.Error(marshalErr))
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("Quote cache error, falling back to provider",
			zap.String("symbol", symbol),
			zap.Error(err))
	}

	metrics.QuoteCacheTotal.WithLabelValues("miss").Inc()
	quote, err := fetch(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("quote provider fallback failed: %w", err)
	}

	// Cache the result asynchronously (fire and forget)
	if quote != nil {
		go c.cacheQuoteAsync(symbol, *quote)
	}

	return quote, nil
}

// InvalidateQuote removes the cached quote for symbol
func (c *CacheService) InvalidateQuote(ctx context.Context, symbol string) error {
	if err := c.redis.Delete(ctx, c.redis.KeyBuilder.KeyQuote(symbol)); err != nil {
		c.logger.Error("Failed to invalidate quote cache",
			zap.String("symbol", symbol),
			zap.Error(err))
		return err
	}
	return nil
}

// HealthCheck performs a health check on the cache system
func (c *CacheService) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}

// cacheQuoteAsync caches a quote asynchronously
func (c *CacheService) cacheQuoteAsync(symbol string, quote domain.Quote) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(quote)
	if err != nil {
		c.logger.Error("Failed to marshal quote for caching",
			zap.String("symbol", symbol),
			zap.Error(err))
		return
	}

	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeyQuote(symbol), string(data), redis.TTLQuote); err != nil {
		c.logger.Error("Failed to cache quote",
			zap.String("symbol", symbol),
			zap.Error(err))
	} else {
		c.logger.Debug("Quote cached successfully", zap.String("symbol", symbol))
	}
}
