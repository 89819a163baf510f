package preview

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/edgecomet/htmlcut/internal/common/configtypes"
	"github.com/edgecomet/htmlcut/internal/common/redis"
	"github.com/edgecomet/htmlcut/internal/preview/metrics"
	"github.com/edgecomet/htmlcut/pkg/types"
)

// ResultCache stores cut results in Redis. Every failure is logged and
// reported as a miss so requests never fail because of the cache.
type ResultCache struct {
	client      *redis.Client
	ttl         time.Duration
	compression string
	minSize     int
	metrics     *metrics.PrometheusMetrics
	logger      *zap.Logger
}

func NewResultCache(client *redis.Client, cfg configtypes.CacheConfig, m *metrics.PrometheusMetrics, logger *zap.Logger) *ResultCache {
	return &ResultCache{
		client:      client,
		ttl:         cfg.TTL.ToDuration(),
		compression: cfg.Compression,
		minSize:     cfg.MinSize,
		metrics:     m,
		logger:      logger,
	}
}

// Get returns the cached result for key, if any.
func (c *ResultCache) Get(ctx context.Context, key redis.CutKey) (*types.CutResult, bool) {
	k := key.String()

	stored, found, err := c.client.GetBytes(ctx, k)
	if err != nil {
		c.metrics.RecordCache(metrics.CacheError)
		return nil, false
	}
	if !found {
		c.metrics.RecordCache(metrics.CacheMiss)
		return nil, false
	}

	data, err := Decompress(stored)
	if err != nil {
		c.logger.Warn("Dropping undecodable cache entry", zap.String("key", k), zap.Error(err))
		c.metrics.RecordCache(metrics.CacheError)
		_ = c.client.Del(ctx, k)
		return nil, false
	}

	var result types.CutResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("Dropping malformed cache entry", zap.String("key", k), zap.Error(err))
		c.metrics.RecordCache(metrics.CacheError)
		_ = c.client.Del(ctx, k)
		return nil, false
	}

	c.metrics.RecordCache(metrics.CacheHit)
	return &result, true
}

// Set stores result under key with the configured TTL.
func (c *ResultCache) Set(ctx context.Context, key redis.CutKey, result *types.CutResult) {
	entry := *result
	entry.Cached = false

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Error("Failed to encode cache entry", zap.Error(err))
		return
	}

	stored, err := Compress(data, c.compression, c.minSize)
	if err != nil {
		c.logger.Warn("Failed to compress cache entry, storing raw", zap.Error(err))
		stored, _ = Compress(data, types.CompressionNone, 0)
	}
	c.metrics.RecordBytesSaved(AlgorithmName(stored), len(data)+1-len(stored))

	if err := c.client.Set(ctx, key.String(), stored, c.ttl); err != nil {
		return
	}
	c.logger.Debug("Cached cut result",
		zap.String("key", key.String()),
		zap.Int("size", len(stored)),
		zap.String("algorithm", AlgorithmName(stored)))
}

// HealthCheck reports whether Redis answers.
func (c *ResultCache) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}
