package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appcatalog "github.com/pharmacy-pos/backend/internal/application/catalog"
)

const stockKeyPrefix = "stock:snapshot:"

// RedisStockCache caches per-product stock snapshots in Redis so several
// instances of the sale screen share one view of availability. Cache
// failures degrade to recomputation, never to request errors.
type RedisStockCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStockCache creates a Redis-backed stock snapshot cache and
// verifies the connection.
func NewRedisStockCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisStockCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStockCache{client: client, ttl: ttl, logger: logger}, nil
}

// NewRedisStockCacheWithClient creates a cache over an existing client,
// useful for tests or when sharing a client across components.
func NewRedisStockCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStockCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStockCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached snapshot for a product, reporting a miss on any
// Redis or decode failure.
func (c *RedisStockCache) Get(ctx context.Context, productID uuid.UUID) (*appcatalog.StockSnapshot, bool) {
	payload, err := c.client.Get(ctx, stockKeyPrefix+productID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("stock cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var snapshot appcatalog.StockSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		c.logger.Warn("stock cache entry corrupted", zap.String("product_id", productID.String()), zap.Error(err))
		return nil, false
	}
	return &snapshot, true
}

// Set stores the snapshot with the configured TTL
func (c *RedisStockCache) Set(ctx context.Context, productID uuid.UUID, snapshot appcatalog.StockSnapshot) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		c.logger.Warn("stock cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, stockKeyPrefix+productID.String(), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("stock cache write failed", zap.Error(err))
	}
}

// Invalidate drops the snapshot for a product
func (c *RedisStockCache) Invalidate(ctx context.Context, productID uuid.UUID) {
	if err := c.client.Del(ctx, stockKeyPrefix+productID.String()).Err(); err != nil {
		c.logger.Warn("stock cache invalidation failed", zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisStockCache) Close() error {
	return c.client.Close()
}

var _ appcatalog.StockSnapshotCache = (*RedisStockCache)(nil)
