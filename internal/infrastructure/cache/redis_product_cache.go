package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carmen/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisProductCache implements ProductCache using Redis. Suitable for
// deployments where multiple instances share the catalog cache.
type RedisProductCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisProductCache creates a new Redis-based product cache
func NewRedisProductCache(cfg RedisConfig, ttl time.Duration) (*RedisProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisProductCache{
		client:    client,
		keyPrefix: "catalog:product:",
		ttl:       ttl,
	}, nil
}

// NewRedisProductCacheWithClient creates a cache with an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisProductCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisProductCache {
	if keyPrefix == "" {
		keyPrefix = "catalog:product:"
	}
	return &RedisProductCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (c *RedisProductCache) key(tenantID, productID uuid.UUID) string {
	return c.keyPrefix + tenantID.String() + ":" + productID.String()
}

// Get returns the cached reference, or nil on a miss
func (c *RedisProductCache) Get(ctx context.Context, tenantID, productID uuid.UUID) (*procurement.ProductRef, error) {
	data, err := c.client.Get(ctx, c.key(tenantID, productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read product from cache: %w", err)
	}

	var ref procurement.ProductRef
	if err := json.Unmarshal(data, &ref); err != nil {
		// A corrupt entry behaves like a miss
		return nil, nil
	}
	return &ref, nil
}

// Set stores the reference with the configured TTL
func (c *RedisProductCache) Set(ctx context.Context, tenantID uuid.UUID, ref procurement.ProductRef) error {
	data, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("failed to encode product for cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key(tenantID, ref.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write product to cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached reference for a product
func (c *RedisProductCache) Invalidate(ctx context.Context, tenantID, productID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(tenantID, productID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached product: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisProductCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisProductCache implements ProductCache
var _ ProductCache = (*RedisProductCache)(nil)
