package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	loyaltyapp "github.com/travelcrm/backend/internal/application/loyalty"
)

// RedisBalanceCache caches rolling loyalty balances in Redis. Suitable for
// distributed deployments where multiple instances serve balance reads.
type RedisBalanceCache struct {
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

// NewRedisBalanceCache creates a Redis-backed balance cache
func NewRedisBalanceCache(cfg RedisConfig, ttl time.Duration) (*RedisBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisBalanceCache(client, ttl), nil
}

// NewRedisBalanceCacheWithClient creates a cache over an existing Redis client.
// Useful for testing or when sharing a client across components.
func NewRedisBalanceCacheWithClient(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	return newRedisBalanceCache(client, ttl)
}

func newRedisBalanceCache(client *redis.Client, ttl time.Duration) *RedisBalanceCache {
	if ttl == 0 {
		ttl = time.Minute
	}
	return &RedisBalanceCache{
		client:    client,
		keyPrefix: "loyalty:balance:",
		ttl:       ttl,
	}
}

func (c *RedisBalanceCache) key(tenantID, userID uuid.UUID) string {
	return c.keyPrefix + tenantID.String() + ":" + userID.String()
}

// Get returns the cached balance and whether a value was present
func (c *RedisBalanceCache) Get(ctx context.Context, tenantID, userID uuid.UUID) (int64, bool, error) {
	val, err := c.client.Get(ctx, c.key(tenantID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read cached balance: %w", err)
	}

	balance, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		// Corrupt entry, treat as a miss so the ledger recomputes it
		return 0, false, nil
	}
	return balance, true, nil
}

// Set stores the freshly computed balance with the configured TTL
func (c *RedisBalanceCache) Set(ctx context.Context, tenantID, userID uuid.UUID, balance int64) error {
	if err := c.client.Set(ctx, c.key(tenantID, userID), strconv.FormatInt(balance, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache balance: %w", err)
	}
	return nil
}

// Invalidate drops the cached balance after a ledger write
func (c *RedisBalanceCache) Invalidate(ctx context.Context, tenantID, userID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(tenantID, userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached balance: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisBalanceCache) Close() error {
	return c.client.Close()
}

var _ loyaltyapp.BalanceCache = (*RedisBalanceCache)(nil)
