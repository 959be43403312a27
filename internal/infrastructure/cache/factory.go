package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	loyaltyapp "github.com/travelcrm/backend/internal/application/loyalty"
	"github.com/travelcrm/backend/internal/infrastructure/config"
)

// BalanceCacheFactory creates balance caches based on configuration
type BalanceCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// BalanceCacheFactoryOption is a functional option for configuring the factory
type BalanceCacheFactoryOption func(*BalanceCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) BalanceCacheFactoryOption {
	return func(f *BalanceCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) BalanceCacheFactoryOption {
	return func(f *BalanceCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewBalanceCacheFactory creates a new factory
func NewBalanceCacheFactory(cfg config.RedisConfig, ttl time.Duration, opts ...BalanceCacheFactoryOption) *BalanceCacheFactory {
	f := &BalanceCacheFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisCache creates a Redis-backed balance cache
func (f *BalanceCacheFactory) CreateRedisCache() (loyaltyapp.BalanceCache, error) {
	cache, err := NewRedisBalanceCache(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis balance cache: %w", err)
	}
	return cache, nil
}

// CreateInMemoryCache creates an in-memory balance cache.
// WARNING: in-memory caches do not share state across process instances;
// a balance invalidated on one instance stays cached on the others until
// its TTL expires.
func (f *BalanceCacheFactory) CreateInMemoryCache() loyaltyapp.BalanceCache {
	return NewInMemoryBalanceCache(f.ttl)
}

// CreateCache tries Redis first and falls back to in-memory when Redis is
// unavailable and fallback is allowed
func (f *BalanceCacheFactory) CreateCache() (loyaltyapp.BalanceCache, error) {
	cache, err := f.CreateRedisCache()
	if err == nil {
		f.logger.Info("using Redis balance cache")
		return cache, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for balance cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory balance cache. "+
		"Stale balances may be served briefly in distributed deployments.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
