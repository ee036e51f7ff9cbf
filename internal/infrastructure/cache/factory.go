package cache

import (
	"context"
	"fmt"

	"github.com/erp/crm/internal/domain/sales"
	"github.com/erp/crm/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RecencyCache is a sales.RecencyCache that also reports health and owns
// its connections
type RecencyCache interface {
	sales.RecencyCache
	Ping(ctx context.Context) error
	Backend() string
	Close() error
}

// RecencyCacheFactory creates recency caches based on configuration
type RecencyCacheFactory struct {
	cacheConfig config.CacheConfig
	redisConfig config.RedisConfig
	logger      *zap.Logger
}

// RecencyCacheFactoryOption is a functional option for configuring the factory
type RecencyCacheFactoryOption func(*RecencyCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RecencyCacheFactoryOption {
	return func(f *RecencyCacheFactory) {
		f.logger = logger
	}
}

// NewRecencyCacheFactory creates a new factory
func NewRecencyCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...RecencyCacheFactoryOption) *RecencyCacheFactory {
	f := &RecencyCacheFactory{
		cacheConfig: cacheCfg,
		redisConfig: redisCfg,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisCache connects to Redis and returns a Redis-backed cache
func (f *RecencyCacheFactory) CreateRedisCache(ctx context.Context) (*RedisRecencyCache, error) {
	client, err := NewRedisClient(ctx, f.redisConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis recency cache: %w", err)
	}

	return NewRedisRecencyCache(client,
		WithKeyPrefix(f.cacheConfig.KeyPrefix),
		WithCapacity(f.cacheConfig.Capacity),
		WithResetMode(f.cacheConfig.ResetMode),
	), nil
}

// CreateInMemoryCache creates an in-memory recency cache.
// WARNING: In-memory caches do not share state across process instances,
// so each instance sees only the opportunities it touched itself.
func (f *RecencyCacheFactory) CreateInMemoryCache() *InMemoryRecencyCache {
	return NewInMemoryRecencyCache(f.cacheConfig.Capacity)
}

// CreateCache creates the configured backend. When Redis is unreachable and
// AllowMemoryFallback is set, it falls back to the in-memory cache.
func (f *RecencyCacheFactory) CreateCache(ctx context.Context) (RecencyCache, error) {
	if f.cacheConfig.Backend == config.CacheBackendMemory {
		f.logger.Info("using in-memory recency cache")
		return f.CreateInMemoryCache(), nil
	}

	c, err := f.CreateRedisCache(ctx)
	if err == nil {
		f.logger.Info("using Redis recency cache",
			zap.String("addr", f.redisConfig.Addr()),
			zap.String("key_prefix", c.keyPrefix),
		)
		return c, nil
	}

	if !f.cacheConfig.AllowMemoryFallback {
		return nil, fmt.Errorf("Redis required for recency cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory recency cache. "+
		"Recent opportunity lists will not be shared between instances.",
		zap.Error(err),
	)
	return f.CreateInMemoryCache(), nil
}
