package cache

import (
	"fmt"

	"github.com/clivox/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// QueryCacheFactory creates query caches based on configuration
type QueryCacheFactory struct {
	redisConfig           *config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// QueryCacheFactoryOption is a functional option for configuring the factory
type QueryCacheFactoryOption func(*QueryCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) QueryCacheFactoryOption {
	return func(f *QueryCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// cache when Redis is enabled but unreachable. Default is true.
func WithInMemoryFallback(allow bool) QueryCacheFactoryOption {
	return func(f *QueryCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewQueryCacheFactory creates a new factory
func NewQueryCacheFactory(cfg *config.RedisConfig, opts ...QueryCacheFactoryOption) *QueryCacheFactory {
	f := &QueryCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache creates a query cache. When Redis is disabled in the
// configuration the in-memory cache is used directly; when enabled, the
// factory connects to Redis and optionally falls back to memory.
func (f *QueryCacheFactory) CreateCache() (QueryCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory query cache")
		return NewInMemoryQueryCache(), nil
	}

	c, err := NewRedisQueryCache(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis query cache")
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for query cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory query cache", zap.Error(err))
	return NewInMemoryQueryCache(), nil
}
