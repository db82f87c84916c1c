package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/logger"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

type Client interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type config interface {
	Backend() string
	Timeout() time.Duration
}

const (
	backendMemcached = "memcached"
	backendRedis     = "redis"
	backendMemory    = "memory"
	backendNone      = "none"
)

// Open returns the configured backend, or nil when caching is disabled or the
// backend cannot be reached. A nil client means every read goes to the store.
func Open(config config, memcached memcacheConfig, redisConf redisConfig) Client {
	var (
		client Client
		err    error
	)

	switch config.Backend() {
	case backendMemcached:
		client, err = NewMemcache(memcached, config.Timeout())
	case backendRedis:
		client, err = NewRedis(redisConf, config.Timeout())
	case backendMemory:
		client = NewMemory()
	case backendNone, "":
		logger.Info("cache disabled")
		return nil
	default:
		err = errors.Errorf("unknown cache backend %q", config.Backend())
	}

	if err != nil {
		logger.Warn("cache unavailable, serving from database only",
			zap.String("backend", config.Backend()), zap.Error(err))
		return nil
	}
	logger.Info("cache ready", zap.String("backend", config.Backend()))
	return client
}
