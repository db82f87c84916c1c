package cache

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/logger"
)

type MemcacheClient struct {
	client *memcache.Client
}

type memcacheConfig interface {
	Hosts() []string
}

// NewMemcache has no context support in the driver, so every call is bounded
// by the client-wide timeout instead.
func NewMemcache(config memcacheConfig, timeout time.Duration) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	if len(config.Hosts()) == 0 {
		return nil, errors.New("no memcached hosts configured")
	}

	mc := memcache.New(config.Hosts()...)
	mc.Timeout = timeout
	return &MemcacheClient{mc}, mc.Ping()
}

func (mc *MemcacheClient) Get(_ context.Context, key string) ([]byte, error) {
	item, err := mc.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "memcache get")
	}
	return item.Value, nil
}

func (mc *MemcacheClient) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := mc.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(ttl / time.Second),
	})
	return errors.Wrap(err, "memcache set")
}

func (mc *MemcacheClient) Delete(_ context.Context, key string) error {
	err := mc.client.Delete(key)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return errors.Wrap(err, "memcache delete")
	}
	return nil
}

func (mc *MemcacheClient) Close() error {
	return nil
}
