package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"max.ks1230/tcmb-rates/internal/logger"
)

type RedisClient struct {
	client *redis.Client
}

type redisConfig interface {
	URL() string
}

func NewRedis(config redisConfig, timeout time.Duration) (*RedisClient, error) {
	opts, err := redis.ParseURL(config.URL())
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	opts.DialTimeout = timeout
	opts.ReadTimeout = timeout
	opts.WriteTimeout = timeout

	logger.Info("redis address", zap.String("addr", opts.Addr))
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err = client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return &RedisClient{client}, nil
}

func (r *RedisClient) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}
	return val, nil
}

func (r *RedisClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.Wrap(r.client.Set(ctx, key, value, ttl).Err(), "redis set")
}

// Delete of an absent key is a no-op in redis, DEL just reports 0.
func (r *RedisClient) Delete(ctx context.Context, key string) error {
	return errors.Wrap(r.client.Del(ctx, key).Err(), "redis delete")
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
