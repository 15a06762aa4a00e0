// Package cache wraps a Redis client for the wallet's ephemeral,
// TTL-bound state: LNURL-withdraw challenge tokens and notification
// dedupe markers. Adapted from the teacher's pkg/cache/redis.go, changed
// from a package-level global client to an instance so multiple wallets
// in the same process (tests, multi-account hosts) don't share state.
package cache

import (
	"context"
	"time"

	"github.com/getlipa/lipa-lightning-lib-go/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection with a Ping.
func New(cfg Config) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Error("failed to connect to redis", zap.Error(err))
		return nil, err
	}

	logger.Info("connected to redis", zap.String("host", cfg.Host))
	return &Cache{client: rdb}, nil
}

func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	} else if err != nil {
		logger.Error("failed to get key from redis", zap.String("key", key), zap.Error(err))
		return "", err
	}
	return val, nil
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := c.client.Set(ctx, key, value, expiration).Err(); err != nil {
		logger.Error("failed to set key in redis", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// SetNX sets key only if it does not already exist, returning true if it
// was set. Used for the per-card-style lock in the teacher; here it backs
// the "has this notification already been handled" dedupe check.
func (c *Cache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	set, err := c.client.SetNX(ctx, key, value, expiration).Result()
	if err != nil {
		logger.Error("failed to setnx key in redis", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return set, nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) (int64, error) {
	res, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		logger.Error("failed to delete keys from redis", zap.Strings("keys", keys), zap.Error(err))
		return 0, err
	}
	return res, nil
}

func (c *Cache) Exists(ctx context.Context, key string) (bool, error) {
	res, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		logger.Error("failed to check existence of key in redis", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return res > 0, nil
}

func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
