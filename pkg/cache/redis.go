package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	perrors "github.com/matzehuels/pollcard/pkg/errors"
)

// RedisCache stores entries in Redis so rendered cards are shared between
// the bot and API processes.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache connects to the server at url (redis://[user:pass@]host:port/db)
// and checks it with PING, retrying transient failures.
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parse redis url")
	}
	client := redis.NewClient(opts)
	err = RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return Retryable(err)
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "connect to redis at %s", opts.Addr)
	}
	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perrors.Wrap(perrors.ErrCodeStorage, err, "redis get %s", key)
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return perrors.Wrap(perrors.ErrCodeStorage, err, "redis set %s", key)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return perrors.Wrap(perrors.ErrCodeStorage, err, "redis del %s", key)
	}
	return nil
}

// Acquire claims key with SET NX.
func (c *RedisCache) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, perrors.Wrap(perrors.ErrCodeStorage, err, "redis setnx %s", key)
	}
	return ok, nil
}

func (c *RedisCache) Release(ctx context.Context, key string) error {
	return c.Delete(ctx, key)
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

var (
	_ Cache = (*RedisCache)(nil)
	_ Guard = (*RedisCache)(nil)
)
