package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig locates a Redis server.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string // prepended to every key
}

// redisClient is the subset of the go-redis API the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisCache shares entries between server instances. Network failures
// are retried with backoff.
type RedisCache struct {
	client redisClient
	prefix string
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache connects to the configured server and pings it.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	c := &RedisCache{client: client, prefix: cfg.Prefix}
	if err := RetryWithBackoff(ctx, func() error {
		return classify(client.Ping(ctx).Err())
	}); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis %s: %v", ErrUnavailable, cfg.Addr, err)
	}
	return c, nil
}

// Get implements [Cache].
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	hit := false
	err := RetryWithBackoff(ctx, func() error {
		b, err := c.client.Get(ctx, c.prefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return classify(err)
		}
		data, hit = b, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, hit, nil
}

// Set implements [Cache].
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		return classify(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
}

// Delete implements [Cache].
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return RetryWithBackoff(ctx, func() error {
		return classify(c.client.Del(ctx, c.prefix+key).Err())
	})
}

// Close implements [Cache].
func (c *RedisCache) Close() error { return c.client.Close() }

// classify marks network errors and timeouts as retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, context.DeadlineExceeded) {
		return Retryable(err)
	}
	return err
}
