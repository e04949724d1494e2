package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Recommended TTLs for cached reads
const (
	TTLShort    = 1 * time.Minute
	TTLMedium   = 5 * time.Minute
	TTLLong     = 1 * time.Hour
	TTLVeryLong = 24 * time.Hour
)

// ErrMiss is returned by GetJSON when the key is absent.
var ErrMiss = errors.New("cache: miss")

// Cache is a small JSON read-through cache. Implementations must be safe
// to call when the backing server is unavailable: callers treat every
// cache failure as a miss.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}

type redisCache struct {
	client *redis.Client
	logger *log.Logger
}

// New connects to Redis at the given URL. When url is empty a disabled
// cache is returned and the service operates without caching.
func New(url string, logger *log.Logger) Cache {
	if url == "" {
		logger.Printf("REDIS_URL not configured, operating without cache")
		return disabled{}
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Printf("Invalid Redis URL, operating without cache: %s", err)
		return disabled{}
	}

	return &redisCache{client: redis.NewClient(opts), logger: logger}
}

// NewWithClient wraps an existing Redis client (used in tests).
func NewWithClient(client *redis.Client, logger *log.Logger) Cache {
	return &redisCache{client: client, logger: logger}
}

func (c *redisCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		c.logger.Printf("Cache read failed for %s: %s", key, err)
		return ErrMiss
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Printf("Cache payload for %s is corrupt, dropping: %s", key, err)
		c.client.Del(ctx, key)
		return ErrMiss
	}
	return nil
}

func (c *redisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Printf("Cache write failed for %s: %s", key, err)
		return err
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) DeletePattern(ctx context.Context, pattern string) error {
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// disabled is the no-op cache used when Redis is not configured.
type disabled struct{}

func (disabled) GetJSON(ctx context.Context, key string, dest interface{}) error { return ErrMiss }
func (disabled) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}
func (disabled) Delete(ctx context.Context, keys ...string) error         { return nil }
func (disabled) DeletePattern(ctx context.Context, pattern string) error  { return nil }
