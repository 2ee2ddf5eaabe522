package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shivamgupta214/outfox-health-assessment/internal/config"
	"github.com/shivamgupta214/outfox-health-assessment/internal/domain"
)

const scanCount = 100

type RedisProviderCache struct {
	client *redis.Client
	prefix string
}

// NewRedisProviderCache creates a new Redis-based provider cache.
func NewRedisProviderCache(cfg config.RedisConfig, prefix string) (*RedisProviderCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisProviderCache{
		client: client,
		prefix: prefix,
	}, nil
}

// BuildKey creates a cache key from search parameters.
func (c *RedisProviderCache) BuildKey(q domain.ProviderQuery) string {
	return c.prefix + ":" + Key(q)
}

func (c *RedisProviderCache) Get(ctx context.Context, q domain.ProviderQuery) ([]domain.Provider, error) {
	data, err := c.client.Get(ctx, c.BuildKey(q)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var providers []domain.Provider
	if err := json.Unmarshal(data, &providers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return providers, nil
}

func (c *RedisProviderCache) Set(ctx context.Context, q domain.ProviderQuery, providers []domain.Provider, ttl time.Duration) error {
	data, err := json.Marshal(providers)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.BuildKey(q), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisProviderCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":providers:*", scanCount).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan redis: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

func (c *RedisProviderCache) Close() error {
	return c.client.Close()
}
