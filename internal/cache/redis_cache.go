package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"dapurmanis/engine/internal/pricing"
)

type RedisPricingCache struct {
	client *redis.Client
}

func NewRedisPricingCache(addr string, password string, db int) *RedisPricingCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisPricingCache{client: client}
}

func (c *RedisPricingCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisPricingCache) Close() error {
	return c.client.Close()
}

func (c *RedisPricingCache) Get(ctx context.Context, key string) (*pricing.Result, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var result pricing.Result
	if err := json.Unmarshal([]byte(val), &result); err != nil {
		return nil, false, err
	}
	return &result, true, nil
}

func (c *RedisPricingCache) Set(ctx context.Context, key string, value *pricing.Result, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisPricingCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
