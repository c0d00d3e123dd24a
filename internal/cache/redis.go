package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"arbscan/internal/model"
)

// RedisCache keeps the latest observed price per token/exchange pair so
// external consumers can read prices without touching the scanner. Writes
// are best effort; the scan loops never depend on this cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects and pings the server.
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func key(exchange, token string) string {
	return fmt.Sprintf("latest:%s:%s", exchange, token)
}

// SetLatestPrice stores the price under latest:<exchange>:<token> with TTL.
func (c *RedisCache) SetLatestPrice(ctx context.Context, price model.TokenPrice) error {
	data, err := json.Marshal(price)
	if err != nil {
		return fmt.Errorf("marshal price: %w", err)
	}
	if err := c.client.Set(ctx, key(price.Exchange, price.Token), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set latest price: %w", err)
	}
	return nil
}

// GetLatestPrice returns the cached price, or nil when the key is absent or
// expired.
func (c *RedisCache) GetLatestPrice(ctx context.Context, token, exchange string) (*model.TokenPrice, error) {
	data, err := c.client.Get(ctx, key(exchange, token)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest price: %w", err)
	}
	var price model.TokenPrice
	if err := json.Unmarshal(data, &price); err != nil {
		return nil, fmt.Errorf("unmarshal price: %w", err)
	}
	return &price, nil
}

// Ping checks connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
