package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commission/internal/utils/cache"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// RedisRateCache keeps exchange rates as decimal strings under rate:code:<CODE>.
type RedisRateCache struct {
	client redis.Cmdable
}

func NewRedisRateCache(client redis.Cmdable) *RedisRateCache {
	return &RedisRateCache{client: client}
}

func (c *RedisRateCache) GetRate(ctx context.Context, code string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, rateKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("corrupt cached rate %q: %w", val, err)
	}
	return rate, true, nil
}

func (c *RedisRateCache) SetRate(ctx context.Context, code string, rate decimal.Decimal, ttl time.Duration) error {
	return c.client.Set(ctx, rateKey(code), rate.String(), ttl).Err()
}

// HealthCheck pings redis.
func (c *RedisRateCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func rateKey(code string) string {
	return cache.GenerateKey(cache.EntityRate, cache.KeyCode, code)
}
