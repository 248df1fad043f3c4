package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unite-stats/internal/config"
	"unite-stats/internal/constants"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisCache backs the summary store and the master data cache.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(cfg *config.Config, logger zerolog.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	rc := NewRedisCacheFromClient(redis.NewClient(opt))

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	if err := rc.Ping(ctx); err != nil {
		logger.Error().Err(err).Str("addr", opt.Addr).Msg("failed to connect to redis")
		rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("addr", opt.Addr).Int("db", opt.DB).Msg("redis connection established")
	return rc, nil
}

func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

func (rc *RedisCache) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Set stores value under key. A zero ttl keeps the key forever.
func (rc *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Get reports found=false for a missing key instead of returning an error.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := rc.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
