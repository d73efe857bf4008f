package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/annel0/session-replay/internal/config"
	"github.com/annel0/session-replay/internal/logging"
)

// RedisCache реализует Cache поверх Redis. Ключи хранятся с префиксом
// config.RedisConfig.KeyPrefix, поэтому кэш может делить инстанс с RedisStore.
type RedisCache struct {
	client *redis.Client
	prefix string
	counters
}

// NewRedisCache подключается к Redis и проверяет соединение
func NewRedisCache(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetStorageLogger().Info("Redis cache initialized: %s (prefix %q)", cfg.Addr, cfg.KeyPrefix)
	return newRedisCache(rdb, cfg.KeyPrefix), nil
}

func newRedisCache(rdb *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: rdb, prefix: prefix}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.miss()
		return nil, ErrCacheMiss
	}
	if err != nil {
		r.miss()
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	r.hit()
	return val, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) Stats() Stats { return r.stats() }
