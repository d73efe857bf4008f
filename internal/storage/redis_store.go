package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/annel0/session-replay/internal/config"
	"github.com/annel0/session-replay/internal/logging"
	"github.com/go-redis/redis/v8"
)

// RedisStore хранит логи строковыми ключами <prefix><name> без TTL
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore подключается и проверяет соединение
func NewRedisStore(ctx context.Context, cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "replay:log:"
	}

	logging.GetStorageLogger().Info("Connected to Redis at %s", cfg.Addr)
	return &RedisStore{client: client, keyPrefix: prefix}, nil
}

func (r *RedisStore) Read(ctx context.Context, name string) (string, error) {
	text, err := r.client.Get(ctx, r.keyPrefix+name).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	} else if err != nil {
		return "", fmt.Errorf("failed to get log %s: %w", name, err)
	}
	return text, nil
}

func (r *RedisStore) Write(ctx context.Context, name, text string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.keyPrefix+name, text, 0).Err(); err != nil {
		return fmt.Errorf("failed to set log %s: %w", name, err)
	}
	return nil
}

// List использует SCAN, чтобы не блокировать сервер на больших базах
func (r *RedisStore) List(ctx context.Context) ([]string, error) {
	var names []string
	iter := r.client.Scan(ctx, 0, r.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		names = append(names, strings.TrimPrefix(iter.Val(), r.keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan logs: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close закрывает соединение с Redis
func (r *RedisStore) Close() error {
	return r.client.Close()
}
