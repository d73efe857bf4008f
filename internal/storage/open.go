package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/annel0/session-replay/internal/cache"
	"github.com/annel0/session-replay/internal/config"
	"github.com/annel0/session-replay/internal/logging"
)

// Open создает хранилище по секции storage конфигурации и, если задан
// storage.cache.backend, оборачивает его кэшем чтения
func Open(ctx context.Context, cfg config.StorageConfig) (LogStore, error) {
	store, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var c cache.Cache
	switch cfg.Cache.Backend {
	case "", "none":
		return store, nil
	case "memory":
		c = cache.NewMemoryCache()
	case "redis":
		if c, err = cache.NewRedisCache(ctx, cfg.Cache.Redis); err != nil {
			_ = store.Close()
			return nil, err
		}
	default:
		_ = store.Close()
		return nil, fmt.Errorf("неизвестный backend кэша %q", cfg.Cache.Backend)
	}

	logging.GetStorageLogger().Info("Кэш логов: %s, TTL %s", cfg.Cache.Backend, cfg.Cache.TTL())
	return NewCachedStore(store, c, cfg.Cache.TTL()), nil
}

func openBackend(ctx context.Context, cfg config.StorageConfig) (LogStore, error) {
	log := logging.GetStorageLogger()

	switch cfg.Backend {
	case "file", "":
		dir := cfg.GetDir()
		log.Info("Хранилище логов: файлы в %s", dir)
		return NewFileStore(dir)
	case "memory":
		log.Info("Хранилище логов: память (данные не сохраняются)")
		return NewMemoryStore(), nil
	case "badger":
		dir := filepath.Join(cfg.GetDir(), "badger")
		log.Info("Хранилище логов: BadgerDB в %s", dir)
		return NewBadgerStore(dir)
	case "redis":
		return NewRedisStore(ctx, cfg.Redis)
	case "maria":
		log.Info("Хранилище логов: MariaDB")
		return NewMariaStore(ctx, cfg.Maria.DSN)
	case "mongo":
		log.Info("Хранилище логов: MongoDB %s/%s", cfg.Mongo.Database, cfg.Mongo.Collection)
		return NewMongoStore(ctx, cfg.Mongo)
	default:
		return nil, fmt.Errorf("неизвестный backend хранилища %q", cfg.Backend)
	}
}
