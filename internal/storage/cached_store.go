package storage

import (
	"context"
	"time"

	"github.com/annel0/session-replay/internal/cache"
	"github.com/annel0/session-replay/internal/logging"
	"github.com/annel0/session-replay/internal/metrics"
)

// CachedStore кэш чтения (read-through) перед другим LogStore.
// Запись идет в хранилище и затем обновляет кэш; ошибки кэша только логируются.
type CachedStore struct {
	inner LogStore
	cache cache.Cache
	ttl   time.Duration
	log   *logging.Logger
}

// NewCachedStore оборачивает inner. Close закрывает и кэш, и inner.
func NewCachedStore(inner LogStore, c cache.Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{inner: inner, cache: c, ttl: ttl, log: logging.GetStorageLogger()}
}

func (s *CachedStore) Read(ctx context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	data, err := s.cache.Get(ctx, name)
	if err == nil {
		metrics.CacheRequests.WithLabelValues("hit").Inc()
		return string(data), nil
	}
	metrics.CacheRequests.WithLabelValues("miss").Inc()
	if !cache.IsCacheMiss(err) {
		s.log.Warn("Кэш: чтение %s: %v", name, err)
	}

	text, err := s.inner.Read(ctx, name)
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, name, []byte(text), s.ttl); err != nil {
		s.log.Warn("Кэш: запись %s: %v", name, err)
	}
	return text, nil
}

func (s *CachedStore) Write(ctx context.Context, name, text string) error {
	if err := s.inner.Write(ctx, name, text); err != nil {
		// Содержимое хранилища неизвестно: старое значение кэша больше не верно
		if derr := s.cache.Delete(ctx, name); derr != nil {
			s.log.Warn("Кэш: удаление %s: %v", name, derr)
		}
		return err
	}
	if err := s.cache.Set(ctx, name, []byte(text), s.ttl); err != nil {
		s.log.Warn("Кэш: запись %s: %v", name, err)
	}
	return nil
}

func (s *CachedStore) List(ctx context.Context) ([]string, error) {
	return s.inner.List(ctx)
}

// Stats счетчики попаданий кэша
func (s *CachedStore) Stats() cache.Stats { return s.cache.Stats() }

func (s *CachedStore) Close() error {
	cerr := s.cache.Close()
	if err := s.inner.Close(); err != nil {
		return err
	}
	return cerr
}
