// Package cache горячий кэш текстов логов перед медленными хранилищами
// (MariaDB, MongoDB): повторная загрузка одного лога плеером не ходит в базу.
package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Cache определяет интерфейс кэша.
//
// Использование:
//
//	c := NewMemoryCache()
//	data, err := c.Get(ctx, "session.dynamic")
//	err = c.Set(ctx, "session.dynamic", data, 5*time.Minute)
type Cache interface {
	// Get возвращает значение или ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение с TTL. TTL = 0 означает отсутствие истечения.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет ключ; отсутствие ключа ошибкой не считается
	Delete(ctx context.Context, key string) error

	Close() error

	// Stats возвращает счетчики попаданий
	Stats() Stats
}

// Stats счетчики кэша
type Stats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

// ErrCacheMiss ключ отсутствует или истек
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss проверяет, является ли ошибка промахом кэша.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// counters общие для реализаций счетчики
type counters struct {
	hits   int64
	misses int64
}

func (c *counters) hit()  { atomic.AddInt64(&c.hits, 1) }
func (c *counters) miss() { atomic.AddInt64(&c.misses, 1) }

func (c *counters) stats() Stats {
	s := Stats{Hits: atomic.LoadInt64(&c.hits), Misses: atomic.LoadInt64(&c.misses)}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRatio = float64(s.Hits) / float64(total)
	}
	return s
}
