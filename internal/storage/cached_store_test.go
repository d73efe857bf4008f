package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/session-replay/internal/cache"
	"github.com/annel0/session-replay/internal/config"
)

// countingStore считает обращения к нижнему хранилищу
type countingStore struct {
	LogStore
	reads    int
	failNext bool
}

func (c *countingStore) Read(ctx context.Context, name string) (string, error) {
	c.reads++
	return c.LogStore.Read(ctx, name)
}

func (c *countingStore) Write(ctx context.Context, name, text string) error {
	if c.failNext {
		c.failNext = false
		return errors.New("disk full")
	}
	return c.LogStore.Write(ctx, name, text)
}

func TestCachedStore(t *testing.T) {
	store := NewCachedStore(NewMemoryStore(), cache.NewMemoryCache(), 0)
	defer store.Close()
	testLogStore(t, store)
}

func TestCachedStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{LogStore: NewMemoryStore()}
	require.NoError(t, inner.LogStore.Write(ctx, "a.log", "v1"))

	store := NewCachedStore(inner, cache.NewMemoryCache(), 0)
	for i := 0; i < 3; i++ {
		text, err := store.Read(ctx, "a.log")
		require.NoError(t, err)
		assert.Equal(t, "v1", text)
	}
	assert.Equal(t, 1, inner.reads, "повторные чтения обслуживает кэш")
	assert.Equal(t, int64(2), store.Stats().Hits)

	// Запись обновляет кэш
	require.NoError(t, store.Write(ctx, "a.log", "v2"))
	text, err := store.Read(ctx, "a.log")
	require.NoError(t, err)
	assert.Equal(t, "v2", text)
	assert.Equal(t, 1, inner.reads)
}

func TestCachedStore_FailedWriteDropsEntry(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{LogStore: NewMemoryStore()}
	store := NewCachedStore(inner, cache.NewMemoryCache(), 0)

	require.NoError(t, store.Write(ctx, "a.log", "v1"))
	inner.failNext = true
	require.Error(t, store.Write(ctx, "a.log", "v2"))

	text, err := store.Read(ctx, "a.log")
	require.NoError(t, err)
	assert.Equal(t, "v1", text)
	assert.Equal(t, 1, inner.reads, "после неудачной записи чтение идет в хранилище")
}

func TestOpen_WithCache(t *testing.T) {
	cfg := config.Default().Storage
	cfg.Backend = "memory"
	cfg.Cache.Backend = "memory"

	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &CachedStore{}, s)
	require.NoError(t, s.Close())

	cfg.Cache.Backend = "memcached"
	_, err = Open(context.Background(), cfg)
	assert.Error(t, err)
}
