package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/session-replay/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogStore общий набор проверок для любой реализации LogStore
func testLogStore(t *testing.T, store LogStore) {
	ctx := context.Background()

	t.Run("Write and Read", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, "session_static.log", "OBJ_START~Floor_0\n"))

		text, err := store.Read(ctx, "session_static.log")
		require.NoError(t, err)
		assert.Equal(t, "OBJ_START~Floor_0\n", text)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, "session_dynamic.log", "first"))
		require.NoError(t, store.Write(ctx, "session_dynamic.log", "second"))

		text, err := store.Read(ctx, "session_dynamic.log")
		require.NoError(t, err)
		assert.Equal(t, "second", text)
	})

	t.Run("Read Missing", func(t *testing.T) {
		_, err := store.Read(ctx, "missing.log")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("List Sorted", func(t *testing.T) {
		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"session_dynamic.log", "session_static.log"}, names)
	})

	t.Run("Invalid Name", func(t *testing.T) {
		assert.Error(t, store.Write(ctx, "", "x"))
		assert.Error(t, store.Write(ctx, "../escape.log", "x"))
		assert.Error(t, store.Write(ctx, ".hidden", "x"))
	})
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	testLogStore(t, store)
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Write(ctx, "a.log", "x"), context.Canceled)
	_, err := store.Read(ctx, "a.log")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "recordings"))
	require.NoError(t, err)
	defer store.Close()
	testLogStore(t, store)

	// Временные файлы не остаются в каталоге
	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestBadgerStore(t *testing.T) {
	store, err := NewBadgerStore(t.TempDir())
	require.NoError(t, err)
	testLogStore(t, store)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
	_, err = store.Read(context.Background(), "session_static.log")
	assert.Error(t, err)
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default().Storage
	cfg.Dir = t.TempDir()

	cfg.Backend = "memory"
	s, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	cfg.Backend = "file"
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	cfg.Backend = "badger"
	s, err = Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &BadgerStore{}, s)
	require.NoError(t, s.Close())

	cfg.Backend = "tape"
	_, err = Open(ctx, cfg)
	assert.Error(t, err)
}

// Требует Redis: REPLAY_TEST_REDIS=localhost:6379 (используется DB 15)
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REPLAY_TEST_REDIS")
	if addr == "" {
		t.Skip("REPLAY_TEST_REDIS не задан")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, config.RedisConfig{Addr: addr, DB: 15, KeyPrefix: "replay:test:" + t.Name() + ":"})
	require.NoError(t, err)
	defer store.Close()

	names, err := store.List(ctx)
	require.NoError(t, err)
	for _, n := range names {
		require.NoError(t, store.client.Del(ctx, store.keyPrefix+n).Err())
	}
	testLogStore(t, store)
}

// Требует MongoDB: REPLAY_TEST_MONGO=mongodb://localhost:27017
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("REPLAY_TEST_MONGO")
	if uri == "" {
		t.Skip("REPLAY_TEST_MONGO не задан")
	}

	ctx := context.Background()
	store, err := NewMongoStore(ctx, config.MongoConfig{URI: uri, Database: "replay_test", Collection: "logs"})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.collection.Drop(ctx))
	testLogStore(t, store)
}
