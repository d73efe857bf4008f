package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	t.Setenv("REPLAY_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "on_change", cfg.Recording.Policy)
	assert.Equal(t, 3, cfg.Recording.Precision)
	assert.Equal(t, 1.0, cfg.Playback.Speed)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.yaml")
	data := `
recording:
  policy: every_x_seconds
  sample_interval: 0.5
  precision: 4
storage:
  backend: badger
  dir: /tmp/replay
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "every_x_seconds", cfg.Recording.Policy)
	assert.Equal(t, 0.5, cfg.Recording.SampleInterval)
	assert.Equal(t, 4, cfg.Recording.Precision)
	assert.Equal(t, "badger", cfg.Storage.Backend)
	// Не заданные в файле поля сохраняют значения по умолчанию
	assert.Equal(t, 1.0, cfg.Recording.ChangeJumpThreshold)
	assert.Equal(t, "world", cfg.Recording.Space)
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.toml")
	data := `
[recording]
policy = "every_frame"
time_mode = "unscaled"

[playback]
speed = 2.0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "every_frame", cfg.Recording.Policy)
	assert.Equal(t, "unscaled", cfg.Recording.TimeMode)
	assert.Equal(t, 2.0, cfg.Playback.Speed)
}

func TestLoad_EnvPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	require.NoError(t, os.WriteFile(path, []byte("playback:\n  speed: 3\n"), 0644))
	t.Setenv("REPLAY_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Playback.Speed)
}

func TestLoad_InvalidPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recording:\n  policy: sometimes\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMetricsPortFallback(t *testing.T) {
	m := MetricsConfig{}
	t.Setenv("REPLAY_METRICS_PORT", "9100")
	assert.Equal(t, 9100, m.GetPort())

	m.Port = 2112
	assert.Equal(t, 2112, m.GetPort())
}

func TestLoad_CacheSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.yaml")
	data := "storage:\n  backend: mongo\n  cache:\n    backend: memory\n    ttl_seconds: 60\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Cache.Backend)
	assert.Equal(t, 60*time.Second, cfg.Storage.Cache.TTL())
	assert.Equal(t, "replay:cache:", cfg.Storage.Cache.Redis.KeyPrefix)

	bad := filepath.Join(t.TempDir(), "bad_cache.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("storage:\n  cache:\n    backend: memcached\n"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}
