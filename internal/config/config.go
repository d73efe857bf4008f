package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации recorder/player.
type Config struct {
	Recording RecordingConfig `yaml:"recording" toml:"recording"`
	Playback  PlaybackConfig  `yaml:"playback" toml:"playback"`
	Storage   StorageConfig   `yaml:"storage" toml:"storage"`
	EventBus  EventBusConfig  `yaml:"eventbus" toml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// RecordingConfig настройки семплирования треков (общие для всех треков сессии)
type RecordingConfig struct {
	Policy                string  `yaml:"policy" toml:"policy"` // on_change | every_x_seconds | every_frame
	ChangeMinThreshold    float64 `yaml:"change_min_threshold" toml:"change_min_threshold"`
	ChangeJumpThreshold   float64 `yaml:"change_jump_threshold" toml:"change_jump_threshold"`
	RotationMinThreshold  float64 `yaml:"rotation_min_threshold" toml:"rotation_min_threshold"`   // градусы
	RotationJumpThreshold float64 `yaml:"rotation_jump_threshold" toml:"rotation_jump_threshold"` // градусы
	SampleInterval        float64 `yaml:"sample_interval" toml:"sample_interval"`                 // секунды
	Precision             int     `yaml:"precision" toml:"precision"`
	TimeMode              string  `yaml:"time_mode" toml:"time_mode"` // scaled | unscaled
	Space                 string  `yaml:"space" toml:"space"`         // world | local
}

type PlaybackConfig struct {
	Speed    float64 `yaml:"speed" toml:"speed"`
	AutoPlay bool    `yaml:"auto_play" toml:"auto_play"`
}

// StorageConfig выбирает бэкенд хранения логов
type StorageConfig struct {
	Backend string      `yaml:"backend" toml:"backend"` // file | memory | badger | redis | maria | mongo
	Dir     string      `yaml:"dir" toml:"dir"`
	Redis   RedisConfig `yaml:"redis" toml:"redis"`
	Maria   MariaConfig `yaml:"maria" toml:"maria"`
	Mongo   MongoConfig `yaml:"mongo" toml:"mongo"`
	Cache   CacheConfig `yaml:"cache" toml:"cache"`
}

// CacheConfig кэш чтения перед хранилищем логов
type CacheConfig struct {
	Backend    string      `yaml:"backend" toml:"backend"` // none | memory | redis
	TTLSeconds int         `yaml:"ttl_seconds" toml:"ttl_seconds"`
	Redis      RedisConfig `yaml:"redis" toml:"redis"`
}

// TTL время жизни записи кэша (0: без истечения)
func (c *CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type RedisConfig struct {
	Addr      string `yaml:"addr" toml:"addr"`
	Password  string `yaml:"password" toml:"password"`
	DB        int    `yaml:"db" toml:"db"`
	KeyPrefix string `yaml:"key_prefix" toml:"key_prefix"`
}

type MariaConfig struct {
	DSN string `yaml:"dsn" toml:"dsn"`
}

type MongoConfig struct {
	URI        string `yaml:"uri" toml:"uri"`
	Database   string `yaml:"database" toml:"database"`
	Collection string `yaml:"collection" toml:"collection"`
}

type EventBusConfig struct {
	URL       string `yaml:"url" toml:"url"` // пусто: in-memory шина
	Stream    string `yaml:"stream" toml:"stream"`
	Retention int    `yaml:"retention_hours" toml:"retention_hours"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	ServiceName string `yaml:"service_name" toml:"service_name"`
}

type MetricsConfig struct {
	Port int `yaml:"port" toml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
	Dir   string `yaml:"dir" toml:"dir"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Recording: RecordingConfig{
			Policy:                "on_change",
			ChangeMinThreshold:    0.01,
			ChangeJumpThreshold:   1.0,
			RotationMinThreshold:  1.0,
			RotationJumpThreshold: 45.0,
			SampleInterval:        0.1,
			Precision:             3,
			TimeMode:              "scaled",
			Space:                 "world",
		},
		Playback: PlaybackConfig{
			Speed: 1.0,
		},
		Storage: StorageConfig{
			Backend: "file",
			Dir:     "recordings",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "replay:log:",
			},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "replay",
				Collection: "logs",
			},
			Cache: CacheConfig{
				Backend:    "none",
				TTLSeconds: 300,
				Redis: RedisConfig{
					Addr:      "localhost:6379",
					KeyPrefix: "replay:cache:",
				},
			},
		},
		EventBus: EventBusConfig{
			Stream:    "REPLAY",
			Retention: 24,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "session-replay",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// RetentionDuration возвращает время хранения событий в JetStream
func (e *EventBusConfig) RetentionDuration() time.Duration {
	return time.Duration(e.Retention) * time.Hour
}

// GetDir возвращает каталог хранения с приоритетом: config -> env -> default
func (s *StorageConfig) GetDir() string {
	if s.Dir != "" {
		return s.Dir
	}
	if env := os.Getenv("REPLAY_STORAGE_DIR"); env != "" {
		return env
	}
	return "recordings"
}

// GetPort возвращает порт метрик (0: метрики не публикуются)
func (m *MetricsConfig) GetPort() int {
	return getPortWithEnvFallback(m.Port, "REPLAY_METRICS_PORT", 0)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV REPLAY_CONFIG; если и он пуст,
// возвращает Default(). Файлы *.toml разбираются go-toml, остальные: как YAML.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("REPLAY_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML from %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate проверяет значения, которые нельзя исправить молча
func (c *Config) Validate() error {
	r := c.Recording
	switch r.Policy {
	case "on_change", "every_x_seconds", "every_frame":
	default:
		return fmt.Errorf("recording.policy: неизвестная политика %q", r.Policy)
	}
	switch r.TimeMode {
	case "scaled", "unscaled":
	default:
		return fmt.Errorf("recording.time_mode: %q", r.TimeMode)
	}
	switch r.Space {
	case "world", "local":
	default:
		return fmt.Errorf("recording.space: %q", r.Space)
	}
	if r.Precision < 0 || r.Precision > 9 {
		return fmt.Errorf("recording.precision вне диапазона 0..9: %d", r.Precision)
	}
	if r.Policy == "every_x_seconds" && r.SampleInterval <= 0 {
		return fmt.Errorf("recording.sample_interval должен быть > 0")
	}
	if r.ChangeJumpThreshold < r.ChangeMinThreshold {
		return fmt.Errorf("recording.change_jump_threshold меньше change_min_threshold")
	}
	switch c.Storage.Cache.Backend {
	case "", "none", "memory", "redis":
	default:
		return fmt.Errorf("storage.cache.backend: %q", c.Storage.Cache.Backend)
	}
	if c.Playback.Speed <= 0 {
		return fmt.Errorf("playback.speed должен быть > 0")
	}
	return nil
}
