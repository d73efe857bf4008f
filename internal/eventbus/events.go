package eventbus

import (
	"context"

	"github.com/annel0/session-replay/internal/config"
	"github.com/annel0/session-replay/internal/logging"
)

// Типы событий жизненного цикла
const (
	RecordingStarted          = "recording.started"
	RecordingStopped          = "recording.stopped"
	RecordingObjectRegistered = "recording.object_registered"
	RecordingSaved            = "recording.saved"
	PlaybackSetLoaded         = "playback.set_loaded"
	PlaybackSetUnloaded       = "playback.set_unloaded"
)

// RecordingEvent нагрузка событий recording.*
type RecordingEvent struct {
	Time     float64 `json:"time"`
	ObjectID string  `json:"object_id,omitempty"`
	Name     string  `json:"name,omitempty"`
	Static   bool    `json:"static,omitempty"`
	Bytes    int     `json:"bytes,omitempty"`
}

// PlaybackEvent нагрузка событий playback.*
type PlaybackEvent struct {
	SetID   string  `json:"set_id"`
	Log     string  `json:"log,omitempty"`
	Objects int     `json:"objects,omitempty"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// defaultCapacity буфер in-memory шины
const defaultCapacity = 256

// NewFromConfig возвращает JetStream-шину при заданном URL, иначе in-memory
func NewFromConfig(cfg config.EventBusConfig) (EventBus, error) {
	if cfg.URL == "" {
		return NewMemoryBus(defaultCapacity), nil
	}
	jb, err := NewJetStreamBus(cfg)
	if err != nil {
		return nil, err
	}
	return jb, nil
}

// Emit публикует событие, если шина задана. Ошибки только логируются:
// события не влияют на запись и воспроизведение.
func Emit(ctx context.Context, bus EventBus, source, eventType string, payload interface{}) {
	if bus == nil {
		return
	}
	ev, err := NewEnvelope(source, eventType, payload)
	if err != nil {
		logging.Warn("eventbus: %v", err)
		return
	}
	if err := bus.Publish(ctx, ev); err != nil {
		logging.Warn("eventbus: не удалось опубликовать %s: %v", eventType, err)
	}
}
