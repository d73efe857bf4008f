// Package eventbus публикует события жизненного цикла записи и воспроизведения.
// По умолчанию используется in-memory шина; при заданном URL: NATS JetStream.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope конверт события; в JetStream передается как JSON целиком
type Envelope struct {
	ID        string    `json:"id"`   // UUID
	Timestamp time.Time `json:"ts"`   // UTC
	Source    string    `json:"src"`  // recorder | playback
	EventType string    `json:"type"` // recording.started, playback.set_loaded...
	Version   int       `json:"v"`    // схема нагрузки
	Priority  int       `json:"prio,omitempty"`
	Payload   []byte    `json:"payload"` // JSON нагрузки
}

// PriorityHigh события с Priority не ниже этого не отбрасываются при
// переполнении очереди: Publish ждет места или отмены контекста
const PriorityHigh = 5

// NewEnvelope создает конверт с новым UUID и JSON-нагрузкой
func NewEnvelope(source, eventType string, payload interface{}) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации события %s: %w", eventType, err)
	}
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Payload:   data,
	}, nil
}

// Decode разбирает JSON-нагрузку в v
func (e *Envelope) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Filter пустое поле пропускает все значения
type Filter struct {
	Types   []string
	Sources []string
}

// Match проверяет событие по фильтру
func (f Filter) Match(ev *Envelope) bool {
	return matchAny(ev.EventType, f.Types) && matchAny(ev.Source, f.Sources)
}

func matchAny(val string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, v := range allowed {
		if v == val {
			return true
		}
	}
	return false
}

type Subscription interface {
	Unsubscribe()
}

// Handler вызывается асинхронно, возможно конкурентно с другими обработчиками
type Handler func(ctx context.Context, ev *Envelope)

// Stats счетчики шины с момента создания
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus шина событий жизненного цикла
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

// ErrClosed возвращается Publish после Close
var ErrClosed = errors.New("eventbus: шина закрыта")
