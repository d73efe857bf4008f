package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	nats "github.com/nats-io/nats.go"

	"github.com/annel0/session-replay/internal/config"
	"github.com/annel0/session-replay/internal/logging"
)

// JetStreamBus EventBus поверх NATS JetStream. События лежат в стриме
// cfg.Stream под subject replay.<type> и живут cfg.Retention часов.
type JetStreamBus struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	stream string

	published atomic.Uint64
	consumed  atomic.Uint64
	dropped   atomic.Uint64
}

const (
	subjectPrefix = "replay."
	defaultStream = "REPLAY"
	clientName    = "replayctl"
)

func subject(eventType string) string { return subjectPrefix + eventType }

// NewJetStreamBus подключается к cfg.URL и создает стрим, если его нет
func NewJetStreamBus(cfg config.EventBusConfig) (*JetStreamBus, error) {
	stream := cfg.Stream
	if stream == "" {
		stream = defaultStream
	}
	log := logging.GetEventBusLogger()

	nc, err := nats.Connect(cfg.URL,
		nats.Name(clientName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats: соединение потеряно: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats: переподключение к %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", cfg.URL, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := ensureStream(js, stream, cfg.RetentionDuration()); err != nil {
		nc.Close()
		return nil, err
	}

	return &JetStreamBus{nc: nc, js: js, stream: stream}, nil
}

func ensureStream(js nats.JetStreamContext, name string, maxAge time.Duration) error {
	if _, err := js.StreamInfo(name); err == nil {
		return nil
	}
	_, err := js.AddStream(&nats.StreamConfig{
		Name:      name,
		Subjects:  []string{subject(">")},
		Retention: nats.LimitsPolicy,
		MaxAge:    maxAge,
		Storage:   nats.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("add stream %s: %w", name, err)
	}
	return nil
}

// Publish ждет подтверждения стрима; ошибка засчитывается в Dropped
func (jb *JetStreamBus) Publish(ctx context.Context, ev *Envelope) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.EventType, err)
	}
	if _, err := jb.js.Publish(subject(ev.EventType), data, nats.Context(ctx)); err != nil {
		jb.dropped.Add(1)
		return fmt.Errorf("jetstream publish %s: %w", ev.EventType, err)
	}
	jb.published.Add(1)
	return nil
}

// Subscribe создает эфемерного потребителя, получающего только новые события.
// Фильтр по одному типу сужает subject на стороне сервера, остальное
// проверяется локально.
func (jb *JetStreamBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	subj := subject(">")
	if len(f.Types) == 1 {
		subj = subject(f.Types[0])
	}

	sub, err := jb.js.Subscribe(subj, func(msg *nats.Msg) {
		var ev Envelope
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			jb.dropped.Add(1)
			return
		}
		if ctx.Err() != nil || !f.Match(&ev) {
			return
		}
		h(ctx, &ev)
		jb.consumed.Add(1)
	}, nats.BindStream(jb.stream), nats.DeliverNew(), nats.AckNone())
	if err != nil {
		return nil, fmt.Errorf("jetstream subscribe %s: %w", subj, err)
	}
	return natsSub{sub}, nil
}

type natsSub struct{ *nats.Subscription }

func (s natsSub) Unsubscribe() { _ = s.Subscription.Unsubscribe() }

func (jb *JetStreamBus) Metrics() Stats {
	return Stats{
		Published: jb.published.Load(),
		Consumed:  jb.consumed.Load(),
		Dropped:   jb.dropped.Load(),
	}
}

// Close дожидается отправки буферизованных сообщений
func (jb *JetStreamBus) Close() error {
	return jb.nc.Drain()
}
