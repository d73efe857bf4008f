package eventbus

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/annel0/session-replay/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()

	var mu sync.Mutex
	var got []RecordingEvent

	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{RecordingStarted}}, func(ctx context.Context, ev *Envelope) {
		var p RecordingEvent
		if ev.Decode(&p) == nil {
			mu.Lock()
			got = append(got, p)
			mu.Unlock()
		}
	})
	require.NoError(t, err)

	Emit(context.Background(), bus, "test", RecordingStarted, RecordingEvent{Time: 1.5})
	Emit(context.Background(), bus, "test", RecordingStopped, RecordingEvent{Time: 3})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, 1.5, got[0].Time)
	mu.Unlock()
	assert.Equal(t, uint64(2), bus.Metrics().Published)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()

	var mu sync.Mutex
	count := 0
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	Emit(context.Background(), bus, "test", RecordingSaved, RecordingEvent{})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	assert.Equal(t, 0, count)
	mu.Unlock()
}

func TestMemoryBus_PublishAfterClose(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	ev, err := NewEnvelope("test", PlaybackSetLoaded, PlaybackEvent{SetID: "x"})
	require.NoError(t, err)
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)
}

func TestNewEnvelope(t *testing.T) {
	ev, err := NewEnvelope("recorder", RecordingObjectRegistered, RecordingEvent{ObjectID: "_3", Name: "Cube"})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "recorder", ev.Source)
	assert.Equal(t, 1, ev.Version)

	var p RecordingEvent
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, "_3", p.ObjectID)
	assert.Equal(t, "Cube", p.Name)
}

func TestBusCollector(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()

	reg := prometheus.NewRegistry()
	c, err := RegisterBusMetrics(bus, reg)
	require.NoError(t, err)

	Emit(context.Background(), bus, "test", RecordingStarted, RecordingEvent{})
	Emit(context.Background(), bus, "test", RecordingStopped, RecordingEvent{})

	assert.Equal(t, 4, testutil.CollectAndCount(c))
	expected := `
# HELP replay_eventbus_messages_published_total Опубликовано событий.
# TYPE replay_eventbus_messages_published_total counter
replay_eventbus_messages_published_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "replay_eventbus_messages_published_total"))

	_, err = RegisterBusMetrics(bus, reg)
	assert.Error(t, err, "повторная регистрация должна вернуть ошибку")

	c.Unregister()
	_, err = RegisterBusMetrics(bus, reg)
	assert.NoError(t, err)
}

func TestMemoryBus_DropsLowPriorityWhenFull(t *testing.T) {
	mb := &memoryBus{
		queue:      make(chan *Envelope, 1),
		subs:       make(map[uint64]*memSub),
		dispatched: make(chan struct{}),
	}
	// рассылка не запущена, очередь не разгружается
	require.NoError(t, mb.Publish(context.Background(), &Envelope{EventType: "a"}))
	require.NoError(t, mb.Publish(context.Background(), &Envelope{EventType: "b"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := mb.Publish(ctx, &Envelope{EventType: "c", Priority: PriorityHigh})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	s := mb.Metrics()
	assert.Equal(t, uint64(1), s.Published)
	assert.Equal(t, uint64(2), s.Dropped)
	assert.Equal(t, 1, s.InFlight)
}

func TestFilter_Match(t *testing.T) {
	ev := &Envelope{EventType: RecordingSaved, Source: "recorder"}
	assert.True(t, Filter{}.Match(ev))
	assert.True(t, Filter{Types: []string{RecordingStarted, RecordingSaved}}.Match(ev))
	assert.False(t, Filter{Sources: []string{"playback"}}.Match(ev))
}

// Требует запущенный nats-server с JetStream: REPLAY_TEST_NATS=nats://127.0.0.1:4222
func TestJetStreamBus_RoundTrip(t *testing.T) {
	url := os.Getenv("REPLAY_TEST_NATS")
	if url == "" {
		t.Skip("REPLAY_TEST_NATS не задан")
	}

	bus, err := NewFromConfig(configWithURL(url))
	require.NoError(t, err)
	defer bus.Close()

	got := make(chan *Envelope, 1)
	_, err = bus.Subscribe(context.Background(), Filter{Types: []string{PlaybackSetLoaded}}, func(ctx context.Context, ev *Envelope) {
		select {
		case got <- ev:
		default:
		}
	})
	require.NoError(t, err)

	Emit(context.Background(), bus, "test", PlaybackSetLoaded, PlaybackEvent{SetID: "abc"})

	select {
	case ev := <-got:
		var p PlaybackEvent
		require.NoError(t, ev.Decode(&p))
		assert.Equal(t, "abc", p.SetID)
	case <-time.After(5 * time.Second):
		t.Fatal("событие не доставлено")
	}
}

func configWithURL(url string) config.EventBusConfig {
	c := config.Default().EventBus
	c.URL = url
	c.Stream = "REPLAY_TEST"
	return c
}
