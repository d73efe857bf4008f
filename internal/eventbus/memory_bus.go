package eventbus

import (
	"context"
	"sync"
	"sync/atomic"
)

// memoryBus шина в пределах процесса: очередь, одна горутина рассылки,
// каждый обработчик в своей горутине
type memoryBus struct {
	queue chan *Envelope

	// closeMu держится Publish на время отправки в очередь, чтобы Close
	// не закрыл канал под пишущим
	closeMu sync.RWMutex
	closed  bool

	subMu  sync.RWMutex
	subs   map[uint64]*memSub
	nextID uint64

	published atomic.Uint64
	consumed  atomic.Uint64
	dropped   atomic.Uint64

	dispatched chan struct{}
	handlers   sync.WaitGroup
}

// NewMemoryBus создает in-memory шину с очередью на capacity событий
func NewMemoryBus(capacity int) EventBus {
	mb := &memoryBus{
		queue:      make(chan *Envelope, capacity),
		subs:       make(map[uint64]*memSub),
		dispatched: make(chan struct{}),
	}
	go mb.dispatch()
	return mb
}

// Publish ставит событие в очередь. При полной очереди обычные события
// отбрасываются (Dropped), события с PriorityHigh ждут места.
func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	mb.closeMu.RLock()
	defer mb.closeMu.RUnlock()
	if mb.closed {
		return ErrClosed
	}

	select {
	case mb.queue <- ev:
		mb.published.Add(1)
		return nil
	default:
	}

	if ev.Priority < PriorityHigh {
		mb.dropped.Add(1)
		return nil
	}
	select {
	case mb.queue <- ev:
		mb.published.Add(1)
		return nil
	case <-ctx.Done():
		mb.dropped.Add(1)
		return ctx.Err()
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	sctx, cancel := context.WithCancel(ctx)

	mb.subMu.Lock()
	defer mb.subMu.Unlock()
	id := mb.nextID
	mb.nextID++
	sub := &memSub{bus: mb, id: id, filter: f, handler: h, ctx: sctx, cancel: cancel}
	mb.subs[id] = sub
	return sub, nil
}

func (mb *memoryBus) Metrics() Stats {
	return Stats{
		Published: mb.published.Load(),
		Consumed:  mb.consumed.Load(),
		Dropped:   mb.dropped.Load(),
		InFlight:  len(mb.queue),
	}
}

func (mb *memoryBus) dispatch() {
	defer close(mb.dispatched)
	for ev := range mb.queue {
		ev := ev
		for _, sub := range mb.matching(ev) {
			mb.handlers.Add(1)
			go func(s *memSub) {
				defer mb.handlers.Done()
				if s.ctx.Err() != nil {
					return
				}
				s.handler(s.ctx, ev)
				mb.consumed.Add(1)
			}(sub)
		}
	}
}

func (mb *memoryBus) matching(ev *Envelope) []*memSub {
	mb.subMu.RLock()
	defer mb.subMu.RUnlock()

	var out []*memSub
	for _, s := range mb.subs {
		if s.filter.Match(ev) {
			out = append(out, s)
		}
	}
	return out
}

// Close дорассылает очередь и дожидается обработчиков. Повторный вызов ничего не делает.
func (mb *memoryBus) Close() error {
	mb.closeMu.Lock()
	if mb.closed {
		mb.closeMu.Unlock()
		return nil
	}
	mb.closed = true
	mb.closeMu.Unlock()

	close(mb.queue)
	<-mb.dispatched
	mb.handlers.Wait()
	return nil
}

type memSub struct {
	bus     *memoryBus
	id      uint64
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

func (s *memSub) Unsubscribe() {
	s.cancel()
	s.bus.subMu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.subMu.Unlock()
}
