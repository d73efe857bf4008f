// Package recorder записывает треки объектов сцены в текстовый лог сессии.
//
// Session и все треки не безопасны для конкурентного использования: хост
// вызывает их из одного игрового цикла.
package recorder

import (
	"context"
	"strconv"
	"strings"

	"github.com/annel0/session-replay/internal/eventbus"
	"github.com/annel0/session-replay/internal/logging"
	"github.com/annel0/session-replay/internal/metrics"
	"github.com/annel0/session-replay/internal/observability"
	"github.com/annel0/session-replay/internal/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const eventSource = "recorder"

// entry запись ведра: живой объект до завершения, затем только текст
type entry struct {
	object *Object
	data   string
	done   bool
}

type bucket struct {
	entries map[string]*entry
	order   []string
}

func newBucket() *bucket {
	return &bucket{entries: make(map[string]*entry)}
}

func (b *bucket) add(id string, o *Object) {
	b.entries[id] = &entry{object: o}
	b.order = append(b.order, id)
}

func (b *bucket) text() string {
	var sb strings.Builder
	for _, id := range b.order {
		sb.WriteString(b.entries[id].data)
	}
	return sb.String()
}

// Session часы записи и реестр объектов
type Session struct {
	settings Settings
	store    storage.LogStore
	bus      eventbus.EventBus
	log      *logging.Logger

	currentTime float64
	recording   bool
	nextID      uint64
	known       []*Object
	static      *bucket
	dynamic     *bucket
}

// Option настраивает Session
type Option func(*Session)

// WithStore хранилище для SaveStaticData/SaveDynamicData
func WithStore(s storage.LogStore) Option {
	return func(sess *Session) { sess.store = s }
}

// WithEventBus публиковать события жизненного цикла в bus
func WithEventBus(bus eventbus.EventBus) Option {
	return func(sess *Session) { sess.bus = bus }
}

func WithLogger(l *logging.Logger) Option {
	return func(sess *Session) { sess.log = l }
}

// NewSession создает сессию в состоянии Idle
func NewSession(settings Settings, opts ...Option) *Session {
	s := &Session{settings: settings}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logging.GetRecorderLogger()
	}
	s.Setup()
	return s
}

// Setup сбрасывает часы и ведра. Известные объекты остаются известными.
func (s *Session) Setup() {
	s.currentTime = 0
	s.recording = false
	s.nextID = 0
	s.static = newBucket()
	s.dynamic = newBucket()
	for _, o := range s.known {
		o.state = stateUnregistered
		o.id = ""
	}
}

// Settings общие настройки треков сессии
func (s *Session) Settings() *Settings { return &s.settings }

func (s *Session) CurrentTime() float64 { return s.currentTime }

func (s *Session) IsRecording() bool { return s.recording }

// Add делает объект известным сессии. Во время записи он регистрируется сразу.
func (s *Session) Add(o *Object) {
	for _, k := range s.known {
		if k == o {
			return
		}
	}
	s.known = append(s.known, o)
	if s.recording {
		s.RegisterObject(o)
	}
}

// forget убирает уничтоженный объект из известных: следующая запись его не увидит
func (s *Session) forget(o *Object) {
	for i, k := range s.known {
		if k == o {
			s.known = append(s.known[:i], s.known[i+1:]...)
			return
		}
	}
}

// StartRecording регистрирует все известные объекты в момент CurrentTime
func (s *Session) StartRecording() {
	if s.recording {
		return
	}
	s.recording = true
	s.log.Info("Запись начата в t=%.3f, объектов: %d", s.currentTime, len(s.known))
	eventbus.Emit(context.Background(), s.bus, eventSource, eventbus.RecordingStarted,
		eventbus.RecordingEvent{Time: s.currentTime})

	for _, o := range s.known {
		s.RegisterObject(o)
	}
}

// RegisterObject назначает идентификатор, раскладывает объект по ведру и
// начинает запись его треков. Вне записи и для уже зарегистрированного объекта ничего не делает.
func (s *Session) RegisterObject(o *Object) {
	if !s.recording || o.state != stateUnregistered {
		return
	}
	if err := o.prepare(&s.settings); err != nil {
		s.log.Error("Объект %s не зарегистрирован: %v", o.Name, err)
		return
	}

	o.id = "_" + strconv.FormatUint(s.nextID, 10)
	s.nextID++
	o.session = s

	b, label := s.dynamic, "dynamic"
	if o.Static {
		b, label = s.static, "static"
	}
	b.add(o.id, o)
	metrics.ObjectsRegistered.WithLabelValues(label).Inc()

	o.StartRecording(s.currentTime)
	s.log.Debug("Зарегистрирован %s%s (%s)", o.Name, o.id, label)
	eventbus.Emit(context.Background(), s.bus, eventSource, eventbus.RecordingObjectRegistered,
		eventbus.RecordingEvent{Time: s.currentTime, ObjectID: o.id, Name: o.Name, Static: o.Static})

	// Статический объект пишет ровно один семпл на трек
	if o.Static {
		o.seal()
		s.MarkObjectDoneRecording(o)
	}
}

// MarkObjectDoneRecording кэширует текст объекта и отпускает ссылку на него
func (s *Session) MarkObjectDoneRecording(o *Object) {
	if !s.recording {
		return
	}

	e, ok := s.static.entries[o.id]
	if !ok {
		e, ok = s.dynamic.entries[o.id]
	}
	if !ok || e.object != o {
		s.log.Error("Объект %s%s не найден ни в статическом, ни в динамическом наборе", o.Name, o.id)
		return
	}
	if e.done {
		return
	}

	e.data = o.Data()
	e.done = true
	e.object = nil
}

// UpdateRecording сдвигает часы на дельту, выбранную TimeMode, и обновляет
// живые динамические объекты
func (s *Session) UpdateRecording(dt, unscaledDt float64) {
	if !s.recording {
		return
	}
	if s.settings.TimeMode == Unscaled {
		dt = unscaledDt
	}
	s.currentTime += dt

	for _, id := range s.dynamic.order {
		if e := s.dynamic.entries[id]; !e.done {
			e.object.UpdateRecording(s.currentTime, dt)
		}
	}
}

// StopRecording завершает живые динамические объекты и кэширует их текст
func (s *Session) StopRecording() {
	if !s.recording {
		return
	}
	for _, id := range s.dynamic.order {
		e := s.dynamic.entries[id]
		if e.done {
			continue
		}
		e.object.EndRecording(s.currentTime)
		s.MarkObjectDoneRecording(e.object)
	}
	s.recording = false

	s.log.Info("Запись остановлена в t=%.3f: static=%d dynamic=%d",
		s.currentTime, len(s.static.order), len(s.dynamic.order))
	eventbus.Emit(context.Background(), s.bus, eventSource, eventbus.RecordingStopped,
		eventbus.RecordingEvent{Time: s.currentTime})
}

// StaticData текст завершенных статических объектов в порядке регистрации
func (s *Session) StaticData() string { return s.static.text() }

// DynamicData текст завершенных динамических объектов в порядке регистрации
func (s *Session) DynamicData() string { return s.dynamic.text() }

// StaticObjects идентификаторы статических объектов в порядке регистрации
func (s *Session) StaticObjects() []string { return append([]string(nil), s.static.order...) }

// DynamicObjects идентификаторы динамических объектов в порядке регистрации
func (s *Session) DynamicObjects() []string { return append([]string(nil), s.dynamic.order...) }

// IsDone текст объекта id уже закэширован
func (s *Session) IsDone(id string) bool {
	if e, ok := s.static.entries[id]; ok {
		return e.done
	}
	if e, ok := s.dynamic.entries[id]; ok {
		return e.done
	}
	return false
}

// SaveStaticData записывает статический текст в хранилище под именем name
func (s *Session) SaveStaticData(ctx context.Context, name string) bool {
	return s.save(ctx, name, "static", s.StaticData())
}

// SaveDynamicData записывает динамический текст в хранилище под именем name
func (s *Session) SaveDynamicData(ctx context.Context, name string) bool {
	return s.save(ctx, name, "dynamic", s.DynamicData())
}

func (s *Session) save(ctx context.Context, name, label, text string) bool {
	ctx, span := observability.Tracer("recorder").Start(ctx, "recorder.Save")
	defer span.End()
	span.SetAttributes(
		attribute.String("log.name", name),
		attribute.String("log.bucket", label),
		attribute.Int("log.bytes", len(text)),
	)

	if s.store == nil {
		s.log.Error("Не удалось сохранить %s: хранилище не задано", name)
		span.SetStatus(codes.Error, "no store")
		metrics.Saves.WithLabelValues(label, "error").Inc()
		return false
	}

	if err := s.store.Write(ctx, name, text); err != nil {
		s.log.Error("Не удалось сохранить %s: %v", name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.Saves.WithLabelValues(label, "error").Inc()
		return false
	}

	metrics.Saves.WithLabelValues(label, "ok").Inc()
	s.log.Info("Сохранен %s лог %s (%d байт)", label, name, len(text))
	eventbus.Emit(ctx, s.bus, eventSource, eventbus.RecordingSaved,
		eventbus.RecordingEvent{Time: s.currentTime, Name: name, Bytes: len(text)})
	return true
}
