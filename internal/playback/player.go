package playback

import (
	"context"
	"fmt"
	"math"

	"github.com/annel0/session-replay/internal/eventbus"
	"github.com/annel0/session-replay/internal/logformat"
	"github.com/annel0/session-replay/internal/logging"
	"github.com/annel0/session-replay/internal/metrics"
	"github.com/annel0/session-replay/internal/observability"
	"github.com/annel0/session-replay/internal/storage"
	"github.com/annel0/session-replay/internal/vec"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const eventSource = "playback"

// Mode режим часов воспроизведения
type Mode int

const (
	Paused Mode = iota
	PlayingForward
	PlayingReverse
)

func (m Mode) String() string {
	switch m {
	case Paused:
		return "paused"
	case PlayingForward:
		return "forward"
	case PlayingReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// LoadOptions параметры загружаемого набора
type LoadOptions struct {
	Static  bool
	Hidden  bool
	Outline *vec.Color
}

// Player часы воспроизведения над загруженными наборами
type Player struct {
	registry *Registry
	assets   AssetResolver
	bus      eventbus.EventBus
	log      *logging.Logger

	sets        []*ObjectSet
	startTime   float64
	endTime     float64
	currentTime float64
	speed       float64
	mode        Mode
}

// PlayerOption настраивает Player
type PlayerOption func(*Player)

func WithRegistry(r *Registry) PlayerOption {
	return func(p *Player) { p.registry = r }
}

func WithAssets(a AssetResolver) PlayerOption {
	return func(p *Player) { p.assets = a }
}

func WithEventBus(bus eventbus.EventBus) PlayerOption {
	return func(p *Player) { p.bus = bus }
}

func WithLogger(l *logging.Logger) PlayerOption {
	return func(p *Player) { p.log = l }
}

// WithSpeed множитель скорости; значения <= 0 игнорируются
func WithSpeed(speed float64) PlayerOption {
	return func(p *Player) {
		if speed > 0 {
			p.speed = speed
		}
	}
}

// NewPlayer создает остановленный плеер без наборов
func NewPlayer(opts ...PlayerOption) *Player {
	p := &Player{speed: 1}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = NewRegistry()
	}
	if p.assets == nil {
		p.assets = PathResolver{}
	}
	if p.log == nil {
		p.log = logging.GetPlaybackLogger()
	}
	return p
}

func (p *Player) StartTime() float64   { return p.startTime }
func (p *Player) EndTime() float64     { return p.endTime }
func (p *Player) CurrentTime() float64 { return p.currentTime }
func (p *Player) Mode() Mode           { return p.mode }
func (p *Player) Speed() float64       { return p.speed }

// SetSpeed множитель скорости; значения <= 0 игнорируются
func (p *Player) SetSpeed(speed float64) {
	if speed > 0 {
		p.speed = speed
	}
}

// Sets загруженные наборы в порядке загрузки
func (p *Player) Sets() []*ObjectSet {
	return append([]*ObjectSet(nil), p.sets...)
}

// Set набор по идентификатору
func (p *Player) Set(id string) (*ObjectSet, bool) {
	for _, s := range p.sets {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

func (p *Player) PlayForward()     { p.mode = PlayingForward }
func (p *Player) ReversePlayback() { p.mode = PlayingReverse }
func (p *Player) PausePlayback()   { p.mode = Paused }

// Update двигает часы на dt с учетом режима и скорости. На границе
// диапазона время ограничивается и воспроизведение ставится на паузу.
func (p *Player) Update(dt float64) {
	var dir float64
	switch p.mode {
	case PlayingForward:
		dir = 1
	case PlayingReverse:
		dir = -1
	default:
		return
	}

	p.currentTime += dir * p.speed * dt
	switch {
	case dir > 0 && p.currentTime >= p.endTime:
		p.currentTime = p.endTime
		p.mode = Paused
	case dir < 0 && p.currentTime <= p.startTime:
		p.currentTime = p.startTime
		p.mode = Paused
	}
	p.evaluateDynamic()
}

// SetCurrentTime перематывает на t. Время вне [StartTime, EndTime]: ошибка программиста.
func (p *Player) SetCurrentTime(t float64) {
	if t < p.startTime || t > p.endTime {
		panic(fmt.Sprintf("playback: время %.3f вне диапазона [%.3f, %.3f]", t, p.startTime, p.endTime))
	}
	p.currentTime = t
	p.evaluateDynamic()
}

func (p *Player) evaluateDynamic() {
	for _, s := range p.sets {
		if s.Static {
			continue
		}
		if misses := s.Evaluate(p.currentTime); misses > 0 {
			metrics.SearchMisses.Add(float64(misses))
			p.log.Debug("Набор %s: %d промахов поиска в t=%.3f", s.Name, misses, p.currentTime)
		}
	}
}

// Load читает лог name из store, разбирает его и строит набор. При любой
// ошибке загруженные ранее наборы не меняются.
func (p *Player) Load(ctx context.Context, store storage.LogStore, name string, opts LoadOptions) (*ObjectSet, error) {
	ctx, span := observability.Tracer("playback").Start(ctx, "playback.Load")
	defer span.End()
	span.SetAttributes(attribute.String("log.name", name), attribute.Bool("set.static", opts.Static))

	set, err := p.load(ctx, store, name, opts)
	if err != nil {
		metrics.LoadFailures.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.log.Error("Не удалось загрузить %s: %v", name, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("set.objects", len(set.objects)))
	p.add(ctx, set)
	return set, nil
}

func (p *Player) load(ctx context.Context, store storage.LogStore, name string, opts LoadOptions) (*ObjectSet, error) {
	text, err := store.Read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return p.build(name, text, opts)
}

// LoadText строит набор из уже прочитанного текста лога
func (p *Player) LoadText(ctx context.Context, name, text string, opts LoadOptions) (*ObjectSet, error) {
	set, err := p.build(name, text, opts)
	if err != nil {
		metrics.LoadFailures.Inc()
		p.log.Error("Не удалось загрузить %s: %v", name, err)
		return nil, err
	}
	p.add(ctx, set)
	return set, nil
}

func (p *Player) build(name, text string, opts LoadOptions) (*ObjectSet, error) {
	records, err := logformat.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	objects, err := Generate(records, p.registry, p.assets)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	set := NewObjectSet(name, opts.Static, objects)
	set.SetVisible(!opts.Hidden)
	set.SetOutline(opts.Outline)
	return set, nil
}

func (p *Player) add(ctx context.Context, set *ObjectSet) {
	first := len(p.sets) == 0
	p.sets = append(p.sets, set)
	p.recomputeBounds()
	if first {
		p.currentTime = p.startTime
	}

	// Статический набор вычисляется один раз, в свой самый ранний момент
	if set.Static {
		set.Evaluate(set.Earliest())
	} else {
		set.Evaluate(p.currentTime)
	}

	metrics.SetsLoaded.Inc()
	p.log.Info("Загружен набор %s (%s): объектов %d, [%.3f, %.3f]",
		set.Name, set.ID, len(set.objects), set.Earliest(), set.Latest())
	eventbus.Emit(ctx, p.bus, eventSource, eventbus.PlaybackSetLoaded, eventbus.PlaybackEvent{
		SetID: set.ID, Log: set.Name, Objects: len(set.objects), Start: set.Earliest(), End: set.Latest(),
	})
}

// Unload удаляет набор. Возвращает false, если набора нет.
func (p *Player) Unload(id string) bool {
	for i, s := range p.sets {
		if s.ID != id {
			continue
		}
		p.sets = append(p.sets[:i], p.sets[i+1:]...)
		p.recomputeBounds()

		metrics.SetsLoaded.Dec()
		p.log.Info("Выгружен набор %s (%s)", s.Name, s.ID)
		eventbus.Emit(context.Background(), p.bus, eventSource, eventbus.PlaybackSetUnloaded, eventbus.PlaybackEvent{
			SetID: s.ID, Log: s.Name, Start: p.startTime, End: p.endTime,
		})
		return true
	}
	return false
}

// recomputeBounds пересчитывает диапазон и вводит в него текущее время
func (p *Player) recomputeBounds() {
	if len(p.sets) == 0 {
		p.startTime, p.endTime, p.currentTime = 0, 0, 0
		p.mode = Paused
		return
	}

	// Пустые наборы не сдвигают границы
	p.startTime, p.endTime = math.Inf(1), math.Inf(-1)
	for _, s := range p.sets {
		if s.Empty() {
			continue
		}
		p.startTime = math.Min(p.startTime, s.Earliest())
		p.endTime = math.Max(p.endTime, s.Latest())
	}
	if math.IsInf(p.startTime, 1) {
		p.startTime, p.endTime = 0, 0
	}

	if p.currentTime < p.startTime {
		p.currentTime = p.startTime
	}
	if p.currentTime > p.endTime {
		p.currentTime = p.endTime
	}
}
