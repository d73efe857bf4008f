package recorder

import (
	"fmt"

	"github.com/annel0/session-replay/internal/metrics"
	"github.com/annel0/session-replay/internal/track"
	"github.com/annel0/session-replay/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
)

// TrackRecorder общий интерфейс записывающих треков объекта
type TrackRecorder interface {
	Kind() track.Kind
	// Bind привязывает общие настройки сессии; вызывается при регистрации объекта
	Bind(s *Settings)
	StartRecording(t float64)
	UpdateRecording(t, dt float64)
	EndRecording(t float64)
	// Data возвращает тело трека: строки семплов с завершающим \n
	Data() string
	Len() int
}

// compareFunc сообщает, изменилось ли значение достаточно для записи
// и нужно ли дублировать предыдущее значение перед скачком
type compareFunc[T any] func(s *Settings, prev, cur T) (changed, jumped bool)

// SampleTrack буфер семплов одного вида с политикой записи
type SampleTrack[T any] struct {
	kind     track.Kind
	codec    track.Codec[T]
	compare  compareFunc[T]
	read     func(s *Settings) T
	settings *Settings

	samples        []track.Sample[T]
	started        bool
	recording      bool
	nextSampleTime float64
	counter        prometheus.Counter
}

func newSampleTrack[T any](kind track.Kind, codec track.Codec[T], cmp compareFunc[T]) *SampleTrack[T] {
	return &SampleTrack[T]{
		kind:    kind,
		codec:   codec,
		compare: cmp,
		counter: metrics.SamplesRecorded.WithLabelValues(kind.String()),
	}
}

func (st *SampleTrack[T]) Kind() track.Kind { return st.kind }

func (st *SampleTrack[T]) Bind(s *Settings) { st.settings = s }

// StartRecording сбрасывает буфер и пишет первый семпл в t
func (st *SampleTrack[T]) StartRecording(t float64) {
	if st.read == nil {
		panic(fmt.Sprintf("recorder: трек %s не привязан к источнику", st.kind))
	}
	if st.settings == nil {
		panic(fmt.Sprintf("recorder: трек %s не привязан к настройкам", st.kind))
	}

	st.samples = st.samples[:0]
	st.started = true
	st.recording = true
	st.RecordData(t)
	st.nextSampleTime = t + st.settings.SampleInterval
}

// UpdateRecording применяет политику записи. dt: дельта кадра, по которой
// вычисляется время дублирующего семпла при скачке.
func (st *SampleTrack[T]) UpdateRecording(t, dt float64) {
	st.mustStart()
	if !st.recording {
		return
	}

	switch st.settings.Policy {
	case EveryFrame:
		st.RecordData(t)
	case EveryXSeconds:
		if t >= st.nextSampleTime {
			st.RecordData(t)
			st.nextSampleTime = t + st.settings.SampleInterval
		}
	default:
		last := st.samples[len(st.samples)-1]
		cur := st.read(st.settings)
		changed, jumped := st.compare(st.settings, last.Value, cur)
		if !changed {
			return
		}
		if jumped {
			pre := t - dt
			if pre < last.Time {
				pre = last.Time
			}
			st.append(pre, last.Value)
		}
		st.append(t, cur)
	}
}

// EndRecording всегда пишет финальный семпл
func (st *SampleTrack[T]) EndRecording(t float64) {
	st.mustStart()
	if !st.recording {
		return
	}
	st.RecordData(t)
	st.recording = false
}

// RecordData добавляет живое значение в момент t
func (st *SampleTrack[T]) RecordData(t float64) {
	st.append(t, st.read(st.settings))
}

func (st *SampleTrack[T]) append(t float64, v T) {
	st.samples = append(st.samples, track.Sample[T]{Time: t, Value: v})
	st.counter.Inc()
}

// Samples возвращает записанный буфер
func (st *SampleTrack[T]) Samples() []track.Sample[T] {
	st.mustStart()
	return st.samples
}

func (st *SampleTrack[T]) Len() int { return len(st.samples) }

func (st *SampleTrack[T]) Data() string {
	st.mustStart()
	return track.EncodeSamples(st.samples, st.codec, st.settings.Precision)
}

func (st *SampleTrack[T]) mustStart() {
	if !st.started {
		panic(fmt.Sprintf("recorder: трек %s используется до StartRecording", st.kind))
	}
}

//================ Конструкторы по видам =================//

func continuous[T any](dist func(a, b T) float64, rotation bool) compareFunc[T] {
	return func(s *Settings, prev, cur T) (bool, bool) {
		lo, hi := s.ChangeMinThreshold, s.ChangeJumpThreshold
		if rotation {
			lo, hi = s.RotationMinThreshold, s.RotationJumpThreshold
		}
		d := dist(prev, cur)
		return d >= lo, d >= hi
	}
}

func discrete[T any](eq func(a, b T) bool) compareFunc[T] {
	return func(_ *Settings, prev, cur T) (bool, bool) {
		return !eq(prev, cur), false
	}
}

// NewPositionTrack позиция в пространстве Settings.Space
func NewPositionTrack(tr Transform) *SampleTrack[vec.Vec3] {
	st := newSampleTrack[vec.Vec3](track.KindPosition, track.Vec3Codec{},
		continuous(vec.Vec3.DistanceTo, false))
	if tr != nil {
		st.read = func(s *Settings) vec.Vec3 { return tr.Position(s.Space) }
	}
	return st
}

// NewRotationTrack вращение; расстояние: угол в градусах
func NewRotationTrack(tr Transform) *SampleTrack[vec.Quat] {
	st := newSampleTrack[vec.Quat](track.KindRotation, track.QuatCodec{},
		continuous(vec.Quat.AngleTo, true))
	if tr != nil {
		st.read = func(s *Settings) vec.Quat { return tr.Rotation(s.Space) }
	}
	return st
}

func NewScaleTrack(tr Transform) *SampleTrack[vec.Vec3] {
	st := newSampleTrack[vec.Vec3](track.KindScale, track.Vec3Codec{},
		continuous(vec.Vec3.DistanceTo, false))
	if tr != nil {
		st.read = func(s *Settings) vec.Vec3 { return tr.Scale(s.Space) }
	}
	return st
}

func NewLightTrack(src LightSource) *SampleTrack[track.Light] {
	st := newSampleTrack[track.Light](track.KindLight, track.LightCodec{},
		discrete(track.Light.Equals))
	if src != nil {
		st.read = func(*Settings) track.Light { return src.Light() }
	}
	return st
}

func NewCameraTrack(src CameraSource) *SampleTrack[track.Camera] {
	st := newSampleTrack[track.Camera](track.KindCamera, track.CameraCodec{},
		discrete(track.Camera.Equals))
	if src != nil {
		st.read = func(*Settings) track.Camera { return src.Camera() }
	}
	return st
}

func NewRenderableTrack(src RenderSource) *SampleTrack[track.Renderable] {
	st := newSampleTrack[track.Renderable](track.KindRenderable, track.RenderableCodec{},
		discrete(track.Renderable.Equals))
	if src != nil {
		st.read = func(*Settings) track.Renderable {
			r := src.Renderable()
			if err := r.Validate(); err != nil {
				panic(fmt.Sprintf("recorder: трек %s: %v", track.KindRenderable, err))
			}
			return r
		}
	}
	return st
}
