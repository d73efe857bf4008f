// Package playback восстанавливает состояние объектов из логов сессии в
// произвольный момент времени.
//
// Player, наборы объектов и треки не безопасны для конкурентного
// использования. Курсор поиска принадлежит треку: два логических
// вызывающих (ручная перемотка и автопроигрывание) в одном кадре сбивают
// друг другу локальность, для этого есть Track.Reset.
package playback

import (
	"github.com/annel0/session-replay/internal/timeline"
	"github.com/annel0/session-replay/internal/track"
)

// Track трек воспроизведения: неизменяемые семплы и собственный курсор
type Track interface {
	Kind() track.Kind
	Len() int
	Earliest() float64
	Latest() float64
	// Apply вычисляет значение в момент t и записывает его в st
	Apply(t float64, st *ObjectState)
	// Reset возвращает курсор поиска к началу
	Reset()
	// Misses сколько раз поиск не нашел сегмент
	Misses() uint64
}

// sampleTrack общий трек над буфером семплов одного типа
type sampleTrack[T any] struct {
	kind     track.Kind
	times    []float64
	values   []T
	cursor   *timeline.Cursor
	sentinel bool
	// interp nil: ступенчатое значение (предыдущий семпл)
	interp   func(a, b T, f float64) T
	apply    func(st *ObjectState, v T)
	onBefore func(st *ObjectState)
}

func newSampleTrack[T any](kind track.Kind, samples []track.Sample[T]) *sampleTrack[T] {
	st := &sampleTrack[T]{
		kind:   kind,
		times:  make([]float64, len(samples)),
		values: make([]T, len(samples)),
		cursor: timeline.NewCursor(),
	}
	for i, s := range samples {
		st.times[i] = s.Time
		st.values[i] = s.Value
	}
	return st
}

func (st *sampleTrack[T]) Kind() track.Kind  { return st.kind }
func (st *sampleTrack[T]) Len() int          { return len(st.times) }
func (st *sampleTrack[T]) Earliest() float64 { return st.times[0] }
func (st *sampleTrack[T]) Latest() float64   { return st.times[len(st.times)-1] }
func (st *sampleTrack[T]) Reset()            { st.cursor.Reset() }
func (st *sampleTrack[T]) Misses() uint64    { return st.cursor.Misses() }

// Evaluate значение в момент t. ok == false только для трека с сентинелом
// при t раньше первого семпла.
func (st *sampleTrack[T]) Evaluate(t float64) (v T, ok bool) {
	i := st.cursor.Search(st.times, t, st.sentinel)
	if i == timeline.Before {
		return v, false
	}
	if st.interp == nil || i >= len(st.times)-1 {
		return st.values[i], true
	}
	f := timeline.InverseLerp(st.times[i], st.times[i+1], t)
	return st.interp(st.values[i], st.values[i+1], f), true
}

func (st *sampleTrack[T]) Apply(t float64, state *ObjectState) {
	v, ok := st.Evaluate(t)
	if !ok {
		if st.onBefore != nil {
			st.onBefore(state)
		}
		return
	}
	st.apply(state, v)
}
