package playback

import (
	"errors"
	"math"

	"github.com/annel0/session-replay/internal/logformat"
	"github.com/annel0/session-replay/internal/track"
)

// Object объект воспроизведения: треки одного OBJ_START..OBJ_END
type Object struct {
	logformat.ObjectHeader

	tracks []Track
	state  ObjectState
	misses uint64
}

// Generate строит объекты из разобранных записей. Первая же ошибка
// возвращается как *GenerateError, частичный результат отбрасывается.
func Generate(records []logformat.ObjectRecord, reg *Registry, assets AssetResolver) ([]*Object, error) {
	objects := make([]*Object, 0, len(records))
	for _, rec := range records {
		o, err := newObject(rec, reg, assets)
		if err != nil {
			return nil, err
		}
		objects = append(objects, o)
	}
	return objects, nil
}

func newObject(rec logformat.ObjectRecord, reg *Registry, assets AssetResolver) (*Object, error) {
	o := &Object{ObjectHeader: rec.ObjectHeader, state: defaultState()}
	if len(rec.Order) == 0 {
		return nil, &GenerateError{Object: rec.FullName(), Err: errors.New("объект без треков")}
	}

	for _, name := range rec.Order {
		ctor, ok := reg.Lookup(name)
		if !ok {
			return nil, &GenerateError{Object: rec.FullName(), Track: name, Err: errors.New("неизвестный вид трека")}
		}
		tr, err := ctor(rec.Tracks[name], assets)
		if err != nil {
			return nil, &GenerateError{Object: rec.FullName(), Track: name, Err: err}
		}
		o.tracks = append(o.tracks, tr)
	}
	return o, nil
}

// Tracks треки в порядке лога
func (o *Object) Tracks() []Track { return o.tracks }

// Track трек указанного вида
func (o *Object) Track(kind track.Kind) (Track, bool) {
	for _, t := range o.tracks {
		if t.Kind() == kind {
			return t, true
		}
	}
	return nil, false
}

// Earliest минимальное время первого семпла по всем трекам
func (o *Object) Earliest() float64 {
	v := math.Inf(1)
	for _, t := range o.tracks {
		v = math.Min(v, t.Earliest())
	}
	return v
}

// Latest максимальное время последнего семпла по всем трекам
func (o *Object) Latest() float64 {
	v := math.Inf(-1)
	for _, t := range o.tracks {
		v = math.Max(v, t.Latest())
	}
	return v
}

// Evaluate обновляет состояние на момент t. Возвращает число новых промахов поиска.
func (o *Object) Evaluate(t float64) uint64 {
	for _, tr := range o.tracks {
		tr.Apply(t, &o.state)
	}

	var total uint64
	for _, tr := range o.tracks {
		total += tr.Misses()
	}
	fresh := total - o.misses
	o.misses = total
	return fresh
}

// State последнее вычисленное состояние
func (o *Object) State() ObjectState { return o.state }

// Reset сбрасывает курсоры всех треков
func (o *Object) Reset() {
	for _, tr := range o.tracks {
		tr.Reset()
	}
}
