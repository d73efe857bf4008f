package recorder

import (
	"fmt"
	"sort"

	"github.com/annel0/session-replay/internal/logformat"
)

type objectState int

const (
	stateUnregistered objectState = iota
	stateRecording
	stateDone
)

// Object записываемый объект сцены: фиксированный набор треков и трек жизненного цикла
type Object struct {
	Name   string
	Static bool
	Key    bool

	id       string
	tracks   []TrackRecorder
	lifetime *LifetimeTrack
	session  *Session
	state    objectState
}

// NewObject создает объект с треком жизненного цикла. Остальные треки
// добавляются через AddTrack до регистрации в сессии.
func NewObject(name string) *Object {
	o := &Object{Name: name, lifetime: NewLifetimeTrack(true)}
	o.tracks = append(o.tracks, o.lifetime)
	return o
}

// NewTransformObject объект с треками позиции, вращения и масштаба
func NewTransformObject(name string, tr Transform) *Object {
	return NewObject(name).
		AddTrack(NewPositionTrack(tr)).
		AddTrack(NewRotationTrack(tr)).
		AddTrack(NewScaleTrack(tr))
}

// AddTrack добавляет трек. Набор треков фиксируется при регистрации.
func (o *Object) AddTrack(t TrackRecorder) *Object {
	if o.state != stateUnregistered {
		panic(fmt.Sprintf("recorder: объект %s уже зарегистрирован", o.Name))
	}
	o.tracks = append(o.tracks, t)
	return o
}

// UniqueID идентификатор "_<N>", пустой до регистрации
func (o *Object) UniqueID() string { return o.id }

// Tracks треки объекта в порядке записи
func (o *Object) Tracks() []TrackRecorder { return o.tracks }

// Lifetime трек жизненного цикла
func (o *Object) Lifetime() *LifetimeTrack { return o.lifetime }

// IsRecording объект зарегистрирован и еще пишет семплы
func (o *Object) IsRecording() bool { return o.state == stateRecording }

// prepare привязывает треки к настройкам сессии и упорядочивает их по виду
func (o *Object) prepare(s *Settings) error {
	seen := make(map[string]bool, len(o.tracks))
	for _, t := range o.tracks {
		name := t.Kind().String()
		if seen[name] {
			return fmt.Errorf("объект %s: трек %s добавлен дважды", o.Name, name)
		}
		seen[name] = true
		t.Bind(s)
	}
	sort.SliceStable(o.tracks, func(i, j int) bool {
		return o.tracks[i].Kind() < o.tracks[j].Kind()
	})
	return nil
}

func (o *Object) StartRecording(t float64) {
	for _, tr := range o.tracks {
		tr.StartRecording(t)
	}
	o.state = stateRecording
}

func (o *Object) UpdateRecording(t, dt float64) {
	if o.state != stateRecording {
		return
	}
	for _, tr := range o.tracks {
		tr.UpdateRecording(t, dt)
	}
}

func (o *Object) EndRecording(t float64) {
	if o.state != stateRecording {
		return
	}
	for _, tr := range o.tracks {
		tr.EndRecording(t)
	}
	o.state = stateDone
}

// seal завершает запись статического объекта без финального семпла
func (o *Object) seal() {
	o.lifetime.recording = false
	o.state = stateDone
}

// Enable событие активации; вне записи игнорируется
func (o *Object) Enable() {
	if o.state == stateRecording {
		o.lifetime.Enable(o.session.CurrentTime())
	}
}

// Disable событие деактивации; вне записи игнорируется
func (o *Object) Disable() {
	if o.state == stateRecording {
		o.lifetime.Disable(o.session.CurrentTime())
	}
}

// Destroy фиксирует уничтожение в момент t: lifetime=false, финальные семплы
// и передача текста в сессию. Для объекта, не начавшего запись, ничего не делает.
func (o *Object) Destroy(t float64) {
	if o.state != stateRecording {
		return
	}
	o.lifetime.Destroy(t)
	o.EndRecording(t)
	o.session.MarkObjectDoneRecording(o)
	o.session.forget(o)
}

// Header заголовок объекта в логе
func (o *Object) Header() logformat.ObjectHeader {
	return logformat.ObjectHeader{Name: o.Name, ID: o.id, Key: o.Key}
}

// Data текст объекта в формате лога
func (o *Object) Data() string {
	var w logformat.Writer
	h := o.Header()
	w.BeginObject(h)
	for _, tr := range o.tracks {
		w.Track(tr.Kind().String(), tr.Data())
	}
	w.EndObject(h)
	return w.String()
}
