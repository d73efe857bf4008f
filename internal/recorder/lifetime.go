package recorder

import (
	"github.com/annel0/session-replay/internal/track"
)

// LifetimeTrack событийный трек активности объекта.
// Значение меняется только через Enable/Disable/Destroy; события вне
// интервала Start..End игнорируются.
type LifetimeTrack struct {
	*SampleTrack[bool]
	active bool
}

// NewLifetimeTrack active: состояние объекта на момент старта записи
func NewLifetimeTrack(active bool) *LifetimeTrack {
	lt := &LifetimeTrack{active: active}
	lt.SampleTrack = newSampleTrack[bool](track.KindLifetime, track.BoolCodec{},
		discrete(func(a, b bool) bool { return a == b }))
	lt.read = func(*Settings) bool { return lt.active }
	return lt
}

// UpdateRecording ничего не делает: трек пишется по событиям
func (lt *LifetimeTrack) UpdateRecording(float64, float64) {}

// Enable объект стал активным в момент t
func (lt *LifetimeTrack) Enable(t float64) { lt.set(t, true) }

// Disable объект стал неактивным в момент t
func (lt *LifetimeTrack) Disable(t float64) { lt.set(t, false) }

// Destroy объект уничтожен в момент t
func (lt *LifetimeTrack) Destroy(t float64) { lt.set(t, false) }

func (lt *LifetimeTrack) set(t float64, active bool) {
	lt.active = active
	if !lt.recording || lt.samples[len(lt.samples)-1].Value == active {
		return
	}
	lt.append(t, active)
}

// Active текущее состояние
func (lt *LifetimeTrack) Active() bool { return lt.active }
