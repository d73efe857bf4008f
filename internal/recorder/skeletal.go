package recorder

import (
	"fmt"
	"math"
	"strings"

	"github.com/annel0/session-replay/internal/track"
)

// SkeletalTrack пишет блок настройки скелета (иерархия костей, привязки
// скинов, ссылки на аниматор и аватар) и поток состояний аниматора.
// Политика записи действует только на поток.
type SkeletalTrack struct {
	*SampleTrack[track.Animation]
	src AnimatorSource
	rig track.Rig
}

// NewSkeletalTrack поток меняется при смене состояния аниматора или при
// расхождении normalized time не меньше ChangeMinThreshold
func NewSkeletalTrack(src AnimatorSource) *SkeletalTrack {
	sk := &SkeletalTrack{src: src}
	sk.SampleTrack = newSampleTrack[track.Animation](track.KindSkeletal, track.AnimationCodec{},
		func(s *Settings, prev, cur track.Animation) (bool, bool) {
			if prev.StateHash != cur.StateHash {
				return true, false
			}
			return math.Abs(cur.NormalizedTime-prev.NormalizedTime) >= s.ChangeMinThreshold, false
		})
	if src != nil {
		sk.read = func(*Settings) track.Animation { return src.Animation() }
	}
	return sk
}

// StartRecording снимает скелет один раз и начинает поток
func (sk *SkeletalTrack) StartRecording(t float64) {
	if sk.src == nil {
		panic("recorder: скелетный трек не привязан к аниматору")
	}
	rig := sk.src.Rig()
	if err := rig.Validate(); err != nil {
		panic(fmt.Sprintf("recorder: некорректный скелет: %v", err))
	}
	sk.rig = rig
	sk.SampleTrack.StartRecording(t)
}

// Rig снятый при старте скелет
func (sk *SkeletalTrack) Rig() track.Rig { return sk.rig }

func (sk *SkeletalTrack) Data() string {
	body := sk.SampleTrack.Data()
	header, err := track.EncodeRig(sk.rig)
	if err != nil {
		panic(fmt.Sprintf("recorder: %v", err))
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	b.WriteString(body)
	return b.String()
}
