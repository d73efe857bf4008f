package playback

import (
	"strings"

	"github.com/annel0/session-replay/internal/track"
	"github.com/annel0/session-replay/internal/vec"
)

// Constructor строит трек из тела TRK_START..TRK_END
type Constructor func(body string, assets AssetResolver) (Track, error)

// Registry отображает имя трека из лога на конструктор
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry реестр со всеми встроенными видами треков
func NewRegistry() *Registry {
	r := &Registry{ctors: make(map[string]Constructor)}
	r.Register(track.KindPosition.String(), newPositionTrack)
	r.Register(track.KindRotation.String(), newRotationTrack)
	r.Register(track.KindScale.String(), newScaleTrack)
	r.Register(track.KindLifetime.String(), newLifetimeTrack)
	r.Register(track.KindLight.String(), newLightTrack)
	r.Register(track.KindCamera.String(), newCameraTrack)
	r.Register(track.KindRenderable.String(), newRenderableTrack)
	r.Register(track.KindSkeletal.String(), newSkeletalTrack)
	return r
}

// Register добавляет или заменяет конструктор
func (r *Registry) Register(name string, c Constructor) {
	r.ctors[name] = c
}

// Lookup ищет конструктор по имени
func (r *Registry) Lookup(name string) (Constructor, bool) {
	c, ok := r.ctors[name]
	return c, ok
}

//================ Встроенные конструкторы =================//

func newPositionTrack(body string, _ AssetResolver) (Track, error) {
	samples, err := track.DecodeSamples(body, track.Vec3Codec{})
	if err != nil {
		return nil, err
	}
	st := newSampleTrack(track.KindPosition, samples)
	st.interp = vec.Vec3.Lerp
	st.apply = func(s *ObjectState, v vec.Vec3) { s.Position = v }
	return st, nil
}

func newRotationTrack(body string, _ AssetResolver) (Track, error) {
	samples, err := track.DecodeSamples(body, track.QuatCodec{})
	if err != nil {
		return nil, err
	}
	st := newSampleTrack(track.KindRotation, samples)
	st.interp = vec.Quat.Slerp
	st.apply = func(s *ObjectState, q vec.Quat) { s.Rotation = q }
	return st, nil
}

func newScaleTrack(body string, _ AssetResolver) (Track, error) {
	samples, err := track.DecodeSamples(body, track.Vec3Codec{})
	if err != nil {
		return nil, err
	}
	st := newSampleTrack(track.KindScale, samples)
	st.interp = vec.Vec3.Lerp
	st.apply = func(s *ObjectState, v vec.Vec3) { s.Scale = v }
	return st, nil
}

// newLifetimeTrack до первого семпла объект не существует
func newLifetimeTrack(body string, _ AssetResolver) (Track, error) {
	samples, err := track.DecodeSamples(body, track.BoolCodec{})
	if err != nil {
		return nil, err
	}
	st := newSampleTrack(track.KindLifetime, samples)
	st.sentinel = true
	st.apply = func(s *ObjectState, active bool) {
		s.Exists = true
		s.Active = active
	}
	st.onBefore = func(s *ObjectState) {
		s.Exists = false
		s.Active = false
	}
	return st, nil
}

func newLightTrack(body string, _ AssetResolver) (Track, error) {
	samples, err := track.DecodeSamples(body, track.LightCodec{})
	if err != nil {
		return nil, err
	}
	st := newSampleTrack(track.KindLight, samples)
	st.apply = func(s *ObjectState, l track.Light) { s.Light = &l }
	return st, nil
}

func newCameraTrack(body string, _ AssetResolver) (Track, error) {
	samples, err := track.DecodeSamples(body, track.CameraCodec{})
	if err != nil {
		return nil, err
	}
	st := newSampleTrack(track.KindCamera, samples)
	st.apply = func(s *ObjectState, c track.Camera) { s.Camera = &c }
	return st, nil
}

// newRenderableTrack разрешает все меши и материалы заранее: ошибка ассета
// проваливает загрузку, а не кадр воспроизведения
func newRenderableTrack(body string, assets AssetResolver) (Track, error) {
	samples, err := track.DecodeSamples(body, track.RenderableCodec{})
	if err != nil {
		return nil, err
	}

	resolved := make([]*RenderState, len(samples))
	cache := make(map[string]Asset)
	resolve := func(path string) (Asset, error) {
		if path == "" {
			return Asset{}, nil
		}
		if a, ok := cache[path]; ok {
			return a, nil
		}
		a, err := assets.Resolve(path)
		if err != nil {
			return Asset{}, err
		}
		cache[path] = a
		return a, nil
	}

	for i, s := range samples {
		rs := &RenderState{Renderable: s.Value}
		if rs.Mesh, err = resolve(s.Value.Mesh); err != nil {
			return nil, err
		}
		for _, m := range s.Value.Materials {
			a, err := resolve(m)
			if err != nil {
				return nil, err
			}
			rs.Materials = append(rs.Materials, a)
		}
		resolved[i] = rs
	}

	idx := make([]track.Sample[int], len(samples))
	for i, s := range samples {
		idx[i] = track.Sample[int]{Time: s.Time, Value: i}
	}
	st := newSampleTrack(track.KindRenderable, idx)
	st.apply = func(s *ObjectState, i int) { s.Renderable = resolved[i] }
	return st, nil
}

// newSkeletalTrack первая строка: заголовок SKELETON, дальше поток аниматора.
// NormalizedTime интерполируется только внутри одного состояния аниматора.
func newSkeletalTrack(body string, assets AssetResolver) (Track, error) {
	header, stream, _ := strings.Cut(body, "\n")
	rig, err := track.DecodeRig(header)
	if err != nil {
		return nil, err
	}
	samples, err := track.DecodeSamples(stream, track.AnimationCodec{})
	if err != nil {
		return nil, err
	}

	sk := &SkeletonState{Rig: rig}
	for _, skin := range rig.Skins {
		a, err := assets.Resolve(skin.Mesh)
		if err != nil {
			return nil, err
		}
		sk.Skins = append(sk.Skins, a)
	}
	if rig.Animator != "" {
		if sk.Animator, err = assets.Resolve(rig.Animator); err != nil {
			return nil, err
		}
	}
	if rig.Avatar != "" {
		if sk.Avatar, err = assets.Resolve(rig.Avatar); err != nil {
			return nil, err
		}
	}

	st := newSampleTrack(track.KindSkeletal, samples)
	st.interp = func(a, b track.Animation, f float64) track.Animation {
		if a.StateHash != b.StateHash {
			return a
		}
		return track.Animation{
			StateHash:      a.StateHash,
			NormalizedTime: a.NormalizedTime + (b.NormalizedTime-a.NormalizedTime)*f,
		}
	}
	st.apply = func(s *ObjectState, a track.Animation) {
		cp := *sk
		cp.Animation = a
		s.Skeleton = &cp
	}
	return st, nil
}
