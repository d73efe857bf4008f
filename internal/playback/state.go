package playback

import (
	"github.com/annel0/session-replay/internal/track"
	"github.com/annel0/session-replay/internal/vec"
)

// ObjectState восстановленное состояние объекта, которое хост переносит в сцену.
// Поля-указатели заданы только если у объекта есть соответствующий трек.
type ObjectState struct {
	Position vec.Vec3
	Rotation vec.Quat
	Scale    vec.Vec3

	// Exists ложно до первого семпла Lifetime
	Exists bool
	Active bool

	Light      *track.Light
	Camera     *track.Camera
	Renderable *RenderState
	Skeleton   *SkeletonState
}

// RenderState меш и материалы с разрешенными ассетами
type RenderState struct {
	track.Renderable
	Mesh      Asset
	Materials []Asset
}

// SkeletonState скелет с разрешенными ассетами и текущее состояние аниматора
type SkeletonState struct {
	Rig       track.Rig
	Skins     []Asset
	Animator  Asset
	Avatar    Asset
	Animation track.Animation
}

func defaultState() ObjectState {
	return ObjectState{
		Rotation: vec.IdentityQuat,
		Scale:    vec.One3,
		Exists:   true,
		Active:   true,
	}
}

// Visible объект существует и активен
func (s ObjectState) Visible() bool {
	return s.Exists && s.Active
}
