package recorder

import (
	"github.com/annel0/session-replay/internal/track"
	"github.com/annel0/session-replay/internal/vec"
)

// Источники живого состояния, реализуемые хост-движком.

// Transform трансформация объекта сцены
type Transform interface {
	Position(space Space) vec.Vec3
	Rotation(space Space) vec.Quat
	Scale(space Space) vec.Vec3
}

type LightSource interface {
	Light() track.Light
}

type CameraSource interface {
	Camera() track.Camera
}

type RenderSource interface {
	Renderable() track.Renderable
}

// AnimatorSource скелет снимается один раз при старте, состояние аниматора: каждый кадр
type AnimatorSource interface {
	Rig() track.Rig
	Animation() track.Animation
}
