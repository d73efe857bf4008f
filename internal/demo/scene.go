// Package demo: синтетическая сцена для replayctl record: движущиеся по
// шуму Перлина тела, статический пол и лампа, камера, анимированный персонаж
// и снаряды, которые появляются и уничтожаются посреди записи.
package demo

import (
	"fmt"
	"math"

	"github.com/annel0/session-replay/internal/recorder"
	"github.com/annel0/session-replay/internal/track"
	"github.com/annel0/session-replay/internal/vec"
)

// Body тело сцены; реализует recorder.Transform и источники состояния
type Body struct {
	parent   *Body
	position vec.Vec3
	rotation vec.Quat
	scale    vec.Vec3

	light      track.Light
	camera     track.Camera
	renderable track.Renderable
	rig        track.Rig
	animation  track.Animation

	phase float64
}

func newBody(pos vec.Vec3) *Body {
	return &Body{position: pos, rotation: vec.IdentityQuat, scale: vec.One3}
}

// Position в мировом пространстве учитывает сдвиг родителя
func (b *Body) Position(space recorder.Space) vec.Vec3 {
	if space == recorder.World && b.parent != nil {
		return b.parent.Position(space).Add(b.position)
	}
	return b.position
}

func (b *Body) Rotation(recorder.Space) vec.Quat { return b.rotation }
func (b *Body) Scale(recorder.Space) vec.Vec3    { return b.scale }

func (b *Body) Light() track.Light           { return b.light }
func (b *Body) Camera() track.Camera         { return b.camera }
func (b *Body) Renderable() track.Renderable { return b.renderable }
func (b *Body) Rig() track.Rig               { return b.rig }
func (b *Body) Animation() track.Animation   { return b.animation }

// Options параметры сцены
type Options struct {
	Seed     int64
	Movers   int
	Radius   float64 // радиус блуждания тел
	FireAt   float64 // период выстрелов снарядов, 0: без снарядов
	Lifespan float64
}

// DefaultOptions четыре тела, снаряд каждые 1.5 секунды
func DefaultOptions() Options {
	return Options{Seed: 1, Movers: 4, Radius: 10, FireAt: 1.5, Lifespan: 1}
}

type projectile struct {
	body   *Body
	object *recorder.Object
	diesAt float64
	vel    vec.Vec3
}

// Scene набор тел и их объектов записи
type Scene struct {
	opts  Options
	noise *Noise
	sess  *recorder.Session

	movers      []*Body
	hero        *Body
	camera      *Body
	projectiles []*projectile
	nextShot    float64
	shots       int
	time        float64
}

// NewScene создает тела сцены; объекты записи создаются в Populate
func NewScene(opts Options) *Scene {
	s := &Scene{opts: opts, noise: NewNoise(opts.Seed), nextShot: opts.FireAt}
	for i := 0; i < opts.Movers; i++ {
		b := newBody(vec.Zero3)
		b.phase = float64(i) * 7.31
		b.renderable = track.Renderable{
			Color:     vec.Color{R: 0.2 + 0.2*float64(i%4), G: 0.5, B: 0.8, A: 1},
			Mesh:      "Meshes/Crate",
			Materials: []string{"Materials/Wood"},
		}
		s.movers = append(s.movers, b)
	}

	s.hero = newBody(vec.Vec3{Z: -3})
	s.hero.rig = heroRig()
	s.hero.animation = track.Animation{StateHash: stateIdle}

	// Камера следует за персонажем: локальная позиция задана относительно него
	s.camera = newBody(vec.Vec3{Y: 4, Z: -12})
	s.camera.parent = s.hero
	s.camera.camera = track.Camera{FOV: 60, Near: 0.3, Far: 1000}
	return s
}

// Populate добавляет объекты сцены в сессию
func (s *Scene) Populate(sess *recorder.Session) {
	s.sess = sess

	floor := newBody(vec.Vec3{Y: -0.5})
	floor.scale = vec.Vec3{X: 50, Y: 1, Z: 50}
	floor.renderable = track.Renderable{Color: vec.White, Mesh: "Meshes/Plane", Materials: []string{"Materials/Ground"}}
	obj := recorder.NewTransformObject("Floor", floor).AddTrack(recorder.NewRenderableTrack(floor))
	obj.Static = true
	sess.Add(obj)

	lamp := newBody(vec.Vec3{Y: 6})
	lamp.light = track.Light{Type: track.LightPoint, Color: vec.Color{R: 1, G: 0.95, B: 0.8, A: 1}, Intensity: 3}
	obj = recorder.NewTransformObject("Lamp", lamp).AddTrack(recorder.NewLightTrack(lamp))
	obj.Static = true
	sess.Add(obj)

	for i, b := range s.movers {
		obj := recorder.NewTransformObject(fmt.Sprintf("Crate%d", i), b).
			AddTrack(recorder.NewRenderableTrack(b))
		sess.Add(obj)
	}

	obj = recorder.NewTransformObject("Hero", s.hero).AddTrack(recorder.NewSkeletalTrack(s.hero))
	obj.Key = true
	sess.Add(obj)

	sess.Add(recorder.NewTransformObject("MainCamera", s.camera).AddTrack(recorder.NewCameraTrack(s.camera)))
}

// Time время сцены
func (s *Scene) Time() float64 { return s.time }

// Step двигает тела на dt. Должен вызываться до Session.UpdateRecording того же кадра.
func (s *Scene) Step(dt float64) {
	s.time += dt
	t := s.time

	for _, b := range s.movers {
		x := s.noise.At(t*0.3, b.phase) * s.opts.Radius
		z := s.noise.At(b.phase, t*0.3) * s.opts.Radius
		b.position = vec.Vec3{X: x, Z: z}
		b.rotation = vec.QuatFromAxisAngle(vec.Vec3{Y: 1}, t+b.phase)
		b.renderable.Color.A = 0.5 + 0.5*math.Round(s.noise.At01(t, b.phase))
	}

	s.stepHero(t, dt)
	s.camera.position = vec.Vec3{X: math.Sin(t*0.1) * 12, Y: 4, Z: math.Cos(t*0.1) * -12}
	if math.Mod(t, 5) < dt {
		s.camera.camera.FOV = 40 + 20*s.noise.At01(t, 0)
	}

	s.stepProjectiles(t, dt)
}

const (
	stateIdle int32 = 0x1d1e
	stateRun  int32 = 0x7a40
)

func (s *Scene) stepHero(t, dt float64) {
	h := s.hero
	running := math.Mod(t, 4) >= 2
	if running && h.animation.StateHash != stateRun {
		h.animation = track.Animation{StateHash: stateRun}
	} else if !running && h.animation.StateHash != stateIdle {
		h.animation = track.Animation{StateHash: stateIdle}
	}

	speed := 0.5
	if running {
		speed = 1.25
		h.position = h.position.Add(vec.Vec3{X: 2 * dt})
	}
	h.animation.NormalizedTime = math.Mod(h.animation.NormalizedTime+dt*speed, 1)
}

func (s *Scene) stepProjectiles(t, dt float64) {
	alive := s.projectiles[:0]
	for _, p := range s.projectiles {
		if t >= p.diesAt {
			p.object.Destroy(s.sess.CurrentTime() + dt)
			continue
		}
		p.body.position = p.body.position.Add(p.vel.Mul(dt))
		alive = append(alive, p)
	}
	s.projectiles = alive

	if s.opts.FireAt <= 0 || s.sess == nil || t < s.nextShot {
		return
	}
	s.nextShot += s.opts.FireAt

	b := newBody(s.hero.Position(recorder.World).Add(vec.Vec3{Y: 1}))
	b.scale = vec.Vec3{X: 0.2, Y: 0.2, Z: 0.2}
	obj := recorder.NewTransformObject(fmt.Sprintf("Projectile%d", s.shots), b)
	s.shots++
	s.sess.Add(obj)

	s.projectiles = append(s.projectiles, &projectile{
		body:   b,
		object: obj,
		diesAt: t + s.opts.Lifespan,
		vel:    vec.Vec3{X: 8 * math.Cos(t), Z: 8 * math.Sin(t)},
	})
}

// Record пишет duration секунд сцены с частотой fps
func Record(sess *recorder.Session, scene *Scene, duration float64, fps int) {
	if fps <= 0 {
		fps = 30
	}
	dt := 1 / float64(fps)

	scene.Populate(sess)
	sess.StartRecording()
	for sess.CurrentTime() < duration-1e-9 {
		scene.Step(dt)
		sess.UpdateRecording(dt, dt)
	}
	sess.StopRecording()
}

func heroRig() track.Rig {
	bones := []track.Bone{
		{Name: "Hips", Parent: -1, Position: vec.Vec3{Y: 1}},
		{Name: "Spine", Parent: 0, Position: vec.Vec3{Y: 0.25}},
		{Name: "Head", Parent: 1, Position: vec.Vec3{Y: 0.5}},
		{Name: "LeftLeg", Parent: 0, Position: vec.Vec3{X: -0.15}},
		{Name: "RightLeg", Parent: 0, Position: vec.Vec3{X: 0.15}},
	}
	for i := range bones {
		bones[i].Rotation = vec.IdentityQuat
		bones[i].Scale = vec.One3
	}
	return track.Rig{
		Bones:    bones,
		Skins:    []track.Skin{{Mesh: "Meshes/HeroBody", Materials: []string{"Materials/Skin"}, Bones: []int{0, 1, 2, 3, 4}}},
		Animator: "Controllers/Hero",
		Avatar:   "Avatars/Humanoid",
	}
}
