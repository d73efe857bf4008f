package vec

import "math"

// Quat кватернион вращения (x, y, z, w)
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat вращение "без поворота"
var IdentityQuat = Quat{W: 1}

// QuatFromAxisAngle строит вращение вокруг оси axis на angle радиан
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	l := axis.Length()
	if l == 0 {
		return IdentityQuat
	}
	s := math.Sin(angle/2) / l
	return Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: math.Cos(angle / 2)}
}

// Dot скалярное произведение
func (q Quat) Dot(o Quat) float64 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

// Normalized возвращает кватернион единичной длины
func (q Quat) Normalized() Quat {
	l := math.Sqrt(q.Dot(q))
	if l == 0 {
		return IdentityQuat
	}
	return Quat{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// AngleTo возвращает угол между вращениями в градусах (0..180)
func (q Quat) AngleTo(o Quat) float64 {
	d := math.Abs(q.Normalized().Dot(o.Normalized()))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d) * 180 / math.Pi
}

// Slerp сферическая интерполяция по кратчайшей дуге. t ограничивается [0, 1].
func (q Quat) Slerp(o Quat, t float64) Quat {
	if t <= 0 {
		return q
	}
	if t >= 1 {
		return o
	}

	a := q.Normalized()
	b := o.Normalized()
	cos := a.Dot(b)
	if cos < 0 {
		b = Quat{X: -b.X, Y: -b.Y, Z: -b.Z, W: -b.W}
		cos = -cos
	}

	// Почти совпадающие вращения: линейная интерполяция без деления на ~0
	if cos > 0.9995 {
		return Quat{
			X: a.X + (b.X-a.X)*t,
			Y: a.Y + (b.Y-a.Y)*t,
			Z: a.Z + (b.Z-a.Z)*t,
			W: a.W + (b.W-a.W)*t,
		}.Normalized()
	}

	theta := math.Acos(cos)
	sin := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sin
	wb := math.Sin(t*theta) / sin
	return Quat{
		X: a.X*wa + b.X*wb,
		Y: a.Y*wa + b.Y*wb,
		Z: a.Z*wa + b.Z*wb,
		W: a.W*wa + b.W*wb,
	}
}

// Equals проверяет точное равенство компонент
func (q Quat) Equals(o Quat) bool {
	return q.X == o.X && q.Y == o.Y && q.Z == o.Z && q.W == o.W
}

// Approx сравнивает покомпонентно с допуском eps
func (q Quat) Approx(o Quat, eps float64) bool {
	return math.Abs(q.X-o.X) <= eps && math.Abs(q.Y-o.Y) <= eps &&
		math.Abs(q.Z-o.Z) <= eps && math.Abs(q.W-o.W) <= eps
}

// Format возвращает "(x, y, z, w)"
func (q Quat) Format(prec int) string {
	return formatComponents(prec, q.X, q.Y, q.Z, q.W)
}

func (q Quat) String() string {
	return q.Format(DefaultPrecision)
}

// ParseQuat разбирает строку вида "(x, y, z, w)"
func ParseQuat(s string) (Quat, error) {
	c, err := parseComponents(s, 4)
	if err != nil {
		return Quat{}, err
	}
	return Quat{X: c[0], Y: c[1], Z: c[2], W: c[3]}, nil
}
