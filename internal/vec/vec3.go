package vec

import "math"

// Vec3 трехмерный вектор с плавающими координатами (позиция, масштаб)
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Zero3 нулевой вектор
var Zero3 = Vec3{}

// One3 единичный масштаб
var One3 = Vec3{X: 1, Y: 1, Z: 1}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec3) Mul(scalar float64) Vec3 {
	return Vec3{X: v.X * scalar, Y: v.Y * scalar, Z: v.Z * scalar}
}

// Length возвращает длину вектора
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceTo возвращает евклидово расстояние до другого вектора
func (v Vec3) DistanceTo(other Vec3) float64 {
	return v.Sub(other).Length()
}

// Lerp линейно интерполирует между v и other. t не ограничивается.
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (other.X-v.X)*t,
		Y: v.Y + (other.Y-v.Y)*t,
		Z: v.Z + (other.Z-v.Z)*t,
	}
}

// Equals проверяет точное равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Approx сравнивает покомпонентно с допуском eps
func (v Vec3) Approx(other Vec3, eps float64) bool {
	return math.Abs(v.X-other.X) <= eps &&
		math.Abs(v.Y-other.Y) <= eps &&
		math.Abs(v.Z-other.Z) <= eps
}

// Format возвращает текстовую форму "(x, y, z)" с prec знаками после запятой
func (v Vec3) Format(prec int) string {
	return formatComponents(prec, v.X, v.Y, v.Z)
}

// String использует точность по умолчанию
func (v Vec3) String() string {
	return v.Format(DefaultPrecision)
}

// ParseVec3 разбирает строку вида "(x, y, z)"
func ParseVec3(s string) (Vec3, error) {
	c, err := parseComponents(s, 3)
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}
