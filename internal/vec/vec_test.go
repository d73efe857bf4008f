package vec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec3_FormatAndParse(t *testing.T) {
	v := Vec3{X: 1.23456, Y: -2, Z: 0.5}

	s := v.Format(3)
	assert.Equal(t, "(1.235, -2.000, 0.500)", s)

	parsed, err := ParseVec3(s)
	require.NoError(t, err)
	assert.True(t, parsed.Approx(v, 0.0005), "разбор должен совпасть в пределах точности")
}

func TestParseVec3_Errors(t *testing.T) {
	cases := []string{"", "1, 2, 3", "(1, 2)", "(1, a, 3)", "(1, 2, 3"}
	for _, c := range cases {
		_, err := ParseVec3(c)
		assert.Error(t, err, "ожидалась ошибка для %q", c)
	}
}

func TestVec3_LerpAndDistance(t *testing.T) {
	a := Vec3{}
	b := Vec3{X: 10}

	assert.Equal(t, Vec3{X: 5}, a.Lerp(b, 0.5))
	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
	assert.InDelta(t, 10.0, a.DistanceTo(b), 1e-12)
}

func TestQuat_AngleTo(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{Y: 1}, math.Pi/2)

	assert.InDelta(t, 90.0, IdentityQuat.AngleTo(q), 1e-9)
	assert.InDelta(t, 0.0, q.AngleTo(q), 1e-6)
	// q и -q задают одно и то же вращение
	neg := Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
	assert.InDelta(t, 0.0, q.AngleTo(neg), 1e-6)
}

func TestQuat_SlerpEndpoints(t *testing.T) {
	a := IdentityQuat
	b := QuatFromAxisAngle(Vec3{Z: 1}, math.Pi/3)

	assert.Equal(t, a, a.Slerp(b, 0))
	assert.Equal(t, b, a.Slerp(b, 1))

	mid := a.Slerp(b, 0.5)
	assert.InDelta(t, 30.0, a.AngleTo(mid), 1e-6)
	assert.InDelta(t, 30.0, mid.AngleTo(b), 1e-6)
}

func TestQuat_SlerpShortestArc(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{Y: 1}, 0.1)
	b := QuatFromAxisAngle(Vec3{Y: 1}, 0.3)
	flipped := Quat{X: -b.X, Y: -b.Y, Z: -b.Z, W: -b.W}

	mid := a.Slerp(flipped, 0.5)
	expected := QuatFromAxisAngle(Vec3{Y: 1}, 0.2)
	assert.InDelta(t, 0.0, mid.AngleTo(expected), 1e-6)
}

func TestColor_RoundTrip(t *testing.T) {
	c := Color{R: 0.25, G: 0.5, B: 0.75, A: 1}
	parsed, err := ParseColor(c.Format(3))
	require.NoError(t, err)
	assert.True(t, c.Equals(parsed))
}
