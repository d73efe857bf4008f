package demo

import (
	"github.com/aquilax/go-perlin"
)

// Noise генератор шума Перлина для траекторий демонстрационной сцены
type Noise struct {
	p *perlin.Perlin
}

// NewNoise инициализирует генератор шума Перлина с указанным сидом
func NewNoise(seed int64) *Noise {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return &Noise{p: perlin.NewPerlin(alpha, beta, n, seed)}
}

// At возвращает значение шума для указанных координат (от -1 до 1)
func (n *Noise) At(x, y float64) float64 {
	return n.p.Noise2D(x, y)
}

// At01 возвращает значение шума в диапазоне от 0 до 1
func (n *Noise) At01(x, y float64) float64 {
	return (n.At(x, y) + 1.0) / 2.0
}
