package vec

// Color RGBA в линейном диапазоне 0..1
type Color struct {
	R, G, B, A float64
}

var (
	White = Color{R: 1, G: 1, B: 1, A: 1}
	Black = Color{A: 1}
)

func (c Color) Equals(o Color) bool {
	return c.R == o.R && c.G == o.G && c.B == o.B && c.A == o.A
}

// Format возвращает "(r, g, b, a)"
func (c Color) Format(prec int) string {
	return formatComponents(prec, c.R, c.G, c.B, c.A)
}

func (c Color) String() string {
	return c.Format(DefaultPrecision)
}

// ParseColor разбирает "(r, g, b, a)"
func ParseColor(s string) (Color, error) {
	v, err := parseComponents(s, 4)
	if err != nil {
		return Color{}, err
	}
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
}
