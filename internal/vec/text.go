package vec

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultPrecision число знаков после запятой в текстовой форме по умолчанию
const DefaultPrecision = 3

func formatComponents(prec int, values ...float64) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(v, 'f', prec, 64))
	}
	b.WriteByte(')')
	return b.String()
}

// parseComponents снимает скобки и делит строку по запятым.
// Количество компонент должно совпадать с want.
func parseComponents(s string, want int) ([]float64, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("ожидались скобки: %q", s)
	}

	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != want {
		return nil, fmt.Errorf("ожидалось %d компонент, получено %d: %q", want, len(parts), s)
	}

	out := make([]float64, want)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("компонента %d в %q: %w", i, s, err)
		}
		out[i] = v
	}
	return out, nil
}
