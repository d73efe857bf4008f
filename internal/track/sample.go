package track

import (
	"fmt"
	"strconv"
	"strings"
)

// Delimiter разделитель полей строки лога
const Delimiter = "~"

// Sample одна точка данных трека
type Sample[T any] struct {
	Time  float64
	Value T
}

// Codec переводит полезную нагрузку в поля строки и обратно.
// Поля не содержат отметку времени: она всегда первая и пишется отдельно.
type Codec[T any] interface {
	Encode(v T, prec int) []string
	Decode(fields []string) (T, error)
}

// FormatFloat фиксированная точка с prec знаками
func FormatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// EncodeSamples сериализует буфер в строки "<t>~f1~f2..." с завершающим \n
func EncodeSamples[T any](samples []Sample[T], c Codec[T], prec int) string {
	var b strings.Builder
	for _, s := range samples {
		b.WriteString(FormatFloat(s.Time, prec))
		for _, f := range c.Encode(s.Value, prec) {
			b.WriteString(Delimiter)
			b.WriteString(f)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// DecodeLine разбирает одну строку семпла
func DecodeLine[T any](line string, c Codec[T]) (Sample[T], error) {
	fields := strings.Split(strings.TrimSpace(line), Delimiter)
	t, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return Sample[T]{}, fmt.Errorf("отметка времени %q: %w", fields[0], err)
	}
	v, err := c.Decode(fields[1:])
	if err != nil {
		return Sample[T]{}, err
	}
	return Sample[T]{Time: t, Value: v}, nil
}

// DecodeSamples разбирает тело трека. Пустые строки пропускаются;
// пустое тело: ошибка, трек не бывает пустым.
func DecodeSamples[T any](data string, c Codec[T]) ([]Sample[T], error) {
	var out []Sample[T]
	for i, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		s, err := DecodeLine(line, c)
		if err != nil {
			return nil, fmt.Errorf("строка %d: %w", i+1, err)
		}
		if n := len(out); n > 0 && s.Time < out[n-1].Time {
			return nil, fmt.Errorf("строка %d: время %.6f меньше предыдущего %.6f", i+1, s.Time, out[n-1].Time)
		}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("трек не содержит семплов")
	}
	return out, nil
}

func wantFields(fields []string, n int) error {
	if len(fields) != n {
		return fmt.Errorf("ожидалось %d полей, получено %d", n, len(fields))
	}
	return nil
}
