// Package timeline отображает непрерывное время воспроизведения на индекс
// дискретного семпла.
//
// Cursor хранит индекс и время последнего запроса и ищет от них в сторону
// движения времени, поэтому при плавном воспроизведении поиск завершается
// за O(1). Cursor не безопасен для конкурентного использования и не должен
// разделяться между двумя логическими вызывающими в одном кадре (например,
// ручной перемоткой и автопроигрыванием): каждый запрос сдвигает курсор.
package timeline

import "math"

// Before индекс-сентинел "объект еще не существует" для треков жизненного цикла
const Before = -1

// Cursor состояние инкрементального поиска
type Cursor struct {
	index  int
	time   float64
	primed bool
	misses uint64
}

// NewCursor возвращает сброшенный курсор
func NewCursor() *Cursor {
	return &Cursor{}
}

// Reset возвращает курсор к началу трека
func (c *Cursor) Reset() {
	c.index = 0
	c.time = 0
	c.primed = false
}

// Index индекс последнего запроса
func (c *Cursor) Index() int { return c.index }

// Misses сколько раз оба направленных поиска не нашли сегмент
func (c *Cursor) Misses() uint64 { return c.misses }

// Search возвращает индекс семпла, определяющего состояние в момент t.
// times: отметки времени семплов в неубывающем порядке.
//
//   - t >= times[n-1] → n-1;
//   - t < times[0]    → Before, если sentinel, иначе 0;
//   - иначе i такой, что times[i] <= t < times[i+1].
func (c *Cursor) Search(times []float64, t float64, sentinel bool) int {
	n := len(times)
	if n == 0 {
		return Before
	}

	if idx, ok := boundary(times, t, sentinel); ok {
		c.remember(idx, t)
		return idx
	}

	if !c.primed {
		idx := c.directional(times, t, 1)
		c.remember(idx, t)
		return idx
	}

	// NaN идет вперед и засчитывается как промах
	dir := 1
	switch d := t - c.time; {
	case d < 0:
		dir = -1
	case d == 0:
		return c.index
	}

	idx := c.directional(times, t, dir)
	c.remember(idx, t)
	return idx
}

// directional ищет сначала в направлении dir начиная с курсора (включительно),
// затем в обратную сторону, исключая курсор.
func (c *Cursor) directional(times []float64, t float64, dir int) int {
	start := c.index
	if start < 0 {
		start = 0
	}
	if start > len(times)-1 {
		start = len(times) - 1
	}

	if dir > 0 {
		if i, ok := scanForward(times, t, start); ok {
			return i
		}
		if i, ok := scanBackward(times, t, start-1); ok {
			return i
		}
	} else {
		if i, ok := scanBackward(times, t, start); ok {
			return i
		}
		if i, ok := scanForward(times, t, start+1); ok {
			return i
		}
	}

	// Не достижимо на монотонных данных с конечным t
	c.misses++
	return 0
}

func (c *Cursor) remember(idx int, t float64) {
	if idx < 0 {
		idx = 0
	}
	c.index = idx
	c.time = t
	c.primed = true
}

func boundary(times []float64, t float64, sentinel bool) (int, bool) {
	n := len(times)
	if t >= times[n-1] {
		return n - 1, true
	}
	if t < times[0] {
		if sentinel {
			return Before, true
		}
		return 0, true
	}
	return 0, false
}

func matches(times []float64, t float64, i int) bool {
	return i+1 < len(times) && times[i] <= t && t < times[i+1]
}

func scanForward(times []float64, t float64, from int) (int, bool) {
	for i := from; i < len(times)-1; i++ {
		if matches(times, t, i) {
			return i, true
		}
	}
	return 0, false
}

func scanBackward(times []float64, t float64, from int) (int, bool) {
	if from > len(times)-2 {
		from = len(times) - 2
	}
	for i := from; i >= 0; i-- {
		if matches(times, t, i) {
			return i, true
		}
	}
	return 0, false
}

// LinearSearch базовый O(n) поиск от начала трека с теми же граничными правилами
func LinearSearch(times []float64, t float64, sentinel bool) int {
	n := len(times)
	if n == 0 {
		return Before
	}
	if idx, ok := boundary(times, t, sentinel); ok {
		return idx
	}
	for i := 0; i < n-1; i++ {
		if matches(times, t, i) {
			return i
		}
	}
	return 0
}

// InverseLerp доля t на отрезке [a, b], ограниченная [0, 1]. При a == b дает 0.
func InverseLerp(a, b, t float64) float64 {
	if a == b {
		return 0
	}
	v := (t - a) / (b - a)
	return math.Max(0, math.Min(1, v))
}
