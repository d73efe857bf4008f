package playback

import (
	"math"

	"github.com/annel0/session-replay/internal/vec"
	"github.com/google/uuid"
)

// ObjectSet объекты одного лога
type ObjectSet struct {
	ID     string
	Name   string
	Static bool

	visible  bool
	outline  *vec.Color
	objects  []*Object
	earliest float64
	latest   float64
}

// NewObjectSet создает видимый набор с новым UUID
func NewObjectSet(name string, static bool, objects []*Object) *ObjectSet {
	s := &ObjectSet{
		ID:       uuid.NewString(),
		Name:     name,
		Static:   static,
		visible:  true,
		objects:  objects,
		earliest: math.Inf(1),
		latest:   math.Inf(-1),
	}
	for _, o := range objects {
		s.earliest = math.Min(s.earliest, o.Earliest())
		s.latest = math.Max(s.latest, o.Latest())
	}
	if len(objects) == 0 {
		s.earliest, s.latest = 0, 0
	}
	return s
}

func (s *ObjectSet) Objects() []*Object { return s.objects }

// Empty набор из лога без объектов; его границы 0, 0 не учитываются плеером
func (s *ObjectSet) Empty() bool { return len(s.objects) == 0 }

// Earliest самое раннее время по всем трекам набора
func (s *ObjectSet) Earliest() float64 { return s.earliest }

// Latest самое позднее время по всем трекам набора
func (s *ObjectSet) Latest() float64 { return s.latest }

func (s *ObjectSet) Visible() bool { return s.visible }

func (s *ObjectSet) SetVisible(v bool) { s.visible = v }

// Outline цвет подсветки набора, nil: без подсветки
func (s *ObjectSet) Outline() *vec.Color { return s.outline }

func (s *ObjectSet) SetOutline(c *vec.Color) { s.outline = c }

// Find объект по полному имени "<name><unique_id>"
func (s *ObjectSet) Find(fullName string) (*Object, bool) {
	for _, o := range s.objects {
		if o.FullName() == fullName {
			return o, true
		}
	}
	return nil, false
}

// Evaluate вычисляет все объекты на момент t и возвращает число промахов поиска
func (s *ObjectSet) Evaluate(t float64) uint64 {
	var misses uint64
	for _, o := range s.objects {
		misses += o.Evaluate(t)
	}
	return misses
}

// Reset сбрасывает курсоры всех треков набора
func (s *ObjectSet) Reset() {
	for _, o := range s.objects {
		o.Reset()
	}
}
