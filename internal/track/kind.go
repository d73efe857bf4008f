// Package track описывает общую для записи и воспроизведения раскладку семплов:
// виды треков, полезные нагрузки и кодеки полей строки лога.
package track

// Kind закрытый перечень видов треков
type Kind int

const (
	KindPosition Kind = iota
	KindRotation
	KindScale
	KindLifetime
	KindRenderable
	KindLight
	KindCamera
	KindSkeletal
)

var kindNames = [...]string{
	KindPosition:   "Position",
	KindRotation:   "Rotation",
	KindScale:      "Scale",
	KindLifetime:   "Lifetime",
	KindRenderable: "Renderable",
	KindLight:      "Light",
	KindCamera:     "Camera",
	KindSkeletal:   "Skeletal",
}

// Kinds возвращает все виды в порядке записи в лог
func Kinds() []Kind {
	return []Kind{KindPosition, KindRotation, KindScale, KindLifetime,
		KindRenderable, KindLight, KindCamera, KindSkeletal}
}

// String возвращает имя вида, используемое в TRK_START/TRK_END
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// ParseKind ищет вид по имени из лога
func ParseKind(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}
