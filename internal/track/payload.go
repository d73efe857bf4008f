package track

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/annel0/session-replay/internal/vec"
)

// LightType тип источника света
type LightType int

const (
	LightSpot LightType = iota
	LightDirectional
	LightPoint
	LightArea
)

var lightTypeNames = [...]string{"Spot", "Directional", "Point", "Area"}

func (l LightType) String() string {
	if l < 0 || int(l) >= len(lightTypeNames) {
		return "Unknown"
	}
	return lightTypeNames[l]
}

// ParseLightType ищет тип по имени
func ParseLightType(s string) (LightType, error) {
	for i, n := range lightTypeNames {
		if n == s {
			return LightType(i), nil
		}
	}
	return 0, fmt.Errorf("неизвестный тип света %q", s)
}

// Light состояние источника света
type Light struct {
	Type      LightType
	Color     vec.Color
	Intensity float64
}

func (l Light) Equals(o Light) bool {
	return l.Type == o.Type && l.Color.Equals(o.Color) && l.Intensity == o.Intensity
}

// Camera параметры проекции камеры
type Camera struct {
	FOV  float64
	Near float64
	Far  float64
}

func (c Camera) Equals(o Camera) bool {
	return c.FOV == o.FOV && c.Near == o.Near && c.Far == o.Far
}

// Renderable ссылки на меш и материалы плюс цвет.
// Mesh и Materials: пути ассетов, разрешаемые при воспроизведении.
type Renderable struct {
	Color     vec.Color
	Mesh      string
	Materials []string
}

// Equals сравнивает меш, материалы поэлементно и цвет
func (r Renderable) Equals(o Renderable) bool {
	if r.Mesh != o.Mesh || !r.Color.Equals(o.Color) || len(r.Materials) != len(o.Materials) {
		return false
	}
	for i := range r.Materials {
		if r.Materials[i] != o.Materials[i] {
			return false
		}
	}
	return true
}

// Validate проверяет, что пути не содержат разделителей строки лога:
// иначе строка не разберется обратно
func (r Renderable) Validate() error {
	if strings.ContainsAny(r.Mesh, Delimiter+"\n") {
		return fmt.Errorf("mesh %q: недопустимый символ в пути", r.Mesh)
	}
	for i, m := range r.Materials {
		if m == "" || strings.ContainsAny(m, Delimiter+MaterialSeparator+"\n") {
			return fmt.Errorf("material[%d] %q: недопустимый путь", i, m)
		}
	}
	return nil
}

// Animation состояние аниматора в момент семпла
type Animation struct {
	StateHash      int32
	NormalizedTime float64
}

// MaterialSeparator разделяет пути материалов внутри одного поля
const MaterialSeparator = ";"

//================ Codecs =================//

type Vec3Codec struct{}

func (Vec3Codec) Encode(v vec.Vec3, prec int) []string { return []string{v.Format(prec)} }

func (Vec3Codec) Decode(f []string) (vec.Vec3, error) {
	if err := wantFields(f, 1); err != nil {
		return vec.Vec3{}, err
	}
	return vec.ParseVec3(f[0])
}

type QuatCodec struct{}

func (QuatCodec) Encode(q vec.Quat, prec int) []string { return []string{q.Format(prec)} }

func (QuatCodec) Decode(f []string) (vec.Quat, error) {
	if err := wantFields(f, 1); err != nil {
		return vec.Quat{}, err
	}
	return vec.ParseQuat(f[0])
}

type BoolCodec struct{}

func (BoolCodec) Encode(b bool, _ int) []string { return []string{strconv.FormatBool(b)} }

func (BoolCodec) Decode(f []string) (bool, error) {
	if err := wantFields(f, 1); err != nil {
		return false, err
	}
	return strconv.ParseBool(f[0])
}

type LightCodec struct{}

func (LightCodec) Encode(l Light, prec int) []string {
	return []string{l.Type.String(), l.Color.Format(prec), FormatFloat(l.Intensity, prec)}
}

func (LightCodec) Decode(f []string) (Light, error) {
	if err := wantFields(f, 3); err != nil {
		return Light{}, err
	}
	lt, err := ParseLightType(f[0])
	if err != nil {
		return Light{}, err
	}
	c, err := vec.ParseColor(f[1])
	if err != nil {
		return Light{}, err
	}
	in, err := strconv.ParseFloat(f[2], 64)
	if err != nil {
		return Light{}, fmt.Errorf("intensity: %w", err)
	}
	return Light{Type: lt, Color: c, Intensity: in}, nil
}

type CameraCodec struct{}

func (CameraCodec) Encode(c Camera, prec int) []string {
	return []string{FormatFloat(c.FOV, prec), FormatFloat(c.Near, prec), FormatFloat(c.Far, prec)}
}

func (CameraCodec) Decode(f []string) (Camera, error) {
	if err := wantFields(f, 3); err != nil {
		return Camera{}, err
	}
	var v [3]float64
	for i := range v {
		x, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return Camera{}, fmt.Errorf("поле %d: %w", i, err)
		}
		v[i] = x
	}
	return Camera{FOV: v[0], Near: v[1], Far: v[2]}, nil
}

type RenderableCodec struct{}

func (RenderableCodec) Encode(r Renderable, prec int) []string {
	return []string{r.Color.Format(prec), r.Mesh, strings.Join(r.Materials, MaterialSeparator)}
}

func (RenderableCodec) Decode(f []string) (Renderable, error) {
	if err := wantFields(f, 3); err != nil {
		return Renderable{}, err
	}
	c, err := vec.ParseColor(f[0])
	if err != nil {
		return Renderable{}, err
	}
	r := Renderable{Color: c, Mesh: f[1]}
	if f[2] != "" {
		r.Materials = strings.Split(f[2], MaterialSeparator)
	}
	return r, nil
}

type AnimationCodec struct{}

func (AnimationCodec) Encode(a Animation, prec int) []string {
	return []string{strconv.FormatInt(int64(a.StateHash), 10), FormatFloat(a.NormalizedTime, prec)}
}

func (AnimationCodec) Decode(f []string) (Animation, error) {
	if err := wantFields(f, 2); err != nil {
		return Animation{}, err
	}
	h, err := strconv.ParseInt(f[0], 10, 32)
	if err != nil {
		return Animation{}, fmt.Errorf("state hash: %w", err)
	}
	nt, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return Animation{}, fmt.Errorf("normalized time: %w", err)
	}
	return Animation{StateHash: int32(h), NormalizedTime: nt}, nil
}
