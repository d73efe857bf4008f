package track

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/annel0/session-replay/internal/vec"
)

// SkeletonDirective первое поле строки-заголовка скелетного трека
const SkeletonDirective = "SKELETON"

// Bone кость иерархии: имя, индекс родителя (-1 для корня) и локальная трансформация
type Bone struct {
	Name     string   `json:"name"`
	Parent   int      `json:"parent"`
	Position vec.Vec3 `json:"position"`
	Rotation vec.Quat `json:"rotation"`
	Scale    vec.Vec3 `json:"scale"`
}

// Skin привязка skinned-меша к индексам костей
type Skin struct {
	Mesh      string   `json:"mesh"`
	Materials []string `json:"materials,omitempty"`
	Bones     []int    `json:"bones"`
}

// Rig одноразовый блок настройки скелетного трека
type Rig struct {
	Bones    []Bone `json:"bones"`
	Skins    []Skin `json:"skins"`
	Animator string `json:"animator"`
	Avatar   string `json:"avatar"`
}

// Validate проверяет ссылки на родителей и индексы костей в скинах
func (r Rig) Validate() error {
	for i, b := range r.Bones {
		if b.Parent < -1 || b.Parent >= len(r.Bones) || b.Parent == i {
			return fmt.Errorf("кость %d (%s): недопустимый родитель %d", i, b.Name, b.Parent)
		}
	}
	for i, s := range r.Skins {
		for _, idx := range s.Bones {
			if idx < 0 || idx >= len(r.Bones) {
				return fmt.Errorf("скин %d (%s): индекс кости %d вне диапазона", i, s.Mesh, idx)
			}
		}
	}
	return nil
}

// EncodeRig возвращает строку заголовка "SKELETON~{json}" без перевода строки
func EncodeRig(r Rig) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации скелета: %w", err)
	}
	return SkeletonDirective + Delimiter + string(data), nil
}

// DecodeRig разбирает строку заголовка
func DecodeRig(line string) (Rig, error) {
	parts := strings.SplitN(strings.TrimSpace(line), Delimiter, 2)
	if len(parts) != 2 || parts[0] != SkeletonDirective {
		return Rig{}, fmt.Errorf("ожидался заголовок %s", SkeletonDirective)
	}

	var r Rig
	if err := json.Unmarshal([]byte(parts[1]), &r); err != nil {
		return Rig{}, fmt.Errorf("ошибка десериализации скелета: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rig{}, err
	}
	return r, nil
}
