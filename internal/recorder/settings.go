package recorder

import (
	"fmt"

	"github.com/annel0/session-replay/internal/config"
)

// Policy политика семплирования треков
type Policy int

const (
	OnChange Policy = iota
	EveryXSeconds
	EveryFrame
)

func (p Policy) String() string {
	switch p {
	case OnChange:
		return "on_change"
	case EveryXSeconds:
		return "every_x_seconds"
	case EveryFrame:
		return "every_frame"
	default:
		return "unknown"
	}
}

// TimeMode какую дельту кадра использует часы сессии
type TimeMode int

const (
	Scaled TimeMode = iota
	Unscaled
)

// Space в каком пространстве читаются трансформации
type Space int

const (
	World Space = iota
	Local
)

// Settings общие для всех треков сессии настройки записи.
// Пороги позиции/масштаба: в единицах сцены, вращения: в градусах.
type Settings struct {
	Policy                Policy
	ChangeMinThreshold    float64
	ChangeJumpThreshold   float64
	RotationMinThreshold  float64
	RotationJumpThreshold float64
	SampleInterval        float64
	Precision             int
	TimeMode              TimeMode
	Space                 Space
}

// DefaultSettings совпадает с config.Default().Recording
func DefaultSettings() Settings {
	s, _ := SettingsFromConfig(config.Default().Recording)
	return s
}

// SettingsFromConfig переводит секцию recording конфигурации в Settings
func SettingsFromConfig(c config.RecordingConfig) (Settings, error) {
	s := Settings{
		ChangeMinThreshold:    c.ChangeMinThreshold,
		ChangeJumpThreshold:   c.ChangeJumpThreshold,
		RotationMinThreshold:  c.RotationMinThreshold,
		RotationJumpThreshold: c.RotationJumpThreshold,
		SampleInterval:        c.SampleInterval,
		Precision:             c.Precision,
	}

	switch c.Policy {
	case "on_change", "":
		s.Policy = OnChange
	case "every_x_seconds":
		s.Policy = EveryXSeconds
	case "every_frame":
		s.Policy = EveryFrame
	default:
		return Settings{}, fmt.Errorf("неизвестная политика записи %q", c.Policy)
	}

	switch c.TimeMode {
	case "scaled", "":
		s.TimeMode = Scaled
	case "unscaled":
		s.TimeMode = Unscaled
	default:
		return Settings{}, fmt.Errorf("неизвестный режим времени %q", c.TimeMode)
	}

	switch c.Space {
	case "world", "":
		s.Space = World
	case "local":
		s.Space = Local
	default:
		return Settings{}, fmt.Errorf("неизвестное пространство %q", c.Space)
	}

	return s, nil
}
