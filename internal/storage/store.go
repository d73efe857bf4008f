// Package storage хранит тексты логов сессий по имени.
//
// Все реализации безопасны для конкурентного использования.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound лог с таким именем не записан
var ErrNotFound = errors.New("storage: лог не найден")

// LogStore примитив чтения/записи логов
type LogStore interface {
	// Read возвращает текст лога или ErrNotFound
	Read(ctx context.Context, name string) (string, error)

	// Write записывает текст, заменяя существующий лог с тем же именем
	Write(ctx context.Context, name, text string) error

	// List возвращает имена логов в лексикографическом порядке
	List(ctx context.Context) ([]string, error)

	Close() error
}

// ValidateName имя лога: одиночный сегмент пути, не скрытый файл
func ValidateName(name string) error {
	switch {
	case name == "", strings.HasPrefix(name, "."):
		return fmt.Errorf("недопустимое имя лога %q", name)
	case strings.ContainsAny(name, "/\\\x00\n"):
		return fmt.Errorf("имя лога %q содержит недопустимые символы", name)
	}
	return nil
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
