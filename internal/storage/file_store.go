package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FileStore хранит каждый лог отдельным файлом в каталоге dir
type FileStore struct {
	dir string
}

// NewFileStore создаёт каталог, если его нет
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir каталог логов
func (f *FileStore) Dir() string { return f.dir }

// Path путь файла лога
func (f *FileStore) Path(name string) string {
	return filepath.Join(f.dir, name)
}

func (f *FileStore) Read(ctx context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if err := checkCtx(ctx); err != nil {
		return "", err
	}

	data, err := os.ReadFile(f.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения лога %s: %w", name, err)
	}
	return string(data), nil
}

// Write пишет во временный файл и переименовывает его, чтобы читатель
// никогда не видел частично записанный лог
func (f *FileStore) Write(ctx context.Context, name, text string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := checkCtx(ctx); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи лога %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи лога %s: %w", name, err)
	}
	if err := os.Rename(tmpName, f.Path(name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка сохранения лога %s: %w", name, err)
	}
	return nil
}

// List возвращает обычные файлы каталога, кроме скрытых временных
func (f *FileStore) List(ctx context.Context) ([]string, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", f.dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || e.Name()[0] == '.' {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (f *FileStore) Close() error { return nil }
