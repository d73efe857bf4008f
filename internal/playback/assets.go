package playback

import (
	"fmt"
	"sync"
)

// Asset разрешенный ассет. Data: хост-специфичный дескриптор (меш, материал...).
type Asset struct {
	Path string
	Data interface{}
}

// AssetResolver разрешает пути ассетов из лога
type AssetResolver interface {
	Resolve(path string) (Asset, error)
}

// PathResolver принимает любой путь и возвращает ассет без данных
type PathResolver struct{}

func (PathResolver) Resolve(path string) (Asset, error) {
	return Asset{Path: path}, nil
}

// MapResolver разрешает только зарегистрированные пути. Безопасен для конкурентного использования.
type MapResolver struct {
	mu     sync.RWMutex
	assets map[string]interface{}
}

func NewMapResolver() *MapResolver {
	return &MapResolver{assets: make(map[string]interface{})}
}

// Add регистрирует ассет
func (m *MapResolver) Add(path string, data interface{}) {
	m.mu.Lock()
	m.assets[path] = data
	m.mu.Unlock()
}

func (m *MapResolver) Resolve(path string) (Asset, error) {
	m.mu.RLock()
	data, ok := m.assets[path]
	m.mu.RUnlock()
	if !ok {
		return Asset{}, fmt.Errorf("ассет %q не найден", path)
	}
	return Asset{Path: path, Data: data}, nil
}
