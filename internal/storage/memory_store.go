package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore реализует LogStore в памяти.
// Используется в тестах и для воспроизведения только что записанной сессии.
// ВНИМАНИЕ: данные теряются при перезапуске!
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Read(ctx context.Context, name string) (string, error) {
	if err := checkCtx(ctx); err != nil {
		return "", err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	text, ok := m.data[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return text, nil
}

func (m *MemoryStore) Write(ctx context.Context, name, text string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := checkCtx(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.data[name] = text
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	m.mu.RLock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	m.mu.RUnlock()

	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Close() error { return nil }
