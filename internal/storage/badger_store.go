package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

const badgerKeyPrefix = "log:"

// BadgerStore хранит логи во встроенной BadgerDB: ключ "log:<name>", значение: текст
type BadgerStore struct {
	db      *badger.DB
	mu      sync.RWMutex
	isReady bool
}

// NewBadgerStore открывает (или создает) базу в каталоге dir
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}
	return &BadgerStore{db: db, isReady: true}, nil
}

func (b *BadgerStore) Read(ctx context.Context, name string) (string, error) {
	if err := checkCtx(ctx); err != nil {
		return "", err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.isReady {
		return "", fmt.Errorf("хранилище не готово")
	}

	var text string
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			text = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения лога %s: %w", name, err)
	}
	return text, nil
}

func (b *BadgerStore) Write(ctx context.Context, name, text string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := checkCtx(ctx); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerKeyPrefix+name), []byte(text))
	})
	if err != nil {
		return fmt.Errorf("ошибка записи лога %s: %w", name, err)
	}
	return nil
}

func (b *BadgerStore) List(ctx context.Context) ([]string, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var names []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(badgerKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка перечисления логов: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Close закрывает базу
func (b *BadgerStore) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isReady {
		return nil
	}
	b.isReady = false
	return b.db.Close()
}
