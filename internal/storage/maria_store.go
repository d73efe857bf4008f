package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MariaStore хранит логи в таблице session_logs MariaDB/MySQL
type MariaStore struct {
	db *sql.DB
}

// NewMariaStore подключается к базе и создает таблицу, если она не существует.
//
// Параметры:
//
//	dsn - строка подключения к базе данных (user:pass@tcp(host:port)/dbname)
func NewMariaStore(ctx context.Context, dsn string) (*MariaStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MariaDB: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось проверить соединение с MariaDB: %w", err)
	}

	store, err := newMariaStore(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// newMariaStore оборачивает готовое соединение
func newMariaStore(ctx context.Context, db *sql.DB) (*MariaStore, error) {
	s := &MariaStore{db: db}
	if err := s.createTable(ctx); err != nil {
		return nil, fmt.Errorf("не удалось создать таблицу: %w", err)
	}
	return s, nil
}

func (s *MariaStore) createTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS session_logs (
			name       VARCHAR(255) PRIMARY KEY,
			body       LONGTEXT     NOT NULL,
			updated_at TIMESTAMP    DEFAULT CURRENT_TIMESTAMP
			           ON UPDATE    CURRENT_TIMESTAMP
		) ENGINE=InnoDB
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ошибка создания таблицы session_logs: %w", err)
	}
	return nil
}

func (s *MariaStore) Read(ctx context.Context, name string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM session_logs WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения лога %s: %w", name, err)
	}
	return body, nil
}

// Write использует INSERT ... ON DUPLICATE KEY UPDATE для перезаписи
func (s *MariaStore) Write(ctx context.Context, name, text string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	query := `
		INSERT INTO session_logs (name, body)
		VALUES (?, ?)
		ON DUPLICATE KEY UPDATE
			body = VALUES(body),
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, name, text); err != nil {
		return fmt.Errorf("ошибка сохранения лога %s: %w", name, err)
	}
	return nil
}

func (s *MariaStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM session_logs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ошибка перечисления логов: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("ошибка чтения строки: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка перечисления логов: %w", err)
	}
	return names, nil
}

// Close закрывает соединение с базой данных.
func (s *MariaStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
