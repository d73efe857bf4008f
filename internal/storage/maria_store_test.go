package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockMaria(t *testing.T) (*MariaStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS session_logs").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := newMariaStore(context.Background(), db)
	require.NoError(t, err)
	return store, mock
}

func TestMariaStore_Write(t *testing.T) {
	store, mock := newMockMaria(t)
	defer store.Close()

	mock.ExpectExec("INSERT INTO session_logs").
		WithArgs("a.log", "OBJ_START~Cube_0\n").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Write(context.Background(), "a.log", "OBJ_START~Cube_0\n"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMariaStore_Read(t *testing.T) {
	store, mock := newMockMaria(t)
	defer store.Close()

	mock.ExpectQuery(`SELECT body FROM session_logs WHERE name = \?`).
		WithArgs("a.log").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow("text"))
	mock.ExpectQuery(`SELECT body FROM session_logs WHERE name = \?`).
		WithArgs("missing.log").
		WillReturnError(sql.ErrNoRows)

	text, err := store.Read(context.Background(), "a.log")
	require.NoError(t, err)
	assert.Equal(t, "text", text)

	_, err = store.Read(context.Background(), "missing.log")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMariaStore_List(t *testing.T) {
	store, mock := newMockMaria(t)
	defer store.Close()

	mock.ExpectQuery("SELECT name FROM session_logs ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("a.log").AddRow("b.log"))

	names, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.log", "b.log"}, names)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMariaStore_WriteError(t *testing.T) {
	store, mock := newMockMaria(t)
	defer store.Close()

	mock.ExpectExec("INSERT INTO session_logs").
		WillReturnError(errors.New("connection reset"))

	err := store.Write(context.Background(), "a.log", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMariaStore_CreateTableError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS session_logs").
		WillReturnError(errors.New("access denied"))

	_, err = newMariaStore(context.Background(), db)
	assert.Error(t, err)
}
