package store

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(sqlx.NewDb(db, "sqlmock")), mock
}

var userRowColumns = []string{
	"id", "telegram_id", "username", "first_name", "last_name",
	"registered_at", "created_at", "updated_at",
}

func TestUpsertUserRunsInOneTransaction(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .+ FROM users").WillReturnRows(
		sqlmock.NewRows(userRowColumns).AddRow(1, 100, nil, nil, nil, now, now, now),
	)
	mock.ExpectCommit()

	u, err := st.UpsertUser(context.Background(), 100, NameFields{})
	require.NoError(t, err)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, int64(100), u.TelegramID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertUserRollsBackOnInsertError(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := st.UpsertUser(context.Background(), 100, NameFields{})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateGrantDuplicateUser(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO private_accesses").WillReturnError(&pq.Error{
		Code:       "23505",
		Constraint: uqGrantUser,
	})

	_, err := st.CreateGrant(context.Background(), 100, "deadbeef", time.Now())
	require.ErrorIs(t, err, ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateContentItemDuplicateStep(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("INSERT INTO contents").WillReturnError(&pq.Error{
		Code:       "23505",
		Constraint: uqContentOwnerStep,
	})

	_, err := st.CreateContentItem(context.Background(), 1, 5, "m", "c")
	require.ErrorIs(t, err, ErrDuplicateStep)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByIDNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM users").WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err := st.GetUserByID(context.Background(), 9)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
