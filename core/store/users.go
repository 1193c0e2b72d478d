package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/dipanalytics/contentbot/core/model"
)

const usersTable = "users"

var userColumns = []string{
	"id", "telegram_id", "username", "first_name", "last_name",
	"registered_at", "created_at", "updated_at",
}

// NameFields carries the optional display-name attributes delivered with an update.
type NameFields struct {
	Username  *string
	FirstName *string
	LastName  *string
}

// UpsertUser returns the user for the given Telegram id, creating the row on
// first interaction. Existing rows keep their name fields (first-write-wins).
// The insert and the read-back run in one transaction.
func (s *Store) UpsertUser(ctx context.Context, telegramID int64, names NameFields) (*model.User, error) {
	now := time.Now().UTC()

	insert, insertArgs, err := s.sb.Insert(usersTable).
		Columns("telegram_id", "username", "first_name", "last_name", "registered_at", "created_at", "updated_at").
		Values(telegramID, names.Username, names.FirstName, names.LastName, now, now, now).
		Suffix("ON CONFLICT (telegram_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, err
	}
	sel, selArgs, err := s.sb.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{"telegram_id": telegramID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u model.User
	err = s.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
			return err
		}
		return tx.GetContext(ctx, &u, sel, selArgs...)
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

// GetUserByTelegramID fetches a user by the external Telegram id.
func (s *Store) GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query, args, err := s.sb.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{"telegram_id": telegramID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u model.User
	if err := s.db.GetContext(ctx, &u, query, args...); err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

// GetUserByID fetches a user by its internal row id.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query, args, err := s.sb.Select(userColumns...).
		From(usersTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u model.User
	if err := s.db.GetContext(ctx, &u, query, args...); err != nil {
		return nil, mapNotFound(err)
	}
	return &u, nil
}

// ListUsers returns users ordered by registration, newest first.
func (s *Store) ListUsers(ctx context.Context, limit, offset uint64) ([]model.User, error) {
	q := s.sb.Select(userColumns...).
		From(usersTable).
		OrderBy("registered_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var users []model.User
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserNames overwrites display-name fields; used by the admin surface only.
func (s *Store) UpdateUserNames(ctx context.Context, id int64, names NameFields) error {
	query, args, err := s.sb.Update(usersTable).
		Set("username", names.Username).
		Set("first_name", names.FirstName).
		Set("last_name", names.LastName).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
