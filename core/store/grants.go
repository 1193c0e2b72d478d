package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/dipanalytics/contentbot/core/model"
)

const grantsTable = "private_accesses"

const (
	uqGrantAccessCode = "ix_private_accesses_access_code"
	uqGrantUser       = "ix_private_accesses_telegram_id"
)

var grantColumns = []string{
	"id", "telegram_id", "access_code", "expires_at", "created_at", "updated_at",
}

// CreateGrant inserts a new access grant row. A second row for the same user
// or a duplicate access code fails with ErrAlreadyExists; the per-user unique
// index makes the single-grant invariant hold under concurrent issuance.
func (s *Store) CreateGrant(ctx context.Context, telegramID int64, accessCode string, expiresAt time.Time) (*model.AccessGrant, error) {
	now := time.Now().UTC()

	query, args, err := s.sb.Insert(grantsTable).
		Columns("telegram_id", "access_code", "expires_at", "created_at", "updated_at").
		Values(telegramID, accessCode, expiresAt, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var id int64
	if err := s.db.GetContext(ctx, &id, query, args...); err != nil {
		if isUniqueViolation(err, uqGrantUser) || isUniqueViolation(err, uqGrantAccessCode) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	grant := &model.AccessGrant{
		TelegramID: telegramID,
		AccessCode: accessCode,
		ExpiresAt:  expiresAt,
	}
	grant.ID = id
	grant.CreatedAt = now
	grant.UpdatedAt = now
	return grant, nil
}

// GetGrantByTelegramID returns the grant held by the given user, if any.
func (s *Store) GetGrantByTelegramID(ctx context.Context, telegramID int64) (*model.AccessGrant, error) {
	query, args, err := s.sb.Select(grantColumns...).
		From(grantsTable).
		Where(sq.Eq{"telegram_id": telegramID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var g model.AccessGrant
	if err := s.db.GetContext(ctx, &g, query, args...); err != nil {
		return nil, mapNotFound(err)
	}
	return &g, nil
}

// GetGrantByCode looks a grant up by its access code.
func (s *Store) GetGrantByCode(ctx context.Context, accessCode string) (*model.AccessGrant, error) {
	query, args, err := s.sb.Select(grantColumns...).
		From(grantsTable).
		Where(sq.Eq{"access_code": accessCode}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var g model.AccessGrant
	if err := s.db.GetContext(ctx, &g, query, args...); err != nil {
		return nil, mapNotFound(err)
	}
	return &g, nil
}

// ListGrants pages through all grants; used by the admin surface.
func (s *Store) ListGrants(ctx context.Context, limit, offset uint64) ([]model.AccessGrant, error) {
	q := s.sb.Select(grantColumns...).
		From(grantsTable).
		OrderBy("expires_at ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var grants []model.AccessGrant
	if err := s.db.SelectContext(ctx, &grants, query, args...); err != nil {
		return nil, err
	}
	return grants, nil
}

// DeleteGrant removes one grant by row id; used by the admin surface to allow
// re-issuance after expiry.
func (s *Store) DeleteGrant(ctx context.Context, id int64) error {
	query, args, err := s.sb.Delete(grantsTable).
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
