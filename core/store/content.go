package store

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/dipanalytics/contentbot/core/model"
)

const contentsTable = "contents"

const uqContentOwnerStep = "ix_contents_user_id_step_number"

var contentColumns = []string{
	"id", "user_id", "step_number", "message", "content", "created_at", "updated_at",
}

func prefixed(alias string, cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return out
}

// CreateContentItem inserts one content item for the owner's internal user id.
// A second item for the same (owner, step) pair fails with ErrDuplicateStep.
func (s *Store) CreateContentItem(ctx context.Context, userID int64, step int, message, content string) (*model.ContentItem, error) {
	now := time.Now().UTC()

	query, args, err := s.sb.Insert(contentsTable).
		Columns("user_id", "step_number", "message", "content", "created_at", "updated_at").
		Values(userID, step, message, content, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var id int64
	if err := s.db.GetContext(ctx, &id, query, args...); err != nil {
		if isUniqueViolation(err, uqContentOwnerStep) {
			return nil, ErrDuplicateStep
		}
		return nil, err
	}

	item := &model.ContentItem{
		UserID:     userID,
		StepNumber: step,
		Message:    message,
		Content:    content,
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return item, nil
}

// GetContentByOwnerStep resolves the owner by Telegram id and returns the item
// at exactly the given step. Gaps in the sequence are a miss, not a scan-ahead.
func (s *Store) GetContentByOwnerStep(ctx context.Context, ownerTelegramID int64, step int) (*model.ContentItem, error) {
	query, args, err := s.sb.Select(prefixed("c", contentColumns)...).
		From(contentsTable + " c").
		Join(usersTable + " u ON u.id = c.user_id").
		Where(sq.Eq{"u.telegram_id": ownerTelegramID, "c.step_number": step}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var item model.ContentItem
	if err := s.db.GetContext(ctx, &item, query, args...); err != nil {
		return nil, mapNotFound(err)
	}
	return &item, nil
}

// ListContentByOwner returns the owner's items ordered by step number.
func (s *Store) ListContentByOwner(ctx context.Context, ownerTelegramID int64) ([]model.ContentItem, error) {
	query, args, err := s.sb.Select(prefixed("c", contentColumns)...).
		From(contentsTable + " c").
		Join(usersTable + " u ON u.id = c.user_id").
		Where(sq.Eq{"u.telegram_id": ownerTelegramID}).
		OrderBy("c.step_number ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var items []model.ContentItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// GetContentByID fetches one item by row id; used by the admin surface.
func (s *Store) GetContentByID(ctx context.Context, id int64) (*model.ContentItem, error) {
	query, args, err := s.sb.Select(contentColumns...).
		From(contentsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var item model.ContentItem
	if err := s.db.GetContext(ctx, &item, query, args...); err != nil {
		return nil, mapNotFound(err)
	}
	return &item, nil
}

// ListContent pages through all content rows; used by the admin surface.
func (s *Store) ListContent(ctx context.Context, limit, offset uint64) ([]model.ContentItem, error) {
	q := s.sb.Select(contentColumns...).
		From(contentsTable).
		OrderBy("user_id ASC", "step_number ASC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var items []model.ContentItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateContentItem overwrites message, payload and step of an existing item.
// Moving the item onto an occupied step fails with ErrDuplicateStep.
func (s *Store) UpdateContentItem(ctx context.Context, id int64, step int, message, content string) error {
	query, args, err := s.sb.Update(contentsTable).
		Set("step_number", step).
		Set("message", message).
		Set("content", content).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, uqContentOwnerStep) {
			return ErrDuplicateStep
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteContentItem removes one item by row id; used by the admin surface.
func (s *Store) DeleteContentItem(ctx context.Context, id int64) error {
	query, args, err := s.sb.Delete(contentsTable).
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
