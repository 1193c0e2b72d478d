package model

import "time"

// RecordMeta carries the row metadata shared by all persisted entities.
type RecordMeta struct {
	ID        int64     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User is a bot participant identified by a Telegram id.
// Users are created lazily on first interaction and never deleted by the bot.
type User struct {
	RecordMeta
	TelegramID   int64     `db:"telegram_id" json:"telegram_id"`
	Username     *string   `db:"username" json:"username,omitempty"`
	FirstName    *string   `db:"first_name" json:"first_name,omitempty"`
	LastName     *string   `db:"last_name" json:"last_name,omitempty"`
	RegisteredAt time.Time `db:"registered_at" json:"registered_at"`
}

// ContentItem is one position of an owner's content sequence.
// At most one item exists per (owner, step) pair.
type ContentItem struct {
	RecordMeta
	UserID     int64  `db:"user_id" json:"user_id"`
	StepNumber int    `db:"step_number" json:"step_number"`
	Message    string `db:"message" json:"message"`
	// Content holds the payload: plain text or an object storage URL.
	Content string `db:"content" json:"content"`
}

// AccessGrant is a time-limited access credential bound to its requesting user.
type AccessGrant struct {
	RecordMeta
	TelegramID int64     `db:"telegram_id" json:"telegram_id"`
	AccessCode string    `db:"access_code" json:"access_code"`
	ExpiresAt  time.Time `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the grant is past its validity window at the given time.
func (g AccessGrant) Expired(now time.Time) bool {
	return now.After(g.ExpiresAt)
}

// DisplayName returns the best human-readable name for the user.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != nil && *u.FirstName != "":
		return *u.FirstName
	case u.Username != nil && *u.Username != "":
		return *u.Username
	default:
		return "there"
	}
}
