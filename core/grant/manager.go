package grant

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dipanalytics/contentbot/core/logger"
	"github.com/dipanalytics/contentbot/core/model"
	"github.com/dipanalytics/contentbot/core/store"
	"log/slog"
)

var (
	// ErrGrantExists indicates the user already holds a grant row.
	ErrGrantExists = errors.New("grant: already issued")
	// ErrGrantExpired indicates the code resolved but is past its validity window.
	ErrGrantExpired = errors.New("grant: expired")
	// ErrNotFound indicates no grant matches the given code.
	ErrNotFound = errors.New("grant: not found")
)

// Store is the persistence surface the manager needs.
type Store interface {
	CreateGrant(ctx context.Context, telegramID int64, accessCode string, expiresAt time.Time) (*model.AccessGrant, error)
	GetGrantByTelegramID(ctx context.Context, telegramID int64) (*model.AccessGrant, error)
	GetGrantByCode(ctx context.Context, accessCode string) (*model.AccessGrant, error)
}

// Manager issues and resolves private access codes.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// New builds a Manager with the given grant validity window.
func New(st Store, ttl time.Duration) *Manager {
	return &Manager{
		store: st,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Issue creates a grant for the user with a fresh random access code.
// It refuses while any grant row exists for the user, expired or not; the
// check is existence-only, matching the single-grant-per-user invariant.
func (m *Manager) Issue(ctx context.Context, telegramID int64) (*model.AccessGrant, error) {
	existing, err := m.store.GetGrantByTelegramID(ctx, telegramID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("grant lookup: %w", err)
	}
	if existing != nil {
		return nil, ErrGrantExists
	}

	code, err := newAccessCode()
	if err != nil {
		return nil, fmt.Errorf("generate access code: %w", err)
	}
	expiresAt := m.now().UTC().Add(m.ttl)

	g, err := m.store.CreateGrant(ctx, telegramID, code, expiresAt)
	if err != nil {
		// A concurrent Issue can win between the existence check and the
		// insert; the per-user unique index reports it as a duplicate.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrGrantExists
		}
		return nil, fmt.Errorf("grant create: %w", err)
	}

	logger.SVCGrants.Info("grant issued",
		slog.String("event", "grant.issue"),
		slog.Int64("user_id", telegramID),
		slog.Time("expires_at", expiresAt),
	)
	return g, nil
}

// Resolve maps an access code to the Telegram id of the user who owns it.
// Unknown codes return ErrNotFound; known but stale codes return ErrGrantExpired.
func (m *Manager) Resolve(ctx context.Context, accessCode string) (int64, error) {
	g, err := m.store.GetGrantByCode(ctx, accessCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("grant resolve: %w", err)
	}

	if g.Expired(m.now()) {
		logger.SVCGrants.Warn("expired code used",
			slog.String("event", "grant.resolve"),
			slog.Int64("user_id", g.TelegramID),
			slog.Time("expires_at", g.ExpiresAt),
		)
		return 0, ErrGrantExpired
	}
	return g.TelegramID, nil
}

// newAccessCode returns a fresh 128-bit hex token. Generated per call so no
// two grants can ever share a code.
func newAccessCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
