package grant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dipanalytics/contentbot/core/model"
	"github.com/dipanalytics/contentbot/core/store"
)

type fakeGrantStore struct {
	byUser map[int64]*model.AccessGrant
	byCode map[string]*model.AccessGrant
	nextID int64
}

func newFakeGrantStore() *fakeGrantStore {
	return &fakeGrantStore{
		byUser: make(map[int64]*model.AccessGrant),
		byCode: make(map[string]*model.AccessGrant),
	}
}

func (f *fakeGrantStore) CreateGrant(_ context.Context, telegramID int64, accessCode string, expiresAt time.Time) (*model.AccessGrant, error) {
	f.nextID++
	g := &model.AccessGrant{
		RecordMeta: model.RecordMeta{ID: f.nextID},
		TelegramID: telegramID,
		AccessCode: accessCode,
		ExpiresAt:  expiresAt,
	}
	f.byUser[telegramID] = g
	f.byCode[accessCode] = g
	return g, nil
}

func (f *fakeGrantStore) GetGrantByTelegramID(_ context.Context, telegramID int64) (*model.AccessGrant, error) {
	if g, ok := f.byUser[telegramID]; ok {
		return g, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeGrantStore) GetGrantByCode(_ context.Context, accessCode string) (*model.AccessGrant, error) {
	if g, ok := f.byCode[accessCode]; ok {
		return g, nil
	}
	return nil, store.ErrNotFound
}

func TestIssueAndResolve(t *testing.T) {
	st := newFakeGrantStore()
	m := New(st, 14*24*time.Hour)
	ctx := context.Background()

	g, err := m.Issue(ctx, 100)
	require.NoError(t, err)
	require.Len(t, g.AccessCode, 32)
	require.WithinDuration(t, time.Now().UTC().Add(14*24*time.Hour), g.ExpiresAt, time.Minute)

	owner, err := m.Resolve(ctx, g.AccessCode)
	require.NoError(t, err)
	require.Equal(t, int64(100), owner)
}

func TestIssueCodesAreUniquePerGrant(t *testing.T) {
	st := newFakeGrantStore()
	m := New(st, time.Hour)
	ctx := context.Background()

	a, err := m.Issue(ctx, 100)
	require.NoError(t, err)
	b, err := m.Issue(ctx, 200)
	require.NoError(t, err)
	require.NotEqual(t, a.AccessCode, b.AccessCode)
}

func TestIssueRefusesWhileGrantExists(t *testing.T) {
	st := newFakeGrantStore()
	m := New(st, time.Hour)
	ctx := context.Background()

	_, err := m.Issue(ctx, 100)
	require.NoError(t, err)

	_, err = m.Issue(ctx, 100)
	require.ErrorIs(t, err, ErrGrantExists)
}

func TestIssueRefusesEvenWhenExpired(t *testing.T) {
	st := newFakeGrantStore()
	m := New(st, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	ctx := context.Background()

	_, err := m.Issue(ctx, 100)
	require.NoError(t, err)

	// The row is stale now, but re-issuance still refuses on existence alone.
	m.now = time.Now
	_, err = m.Issue(ctx, 100)
	require.ErrorIs(t, err, ErrGrantExists)
}

type racingGrantStore struct {
	*fakeGrantStore
}

func (f *racingGrantStore) CreateGrant(context.Context, int64, string, time.Time) (*model.AccessGrant, error) {
	return nil, store.ErrAlreadyExists
}

func TestIssueLosingRaceReportsGrantExists(t *testing.T) {
	// The existence check passes but a concurrent issue wins the insert.
	m := New(&racingGrantStore{newFakeGrantStore()}, time.Hour)

	_, err := m.Issue(context.Background(), 100)
	require.ErrorIs(t, err, ErrGrantExists)
}

func TestResolveUnknownCode(t *testing.T) {
	m := New(newFakeGrantStore(), time.Hour)

	_, err := m.Resolve(context.Background(), "deadbeef")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveExpiredCode(t *testing.T) {
	st := newFakeGrantStore()
	m := New(st, time.Hour)
	ctx := context.Background()

	g, err := m.Issue(ctx, 100)
	require.NoError(t, err)

	m.now = func() time.Time { return g.ExpiresAt.Add(time.Second) }
	_, err = m.Resolve(ctx, g.AccessCode)
	require.ErrorIs(t, err, ErrGrantExpired)
}
