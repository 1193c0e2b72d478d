package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dipanalytics/contentbot/core/model"
	"github.com/dipanalytics/contentbot/core/store"
)

type fakeIngestStore struct {
	users map[int64]*model.User
	// items is keyed by internal user id, then step.
	items  map[int64]map[int]*model.ContentItem
	nextID int64
}

func newFakeIngestStore() *fakeIngestStore {
	return &fakeIngestStore{
		users: make(map[int64]*model.User),
		items: make(map[int64]map[int]*model.ContentItem),
	}
}

func (f *fakeIngestStore) UpsertUser(_ context.Context, telegramID int64, _ store.NameFields) (*model.User, error) {
	if u, ok := f.users[telegramID]; ok {
		return u, nil
	}
	f.nextID++
	u := &model.User{RecordMeta: model.RecordMeta{ID: f.nextID}, TelegramID: telegramID}
	f.users[telegramID] = u
	return u, nil
}

func (f *fakeIngestStore) CreateContentItem(_ context.Context, userID int64, step int, message, content string) (*model.ContentItem, error) {
	if _, ok := f.items[userID][step]; ok {
		return nil, store.ErrDuplicateStep
	}
	if f.items[userID] == nil {
		f.items[userID] = make(map[int]*model.ContentItem)
	}
	f.nextID++
	item := &model.ContentItem{
		RecordMeta: model.RecordMeta{ID: f.nextID},
		UserID:     userID,
		StepNumber: step,
		Message:    message,
		Content:    content,
	}
	f.items[userID][step] = item
	return item, nil
}

type fakeUploader struct {
	fail     bool
	uploaded int
}

func (f *fakeUploader) Upload(_ context.Context, _ []byte, objectName, _ string) (string, error) {
	if f.fail {
		return "", errors.New("bucket unavailable")
	}
	f.uploaded++
	return "https://cdn.example.com/" + objectName, nil
}

func TestSubmitTextStepBounds(t *testing.T) {
	svc := New(newFakeIngestStore(), &fakeUploader{}, 20)
	ctx := context.Background()

	for _, step := range []int{0, -1, 21} {
		_, err := svc.SubmitText(ctx, 100, store.NameFields{}, step, "m", "c")
		require.ErrorIs(t, err, ErrInvalidStep, "step %d", step)
	}

	for _, step := range []int{1, 20} {
		item, err := svc.SubmitText(ctx, 100, store.NameFields{}, step, "m", "c")
		require.NoError(t, err, "step %d", step)
		require.Equal(t, step, item.StepNumber)
	}
}

func TestSubmitTextCreatesOwnerOnce(t *testing.T) {
	st := newFakeIngestStore()
	svc := New(st, &fakeUploader{}, 20)
	ctx := context.Background()

	_, err := svc.SubmitText(ctx, 100, store.NameFields{}, 1, "m", "c")
	require.NoError(t, err)
	_, err = svc.SubmitText(ctx, 100, store.NameFields{}, 2, "m", "c")
	require.NoError(t, err)

	require.Len(t, st.users, 1)
}

func TestSubmitTextDuplicateStep(t *testing.T) {
	svc := New(newFakeIngestStore(), &fakeUploader{}, 20)
	ctx := context.Background()

	_, err := svc.SubmitText(ctx, 100, store.NameFields{}, 5, "first", "c1")
	require.NoError(t, err)

	_, err = svc.SubmitText(ctx, 100, store.NameFields{}, 5, "second", "c2")
	require.ErrorIs(t, err, store.ErrDuplicateStep)
}

func TestSubmitPhotoStoresUploadURL(t *testing.T) {
	up := &fakeUploader{}
	svc := New(newFakeIngestStore(), up, 20)

	item, err := svc.SubmitPhoto(context.Background(), 100, store.NameFields{}, 3, "caption", []byte{0xff, 0xd8}, "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, 1, up.uploaded)
	require.Contains(t, item.Content, "https://cdn.example.com/content_100/")
}

func TestSubmitPhotoUploadFailure(t *testing.T) {
	svc := New(newFakeIngestStore(), &fakeUploader{fail: true}, 20)

	_, err := svc.SubmitPhoto(context.Background(), 100, store.NameFields{}, 3, "caption", []byte{0xff}, "image/jpeg")
	require.ErrorIs(t, err, ErrUploadFailed)
}

func TestSubmitPhotoValidatesStepBeforeUpload(t *testing.T) {
	up := &fakeUploader{}
	svc := New(newFakeIngestStore(), up, 20)

	_, err := svc.SubmitPhoto(context.Background(), 100, store.NameFields{}, 0, "caption", []byte{0xff}, "image/jpeg")
	require.ErrorIs(t, err, ErrInvalidStep)
	require.Zero(t, up.uploaded)
}
