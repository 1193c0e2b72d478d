package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	coreconfig "github.com/dipanalytics/contentbot/core/config"
	"github.com/dipanalytics/contentbot/core/objstore"
	"github.com/dipanalytics/contentbot/core/store"
)

func testServerWithStore(t *testing.T, storage objstore.Storage) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	s := NewServer(coreconfig.AdminConfig{
		Listen:          ":0",
		Login:           "ops",
		PasswordHash:    string(hash),
		JWTSecret:       "test-secret",
		TokenTTLMinutes: 5,
	}, store.New(sqlx.NewDb(db, "sqlmock")), storage)
	return s, mock
}

type fakeAdminStorage struct {
	base    string
	deleted []string
}

func (f *fakeAdminStorage) Upload(_ context.Context, _ []byte, objectName, _ string) (string, error) {
	return f.base + "/" + objectName, nil
}

func (f *fakeAdminStorage) Delete(_ context.Context, objectName string) error {
	f.deleted = append(f.deleted, objectName)
	return nil
}

func (f *fakeAdminStorage) ObjectKey(rawURL string) (string, bool) {
	prefix := f.base + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(rawURL, prefix), true
}

func authToken(t *testing.T, s *Server) string {
	t.Helper()

	rec := doLogin(t, s, `{"login":"ops","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func TestGetUserByID(t *testing.T) {
	s, mock := testServerWithStore(t, nil)
	token := authToken(t, s)
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM users").WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "telegram_id", "username", "first_name", "last_name",
			"registered_at", "created_at", "updated_at",
		}).AddRow(7, 100, nil, nil, nil, now, now, now),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/7", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(7), resp.ID)
	require.Equal(t, int64(100), resp.TelegramID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByIDNotFound(t *testing.T) {
	s, mock := testServerWithStore(t, nil)
	token := authToken(t, s)

	mock.ExpectQuery("SELECT .+ FROM users").WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "telegram_id", "username", "first_name", "last_name",
			"registered_at", "created_at", "updated_at",
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/999", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContentRemovesUploadedObject(t *testing.T) {
	storage := &fakeAdminStorage{base: "https://cdn.example.com/media"}
	s, mock := testServerWithStore(t, storage)
	token := authToken(t, s)
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM contents").WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "user_id", "step_number", "message", "content", "created_at", "updated_at",
		}).AddRow(3, 1, 2, "msg", "https://cdn.example.com/media/content_1/pic.jpg", now, now),
	)
	mock.ExpectExec("DELETE FROM contents").WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/v1/contents/3", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, []string{"content_1/pic.jpg"}, storage.deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteContentLeavesTextPayloadsAlone(t *testing.T) {
	storage := &fakeAdminStorage{base: "https://cdn.example.com/media"}
	s, mock := testServerWithStore(t, storage)
	token := authToken(t, s)
	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM contents").WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "user_id", "step_number", "message", "content", "created_at", "updated_at",
		}).AddRow(4, 1, 3, "msg", "plain text payload", now, now),
	)
	mock.ExpectExec("DELETE FROM contents").WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/v1/contents/4", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, storage.deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
