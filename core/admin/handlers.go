package admin

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/dipanalytics/contentbot/core/logger"
	"github.com/dipanalytics/contentbot/core/model"
	"github.com/dipanalytics/contentbot/core/store"
	"log/slog"
)

const defaultPageSize = 50

type userResponse struct {
	ID           int64     `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     *string   `json:"username"`
	FirstName    *string   `json:"first_name"`
	LastName     *string   `json:"last_name"`
	RegisteredAt time.Time `json:"registered_at"`
}

type contentResponse struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	StepNumber int       `json:"step_number"`
	Message    string    `json:"message"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type grantResponse struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	AccessCode string    `json:"access_code"`
	ExpiresAt  time.Time `json:"expires_at"`
	Expired    bool      `json:"expired"`
}

func pageParams(c echo.Context) (limit, offset uint64) {
	limit = defaultPageSize
	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil && v > 0 {
			limit = v
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 64); err == nil {
			offset = v
		}
	}
	return limit, offset
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateStep):
		return echo.NewHTTPError(http.StatusConflict, "step already occupied")
	case errors.Is(err, store.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, "already exists")
	default:
		return err
	}
}

// ListUsers pages through registered users.
func (s *Server) ListUsers(c echo.Context) error {
	limit, offset := pageParams(c)

	users, err := s.store.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lo.Map(users, func(u model.User, _ int) userResponse {
		return userResponse{
			ID:           u.ID,
			TelegramID:   u.TelegramID,
			Username:     u.Username,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			RegisteredAt: u.RegisteredAt,
		}
	}))
}

// GetUser returns one user by internal row id.
func (s *Server) GetUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	u, err := s.store.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return mapStoreErr(err)
	}
	return c.JSON(http.StatusOK, userResponse{
		ID:           u.ID,
		TelegramID:   u.TelegramID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		RegisteredAt: u.RegisteredAt,
	})
}

type updateUserRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

// UpdateUser overwrites a user's display-name fields.
func (s *Server) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	err = s.store.UpdateUserNames(c.Request().Context(), id, store.NameFields{
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return mapStoreErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListContent pages through all content rows.
func (s *Server) ListContent(c echo.Context) error {
	limit, offset := pageParams(c)

	items, err := s.store.ListContent(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lo.Map(items, func(item model.ContentItem, _ int) contentResponse {
		return toContentResponse(item)
	}))
}

// GetContent returns one content row.
func (s *Server) GetContent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	item, err := s.store.GetContentByID(c.Request().Context(), id)
	if err != nil {
		return mapStoreErr(err)
	}
	return c.JSON(http.StatusOK, toContentResponse(*item))
}

// UpdateContent edits a content row. The request is multipart: form fields
// step_number, message, content, plus an optional file whose upload replaces
// the payload URL.
func (s *Server) UpdateContent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	current, err := s.store.GetContentByID(ctx, id)
	if err != nil {
		return mapStoreErr(err)
	}

	step := current.StepNumber
	if raw := c.FormValue("step_number"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid step_number")
		}
		step = v
	}
	message := current.Message
	if raw := c.FormValue("message"); raw != "" {
		message = raw
	}
	content := current.Content
	if raw := c.FormValue("content"); raw != "" {
		content = raw
	}

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
		}

		objectName := "content_" + strconv.FormatInt(current.ID, 10) + "/" + uuid.NewString() + "_" + fh.Filename
		contentType := fh.Header.Get("Content-Type")
		url, err := s.storage.Upload(ctx, data, objectName, contentType)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "upload failed")
		}
		content = url
	}

	if err := s.store.UpdateContentItem(ctx, id, step, message, content); err != nil {
		return mapStoreErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteContent removes one content row. When the payload is an object this
// storage uploaded, the object is removed too, best effort.
func (s *Server) DeleteContent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	item, err := s.store.GetContentByID(ctx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if err := s.store.DeleteContentItem(ctx, id); err != nil {
		return mapStoreErr(err)
	}

	if s.storage != nil {
		if key, ok := s.storage.ObjectKey(item.Content); ok {
			if err := s.storage.Delete(ctx, key); err != nil {
				logger.ADM.Warn("object cleanup failed",
					slog.String("event", "admin.content.delete"),
					slog.Int64("content_id", id),
					slog.String("key", key),
					slog.String("err", err.Error()),
				)
			}
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// ListGrants pages through access grants.
func (s *Server) ListGrants(c echo.Context) error {
	limit, offset := pageParams(c)

	grants, err := s.store.ListGrants(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}

	now := time.Now()
	return c.JSON(http.StatusOK, lo.Map(grants, func(g model.AccessGrant, _ int) grantResponse {
		return grantResponse{
			ID:         g.ID,
			TelegramID: g.TelegramID,
			AccessCode: g.AccessCode,
			ExpiresAt:  g.ExpiresAt,
			Expired:    g.Expired(now),
		}
	}))
}

// DeleteGrant removes a grant row, allowing the user to request a new code.
func (s *Server) DeleteGrant(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := s.store.DeleteGrant(c.Request().Context(), id); err != nil {
		return mapStoreErr(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func toContentResponse(item model.ContentItem) contentResponse {
	return contentResponse{
		ID:         item.ID,
		UserID:     item.UserID,
		StepNumber: item.StepNumber,
		Message:    item.Message,
		Content:    item.Content,
		CreatedAt:  item.CreatedAt,
	}
}
