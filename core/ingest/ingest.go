package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dipanalytics/contentbot/core/logger"
	"github.com/dipanalytics/contentbot/core/model"
	"github.com/dipanalytics/contentbot/core/objstore"
	"github.com/dipanalytics/contentbot/core/store"
	"log/slog"
)

var (
	// ErrInvalidStep indicates the submitted step is outside the allowed range.
	ErrInvalidStep = errors.New("ingest: invalid step")
	// ErrUploadFailed indicates the object storage collaborator rejected the payload.
	ErrUploadFailed = errors.New("ingest: upload failed")
)

// Store is the persistence surface the ingestion path needs.
type Store interface {
	UpsertUser(ctx context.Context, telegramID int64, names store.NameFields) (*model.User, error)
	CreateContentItem(ctx context.Context, userID int64, step int, message, content string) (*model.ContentItem, error)
}

// Service validates and stores new content items for an owner's sequence.
type Service struct {
	store    Store
	uploader objstore.Uploader
	maxStep  int
}

// New builds the ingestion service. maxStep bounds accepted step numbers.
func New(st Store, uploader objstore.Uploader, maxStep int) *Service {
	return &Service{
		store:    st,
		uploader: uploader,
		maxStep:  maxStep,
	}
}

// MaxStep reports the configured upper step bound.
func (s *Service) MaxStep() int {
	return s.maxStep
}

// SubmitText stores a content item whose payload is plain text or a URL.
// The owner row is created on first submission. Duplicate (owner, step) pairs
// fail with store.ErrDuplicateStep and leave the existing row untouched.
func (s *Service) SubmitText(ctx context.Context, ownerTelegramID int64, names store.NameFields, step int, message, content string) (*model.ContentItem, error) {
	if step < 1 || step > s.maxStep {
		return nil, ErrInvalidStep
	}

	owner, err := s.store.UpsertUser(ctx, ownerTelegramID, names)
	if err != nil {
		return nil, fmt.Errorf("upsert owner: %w", err)
	}

	item, err := s.store.CreateContentItem(ctx, owner.ID, step, message, content)
	if err != nil {
		return nil, err
	}

	logger.SVCIngest.Info("content stored",
		slog.String("event", "ingest.submit"),
		slog.Int64("user_id", ownerTelegramID),
		slog.Int("step", step),
	)
	return item, nil
}

// SubmitPhoto uploads the photo bytes to object storage and stores a content
// item whose payload is the resulting URL.
func (s *Service) SubmitPhoto(ctx context.Context, ownerTelegramID int64, names store.NameFields, step int, message string, photo []byte, contentType string) (*model.ContentItem, error) {
	if step < 1 || step > s.maxStep {
		return nil, ErrInvalidStep
	}
	if s.uploader == nil {
		return nil, ErrUploadFailed
	}

	objectName := fmt.Sprintf("content_%d/%s", ownerTelegramID, uuid.NewString())
	url, err := s.uploader.Upload(ctx, photo, objectName, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return s.SubmitText(ctx, ownerTelegramID, names, step, message, url)
}
