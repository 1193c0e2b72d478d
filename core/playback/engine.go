package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dipanalytics/contentbot/core/logger"
	"github.com/dipanalytics/contentbot/core/model"
	"github.com/dipanalytics/contentbot/core/store"
	"log/slog"
)

// ErrOwnerNotFound indicates the pinned or requested content owner does not resolve to a user.
var ErrOwnerNotFound = errors.New("playback: owner not found")

// Outcome classifies the result of one Advance call.
type Outcome int

const (
	// OutcomeContent means the item at the current step was served and the step advanced.
	OutcomeContent Outcome = iota
	// OutcomeEmptyCatalog means the owner has no content at step 1; the pointer stays put.
	OutcomeEmptyCatalog
	// OutcomeSequenceComplete means the sequence is exhausted; the pointer wrapped to 1.
	OutcomeSequenceComplete
)

// Result describes one Advance invocation.
type Result struct {
	Outcome Outcome
	// Item is set only for OutcomeContent.
	Item *model.ContentItem
	// Owner is the effective content owner's Telegram id.
	Owner int64
	// Step is the step that was looked up.
	Step int
}

// ContentSource is the relational surface the engine reads from.
type ContentSource interface {
	GetContentByOwnerStep(ctx context.Context, ownerTelegramID int64, step int) (*model.ContentItem, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*model.User, error)
}

// Engine drives per-viewer sequential playback over an owner's content set.
// All operations for one viewer are serialized on a per-viewer mutex, so
// retried duplicate updates cannot skip or double-serve a step.
type Engine struct {
	src     ContentSource
	tracker Tracker

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewEngine wires the engine to its content source and progress tracker.
func NewEngine(src ContentSource, tracker Tracker) *Engine {
	return &Engine{
		src:     src,
		tracker: tracker,
		locks:   make(map[int64]*sync.Mutex),
	}
}

func (e *Engine) viewerLock(viewerID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[viewerID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[viewerID] = l
	}
	return l
}

// Advance serves the content at the viewer's current step and moves the
// pointer forward. The step only advances after the item is resolved, never
// speculatively. A miss at step 1 reports an empty catalog; a miss past step 1
// reports completion and wraps the pointer back to 1 for replay.
//
// The first call with no pinned owner pins the viewer as their own owner.
func (e *Engine) Advance(ctx context.Context, viewerID int64) (*Result, error) {
	l := e.viewerLock(viewerID)
	l.Lock()
	defer l.Unlock()

	owner, pinned, err := e.tracker.Owner(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if pinned {
		if _, err := e.src.GetUserByTelegramID(ctx, owner); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrOwnerNotFound
			}
			return nil, fmt.Errorf("resolve owner: %w", err)
		}
	} else {
		owner = viewerID
		if err := e.tracker.SetOwner(ctx, viewerID, owner); err != nil {
			return nil, err
		}
	}

	step, err := e.tracker.Step(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	item, err := e.src.GetContentByOwnerStep(ctx, owner, step)
	switch {
	case err == nil:
		if err := e.tracker.SetStep(ctx, viewerID, step+1); err != nil {
			return nil, err
		}
		logger.SVCPlayback.Debug("step served",
			slog.String("event", "playback.advance"),
			slog.Int64("user_id", viewerID),
			slog.Int64("owner_id", owner),
			slog.Int("step", step),
		)
		return &Result{Outcome: OutcomeContent, Item: item, Owner: owner, Step: step}, nil

	case errors.Is(err, store.ErrNotFound) && step == 1:
		return &Result{Outcome: OutcomeEmptyCatalog, Owner: owner, Step: step}, nil

	case errors.Is(err, store.ErrNotFound):
		if err := e.tracker.SetStep(ctx, viewerID, 1); err != nil {
			return nil, err
		}
		logger.SVCPlayback.Debug("sequence complete",
			slog.String("event", "playback.complete"),
			slog.Int64("user_id", viewerID),
			slog.Int64("owner_id", owner),
			slog.Int("step", step),
		)
		return &Result{Outcome: OutcomeSequenceComplete, Owner: owner, Step: step}, nil

	default:
		return nil, fmt.Errorf("lookup step %d: %w", step, err)
	}
}

// SetOwner pins another user's content set for the viewer and restarts
// progress from step 1. The target owner must exist.
func (e *Engine) SetOwner(ctx context.Context, viewerID, ownerTelegramID int64) error {
	l := e.viewerLock(viewerID)
	l.Lock()
	defer l.Unlock()

	if _, err := e.src.GetUserByTelegramID(ctx, ownerTelegramID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("resolve owner: %w", err)
	}

	if err := e.tracker.SetOwner(ctx, viewerID, ownerTelegramID); err != nil {
		return err
	}
	if err := e.tracker.SetStep(ctx, viewerID, 1); err != nil {
		return err
	}

	logger.SVCPlayback.Info("owner pinned",
		slog.String("event", "playback.set_owner"),
		slog.Int64("user_id", viewerID),
		slog.Int64("owner_id", ownerTelegramID),
	)
	return nil
}

// Reset moves the viewer's pointer back to step 1. The pinned owner is kept.
func (e *Engine) Reset(ctx context.Context, viewerID int64) error {
	l := e.viewerLock(viewerID)
	l.Lock()
	defer l.Unlock()

	return e.tracker.SetStep(ctx, viewerID, 1)
}
