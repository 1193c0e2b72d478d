package playback

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Tracker stores per-viewer playback progress: the current step and the
// optional content-owner redirection. It is advisory state; losing it resets
// a viewer's progress but corrupts nothing.
type Tracker interface {
	// Step returns the viewer's current step, 1 when absent.
	Step(ctx context.Context, viewerID int64) (int, error)
	SetStep(ctx context.Context, viewerID int64, step int) error
	// Owner returns the pinned content owner and whether one is set.
	Owner(ctx context.Context, viewerID int64) (int64, bool, error)
	SetOwner(ctx context.Context, viewerID, ownerID int64) error
}

const (
	stepKeyPrefix  = "user_step:"
	ownerKeyPrefix = "user_content_owner:"
)

// RedisTracker implements Tracker on a Redis key-value store. Each key is an
// independent write; no multi-key atomicity is provided.
type RedisTracker struct {
	client *redis.Client
}

// NewRedisTracker wraps a connected Redis client.
func NewRedisTracker(client *redis.Client) *RedisTracker {
	return &RedisTracker{client: client}
}

func stepKey(viewerID int64) string {
	return stepKeyPrefix + strconv.FormatInt(viewerID, 10)
}

func ownerKey(viewerID int64) string {
	return ownerKeyPrefix + strconv.FormatInt(viewerID, 10)
}

// Step returns the viewer's current step, defaulting to 1 when unset.
func (t *RedisTracker) Step(ctx context.Context, viewerID int64) (int, error) {
	val, err := t.client.Get(ctx, stepKey(viewerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 1, nil
		}
		return 0, fmt.Errorf("tracker: get step: %w", err)
	}
	step, err := strconv.Atoi(val)
	if err != nil || step < 1 {
		return 1, nil
	}
	return step, nil
}

// SetStep overwrites the viewer's current step.
func (t *RedisTracker) SetStep(ctx context.Context, viewerID int64, step int) error {
	if err := t.client.Set(ctx, stepKey(viewerID), step, 0).Err(); err != nil {
		return fmt.Errorf("tracker: set step: %w", err)
	}
	return nil
}

// Owner returns the pinned content owner for the viewer.
func (t *RedisTracker) Owner(ctx context.Context, viewerID int64) (int64, bool, error) {
	val, err := t.client.Get(ctx, ownerKey(viewerID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("tracker: get owner: %w", err)
	}
	ownerID, err := strconv.ParseInt(val, 10, 64)
	if err != nil || ownerID == 0 {
		return 0, false, nil
	}
	return ownerID, true, nil
}

// SetOwner pins the content owner for the viewer.
func (t *RedisTracker) SetOwner(ctx context.Context, viewerID, ownerID int64) error {
	if err := t.client.Set(ctx, ownerKey(viewerID), ownerID, 0).Err(); err != nil {
		return fmt.Errorf("tracker: set owner: %w", err)
	}
	return nil
}
