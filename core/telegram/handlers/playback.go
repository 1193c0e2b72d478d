package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/dipanalytics/contentbot/core/playback"
)

// Run advances the sender one step through the pinned owner's content.
func (h *Handlers) Run(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Could not read your user information.")
	}

	ctx, cancel := handlerContext()
	defer cancel()

	if _, err := h.store.UpsertUser(ctx, sender.ID, nameFields(sender)); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	res, err := h.engine.Advance(ctx, sender.ID)
	if err != nil {
		if errors.Is(err, playback.ErrOwnerNotFound) {
			return c.Send("The content owner no longer exists. Use /set_content_owner or /access to pick another.")
		}
		return fmt.Errorf("run: %w", err)
	}

	switch res.Outcome {
	case playback.OutcomeContent:
		item := res.Item
		if h.isUploadedMedia(item.Content) {
			photo := &tele.Photo{
				File:    tele.FromURL(item.Content),
				Caption: item.Message,
			}
			return c.Send(photo)
		}
		return c.Send(fmt.Sprintf("%s\n\n%s", item.Message, item.Content))

	case playback.OutcomeEmptyCatalog:
		return c.Send("No content here yet.")

	default:
		return c.Send("You've reached the end of the sequence. /run starts over from step 1.")
	}
}

// SetContentOwner pins another user's content by Telegram id.
func (h *Handlers) SetContentOwner(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Could not read your user information.")
	}

	payload := strings.TrimSpace(c.Message().Payload)
	ownerID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil || ownerID <= 0 {
		return c.Send("Usage: /set_content_owner [numeric user id]")
	}

	ctx, cancel := handlerContext()
	defer cancel()

	if err := h.engine.SetOwner(ctx, sender.ID, ownerID); err != nil {
		if errors.Is(err, playback.ErrOwnerNotFound) {
			return c.Send("No user with that id.")
		}
		return fmt.Errorf("set_content_owner: %w", err)
	}

	return c.Send("Content owner set. Playback restarts from step 1.")
}

// Reset moves the sender's playback pointer back to step 1.
func (h *Handlers) Reset(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Could not read your user information.")
	}

	ctx, cancel := handlerContext()
	defer cancel()

	if err := h.engine.Reset(ctx, sender.ID); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return c.Send("Progress reset. /run starts from step 1.")
}

// isUploadedMedia is true only for payloads that live in this deployment's
// object storage. Arbitrary text or foreign URLs are sent as plain messages.
func (h *Handlers) isUploadedMedia(content string) bool {
	if h.media == nil {
		return false
	}
	_, ok := h.media.ObjectKey(content)
	return ok
}
