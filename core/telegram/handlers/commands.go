package handlers

import (
	"errors"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/dipanalytics/contentbot/core/grant"
	"github.com/dipanalytics/contentbot/core/playback"
)

const helpText = "Available commands:\n\n" +
	"/add_content - add a new content step\n" +
	"/list_content - show all your content\n" +
	"/run - start or continue playback\n" +
	"/set_content_owner [id] - follow another user's content\n" +
	"/access [code] - redeem a private access code\n" +
	"/reset - restart playback from step 1\n" +
	"/private - request a private access code"

// Start registers the sender and greets them.
func (h *Handlers) Start(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Could not read your user information.")
	}

	ctx, cancel := handlerContext()
	defer cancel()

	user, err := h.store.UpsertUser(ctx, sender.ID, nameFields(sender))
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}

	return c.Send(fmt.Sprintf(
		"Hi, %s! I deliver step-by-step content.\n\n/help - commands\n/private - private access\n/run - start playback",
		user.DisplayName(),
	))
}

// Help lists the available commands.
func (h *Handlers) Help(c tele.Context) error {
	return c.Send(helpText)
}

// Private issues a private access code for the sender.
func (h *Handlers) Private(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Could not read your user information.")
	}

	ctx, cancel := handlerContext()
	defer cancel()

	if _, err := h.store.UpsertUser(ctx, sender.ID, nameFields(sender)); err != nil {
		return fmt.Errorf("private: %w", err)
	}

	g, err := h.grants.Issue(ctx, sender.ID)
	if err != nil {
		if errors.Is(err, grant.ErrGrantExists) {
			return c.Send("You already have private access.")
		}
		return fmt.Errorf("private: %w", err)
	}

	return c.Send(fmt.Sprintf("Private access created.\n\nCode: %s", g.AccessCode))
}

// Stats reports row totals; reachable by the configured bot admin only.
func (h *Handlers) Stats(c tele.Context) error {
	ctx, cancel := handlerContext()
	defer cancel()

	st, err := h.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	return c.Send(fmt.Sprintf("Users: %d\nContent items: %d\nAccess grants: %d", st.Users, st.Contents, st.Grants))
}

// Access redeems an access code and pins its owner's content for the sender.
func (h *Handlers) Access(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Could not read your user information.")
	}

	code := strings.TrimSpace(c.Message().Payload)
	if code == "" {
		return c.Send("Usage: /access [code]")
	}

	ctx, cancel := handlerContext()
	defer cancel()

	if _, err := h.store.UpsertUser(ctx, sender.ID, nameFields(sender)); err != nil {
		return fmt.Errorf("access: %w", err)
	}

	ownerID, err := h.grants.Resolve(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, grant.ErrNotFound):
			return c.Send("Unknown access code.")
		case errors.Is(err, grant.ErrGrantExpired):
			return c.Send("This access code has expired.")
		default:
			return fmt.Errorf("access: %w", err)
		}
	}

	if err := h.engine.SetOwner(ctx, sender.ID, ownerID); err != nil {
		if errors.Is(err, playback.ErrOwnerNotFound) {
			return c.Send("The code's owner no longer exists.")
		}
		return fmt.Errorf("access: %w", err)
	}

	return c.Send("Access granted. /run starts their content from step 1.")
}
