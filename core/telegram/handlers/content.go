package handlers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/dipanalytics/contentbot/core/ingest"
	"github.com/dipanalytics/contentbot/core/store"
)

// AddContent explains the expected submission format.
func (h *Handlers) AddContent(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Could not read your user information.")
	}

	ctx, cancel := handlerContext()
	defer cancel()

	if _, err := h.store.UpsertUser(ctx, sender.ID, nameFields(sender)); err != nil {
		return fmt.Errorf("add_content: %w", err)
	}
	return c.Send(submissionPrompt)
}

// ListContent shows every step the sender owns, ordered by step number.
func (h *Handlers) ListContent(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Could not read your user information.")
	}

	ctx, cancel := handlerContext()
	defer cancel()

	if _, err := h.store.UpsertUser(ctx, sender.ID, nameFields(sender)); err != nil {
		return fmt.Errorf("list_content: %w", err)
	}

	items, err := h.store.ListContentByOwner(ctx, sender.ID)
	if err != nil {
		return fmt.Errorf("list_content: %w", err)
	}
	if len(items) == 0 {
		return c.Send("You have no content yet. /add_content to get started.")
	}

	var b strings.Builder
	b.WriteString("Your content:\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "Step %d:\nContent: %s\nMessage: %s\n\n", item.StepNumber, item.Content, item.Message)
	}
	return c.Send(b.String())
}

// SubmitText handles plain text messages; non-submission text gets a hint.
func (h *Handlers) SubmitText(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Could not read your user information.")
	}

	text := c.Text()
	if !isSubmission(text) {
		return c.Send("I didn't understand that. /help lists the commands.")
	}

	sub, err := parseSubmission(text)
	if err != nil {
		return c.Send("Wrong format.\n\n" + submissionPrompt)
	}

	ctx, cancel := handlerContext()
	defer cancel()

	_, err = h.ingest.SubmitText(ctx, sender.ID, nameFields(sender), sub.Step, sub.Message, sub.Content)
	return h.replySubmitted(c, sub.Step, err)
}

// SubmitPhoto handles photo uploads whose caption carries the submission format.
func (h *Handlers) SubmitPhoto(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return c.Send("Could not read your user information.")
	}

	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return nil
	}

	caption := msg.Caption
	if !isSubmission(caption) {
		return c.Send("Add a caption:\nStep: [number]\nMessage: [your message]")
	}

	sub, err := parsePhotoSubmission(caption)
	if err != nil {
		return c.Send("Wrong caption format.\n\nStep: [number]\nMessage: [your message]")
	}

	rc, err := c.Bot().File(&msg.Photo.File)
	if err != nil {
		return fmt.Errorf("submit photo: download: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("submit photo: read: %w", err)
	}

	ctx, cancel := handlerContext()
	defer cancel()

	_, err = h.ingest.SubmitPhoto(ctx, sender.ID, nameFields(sender), sub.Step, sub.Message, data, "image/jpeg")
	return h.replySubmitted(c, sub.Step, err)
}

func (h *Handlers) replySubmitted(c tele.Context, step int, err error) error {
	switch {
	case err == nil:
		return c.Send("Content added successfully!")
	case errors.Is(err, ingest.ErrInvalidStep):
		return c.Send(fmt.Sprintf("Step number must be between 1 and %d.", h.ingest.MaxStep()))
	case errors.Is(err, store.ErrDuplicateStep):
		return c.Send(fmt.Sprintf("You already have content at step %d.", step))
	case errors.Is(err, ingest.ErrUploadFailed):
		return c.Send("Could not store the file. Please try again later.")
	default:
		return fmt.Errorf("submit content: %w", err)
	}
}
