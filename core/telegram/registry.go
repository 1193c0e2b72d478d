package telegram

import (
	"context"
	"sort"
	"strings"

	"github.com/dipanalytics/contentbot/core/logger"
	"github.com/dipanalytics/contentbot/core/telegram/commands"
	coremw "github.com/dipanalytics/contentbot/core/telegram/middleware"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// Registry holds bot commands and message fallbacks.
type Registry struct {
	commands      map[string]commands.Command
	textFallback  tele.HandlerFunc
	photoFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commands.Command),
	}
}

// RegisterCommand adds a new command.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	if r == nil || name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if name[0] != '/' {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.TG.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns a slice of tele.Command, optionally filtering out hidden and admin-only commands.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for cmd, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: cmd, Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// SetTextFallback sets a global fallback handler for non-command text messages.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// SetPhotoFallback sets a handler for photo messages.
func (r *Registry) SetPhotoFallback(h tele.HandlerFunc) {
	r.photoFallback = h
}

// PhotoFallback returns the current photo handler.
func (r *Registry) PhotoFallback() tele.HandlerFunc {
	return r.photoFallback
}

// SetupCommands binds registered commands and fallbacks to the bot and
// publishes the visible command menu. Admin-only commands are wrapped with the
// access check.
func SetupCommands(bot *tele.Bot, reg *Registry, admin coremw.AdminOptions) {
	for name, cmd := range reg.Commands() {
		h := coremw.WithAdminCheck(admin, cmd)
		bot.Handle(name, h)
		for _, alias := range cmd.Aliases {
			if !strings.HasPrefix(alias, "/") {
				alias = "/" + alias
			}
			bot.Handle(alias, h)
		}
	}

	if h := reg.TextFallback(); h != nil {
		bot.Handle(tele.OnText, h)
	}
	if h := reg.PhotoFallback(); h != nil {
		bot.Handle(tele.OnPhoto, h)
	}

	if err := bot.SetCommands(reg.ListCommands(true)); err != nil {
		logger.TG.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
