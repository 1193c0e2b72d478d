package handlers

import (
	"context"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/dipanalytics/contentbot/core/grant"
	"github.com/dipanalytics/contentbot/core/ingest"
	"github.com/dipanalytics/contentbot/core/playback"
	"github.com/dipanalytics/contentbot/core/store"
	coretelegram "github.com/dipanalytics/contentbot/core/telegram"
	"github.com/dipanalytics/contentbot/core/telegram/commands"
)

const handlerTimeout = 15 * time.Second

// MediaResolver reports whether a payload URL addresses an uploaded object and
// recovers its storage key.
type MediaResolver interface {
	ObjectKey(rawURL string) (string, bool)
}

// Handlers binds the bot surface to the domain services.
type Handlers struct {
	store  *store.Store
	grants *grant.Manager
	engine *playback.Engine
	ingest *ingest.Service
	media  MediaResolver
}

// New constructs the handler set.
func New(st *store.Store, grants *grant.Manager, engine *playback.Engine, ing *ingest.Service, media MediaResolver) *Handlers {
	return &Handlers{
		store:  st,
		grants: grants,
		engine: engine,
		ingest: ing,
		media:  media,
	}
}

// Register wires every command and fallback into the registry.
func (h *Handlers) Register(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Register and show the welcome message",
	})
	reg.RegisterCommand("/help", commands.Command{
		Handler:     h.Help,
		Description: "List available commands",
	})
	reg.RegisterCommand("/private", commands.Command{
		Handler:     h.Private,
		Description: "Request a private access code",
	})
	reg.RegisterCommand("/access", commands.Command{
		Handler:     h.Access,
		Description: "Redeem an access code",
	})
	reg.RegisterCommand("/run", commands.Command{
		Handler:     h.Run,
		Description: "Start or continue content playback",
		Aliases:     []string{"/next"},
	})
	reg.RegisterCommand("/set_content_owner", commands.Command{
		Handler:     h.SetContentOwner,
		Description: "Follow another user's content by id",
	})
	reg.RegisterCommand("/reset", commands.Command{
		Handler:     h.Reset,
		Description: "Restart playback from step 1",
	})
	reg.RegisterCommand("/add_content", commands.Command{
		Handler:     h.AddContent,
		Description: "Add a new content step",
	})
	reg.RegisterCommand("/list_content", commands.Command{
		Handler:     h.ListContent,
		Description: "Show all your content steps",
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     h.Stats,
		Description: "Show user and content totals",
		AdminOnly:   true,
		Hidden:      true,
	})

	reg.SetTextFallback(h.SubmitText)
	reg.SetPhotoFallback(h.SubmitPhoto)
}

func handlerContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

// nameFields extracts the optional display-name attributes from a Telegram user.
func nameFields(u *tele.User) store.NameFields {
	var names store.NameFields
	if u == nil {
		return names
	}
	if u.Username != "" {
		v := u.Username
		names.Username = &v
	}
	if u.FirstName != "" {
		v := u.FirstName
		names.FirstName = &v
	}
	if u.LastName != "" {
		v := u.LastName
		names.LastName = &v
	}
	return names
}
