package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/dipanalytics/contentbot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegisterCommandValidation(t *testing.T) {
	reg := NewRegistry()

	reg.RegisterCommand("", commands.Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("no_slash", commands.Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("/nohandler", commands.Command{Description: "x"})
	reg.RegisterCommand("/nodesc", commands.Command{Handler: noop})
	if len(reg.Commands()) != 0 {
		t.Fatalf("invalid registrations accepted: %d", len(reg.Commands()))
	}

	reg.RegisterCommand("/ok", commands.Command{Handler: noop, Description: "fine"})
	reg.RegisterCommand("/ok", commands.Command{Handler: noop, Description: "duplicate"})
	if got := len(reg.Commands()); got != 1 {
		t.Fatalf("expected 1 command, got %d", got)
	}
	if reg.Commands()["/ok"].Description != "fine" {
		t.Fatal("duplicate registration overwrote the original")
	}
}

func TestListCommandsHidesAdminAndHidden(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/run", commands.Command{Handler: noop, Description: "playback", Aliases: []string{"/next"}})
	reg.RegisterCommand("/stats", commands.Command{Handler: noop, Description: "totals", AdminOnly: true, Hidden: true})

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "/run" {
		t.Fatalf("visible menu = %+v", visible)
	}

	all := reg.ListCommands(false)
	if len(all) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(all))
	}
}
