package middleware

import (
	"testing"

	tele "gopkg.in/telebot.v4"

	"github.com/dipanalytics/contentbot/core/telegram/commands"
)

type fakeContext struct {
	tele.Context
	sender *tele.User
}

func (f *fakeContext) Sender() *tele.User { return f.sender }

func TestWithAdminCheckBlocksNonAdmin(t *testing.T) {
	var handled, rejected bool
	cmd := commands.Command{
		AdminOnly: true,
		Handler:   func(tele.Context) error { handled = true; return nil },
	}
	h := WithAdminCheck(AdminOptions{
		AdminID:  42,
		OnReject: func(tele.Context) error { rejected = true; return nil },
	}, cmd)

	if err := h(&fakeContext{sender: &tele.User{ID: 7}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if handled {
		t.Fatal("handler ran for non-admin sender")
	}
	if !rejected {
		t.Fatal("reject handler was not called")
	}
}

func TestWithAdminCheckAllowsAdmin(t *testing.T) {
	var handled bool
	cmd := commands.Command{
		AdminOnly: true,
		Handler:   func(tele.Context) error { handled = true; return nil },
	}
	h := WithAdminCheck(AdminOptions{AdminID: 42}, cmd)

	if err := h(&fakeContext{sender: &tele.User{ID: 42}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handled {
		t.Fatal("handler did not run for the admin")
	}
}

func TestWithAdminCheckNoGateWithoutAdminID(t *testing.T) {
	var handled bool
	cmd := commands.Command{
		AdminOnly: true,
		Handler:   func(tele.Context) error { handled = true; return nil },
	}
	h := WithAdminCheck(AdminOptions{}, cmd)

	if err := h(&fakeContext{sender: &tele.User{ID: 7}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handled {
		t.Fatal("handler should run when no admin id is configured")
	}
}

func TestWithAdminCheckPassesThroughRegularCommands(t *testing.T) {
	var handled bool
	cmd := commands.Command{
		Handler: func(tele.Context) error { handled = true; return nil },
	}
	h := WithAdminCheck(AdminOptions{AdminID: 42}, cmd)

	if err := h(&fakeContext{sender: &tele.User{ID: 7}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handled {
		t.Fatal("regular command must not be gated")
	}
}
