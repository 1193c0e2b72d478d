package handlers

import (
	"errors"
	"testing"
)

func TestParseSubmission(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		want    submission
		wantErr bool
	}{
		{
			name: "ok",
			text: "Step: 3\nContent: https://example.com/a.png\nMessage: hello",
			want: submission{Step: 3, Content: "https://example.com/a.png", Message: "hello"},
		},
		{
			name: "surrounding whitespace",
			text: "  Step: 1\nContent: c\nMessage: m  ",
			want: submission{Step: 1, Content: "c", Message: "m"},
		},
		{
			name:    "missing content line",
			text:    "Step: 3\nMessage: hello",
			wantErr: true,
		},
		{
			name:    "wrong line order",
			text:    "Content: c\nStep: 3\nMessage: m",
			wantErr: true,
		},
		{
			name:    "non-numeric step",
			text:    "Step: three\nContent: c\nMessage: m",
			wantErr: true,
		},
		{
			name:    "extra lines",
			text:    "Step: 3\nContent: c\nMessage: m\nExtra: x",
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseSubmission(tc.text)
			if tc.wantErr {
				if !errors.Is(err, errBadFormat) {
					t.Fatalf("expected errBadFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestParsePhotoSubmission(t *testing.T) {
	got, err := parsePhotoSubmission("Step: 7\nMessage: look at this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Step != 7 || got.Message != "look at this" {
		t.Fatalf("got %+v", got)
	}

	if _, err := parsePhotoSubmission("Step: 7"); !errors.Is(err, errBadFormat) {
		t.Fatalf("expected errBadFormat, got %v", err)
	}
	if _, err := parsePhotoSubmission("Step: x\nMessage: m"); !errors.Is(err, errBadFormat) {
		t.Fatalf("expected errBadFormat, got %v", err)
	}
}

func TestIsSubmission(t *testing.T) {
	if !isSubmission("Step: 1\nContent: c\nMessage: m") {
		t.Fatal("expected submission")
	}
	if isSubmission("/help") {
		t.Fatal("command is not a submission")
	}
	if isSubmission("hello there") {
		t.Fatal("chatter is not a submission")
	}
}
