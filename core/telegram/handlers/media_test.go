package handlers

import (
	"strings"
	"testing"
)

type prefixResolver struct {
	base string
}

func (r prefixResolver) ObjectKey(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, r.base+"/") {
		return "", false
	}
	return strings.TrimPrefix(rawURL, r.base+"/"), true
}

func TestIsUploadedMedia(t *testing.T) {
	h := New(nil, nil, nil, nil, prefixResolver{base: "https://cdn.example.com/media"})

	if !h.isUploadedMedia("https://cdn.example.com/media/content_1/pic.jpg") {
		t.Fatal("uploaded object not recognized")
	}
	// A text payload that merely looks like a URL stays a text message.
	if h.isUploadedMedia("https://example.org/article") {
		t.Fatal("foreign url treated as uploaded media")
	}
	if h.isUploadedMedia("plain text payload") {
		t.Fatal("text treated as uploaded media")
	}
}

func TestIsUploadedMediaWithoutResolver(t *testing.T) {
	h := New(nil, nil, nil, nil, nil)
	if h.isUploadedMedia("https://cdn.example.com/media/x") {
		t.Fatal("nil resolver must never send photos")
	}
}
