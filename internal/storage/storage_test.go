package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestInlineHostUpload(t *testing.T) {
	var h InlineHost

	url, err := h.Upload(context.Background(), []byte("hi"), "image/jpeg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if url != "data:image/jpeg;base64,aGk=" {
		t.Errorf("url = %q", url)
	}

	url, err = h.Upload(context.Background(), []byte("hi"), "")
	if err != nil || !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("default content type: url=%q err=%v", url, err)
	}

	if _, err := h.Upload(context.Background(), nil, "image/png"); err == nil {
		t.Error("Upload(nil) error = nil")
	}
}

func TestObjectName(t *testing.T) {
	now := time.Date(2026, time.March, 9, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		contentType string
		want        string
	}{
		{"image/webp", "canvas/2026/03/abc.webp"},
		{"image/jpeg", "canvas/2026/03/abc.jpg"},
		{"image/png", "canvas/2026/03/abc.png"},
		{"IMAGE/PNG", "canvas/2026/03/abc.png"},
		{"image/jpeg; charset=binary", "canvas/2026/03/abc.jpg"},
		{"application/json", "canvas/2026/03/abc.bin"},
		{"", "canvas/2026/03/abc.bin"},
	}
	for _, tt := range tests {
		if got := ObjectName(now, "abc", tt.contentType); got != tt.want {
			t.Errorf("ObjectName(%q) = %q, want %q", tt.contentType, got, tt.want)
		}
	}
}

func TestNewMinIOHostFromEnvNotConfigured(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "")
	os.Unsetenv("MINIO_ENDPOINT")

	if _, err := NewMinIOHostFromEnv(context.Background()); err != ErrNotConfigured {
		t.Errorf("error = %v, want ErrNotConfigured", err)
	}
}
