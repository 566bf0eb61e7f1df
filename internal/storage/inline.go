package storage

import (
	"context"
	"encoding/base64"
	"errors"
)

// InlineHost encodes images as data URLs. Used when no object storage is
// configured; OpenAI-compatible vision models and Gemini both accept them.
type InlineHost struct{}

// Name returns the host label
func (InlineHost) Name() string {
	return "inline"
}

// Upload returns a data: URL carrying the image bytes
func (InlineHost) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty image")
	}
	if contentType == "" {
		contentType = "image/png"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
