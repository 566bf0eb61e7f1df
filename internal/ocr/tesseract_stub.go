//go:build !ocr

package ocr

import (
	"context"
	"errors"
)

// ErrTesseractUnavailable is returned by builds without the ocr tag
var ErrTesseractUnavailable = errors.New("tesseract support not compiled in (build with -tags ocr)")

// TesseractEngine is the placeholder used when libtesseract is not linked
type TesseractEngine struct {
	language string
}

// NewTesseractEngine creates a new Tesseract engine (unavailable in this build)
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{
		language: language,
	}
}

// Available reports false: this build has no OCR engine
func (t *TesseractEngine) Available() bool {
	return false
}

// Recognize always fails with ErrTesseractUnavailable
func (t *TesseractEngine) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	return nil, ErrTesseractUnavailable
}
