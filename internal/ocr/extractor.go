package ocr

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/canvastutor/tutor-service/internal/models"
)

// CharWhitelist restricts recognition to math notation and basic prose
const CharWhitelist = "0123456789" +
	"abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"+-=()[]{}/*^√∫∑∏" +
	"αβγδεθλμπσφω" +
	".,:;!?'\" <>"

// Words under this confidence are reported as low quality in diagnostics
const lowWordConfidence = 60.0

// Recognition is the raw output of an OCR engine
type Recognition struct {
	Text       string
	Confidence float64
	Words      []models.OCRWord
}

// Engine recognizes text in a preprocessed image
type Engine interface {
	Recognize(ctx context.Context, image []byte) (*Recognition, error)
	Available() bool
}

// Extractor runs preprocessing, recognition and cleaning. It never returns
// an error: failures are reported in OCRResult.Error with HasContent false.
type Extractor struct {
	preprocessor *Preprocessor
	engine       Engine
}

// NewExtractor creates a new OCR extractor
func NewExtractor(preprocessor *Preprocessor, engine Engine) *Extractor {
	if preprocessor == nil {
		preprocessor = NewPreprocessor()
	}
	return &Extractor{
		preprocessor: preprocessor,
		engine:       engine,
	}
}

// Available reports whether the underlying engine can run
func (x *Extractor) Available() bool {
	return x.engine != nil && x.engine.Available()
}

// ExtractImage preprocesses raw image bytes and extracts text from them
func (x *Extractor) ExtractImage(ctx context.Context, raw []byte) models.OCRResult {
	img, err := x.preprocessor.Preprocess(raw)
	if err != nil {
		log.Warn().Str("component", "ocr").Err(err).Msg("preprocessing failed")
		return models.OCRResult{Error: err.Error()}
	}
	return x.Extract(ctx, img)
}

// Extract recognizes and cleans text in an already preprocessed image
func (x *Extractor) Extract(ctx context.Context, img *PreprocessedImage) (result models.OCRResult) {
	defer func() {
		if r := recover(); r != nil {
			result = models.OCRResult{Error: fmt.Sprintf("ocr engine panic: %v", r)}
		}
	}()

	if x.engine == nil {
		return models.OCRResult{Error: "ocr engine not configured"}
	}
	if img == nil || len(img.Data) == 0 {
		return models.OCRResult{Error: "no image data"}
	}

	start := time.Now()
	rec, err := x.engine.Recognize(ctx, img.Data)
	if err != nil {
		log.Warn().Str("component", "ocr").Err(err).Msg("recognition failed")
		return models.OCRResult{Error: err.Error()}
	}

	cleaned := Clean(rec.Text)

	low := 0
	for _, w := range rec.Words {
		if w.Confidence < lowWordConfidence {
			low++
		}
	}
	log.Debug().
		Str("component", "ocr").
		Dur("duration", time.Since(start)).
		Float64("confidence", rec.Confidence).
		Int("words", len(rec.Words)).
		Int("low_confidence_words", low).
		Int("raw_len", len(rec.Text)).
		Int("clean_len", len(cleaned)).
		Msg("ocr complete")

	return models.OCRResult{
		Text:       cleaned,
		RawText:    rec.Text,
		Confidence: rec.Confidence,
		HasContent: cleaned != "",
		Words:      rec.Words,
	}
}
