//go:build ocr

package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/canvastutor/tutor-service/internal/models"
)

// lstmOnlyConfig selects the neural-net engine. tessedit_ocr_engine_mode is
// init-only, so it must reach Tesseract as a config file rather than through
// SetVariable, which runs after Init.
const lstmOnlyConfig = "tessedit_ocr_engine_mode 1\n"

var (
	lstmConfigOnce sync.Once
	lstmConfigPath string
	lstmConfigErr  error
)

// lstmConfigFile writes the engine-mode config once per process
func lstmConfigFile() (string, error) {
	lstmConfigOnce.Do(func() {
		f, err := os.CreateTemp("", "tutor-ocr-*.cfg")
		if err != nil {
			lstmConfigErr = fmt.Errorf("create tesseract config: %w", err)
			return
		}
		defer f.Close()
		if _, err := f.WriteString(lstmOnlyConfig); err != nil {
			lstmConfigErr = fmt.Errorf("write tesseract config: %w", err)
			return
		}
		lstmConfigPath = f.Name()
	})
	return lstmConfigPath, lstmConfigErr
}

// TesseractEngine runs Tesseract through gosseract, configured for a single
// block of handwritten math with the LSTM engine only.
type TesseractEngine struct {
	language string
}

// NewTesseractEngine creates a new Tesseract engine
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = "eng"
	}
	return &TesseractEngine{
		language: language,
	}
}

// Available reports true: this build links libtesseract
func (t *TesseractEngine) Available() bool {
	return true
}

// Recognize performs OCR on preprocessed image bytes
func (t *TesseractEngine) Recognize(ctx context.Context, image []byte) (*Recognition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	configPath, err := lstmConfigFile()
	if err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetConfigFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to set engine config: %w", err)
	}
	if err := client.SetLanguage(t.language); err != nil {
		return nil, fmt.Errorf("failed to set OCR language %q: %w", t.language, err)
	}
	if err := client.SetWhitelist(CharWhitelist); err != nil {
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(image); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("failed to read word boxes: %w", err)
	}
	words := make([]models.OCRWord, 0, len(boxes))
	for _, b := range boxes {
		w := strings.TrimSpace(b.Word)
		if w == "" {
			continue
		}
		words = append(words, models.OCRWord{Text: w, Confidence: b.Confidence})
	}

	// With PSM_SINGLE_BLOCK the block score is the engine's aggregate
	blocks, err := client.GetBoundingBoxes(gosseract.RIL_BLOCK)
	if err != nil {
		return nil, fmt.Errorf("failed to read block boxes: %w", err)
	}
	var confidence float64
	if len(blocks) > 0 {
		for _, b := range blocks {
			confidence += b.Confidence
		}
		confidence /= float64(len(blocks))
	}

	return &Recognition{
		Text:       text,
		Confidence: confidence,
		Words:      words,
	}, nil
}
