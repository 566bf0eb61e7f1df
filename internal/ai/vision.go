package ai

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	tutorerr "github.com/canvastutor/tutor-service/internal/errors"
	"github.com/canvastutor/tutor-service/internal/models"
)

// VisionConfidence is reported for every successful vision analysis. It marks
// the path as succeeded; it is not a measured score.
const VisionConfidence = 95.0

// ImageHost turns raw image bytes into a URL a multimodal model can fetch
type ImageHost interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	Name() string
}

// VisionAnalyzer asks a multimodal model to transcribe a canvas image
type VisionAnalyzer struct {
	host     ImageHost
	provider ChatProvider
}

// NewVisionAnalyzer creates a vision analyzer. A nil provider leaves it
// unconfigured and every Analyze call reports an error result.
func NewVisionAnalyzer(host ImageHost, provider ChatProvider) *VisionAnalyzer {
	return &VisionAnalyzer{
		host:     host,
		provider: provider,
	}
}

// Configured reports whether a vision model is available
func (v *VisionAnalyzer) Configured() bool {
	return v.provider != nil && v.host != nil
}

// Analyze uploads the image and asks the model for a LaTeX transcription.
// Failures are reported in the result, never returned.
func (v *VisionAnalyzer) Analyze(ctx context.Context, image []byte, mimeType string) models.VisionResult {
	if !v.Configured() {
		return models.VisionResult{Error: "vision model not configured"}
	}
	if len(image) == 0 {
		return models.VisionResult{Error: "no image data"}
	}

	url, err := v.host.Upload(ctx, image, mimeType)
	if err != nil {
		uerr := tutorerr.NewUploadError(v.host.Name(), err)
		log.Warn().Err(err).Str("host", v.host.Name()).Msg("canvas upload failed")
		return models.VisionResult{Error: uerr.Error()}
	}

	turn := models.ChatTurn{
		Role: models.RoleUser,
		Parts: []models.ContentPart{
			{Type: models.PartTypeText, Text: visionInstructions},
			{
				Type:     models.PartTypeImageURL,
				ImageURL: &models.ImageURL{URL: url},
				Data:     image,
				MIMEType: mimeType,
			},
		},
	}

	analysis, err := v.provider.Complete(ctx, []models.ChatTurn{turn})
	if err != nil {
		log.Warn().Err(err).Str("provider", v.provider.Name()).Msg("vision analysis failed")
		return models.VisionResult{Error: err.Error()}
	}

	analysis = strings.TrimSpace(analysis)
	if analysis == "" {
		return models.VisionResult{Error: "vision model returned an empty analysis"}
	}

	log.Debug().Str("provider", v.provider.Name()).Int("chars", len(analysis)).Msg("vision analysis complete")
	return models.VisionResult{
		Analysis:   analysis,
		HasContent: true,
		Confidence: VisionConfidence,
	}
}
