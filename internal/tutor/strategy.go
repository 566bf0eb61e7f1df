package tutor

import (
	"context"

	"github.com/canvastutor/tutor-service/internal/models"
)

const (
	SourceVision = "vision"
	SourceOCR    = "ocr"
)

// extraction is the common shape of every strategy's outcome
type extraction struct {
	source           string
	text             string
	confidence       float64
	confidenceSource string
	hasContent       bool
	err              string
}

func (e extraction) reason() string {
	if e.err != "" {
		return e.err
	}
	return "no content"
}

// strategy derives text from a canvas image
type strategy struct {
	name string
	run  func(ctx context.Context, req CanvasRequest) extraction
}

// strategies lists extraction strategies in the order they are tried
func (o *Orchestrator) strategies() []strategy {
	var out []strategy
	if o.vision != nil {
		out = append(out, strategy{name: SourceVision, run: o.runVision})
	}
	if o.ocr != nil {
		out = append(out, strategy{name: SourceOCR, run: o.runOCR})
	}
	return out
}

func (o *Orchestrator) runVision(ctx context.Context, req CanvasRequest) extraction {
	r := o.vision.Analyze(ctx, req.Image, req.MIMEType)
	return extraction{
		source:           SourceVision,
		text:             r.Analysis,
		confidence:       r.Confidence,
		confidenceSource: models.ConfidenceHeuristic,
		hasContent:       r.HasContent,
		err:              r.Error,
	}
}

func (o *Orchestrator) runOCR(ctx context.Context, req CanvasRequest) extraction {
	r := o.ocr.ExtractImage(ctx, req.Image)
	return extraction{
		source:           SourceOCR,
		text:             r.Text,
		confidence:       r.Confidence,
		confidenceSource: models.ConfidenceMeasured,
		hasContent:       r.HasContent,
		err:              r.Error,
	}
}
