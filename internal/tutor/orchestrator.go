package tutor

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/canvastutor/tutor-service/internal/ai"
	tutorerr "github.com/canvastutor/tutor-service/internal/errors"
	"github.com/canvastutor/tutor-service/internal/models"
	"github.com/canvastutor/tutor-service/internal/ocr"
	"github.com/canvastutor/tutor-service/internal/personality"
)

const (
	DefaultAnalysisType = "general"
	AudioFormatMP3      = "mp3"
)

// State is a stage of a canvas analysis
type State string

const (
	StateAwaitingInput  State = "awaiting_input"
	StateAnalyzing      State = "analyzing"
	StateAnalysisReady  State = "analysis_ready"
	StateAnalysisFailed State = "analysis_failed"
	StateGenerating     State = "generating"
	StateResponding     State = "responding"
)

// VisionAnalyzer interprets a canvas image with a multimodal model
type VisionAnalyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) models.VisionResult
}

// TextExtractor runs local OCR on a raw image
type TextExtractor interface {
	ExtractImage(ctx context.Context, raw []byte) models.OCRResult
}

// Generator produces the tutor's reply
type Generator interface {
	Generate(ctx context.Context, turns []models.ChatTurn, p personality.Config, mode ai.PromptMode) (string, error)
}

// Synthesizer turns a reply into speech
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, p personality.Config) ([]byte, error)
}

var (
	_ VisionAnalyzer = (*ai.VisionAnalyzer)(nil)
	_ TextExtractor  = (*ocr.Extractor)(nil)
	_ Generator      = (*ai.ResponseGenerator)(nil)
)

// CanvasRequest is one canvas analysis submission
type CanvasRequest struct {
	Image         []byte
	MIMEType      string
	Personality   string
	Description   string
	ExtractedText string
	AnalysisType  string
	TriggerReason string
	IncludeVoice  bool
}

// Orchestrator runs the canvas analysis and chat flows
type Orchestrator struct {
	personalities *personality.Table
	vision        VisionAnalyzer
	ocr           TextExtractor
	generator     Generator
	voice         Synthesizer
	now           func() time.Time
}

// Option customizes the orchestrator
type Option func(*Orchestrator)

// WithVision sets the primary extraction strategy
func WithVision(v VisionAnalyzer) Option {
	return func(o *Orchestrator) {
		o.vision = v
	}
}

// WithOCRFallback adds local OCR as the strategy tried after vision
func WithOCRFallback(x TextExtractor) Option {
	return func(o *Orchestrator) {
		o.ocr = x
	}
}

// WithVoice enables speech synthesis of replies
func WithVoice(s Synthesizer) Option {
	return func(o *Orchestrator) {
		o.voice = s
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an orchestrator
func New(personalities *personality.Table, generator Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		personalities: personalities,
		generator:     generator,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Personalities returns the persona table
func (o *Orchestrator) Personalities() *personality.Table {
	return o.personalities
}

// flow tracks one request's state and logs every transition
type flow struct {
	state  State
	logger zerolog.Logger
}

func (f *flow) to(next State) {
	f.logger.Debug().Str("from", string(f.state)).Str("to", string(next)).Msg("state transition")
	f.state = next
}

// Analyze derives content from the canvas, asks the tutor for a reply and
// assembles the response.
func (o *Orchestrator) Analyze(ctx context.Context, req CanvasRequest) (*models.CanvasAnalysisResponse, error) {
	f := &flow{
		state: StateAwaitingInput,
		logger: log.With().
			Str("component", "orchestrator").
			Str("trigger", req.TriggerReason).
			Logger(),
	}

	hasImage := len(req.Image) > 0
	description := strings.TrimSpace(req.Description)
	callerText := strings.TrimSpace(req.ExtractedText)

	if !hasImage && description == "" && callerText == "" {
		return nil, tutorerr.NewInvalidInputError("an image, description or extractedText is required")
	}

	p, ok := o.personalities.Resolve(req.Personality)
	if !ok {
		return nil, tutorerr.NewUnknownPersonalityError(req.Personality)
	}

	var found, last *extraction
	var reasons []string
	if hasImage {
		f.to(StateAnalyzing)
		strategies := o.strategies()
		if len(strategies) == 0 {
			reasons = append(reasons, "no extraction strategy configured")
		}
		for _, s := range strategies {
			ext := s.run(ctx, req)
			last = &ext
			if ext.hasContent {
				found = &ext
				break
			}
			reasons = append(reasons, s.name+": "+ext.reason())
			f.logger.Info().Str("strategy", s.name).Str("error", ext.err).Msg("extraction strategy yielded no content")
		}
	}

	if found == nil && description == "" && callerText == "" {
		f.to(StateAnalysisFailed)
		return nil, tutorerr.NewNoUsableContentError(reasons)
	}
	f.to(StateAnalysisReady)

	turns := []models.ChatTurn{
		{Role: models.RoleSystem, Content: p.SystemPrompt},
		{Role: models.RoleUser, Content: buildCanvasPrompt(found, description, callerText, req)},
	}

	f.to(StateGenerating)
	reply, err := o.generator.Generate(ctx, turns, p, ai.PromptModePrecomposed)
	if err != nil {
		f.logger.Error().Err(err).Msg("reply generation failed")
		return nil, err
	}

	f.to(StateResponding)
	resp := &models.CanvasAnalysisResponse{
		Analysis:      reply,
		Personality:   p.Key,
		Timestamp:     o.timestamp(),
		ExtractedText: callerText,
		AnalysisType:  strings.TrimSpace(req.AnalysisType),
	}
	if resp.ExtractedText == "" && found != nil {
		resp.ExtractedText = found.text
	}
	if resp.AnalysisType == "" {
		resp.AnalysisType = DefaultAnalysisType
	}
	if hasImage {
		resp.OCRResults = summarize(found, last)
	}

	if req.IncludeVoice {
		resp.Audio, resp.AudioFormat, resp.VoiceError = o.speak(ctx, reply, p)
	}

	f.logger.Info().
		Str("personality", p.Key).
		Bool("image", hasImage).
		Str("source", sourceOf(found)).
		Msg("canvas analysis complete")
	return resp, nil
}

// Chat continues a conversation in the requested personality
func (o *Orchestrator) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if len(req.Messages) == 0 {
		return nil, tutorerr.NewInvalidInputError("messages must be a non-empty array")
	}

	p, ok := o.personalities.Resolve(req.Personality)
	if !ok {
		return nil, tutorerr.NewUnknownPersonalityError(req.Personality)
	}

	reply, err := o.generator.Generate(ctx, req.Messages, p, ai.ChatPromptMode(req.Mode, req.Messages))
	if err != nil {
		return nil, err
	}

	resp := &models.ChatResponse{
		Message:     reply,
		Personality: p.Key,
		Timestamp:   o.timestamp(),
	}
	if req.IncludeVoice {
		resp.Audio, resp.AudioFormat, resp.VoiceError = o.speak(ctx, reply, p)
	}
	return resp, nil
}

// Speak synthesizes text in a personality's voice. Unlike the embedded voice
// of Analyze and Chat, failures are returned.
func (o *Orchestrator) Speak(ctx context.Context, req models.VoiceRequest) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, tutorerr.NewInvalidInputError("text is required")
	}

	p, ok := o.personalities.Resolve(req.Personality)
	if !ok {
		return nil, tutorerr.NewUnknownPersonalityError(req.Personality)
	}

	if o.voice == nil {
		return nil, tutorerr.NewSynthesisError("voice synthesis not configured", nil)
	}
	return o.voice.Synthesize(ctx, req.Text, p)
}

// speak returns base64 audio and its format, or a voice error message
func (o *Orchestrator) speak(ctx context.Context, text string, p personality.Config) (string, string, string) {
	if o.voice == nil {
		return "", "", "voice synthesis not configured"
	}

	audio, err := o.voice.Synthesize(ctx, text, p)
	if err != nil {
		log.Warn().Err(err).Str("personality", p.Key).Msg("voice synthesis failed, returning text only")
		return "", "", err.Error()
	}
	return base64.StdEncoding.EncodeToString(audio), AudioFormatMP3, ""
}

func (o *Orchestrator) timestamp() string {
	return o.now().UTC().Format(time.RFC3339)
}

func summarize(found, last *extraction) *models.OCRSummary {
	ext := found
	if ext == nil {
		ext = last
	}
	if ext == nil {
		return &models.OCRSummary{
			ContentType: models.ContentText,
		}
	}
	return &models.OCRSummary{
		Text:             ext.text,
		Confidence:       ext.confidence,
		ConfidenceSource: ext.confidenceSource,
		ContentType:      ocr.Classify(ext.text),
		HasContent:       ext.hasContent,
		Source:           ext.source,
	}
}

func sourceOf(ext *extraction) string {
	if ext == nil {
		return "text"
	}
	return ext.source
}
