package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	tutorerr "github.com/canvastutor/tutor-service/internal/errors"
	"github.com/canvastutor/tutor-service/internal/models"
	"github.com/canvastutor/tutor-service/internal/personality"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultModelID = "eleven_monolingual_v1"

	defaultHTTPTimeout = 30 * time.Second
	maxAudioBytes      = 10 << 20
	maxErrorBody       = 512
)

// Synthesizer turns tutor replies into speech using an ElevenLabs-style API
type Synthesizer struct {
	apiKey     string
	baseURL    string
	modelID    string
	httpClient *http.Client
}

// Option customizes the synthesizer
type Option func(*Synthesizer)

// WithHTTPClient overrides the default HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(s *Synthesizer) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewSynthesizer creates a synthesizer from config
func NewSynthesizer(cfg models.VoiceConfig, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		modelID:    strings.TrimSpace(cfg.ModelID),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.baseURL == "" {
		s.baseURL = DefaultBaseURL
	}
	if s.modelID == "" {
		s.modelID = DefaultModelID
	}
	return s
}

// Configured reports whether an API key is set
func (s *Synthesizer) Configured() bool {
	return s.apiKey != ""
}

type ttsRequest struct {
	Text          string                    `json:"text"`
	ModelID       string                    `json:"model_id"`
	VoiceSettings personality.VoiceSettings `json:"voice_settings"`
}

// Synthesize returns MP3 audio of text spoken in the personality's voice
func (s *Synthesizer) Synthesize(ctx context.Context, text string, p personality.Config) ([]byte, error) {
	if !s.Configured() {
		return nil, tutorerr.NewSynthesisError("voice synthesis not configured", nil)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, tutorerr.NewSynthesisError("no text to synthesize", nil)
	}
	if p.VoiceID == "" {
		return nil, tutorerr.NewSynthesisError(fmt.Sprintf("personality %s has no voice", p.Key), nil)
	}

	body, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       s.modelID,
		VoiceSettings: p.Voice,
	})
	if err != nil {
		return nil, tutorerr.NewSynthesisError("failed to encode request", err)
	}

	endpoint := s.baseURL + "/v1/text-to-speech/" + url.PathEscape(p.VoiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, tutorerr.NewSynthesisError("failed to build request", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, tutorerr.NewSynthesisError("speech request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, tutorerr.NewSynthesisError(
			fmt.Sprintf("speech service returned status %d", resp.StatusCode),
			errors.New(strings.TrimSpace(string(snippet))),
		)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, tutorerr.NewSynthesisError("failed to read audio", err)
	}
	if len(audio) == 0 {
		return nil, tutorerr.NewSynthesisError("speech service returned no audio", nil)
	}

	log.Debug().
		Str("personality", p.Key).
		Int("bytes", len(audio)).
		Dur("elapsed", time.Since(start)).
		Msg("speech synthesized")
	return audio, nil
}
