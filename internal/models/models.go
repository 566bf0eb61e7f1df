package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Chat roles accepted in a conversation
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content part types for multimodal turns
const (
	PartTypeText     = "text"
	PartTypeImageURL = "image_url"
)

// ContentType is the heuristic classification of extracted text
type ContentType string

const (
	ContentMath     ContentType = "math"
	ContentQuestion ContentType = "question"
	ContentText     ContentType = "text"
)

// Confidence sources. OCR engines report a measured score, the vision
// path reports a fixed constant.
const (
	ConfidenceMeasured  = "measured"
	ConfidenceHeuristic = "heuristic"
)

// OCRWord is a single recognized word with its engine confidence (0-100)
type OCRWord struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// OCRResult is the output of the OCR path. Text is the cleaned text,
// RawText what the engine returned.
type OCRResult struct {
	Text       string    `json:"text"`
	RawText    string    `json:"rawText,omitempty"`
	Confidence float64   `json:"confidence"`
	HasContent bool      `json:"hasContent"`
	Words      []OCRWord `json:"words,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// VisionResult is the output of multimodal image interpretation
type VisionResult struct {
	Analysis   string  `json:"analysis"`
	HasContent bool    `json:"hasContent"`
	Confidence float64 `json:"confidence"`
	Error      string  `json:"error,omitempty"`
}

// ImageURL references an image by URL (http(s) or data:)
type ImageURL struct {
	URL string `json:"url"`
}

// ContentPart is one element of structured turn content.
// Data and MIMEType are never serialized; they let providers that
// cannot dereference URLs send the bytes inline.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`

	Data     []byte `json:"-"`
	MIMEType string `json:"-"`
}

// ChatTurn is one message of a conversation. Content is either plain
// text (Content) or structured parts (Parts), never both.
type ChatTurn struct {
	Role    string
	Content string
	Parts   []ContentPart
}

// Text returns the textual content of the turn, joining text parts
func (t ChatTurn) Text() string {
	if len(t.Parts) == 0 {
		return t.Content
	}
	var texts []string
	for _, p := range t.Parts {
		if p.Type == PartTypeText && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// MarshalJSON writes content as a string or a part array
func (t ChatTurn) MarshalJSON() ([]byte, error) {
	type wire struct {
		Role    string      `json:"role"`
		Content interface{} `json:"content"`
	}
	if len(t.Parts) > 0 {
		return json.Marshal(wire{Role: t.Role, Content: t.Parts})
	}
	return json.Marshal(wire{Role: t.Role, Content: t.Content})
}

// UnmarshalJSON accepts content as either a string or a part array
func (t *ChatTurn) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Role {
	case RoleSystem, RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("invalid role %q", raw.Role)
	}
	t.Role = raw.Role
	t.Content = ""
	t.Parts = nil

	trimmed := strings.TrimSpace(string(raw.Content))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var parts []ContentPart
		if err := json.Unmarshal(raw.Content, &parts); err != nil {
			return fmt.Errorf("invalid content parts: %w", err)
		}
		for _, p := range parts {
			if p.Type != PartTypeText && p.Type != PartTypeImageURL {
				return fmt.Errorf("unsupported content part type %q", p.Type)
			}
			if p.Type == PartTypeImageURL && (p.ImageURL == nil || p.ImageURL.URL == "") {
				return fmt.Errorf("image_url part without url")
			}
		}
		t.Parts = parts
		return nil
	}
	return json.Unmarshal(raw.Content, &t.Content)
}

// OCRSummary is the provenance block attached to a canvas analysis
type OCRSummary struct {
	Text             string      `json:"text"`
	Confidence       float64     `json:"confidence"`
	ConfidenceSource string      `json:"confidenceSource"`
	ContentType      ContentType `json:"contentType"`
	HasContent       bool        `json:"hasContent"`
	Source           string      `json:"source,omitempty"`
}

// CanvasAnalysisResponse is returned by the canvas analysis endpoint
type CanvasAnalysisResponse struct {
	Analysis      string      `json:"analysis"`
	Personality   string      `json:"personality"`
	Timestamp     string      `json:"timestamp"`
	ExtractedText string      `json:"extractedText"`
	AnalysisType  string      `json:"analysisType"`
	OCRResults    *OCRSummary `json:"ocrResults"`

	Audio       string `json:"audio,omitempty"`
	AudioFormat string `json:"audioFormat,omitempty"`
	VoiceError  string `json:"voiceError,omitempty"`
}

// ChatRequest is the JSON body of the chat endpoint
type ChatRequest struct {
	Messages     []ChatTurn `json:"messages"`
	Personality  string     `json:"personality,omitempty"`
	IncludeVoice bool       `json:"includeVoice,omitempty"`
	Mode         string     `json:"mode,omitempty"` // "default" or "socratic"; empty infers from messages
}

// ChatResponse is returned by the chat endpoint
type ChatResponse struct {
	Message     string `json:"message"`
	Personality string `json:"personality"`
	Timestamp   string `json:"timestamp"`
	Audio       string `json:"audio,omitempty"`
	AudioFormat string `json:"audioFormat,omitempty"`
	VoiceError  string `json:"voiceError,omitempty"`
}

// VoiceRequest is the JSON body of the standalone voice endpoint
type VoiceRequest struct {
	Text        string `json:"text"`
	Personality string `json:"personality,omitempty"`
}
