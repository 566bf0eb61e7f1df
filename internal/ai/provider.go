package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"

	"github.com/canvastutor/tutor-service/internal/models"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultGeminiModel = "gemini-1.5-flash"

	defaultMaxTokens   = 500
	defaultTemperature = 0.7
)

// ChatProvider sends a conversation to a chat-completion model
type ChatProvider interface {
	Complete(ctx context.Context, turns []models.ChatTurn) (string, error)
	Name() string
}

// OpenAIProvider talks to any OpenAI-compatible chat completion endpoint
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIProvider creates a provider. An empty baseURL uses api.openai.com.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
}

// Name returns the provider label
func (p *OpenAIProvider) Name() string {
	return "openai:" + p.model
}

// Complete sends the conversation and returns the first choice's text
func (p *OpenAIProvider) Complete(ctx context.Context, turns []models.ChatTurn) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    toOpenAIMessages(turns),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toOpenAIMessages(turns []models.ChatTurn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		msg := openai.ChatCompletionMessage{Role: t.Role}
		if len(t.Parts) == 0 {
			msg.Content = t.Content
			msgs = append(msgs, msg)
			continue
		}
		for _, part := range t.Parts {
			switch part.Type {
			case models.PartTypeText:
				msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: part.Text,
				})
			case models.PartTypeImageURL:
				msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    part.ImageURL.URL,
						Detail: openai.ImageURLDetailAuto,
					},
				})
			}
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// GeminiProvider talks to Google Gemini
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Name returns the provider label
func (p *GeminiProvider) Name() string {
	return "gemini:" + p.model
}

// Close releases the underlying client
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// Complete maps system turns to the system instruction, replays earlier
// turns as history and sends the final user turn.
func (p *GeminiProvider) Complete(ctx context.Context, turns []models.ChatTurn) (string, error) {
	model := p.client.GenerativeModel(p.model)
	model.SetMaxOutputTokens(defaultMaxTokens)
	model.SetTemperature(defaultTemperature)

	var system []string
	var history []*genai.Content
	for _, t := range turns {
		if t.Role == models.RoleSystem {
			system = append(system, t.Text())
			continue
		}
		parts, err := geminiParts(t)
		if err != nil {
			return "", err
		}
		role := "user"
		if t.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: parts})
	}

	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(strings.Join(system, "\n\n"))},
		}
	}
	if len(history) == 0 || history[len(history)-1].Role != "user" {
		return "", errors.New("gemini: conversation must end with a user turn")
	}

	last := history[len(history)-1]
	cs := model.StartChat()
	cs.History = history[:len(history)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	var out []string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out = append(out, string(text))
			}
		}
		break
	}
	if len(out) == 0 {
		return "", errors.New("gemini: empty response")
	}
	return strings.TrimSpace(strings.Join(out, "")), nil
}

func geminiParts(t models.ChatTurn) ([]genai.Part, error) {
	if len(t.Parts) == 0 {
		return []genai.Part{genai.Text(t.Content)}, nil
	}

	parts := make([]genai.Part, 0, len(t.Parts))
	for _, part := range t.Parts {
		switch part.Type {
		case models.PartTypeText:
			parts = append(parts, genai.Text(part.Text))
		case models.PartTypeImageURL:
			data, mimeType := part.Data, part.MIMEType
			if len(data) == 0 {
				var err error
				data, mimeType, err = decodeDataURL(part.ImageURL.URL)
				if err != nil {
					return nil, fmt.Errorf("gemini: %w", err)
				}
			}
			parts = append(parts, genai.ImageData(imageFormat(mimeType), data))
		}
	}
	return parts, nil
}

// decodeDataURL parses data:<mime>;base64,<payload>
func decodeDataURL(url string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(url, "data:")
	if !ok {
		return nil, "", errors.New("remote image URLs need inline data")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", errors.New("malformed data URL")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("malformed data URL: %w", err)
	}
	return data, strings.TrimSuffix(meta, ";base64"), nil
}

// imageFormat turns "image/png" into "png"
func imageFormat(mimeType string) string {
	if format, ok := strings.CutPrefix(mimeType, "image/"); ok && format != "" {
		return format
	}
	return "png"
}
