package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canvastutor/tutor-service/internal/ai"
	"github.com/canvastutor/tutor-service/internal/models"
)

// providers holds the chat and vision models selected from config. Either may
// be nil when credentials are missing.
type providers struct {
	chat   ai.ChatProvider
	vision ai.ChatProvider
	close  func()
}

// createProviders picks the configured provider, falling back to whichever
// one has credentials.
func createProviders(ctx context.Context, cfg models.AIConfig) (*providers, error) {
	p := &providers{close: func() {}}

	name := strings.ToLower(cfg.DefaultProvider)
	if name == "openai" && cfg.OpenAI.APIKey == "" && cfg.Gemini.APIKey != "" {
		name = "gemini"
	}
	if name == "gemini" && cfg.Gemini.APIKey == "" && cfg.OpenAI.APIKey != "" {
		name = "openai"
	}

	switch name {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY not set, chat replies fall back to canned responses")
			return p, nil
		}
		p.chat = ai.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
		p.vision = ai.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.VisionModel)
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY not set, chat replies fall back to canned responses")
			return p, nil
		}
		gemini, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		p.chat = gemini
		p.vision = gemini
		p.close = func() {
			if err := gemini.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close gemini client")
			}
		}
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.DefaultProvider)
	}
	return p, nil
}

func (p *providers) chatName() string {
	if p.chat == nil {
		return ""
	}
	return p.chat.Name()
}
