package ai

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"

	tutorerr "github.com/canvastutor/tutor-service/internal/errors"
	"github.com/canvastutor/tutor-service/internal/models"
	"github.com/canvastutor/tutor-service/internal/personality"
)

// PromptMode controls whether Generate prepends the personality system prompt
type PromptMode int

const (
	// PromptModeInject prepends the personality's system prompt
	PromptModeInject PromptMode = iota
	// PromptModePrecomposed sends the turns as given; the caller already
	// supplied its own system turn
	PromptModePrecomposed
)

func (m PromptMode) String() string {
	if m == PromptModePrecomposed {
		return "precomposed"
	}
	return "inject"
}

// ParsePromptMode maps the chat API "mode" field to a PromptMode
func ParsePromptMode(s string) PromptMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "socratic", "precomposed":
		return PromptModePrecomposed
	default:
		return PromptModeInject
	}
}

// ChatPromptMode resolves the mode for a chat request. An explicit mode wins.
// Without one, conversations that already carry a system turn, or a user turn
// with Socratic tutor instructions from older clients, are sent as given.
func ChatPromptMode(mode string, turns []models.ChatTurn) PromptMode {
	if strings.TrimSpace(mode) != "" {
		return ParsePromptMode(mode)
	}
	for _, t := range turns {
		switch t.Role {
		case models.RoleSystem:
			return PromptModePrecomposed
		case models.RoleUser:
			if strings.Contains(strings.ToLower(t.Text()), "socratic") {
				return PromptModePrecomposed
			}
		}
	}
	return PromptModeInject
}

var errEmptyReply = errors.New("model returned an empty reply")

// ResponseGenerator produces the tutor's reply
type ResponseGenerator struct {
	provider ChatProvider
	pick     func(n int) int
}

// NewResponseGenerator creates a generator. A nil provider makes every
// Generate call return a canned reply.
func NewResponseGenerator(provider ChatProvider) *ResponseGenerator {
	return &ResponseGenerator{
		provider: provider,
		pick:     rand.Intn,
	}
}

// Configured reports whether a chat model is available
func (g *ResponseGenerator) Configured() bool {
	return g.provider != nil
}

// Generate sends the conversation to the chat model in the given personality
func (g *ResponseGenerator) Generate(ctx context.Context, turns []models.ChatTurn, p personality.Config, mode PromptMode) (string, error) {
	if g.provider == nil {
		log.Debug().Str("personality", p.Key).Msg("chat model not configured, using fallback reply")
		return fallbackReplies[g.pick(len(fallbackReplies))], nil
	}

	messages := turns
	if mode == PromptModeInject {
		messages = make([]models.ChatTurn, 0, len(turns)+1)
		messages = append(messages, models.ChatTurn{Role: models.RoleSystem, Content: p.SystemPrompt})
		messages = append(messages, turns...)
	}

	reply, err := g.provider.Complete(ctx, messages)
	if err != nil {
		log.Error().Err(err).Str("provider", g.provider.Name()).Str("mode", mode.String()).Msg("chat completion failed")
		return "", tutorerr.NewGenerationError(g.provider.Name(), err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", tutorerr.NewGenerationError(g.provider.Name(), errEmptyReply)
	}
	return reply, nil
}
