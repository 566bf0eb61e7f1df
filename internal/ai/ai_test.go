package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	tutorerr "github.com/canvastutor/tutor-service/internal/errors"
	"github.com/canvastutor/tutor-service/internal/models"
	"github.com/canvastutor/tutor-service/internal/personality"
)

type fakeProvider struct {
	reply string
	err   error
	calls [][]models.ChatTurn
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, turns []models.ChatTurn) (string, error) {
	f.calls = append(f.calls, turns)
	return f.reply, f.err
}

type fakeHost struct {
	url   string
	err   error
	calls int
}

func (f *fakeHost) Name() string { return "fake-host" }

func (f *fakeHost) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	f.calls++
	return f.url, f.err
}

func calm(t *testing.T) personality.Config {
	t.Helper()
	p, ok := personality.Default().Get(personality.Calm)
	if !ok {
		t.Fatal("calm personality missing")
	}
	return p
}

func TestVisionAnalyzeSuccess(t *testing.T) {
	host := &fakeHost{url: "https://img.example/canvas.png"}
	provider := &fakeProvider{reply: "  The student has written: \\(x^2+1\\)\n"}
	v := NewVisionAnalyzer(host, provider)

	got := v.Analyze(context.Background(), []byte("png-bytes"), "image/png")

	if !got.HasContent || got.Confidence != VisionConfidence {
		t.Fatalf("got %+v, want content with confidence %v", got, VisionConfidence)
	}
	if got.Analysis != "The student has written: \\(x^2+1\\)" {
		t.Errorf("Analysis = %q", got.Analysis)
	}
	if len(provider.calls) != 1 || len(provider.calls[0]) != 1 {
		t.Fatalf("provider calls = %v, want one call with one turn", provider.calls)
	}

	turn := provider.calls[0][0]
	if turn.Role != models.RoleUser || len(turn.Parts) != 2 {
		t.Fatalf("turn = %+v, want user turn with two parts", turn)
	}
	if !strings.Contains(turn.Parts[0].Text, "The student has written:") {
		t.Errorf("instruction text missing output format: %q", turn.Parts[0].Text)
	}
	if turn.Parts[1].ImageURL == nil || turn.Parts[1].ImageURL.URL != host.url {
		t.Errorf("image part = %+v, want url %s", turn.Parts[1], host.url)
	}
}

func TestVisionAnalyzeFailuresBecomeResults(t *testing.T) {
	tests := []struct {
		name          string
		host          *fakeHost
		provider      *fakeProvider
		wantProvider  int
		wantErrSubstr string
	}{
		{"upload fails", &fakeHost{err: errors.New("bucket gone")}, &fakeProvider{reply: "x"}, 0, "bucket gone"},
		{"model fails", &fakeHost{url: "u"}, &fakeProvider{err: errors.New("rate limited")}, 1, "rate limited"},
		{"empty analysis", &fakeHost{url: "u"}, &fakeProvider{reply: "   "}, 1, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVisionAnalyzer(tt.host, tt.provider)
			got := v.Analyze(context.Background(), []byte("img"), "image/png")

			if got.HasContent || got.Confidence != 0 || got.Analysis != "" {
				t.Errorf("got %+v, want empty failure result", got)
			}
			if !strings.Contains(got.Error, tt.wantErrSubstr) {
				t.Errorf("Error = %q, want it to contain %q", got.Error, tt.wantErrSubstr)
			}
			if len(tt.provider.calls) != tt.wantProvider {
				t.Errorf("provider calls = %d, want %d", len(tt.provider.calls), tt.wantProvider)
			}
		})
	}
}

func TestVisionUnconfigured(t *testing.T) {
	v := NewVisionAnalyzer(&fakeHost{}, nil)
	if v.Configured() {
		t.Fatal("Configured() = true without provider")
	}
	if got := v.Analyze(context.Background(), []byte("img"), "image/png"); got.HasContent || got.Error == "" {
		t.Errorf("got %+v, want error result", got)
	}
}

func TestGeneratePromptModes(t *testing.T) {
	p := calm(t)
	user := []models.ChatTurn{{Role: models.RoleUser, Content: "how do I factor x^2-1?"}}

	tests := []struct {
		name      string
		mode      PromptMode
		wantTurns int
	}{
		{"inject prepends system prompt", PromptModeInject, 2},
		{"precomposed sends turns as given", PromptModePrecomposed, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{reply: "What two numbers multiply to -1?"}
			g := NewResponseGenerator(provider)

			reply, err := g.Generate(context.Background(), user, p, tt.mode)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if reply != provider.reply {
				t.Errorf("reply = %q", reply)
			}

			sent := provider.calls[0]
			if len(sent) != tt.wantTurns {
				t.Fatalf("sent %d turns, want %d", len(sent), tt.wantTurns)
			}
			if tt.mode == PromptModeInject {
				if sent[0].Role != models.RoleSystem || sent[0].Content != p.SystemPrompt {
					t.Errorf("first turn = %+v, want personality system prompt", sent[0])
				}
			}
		})
	}

	if len(user) != 1 {
		t.Error("Generate mutated the caller's turns")
	}
}

func TestGenerateFailureIsTyped(t *testing.T) {
	g := NewResponseGenerator(&fakeProvider{err: errors.New("upstream 503")})

	_, err := g.Generate(context.Background(), []models.ChatTurn{{Role: models.RoleUser, Content: "hi"}}, calm(t), PromptModeInject)

	var te *tutorerr.TutorError
	if !errors.As(err, &te) || te.Code != tutorerr.ErrorGeneration {
		t.Fatalf("error = %v, want GENERATION_FAILED", err)
	}
	if !strings.Contains(te.Detail(), "upstream 503") {
		t.Errorf("Detail() = %q, want upstream message", te.Detail())
	}
}

func TestGenerateUnconfiguredFallsBack(t *testing.T) {
	g := NewResponseGenerator(nil)
	if g.Configured() {
		t.Fatal("Configured() = true without provider")
	}

	seen := map[string]bool{}
	for i := range fallbackReplies {
		g.pick = func(n int) int { return i % n }
		reply, err := g.Generate(context.Background(), nil, calm(t), PromptModeInject)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		seen[reply] = true
	}
	if len(seen) != len(fallbackReplies) {
		t.Errorf("saw %d distinct fallback replies, want %d", len(seen), len(fallbackReplies))
	}
}

func TestParsePromptMode(t *testing.T) {
	for in, want := range map[string]PromptMode{
		"":            PromptModeInject,
		"default":     PromptModeInject,
		"socratic":    PromptModePrecomposed,
		" Socratic ":  PromptModePrecomposed,
		"precomposed": PromptModePrecomposed,
	} {
		if got := ParsePromptMode(in); got != want {
			t.Errorf("ParsePromptMode(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestChatPromptMode(t *testing.T) {
	user := func(s string) models.ChatTurn { return models.ChatTurn{Role: models.RoleUser, Content: s} }

	tests := []struct {
		name  string
		mode  string
		turns []models.ChatTurn
		want  PromptMode
	}{
		{"plain conversation", "", []models.ChatTurn{user("what is 2+2")}, PromptModeInject},
		{"explicit socratic", "socratic", []models.ChatTurn{user("why")}, PromptModePrecomposed},
		{"explicit default overrides marker", "default", []models.ChatTurn{user("You are a Socratic tutor")}, PromptModeInject},
		{"legacy socratic instructions", "", []models.ChatTurn{user("You are a SOCRATIC tutor. Ask, never tell."), user("help")}, PromptModePrecomposed},
		{"caller system turn", "", []models.ChatTurn{{Role: models.RoleSystem, Content: "custom"}, user("hi")}, PromptModePrecomposed},
		{"marker in assistant turn ignored", "", []models.ChatTurn{{Role: models.RoleAssistant, Content: "socratic"}, user("ok")}, PromptModeInject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ChatPromptMode(tt.mode, tt.turns); got != tt.want {
				t.Errorf("ChatPromptMode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeDataURL(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G'}
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	data, mime, err := decodeDataURL(url)
	if err != nil {
		t.Fatalf("decodeDataURL() error = %v", err)
	}
	if string(data) != string(payload) || mime != "image/png" {
		t.Errorf("got (%v, %q)", data, mime)
	}

	for _, bad := range []string{"https://img.example/a.png", "data:image/png,raw", "data:image/png;base64,***"} {
		if _, _, err := decodeDataURL(bad); err == nil {
			t.Errorf("decodeDataURL(%q) error = nil", bad)
		}
	}
}

func TestToOpenAIMessages(t *testing.T) {
	turns := []models.ChatTurn{
		{Role: models.RoleSystem, Content: "be kind"},
		{Role: models.RoleUser, Parts: []models.ContentPart{
			{Type: models.PartTypeText, Text: "what is this"},
			{Type: models.PartTypeImageURL, ImageURL: &models.ImageURL{URL: "https://img.example/a.png"}},
		}},
	}

	msgs := toOpenAIMessages(turns)
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].Content != "be kind" || msgs[0].MultiContent != nil {
		t.Errorf("plain turn = %+v", msgs[0])
	}
	if msgs[1].Content != "" || len(msgs[1].MultiContent) != 2 {
		t.Fatalf("multimodal turn = %+v", msgs[1])
	}
	if msgs[1].MultiContent[1].ImageURL.URL != "https://img.example/a.png" {
		t.Errorf("image url = %q", msgs[1].MultiContent[1].ImageURL.URL)
	}
}
