package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

var configEnv = []string{
	"PORT", "HOST", "OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL", "VISION_MODEL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "AI_PROVIDER", "ELEVENLABS_API_KEY",
	"ELEVENLABS_BASE_URL", "OCR_LANGUAGE",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnv {
		t.Setenv(k, "")
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `port: 9000
ocr:
  language: spa
  fallback_enabled: false
ai:
  default_provider: gemini
  openai:
    model: gpt-4o-mini
voice:
  model_id: eleven_turbo_v2
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("ELEVENLABS_API_KEY", "tts-key")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want env override 7000", cfg.Port)
	}
	if cfg.Host != defaultHost || cfg.OCR.Language != "spa" {
		t.Errorf("Host=%q Language=%q", cfg.Host, cfg.OCR.Language)
	}
	if cfg.OCR.UseFallback() {
		t.Error("UseFallback() = true, want false from file")
	}
	if cfg.AI.DefaultProvider != "gemini" || cfg.AI.Gemini.APIKey != "g-key" {
		t.Errorf("AI = %+v", cfg.AI)
	}
	if cfg.AI.OpenAI.VisionModel != "gpt-4o-mini" {
		t.Errorf("VisionModel = %q, want chat model default", cfg.AI.OpenAI.VisionModel)
	}
	if cfg.Voice.APIKey != "tts-key" || cfg.Voice.ModelID != "eleven_turbo_v2" {
		t.Errorf("Voice = %+v", cfg.Voice)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.Port != defaultPort || cfg.OCR.Language != defaultLanguage || cfg.AI.DefaultProvider != "openai" {
		t.Errorf("cfg = %+v", cfg)
	}
	if !cfg.OCR.UseFallback() {
		t.Error("UseFallback() = false, want default true")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	clearConfigEnv(t)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("port: [nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := loadConfig(bad); err == nil {
		t.Error("loadConfig(bad yaml) error = nil")
	}

	t.Setenv("PORT", "eighty")
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("loadConfig(bad PORT) error = nil")
	}
}

func TestCreateProvidersWithoutCredentials(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}

	p, err := createProviders(context.Background(), cfg.AI)
	if err != nil {
		t.Fatalf("createProviders() error = %v", err)
	}
	defer p.close()
	if p.chat != nil || p.vision != nil || p.chatName() != "" {
		t.Errorf("providers = %+v, want none without keys", p)
	}

	cfg.AI.OpenAI.APIKey = "sk-test"
	cfg.AI.OpenAI.VisionModel = "gpt-4o"
	p, err = createProviders(context.Background(), cfg.AI)
	if err != nil {
		t.Fatalf("createProviders() error = %v", err)
	}
	if p.chatName() != "openai:gpt-4o-mini" || p.vision.Name() != "openai:gpt-4o" {
		t.Errorf("chat=%q vision=%q", p.chatName(), p.vision.Name())
	}

	cfg.AI.DefaultProvider = "claude"
	if _, err := createProviders(context.Background(), cfg.AI); err == nil {
		t.Error("createProviders(unknown) error = nil")
	}
}
