package models

// Config represents the service configuration
type Config struct {
	// Server config
	Port int    `yaml:"port"`
	Host string `yaml:"host"`

	// OCR config
	OCR OCRConfig `yaml:"ocr"`

	// AI config
	AI AIConfig `yaml:"ai"`

	// Voice config
	Voice VoiceConfig `yaml:"voice"`
}

// OCRConfig represents OCR-specific configuration
type OCRConfig struct {
	Language        string `yaml:"language"`         // Tesseract language (default: "eng")
	FallbackEnabled *bool  `yaml:"fallback_enabled"` // Run OCR when vision yields nothing (default: true)
}

// UseFallback reports whether OCR participates in the canvas extraction chain
func (c OCRConfig) UseFallback() bool {
	return c.FallbackEnabled == nil || *c.FallbackEnabled
}

// AIConfig represents AI provider configuration
type AIConfig struct {
	// OpenAI-compatible endpoint (OpenAI, OpenRouter, Ollama, Azure gateways)
	OpenAI OpenAIConfig `yaml:"openai"`

	// Gemini
	Gemini GeminiConfig `yaml:"gemini"`

	// Default provider: "openai" or "gemini"
	DefaultProvider string `yaml:"default_provider"`
}

// OpenAIConfig for OpenAI-compatible chat completion
type OpenAIConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url,omitempty"`
	Model       string `yaml:"model"`        // Default: "gpt-4o-mini"
	VisionModel string `yaml:"vision_model"` // Default: Model
}

// GeminiConfig for Google Gemini
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // Default: "gemini-1.5-flash"
}

// VoiceConfig for the text-to-speech endpoint
type VoiceConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"` // Default: "https://api.elevenlabs.io"
	ModelID string `yaml:"model_id"` // Default: "eleven_monolingual_v1"
}
