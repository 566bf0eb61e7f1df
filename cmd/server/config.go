package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/canvastutor/tutor-service/internal/models"
)

const (
	defaultPort     = 8080
	defaultHost     = "0.0.0.0"
	defaultLanguage = "eng"
)

// loadConfig reads the YAML file, then applies environment overrides. A
// missing file is not an error; everything can come from the environment.
func loadConfig(path string) (*models.Config, error) {
	var config models.Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(&config); err != nil {
		return nil, err
	}
	applyDefaults(&config)
	return &config, nil
}

func applyEnv(config *models.Config) error {
	if port := os.Getenv("PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		config.Port = n
	}
	if host := os.Getenv("HOST"); host != "" {
		config.Host = host
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.AI.OpenAI.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.AI.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.AI.OpenAI.Model = model
	}
	if model := os.Getenv("VISION_MODEL"); model != "" {
		config.AI.OpenAI.VisionModel = model
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.AI.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.AI.Gemini.Model = model
	}
	if provider := os.Getenv("AI_PROVIDER"); provider != "" {
		config.AI.DefaultProvider = provider
	}
	if apiKey := os.Getenv("ELEVENLABS_API_KEY"); apiKey != "" {
		config.Voice.APIKey = apiKey
	}
	if baseURL := os.Getenv("ELEVENLABS_BASE_URL"); baseURL != "" {
		config.Voice.BaseURL = baseURL
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		config.OCR.Language = lang
	}
	return nil
}

func applyDefaults(config *models.Config) {
	if config.Port == 0 {
		config.Port = defaultPort
	}
	if config.Host == "" {
		config.Host = defaultHost
	}
	if config.OCR.Language == "" {
		config.OCR.Language = defaultLanguage
	}
	if config.AI.DefaultProvider == "" {
		config.AI.DefaultProvider = "openai"
	}
	if config.AI.OpenAI.VisionModel == "" {
		config.AI.OpenAI.VisionModel = config.AI.OpenAI.Model
	}
}
