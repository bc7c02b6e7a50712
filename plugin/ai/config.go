package ai

import (
	"errors"
	"time"

	"github.com/hrygo/agenda/internal/profile"
	"github.com/hrygo/agenda/plugin/ai/timeout"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Config represents AI configuration.
type Config struct {
	Enabled bool

	LLM LLMConfig
}

// LLMConfig represents LLM configuration for any OpenAI-compatible endpoint.
type LLMConfig struct {
	Model       string // gpt-4o-mini
	APIKey      string
	BaseURL     string
	MaxTokens   int     // default: 256
	Temperature float32 // default: 0
	MaxRetries  int     // default: 3
	Timeout     time.Duration
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		Enabled: p.IsAIEnabled(),
	}

	if !cfg.Enabled {
		return cfg
	}

	// Extraction wants a short deterministic answer.
	cfg.LLM = LLMConfig{
		Model:       p.AILLMModel,
		APIKey:      p.AIOpenAIAPIKey,
		BaseURL:     p.AIOpenAIBaseURL,
		MaxTokens:   256,
		Temperature: 0,
		MaxRetries:  timeout.ExtractionRetries,
		Timeout:     timeout.ExtractionTimeout,
	}

	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.LLM.Model == "" {
		return errors.New("LLM model is required")
	}

	// Self-hosted endpoints (ollama, vLLM) run without a key.
	if c.LLM.APIKey == "" && (c.LLM.BaseURL == "" || c.LLM.BaseURL == defaultBaseURL) {
		return errors.New("LLM API key is required")
	}

	return nil
}
