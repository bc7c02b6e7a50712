package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/agenda/internal/profile"
)

func TestNewConfigFromProfile_OpenAI(t *testing.T) {
	prof := &profile.Profile{
		AIEnabled:       true,
		AIOpenAIAPIKey:  "sk-test",
		AIOpenAIBaseURL: "https://api.openai.com/v1",
		AILLMModel:      "gpt-4o-mini",
	}

	cfg := NewConfigFromProfile(prof)

	require.True(t, cfg.Enabled)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 256, cfg.LLM.MaxTokens)
	assert.Zero(t, cfg.LLM.Temperature)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfigFromProfile_SelfHosted(t *testing.T) {
	prof := &profile.Profile{
		AIEnabled:       true,
		AIOpenAIBaseURL: "http://localhost:11434/v1",
		AILLMModel:      "qwen2.5",
	}

	cfg := NewConfigFromProfile(prof)

	require.True(t, cfg.Enabled)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfigFromProfile_Disabled(t *testing.T) {
	cfg := NewConfigFromProfile(&profile.Profile{AIEnabled: false, AIOpenAIAPIKey: "sk-test"})
	assert.False(t, cfg.Enabled)
	assert.NoError(t, cfg.Validate())

	// Enabled without a key against the public endpoint counts as disabled.
	cfg = NewConfigFromProfile(&profile.Profile{AIEnabled: true, AIOpenAIBaseURL: "https://api.openai.com/v1"})
	assert.False(t, cfg.Enabled)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing model",
			cfg:     Config{Enabled: true, LLM: LLMConfig{APIKey: "k"}},
			wantErr: "LLM model is required",
		},
		{
			name:    "missing key on public endpoint",
			cfg:     Config{Enabled: true, LLM: LLMConfig{Model: "m", BaseURL: "https://api.openai.com/v1"}},
			wantErr: "LLM API key is required",
		},
		{
			name:    "missing key and base url",
			cfg:     Config{Enabled: true, LLM: LLMConfig{Model: "m"}},
			wantErr: "LLM API key is required",
		},
		{
			name: "valid",
			cfg:  Config{Enabled: true, LLM: LLMConfig{Model: "m", APIKey: "k"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
