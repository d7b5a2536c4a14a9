package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Keys(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{
			name: "primary then pooled",
			cfg: Config{
				Provider:  ProviderInference,
				Inference: InferenceConfig{APIKey: "hf_primary"},
				APIKeys:   []string{"hf_1", "hf_2"},
			},
			want: []string{"hf_primary", "hf_1", "hf_2"},
		},
		{
			name: "blanks and duplicates removed",
			cfg: Config{
				Provider:  ProviderInference,
				Inference: InferenceConfig{APIKey: "hf_a"},
				APIKeys:   []string{"", " hf_a ", "hf_b", "hf_b"},
			},
			want: []string{"hf_a", "hf_b"},
		},
		{
			name: "selected provider only",
			cfg: Config{
				Provider:  ProviderAnthropic,
				Inference: InferenceConfig{APIKey: "hf_a"},
				Anthropic: AnthropicConfig{APIKey: "sk-ant"},
			},
			want: []string{"sk-ant"},
		},
		{
			name: "mock has none",
			cfg:  Config{Provider: ProviderMock},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Keys())
		})
	}
}

func TestConfig_WithAPIKey(t *testing.T) {
	cfg := Config{Provider: ProviderOpenRouter, OpenRouter: OpenRouterConfig{APIKey: "old"}}
	next := cfg.WithAPIKey("new")

	assert.Equal(t, "new", next.OpenRouter.APIKey)
	assert.Equal(t, "old", cfg.OpenRouter.APIKey, "original config must not change")
}

func TestInferenceBaseURL(t *testing.T) {
	assert.Equal(t,
		"https://api-inference.huggingface.co/models/meta-llama/Meta-Llama-3.1-8B-Instruct/v1",
		InferenceConfig{}.InferenceBaseURL())
	assert.Equal(t,
		"https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.3/v1",
		InferenceConfig{Model: "mistralai/Mistral-7B-Instruct-v0.3"}.InferenceBaseURL())
	assert.Equal(t,
		"http://localhost:8080/v1",
		InferenceConfig{BaseURL: "http://localhost:8080/v1"}.InferenceBaseURL())
}

func TestConfig_ModelAndBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderInference, cfg.Provider)
	assert.Equal(t, DefaultInferenceModel, cfg.Model())
	assert.Contains(t, cfg.BaseURL(), DefaultInferenceModel)

	cfg.Provider = ProviderAnthropic
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Model())
	assert.Empty(t, cfg.BaseURL())

	cfg.Provider = ProviderOpenRouter
	assert.Equal(t, defaultOpenRouterBaseURL, cfg.BaseURL())
}
