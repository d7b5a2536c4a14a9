package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderInference  = "inference"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// DefaultInferenceModel is the model served by the default inference endpoint.
const DefaultInferenceModel = "meta-llama/Meta-Llama-3.1-8B-Instruct"

const inferenceEndpointBase = "https://api-inference.huggingface.co/models/"

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "inference", "openai", "anthropic", "gemini", "openrouter", "mock"
	Provider string

	Inference  InferenceConfig
	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// APIKeys are extra keys for the selected provider. Together with the
	// provider's own APIKey they form the rotation pool used by Pool.
	APIKeys []string

	// Timeout is the maximum duration for a single LLM request. Zero
	// disables the limit. Default: 120s.
	Timeout time.Duration
}

// InferenceConfig targets an OpenAI-compatible inference endpoint such as
// Hugging Face Inference Endpoints, TGI, vLLM or Ollama.
type InferenceConfig struct {
	APIKey  string
	Model   string // Default: DefaultInferenceModel
	BaseURL string // Default: the serverless endpoint for Model
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for OpenAI-compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderInference,
		Inference: InferenceConfig{
			Model: DefaultInferenceModel,
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Timeout: 120 * time.Second,
	}
}

// InferenceBaseURL returns the configured base URL, or the serverless
// endpoint URL for the configured model when none is set.
func (c InferenceConfig) InferenceBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	model := c.Model
	if model == "" {
		model = DefaultInferenceModel
	}
	return inferenceEndpointBase + model + "/v1"
}

// Model returns the model ID configured for the selected provider.
func (c Config) Model() string {
	switch c.Provider {
	case ProviderInference:
		return c.Inference.Model
	case ProviderOpenAI:
		return c.OpenAI.Model
	case ProviderAnthropic:
		return resolveModel(c.Anthropic.Model, anthropicModels)
	case ProviderGemini:
		return resolveModel(c.Gemini.Model, geminiModels)
	case ProviderOpenRouter:
		return c.OpenRouter.Model
	case ProviderMock:
		return "mock"
	}
	return ""
}

// BaseURL returns the endpoint URL for the selected provider, or "" when
// the vendor SDK default is used.
func (c Config) BaseURL() string {
	switch c.Provider {
	case ProviderInference:
		return c.Inference.InferenceBaseURL()
	case ProviderOpenAI:
		return c.OpenAI.BaseURL
	case ProviderOpenRouter:
		if c.OpenRouter.BaseURL != "" {
			return c.OpenRouter.BaseURL
		}
		return defaultOpenRouterBaseURL
	}
	return ""
}

// Keys returns the rotation pool for the selected provider: its own APIKey
// first, then APIKeys, with blanks and duplicates removed.
func (c Config) Keys() []string {
	var primary string
	switch c.Provider {
	case ProviderInference:
		primary = c.Inference.APIKey
	case ProviderOpenAI:
		primary = c.OpenAI.APIKey
	case ProviderAnthropic:
		primary = c.Anthropic.APIKey
	case ProviderGemini:
		primary = c.Gemini.APIKey
	case ProviderOpenRouter:
		primary = c.OpenRouter.APIKey
	}

	seen := make(map[string]bool)
	var keys []string
	for _, k := range append([]string{primary}, c.APIKeys...) {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// WithAPIKey returns a copy of c with the selected provider's APIKey set.
func (c Config) WithAPIKey(key string) Config {
	switch c.Provider {
	case ProviderInference:
		c.Inference.APIKey = key
	case ProviderOpenAI:
		c.OpenAI.APIKey = key
	case ProviderAnthropic:
		c.Anthropic.APIKey = key
	case ProviderGemini:
		c.Gemini.APIKey = key
	case ProviderOpenRouter:
		c.OpenRouter.APIKey = key
	}
	return c
}

// Validate checks that the selected provider has at least one API key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderInference:
		if len(c.Keys()) == 0 {
			return fmt.Errorf("HF_TOKEN or SYNTHGEN_API_KEY is required for the inference provider")
		}
	case ProviderAnthropic:
		if len(c.Keys()) == 0 {
			return fmt.Errorf("SYNTHGEN_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case ProviderOpenAI:
		if len(c.Keys()) == 0 {
			return fmt.Errorf("SYNTHGEN_OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderGemini:
		if len(c.Keys()) == 0 {
			return fmt.Errorf("SYNTHGEN_GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenRouter:
		if len(c.Keys()) == 0 {
			return fmt.Errorf("SYNTHGEN_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case ProviderMock:
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
