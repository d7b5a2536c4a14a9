// Package config loads synthgen settings from defaults, an optional
// synthgen.yaml and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/abhisek/synthgen/internal/llm"
)

// Config is the resolved application configuration.
type Config struct {
	LLM      llm.Config
	DBPath   string
	LogLevel string

	// NoEvents disables persisting LLM request events.
	NoEvents bool
}

// maxExtraTokens is the highest N read from HF_TOKEN_N.
const maxExtraTokens = 9

// envBindings maps config keys to the environment variables that may set
// them, highest priority first. The unprefixed names match what Hugging
// Face tooling already exports.
var envBindings = map[string][]string{
	"provider":           {"SYNTHGEN_PROVIDER"},
	"model":              {"SYNTHGEN_MODEL", "MODEL"},
	"base_url":           {"SYNTHGEN_BASE_URL", "BASE_URL"},
	"api_key":            {"SYNTHGEN_API_KEY", "API_KEY", "HF_TOKEN"},
	"api_keys":           {"SYNTHGEN_API_KEYS"},
	"timeout":            {"SYNTHGEN_TIMEOUT"},
	"log_level":          {"SYNTHGEN_LOG_LEVEL"},
	"db":                 {"SYNTHGEN_DB"},
	"no_events":          {"SYNTHGEN_NO_EVENTS"},
	"anthropic.api_key":  {"SYNTHGEN_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"},
	"anthropic.model":    {"SYNTHGEN_ANTHROPIC_MODEL"},
	"openai.api_key":     {"SYNTHGEN_OPENAI_API_KEY", "OPENAI_API_KEY"},
	"openai.model":       {"SYNTHGEN_OPENAI_MODEL"},
	"openai.base_url":    {"SYNTHGEN_OPENAI_BASE_URL"},
	"gemini.api_key":     {"SYNTHGEN_GEMINI_API_KEY", "GEMINI_API_KEY"},
	"gemini.model":       {"SYNTHGEN_GEMINI_MODEL"},
	"openrouter.api_key": {"SYNTHGEN_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"},
	"openrouter.model":   {"SYNTHGEN_OPENROUTER_MODEL"},
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()
	v.SetDefault("provider", d.Provider)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("log_level", "info")
	v.SetDefault("anthropic.model", d.Anthropic.Model)
	v.SetDefault("openai.model", d.OpenAI.Model)
	v.SetDefault("gemini.model", d.Gemini.Model)
	v.SetDefault("openrouter.model", d.OpenRouter.Model)
}

// Load resolves the configuration. configFile, when set, must exist;
// otherwise synthgen.yaml is looked up in ., ./config and $HOME/.synthgen.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	for i := 1; i <= maxExtraTokens; i++ {
		key := fmt.Sprintf("hf_token_%d", i)
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("synthgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.synthgen")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		log.Debug().Msg("no config file found, using environment and defaults")
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("using config file")
	}

	cfg := &Config{
		LLM:      buildLLMConfig(v),
		DBPath:   v.GetString("db"),
		LogLevel: v.GetString("log_level"),
		NoEvents: v.GetBool("no_events"),
	}
	return cfg, nil
}

func buildLLMConfig(v *viper.Viper) llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Provider = strings.ToLower(strings.TrimSpace(v.GetString("provider")))
	cfg.Timeout = v.GetDuration("timeout")

	cfg.Anthropic.APIKey = v.GetString("anthropic.api_key")
	cfg.Anthropic.Model = v.GetString("anthropic.model")
	cfg.OpenAI.APIKey = v.GetString("openai.api_key")
	cfg.OpenAI.Model = v.GetString("openai.model")
	cfg.OpenAI.BaseURL = v.GetString("openai.base_url")
	cfg.Gemini.APIKey = v.GetString("gemini.api_key")
	cfg.Gemini.Model = v.GetString("gemini.model")
	cfg.OpenRouter.APIKey = v.GetString("openrouter.api_key")
	cfg.OpenRouter.Model = v.GetString("openrouter.model")

	// The generic model, base_url and api_key settings target whichever
	// provider is selected.
	if m := v.GetString("model"); m != "" {
		cfg = withModel(cfg, m)
	}
	if u := v.GetString("base_url"); u != "" {
		switch cfg.Provider {
		case llm.ProviderInference:
			cfg.Inference.BaseURL = u
		case llm.ProviderOpenAI:
			cfg.OpenAI.BaseURL = u
		case llm.ProviderOpenRouter:
			cfg.OpenRouter.BaseURL = u
		}
	}
	if k := v.GetString("api_key"); k != "" && len(cfg.Keys()) == 0 {
		cfg = cfg.WithAPIKey(k)
	}

	cfg.APIKeys = append(cfg.APIKeys, v.GetStringSlice("api_keys")...)
	for i := 1; i <= maxExtraTokens; i++ {
		if k := v.GetString(fmt.Sprintf("hf_token_%d", i)); k != "" {
			cfg.APIKeys = append(cfg.APIKeys, k)
		}
	}
	return cfg
}

func withModel(cfg llm.Config, model string) llm.Config {
	switch cfg.Provider {
	case llm.ProviderInference:
		cfg.Inference.Model = model
	case llm.ProviderOpenAI:
		cfg.OpenAI.Model = model
	case llm.ProviderAnthropic:
		cfg.Anthropic.Model = model
	case llm.ProviderGemini:
		cfg.Gemini.Model = model
	case llm.ProviderOpenRouter:
		cfg.OpenRouter.Model = model
	}
	return cfg
}

// LoadEnvFiles loads KEY=VALUE pairs from .env files into the process
// environment without overriding variables that are already set. With no
// arguments it reads ./.env. Missing files are not an error.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			log.Debug().Str("file", f).Msg("no .env file found")
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}
