// Package config loads process-wide settings: secrets from the environment
// (optionally via a .env file) layered over a YAML config file layered over
// code defaults. Settings are loaded once at startup and read-only after.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jdhollis/llmclient/llm"
)

// OpenAISettings configures the OpenAI provider.
type OpenAISettings struct {
	APIKey       Secret `yaml:"api_key,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
	Model        string `yaml:"model,omitempty"`
	Organization string `yaml:"organization,omitempty"`
}

// AnthropicSettings configures the Anthropic provider.
type AnthropicSettings struct {
	APIKey Secret `yaml:"api_key,omitempty"`
	Model  string `yaml:"model,omitempty"`
}

// OllamaSettings configures the Ollama provider.
type OllamaSettings struct {
	Host    string `yaml:"host,omitempty"`    // default: http://localhost:11434
	Model   string `yaml:"model,omitempty"`   // default model name
	Timeout int    `yaml:"timeout,omitempty"` // request timeout in seconds
}

// Settings is the process configuration. Secrets come from the environment;
// behavioral defaults are defined in code and can be overridden by the
// config file.
type Settings struct {
	AppName     string `yaml:"app_name,omitempty"`
	Environment string `yaml:"environment,omitempty"` // development, production, or testing
	Debug       bool   `yaml:"debug,omitempty"`

	// Provider selects which transport the CLI builds by default.
	Provider string `yaml:"provider,omitempty"`

	// VectorDBPath is the storage path for the vector database. Only the
	// path is managed here; retrieval lives elsewhere.
	VectorDBPath string `yaml:"vector_db_path,omitempty"`

	OpenAI    OpenAISettings    `yaml:"openai,omitempty"`
	Anthropic AnthropicSettings `yaml:"anthropic,omitempty"`
	Ollama    OllamaSettings    `yaml:"ollama,omitempty"`
}

// IsProduction reports whether the process runs in the production
// environment.
func (s *Settings) IsProduction() bool {
	return s.Environment == "production"
}

// ProviderConfig converts the settings into the registry's view: resolved
// credential strings and provider defaults.
func (s *Settings) ProviderConfig() *llm.ProviderConfig {
	return &llm.ProviderConfig{
		OpenAIAPIKey:    s.OpenAI.APIKey.Reveal(),
		OpenAIBaseURL:   s.OpenAI.BaseURL,
		OpenAIModel:     s.OpenAI.Model,
		OpenAIOrg:       s.OpenAI.Organization,
		AnthropicAPIKey: s.Anthropic.APIKey.Reveal(),
		AnthropicModel:  s.Anthropic.Model,
		OllamaHost:      s.Ollama.Host,
		OllamaModel:     s.Ollama.Model,
	}
}

// EnsureVectorDBPath creates the vector database directory if it does not
// exist yet.
func (s *Settings) EnsureVectorDBPath() error {
	if s.VectorDBPath == "" {
		return nil
	}
	return os.MkdirAll(expandPath(s.VectorDBPath), 0o750)
}

// GetConfigPath returns the default config file path. Can be overridden via
// the LLMCLIENT_CONFIG environment variable.
func GetConfigPath() string {
	if envPath := os.Getenv("LLMCLIENT_CONFIG"); envPath != "" {
		return expandPath(envPath)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./.llmclient/config.yaml"
	}
	return filepath.Join(homeDir, ".llmclient", "config.yaml")
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// defaultSettings returns the code-level defaults.
func defaultSettings() Settings {
	return Settings{
		AppName:      "llmclient",
		Environment:  "development",
		Provider:     llm.ProviderOpenAI,
		VectorDBPath: "data/chroma_db",
		OpenAI: OpenAISettings{
			BaseURL: "",
			Model:   "gpt-4-turbo",
		},
		Anthropic: AnthropicSettings{
			Model: "claude-haiku-4-5",
		},
		Ollama: OllamaSettings{
			Host:    "http://localhost:11434",
			Model:   "llama3.2:3b",
			Timeout: 60,
		},
	}
}

// Load builds the settings: code defaults, then the YAML config file (if it
// exists), then environment variables. A .env file in the working directory
// is loaded into the environment first, if present.
func Load(path string) (*Settings, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	settings := defaultSettings()

	expandedPath := expandPath(path)
	if _, err := os.Stat(expandedPath); err == nil {
		configYAML, err := os.ReadFile(expandedPath) //#nosec 304 -- intentional file read for config
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", expandedPath, err)
		}

		var fileSettings Settings
		if err := yaml.Unmarshal(configYAML, &fileSettings); err != nil {
			return nil, fmt.Errorf("failed to parse config file %q: %w", expandedPath, err)
		}

		if err := mergo.Merge(&settings, fileSettings, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge config file: %w", err)
		}
	}

	applyEnv(&settings)

	if err := settings.validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// applyEnv overlays environment variables onto the settings. Environment
// wins over the config file so secrets never need to live on disk.
func applyEnv(s *Settings) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		s.OpenAI.APIKey = Secret(v)
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		s.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OPENAI_ORG_ID"); v != "" {
		s.OpenAI.Organization = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		s.Anthropic.APIKey = Secret(v)
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		s.Ollama.Host = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		s.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		switch s.Provider {
		case llm.ProviderAnthropic:
			s.Anthropic.Model = v
		case llm.ProviderOllama:
			s.Ollama.Model = v
		default:
			s.OpenAI.Model = v
		}
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		s.Environment = v
	}
	if v := os.Getenv("VECTOR_DB_PATH"); v != "" {
		s.VectorDBPath = v
	}
	if v := os.Getenv("DEBUG"); v == "true" || v == "1" {
		s.Debug = true
	}
}

// validate fails fast on configuration that would misbehave later.
func (s *Settings) validate() error {
	switch s.Environment {
	case "development", "production", "testing":
	default:
		return fmt.Errorf("invalid environment %q: must be development, production, or testing", s.Environment)
	}
	switch s.Provider {
	case llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderOllama:
	default:
		return fmt.Errorf("invalid provider %q", s.Provider)
	}
	return nil
}
