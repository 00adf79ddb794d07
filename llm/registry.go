package llm

import (
	"fmt"
	"os"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// ProviderConfig holds the resolved provider settings the registry needs.
// It mirrors the relevant part of the process settings without importing the
// config package, avoiding an import cycle.
type ProviderConfig struct {
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	OpenAIOrg     string

	AnthropicAPIKey string
	AnthropicModel  string

	OllamaHost  string
	OllamaModel string
}

// TransportKey identifies a fully resolved transport configuration. Actual
// transport construction happens in the caller from this key, keeping the
// provider packages out of the core.
type TransportKey struct {
	Provider     string
	Model        string
	APIKey       string // credential-based providers
	Host         string // Ollama
	BaseURL      string // OpenAI
	Organization string // OpenAI
}

// Registry resolves provider selection against the process configuration.
type Registry struct {
	config *ProviderConfig
}

// NewRegistry creates a Registry over the given provider configuration.
func NewRegistry(config *ProviderConfig) *Registry {
	return &Registry{config: config}
}

// IsConfigured reports whether a provider has the configuration it requires
// (API key present, or a host default for Ollama).
func (r *Registry) IsConfigured(provider string) bool {
	switch provider {
	case ProviderOpenAI:
		return r.openAIKey() != ""
	case ProviderAnthropic:
		return r.anthropicKey() != ""
	case ProviderOllama:
		// Ollama needs no credential; the host has a default.
		return true
	default:
		return false
	}
}

// Resolve returns the TransportKey for the given provider, applying the
// model override when non-empty and falling back to configured defaults.
func (r *Registry) Resolve(provider, modelOverride string) (*TransportKey, error) {
	key := &TransportKey{
		Provider: provider,
		Model:    modelOverride,
	}

	switch provider {
	case ProviderOpenAI:
		apiKey := r.openAIKey()
		if apiKey == "" {
			return nil, fmt.Errorf("openai API key not configured")
		}
		key.APIKey = apiKey

		baseURL := r.config.OpenAIBaseURL
		if baseURL == "" {
			baseURL = os.Getenv("OPENAI_BASE_URL")
		}
		key.BaseURL = baseURL

		org := r.config.OpenAIOrg
		if org == "" {
			org = os.Getenv("OPENAI_ORG_ID")
		}
		key.Organization = org

		if key.Model == "" {
			key.Model = r.config.OpenAIModel
		}
		if key.Model == "" {
			key.Model = os.Getenv("OPENAI_MODEL")
		}
		if key.Model == "" {
			return nil, fmt.Errorf("openai model not specified and no default configured")
		}

	case ProviderAnthropic:
		apiKey := r.anthropicKey()
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic API key not configured")
		}
		key.APIKey = apiKey
		if key.Model == "" {
			key.Model = r.config.AnthropicModel
		}
		if key.Model == "" {
			return nil, fmt.Errorf("anthropic model not specified and no default configured")
		}

	case ProviderOllama:
		host := r.config.OllamaHost
		if host == "" {
			host = os.Getenv("OLLAMA_HOST")
		}
		if host == "" {
			host = "http://localhost:11434"
		}
		key.Host = host

		if key.Model == "" {
			key.Model = r.config.OllamaModel
		}
		if key.Model == "" {
			key.Model = os.Getenv("OLLAMA_MODEL")
		}
		if key.Model == "" {
			return nil, fmt.Errorf("ollama model not specified and no default configured")
		}

	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}

	return key, nil
}

func (r *Registry) openAIKey() string {
	if r.config.OpenAIAPIKey != "" {
		return r.config.OpenAIAPIKey
	}
	return os.Getenv("OPENAI_API_KEY")
}

func (r *Registry) anthropicKey() string {
	if r.config.AnthropicAPIKey != "" {
		return r.config.AnthropicAPIKey
	}
	return os.Getenv("ANTHROPIC_API_KEY")
}
