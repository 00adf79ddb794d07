package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// clearEnv blanks out every environment variable the loader reads so tests
// are not affected by the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_ORG_ID",
		"ANTHROPIC_API_KEY", "OLLAMA_HOST",
		"LLM_PROVIDER", "LLM_MODEL", "ENVIRONMENT", "VECTOR_DB_PATH", "DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	settings, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.AppName != "llmclient" {
		t.Errorf("Expected default app name, got %q", settings.AppName)
	}
	if settings.Environment != "development" {
		t.Errorf("Expected development environment, got %q", settings.Environment)
	}
	if settings.Provider != "openai" {
		t.Errorf("Expected default provider openai, got %q", settings.Provider)
	}
	if settings.OpenAI.Model != "gpt-4-turbo" {
		t.Errorf("Expected default model gpt-4-turbo, got %q", settings.OpenAI.Model)
	}
	if settings.Ollama.Host != "http://localhost:11434" {
		t.Errorf("Expected default ollama host, got %q", settings.Ollama.Host)
	}
	if settings.IsProduction() {
		t.Error("Expected development settings to not be production")
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
environment: production
provider: anthropic
anthropic:
  api_key: file-key
  model: claude-sonnet-4-5
ollama:
  timeout: 120
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !settings.IsProduction() {
		t.Error("Expected production environment")
	}
	if settings.Provider != "anthropic" {
		t.Errorf("Expected provider anthropic, got %q", settings.Provider)
	}
	if settings.Anthropic.APIKey.Reveal() != "file-key" {
		t.Errorf("Expected API key from file, got %q", settings.Anthropic.APIKey.Reveal())
	}
	if settings.Anthropic.Model != "claude-sonnet-4-5" {
		t.Errorf("Expected model from file, got %q", settings.Anthropic.Model)
	}
	if settings.Ollama.Timeout != 120 {
		t.Errorf("Expected timeout from file, got %d", settings.Ollama.Timeout)
	}
	// Values absent from the file keep their defaults.
	if settings.OpenAI.Model != "gpt-4-turbo" {
		t.Errorf("Expected default openai model retained, got %q", settings.OpenAI.Model)
	}
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
openai:
  api_key: file-key
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("LLM_MODEL", "gpt-4o")

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if settings.OpenAI.APIKey.Reveal() != "env-key" {
		t.Errorf("Expected env to win over file, got %q", settings.OpenAI.APIKey.Reveal())
	}
	if settings.OpenAI.Model != "gpt-4o" {
		t.Errorf("Expected LLM_MODEL to apply to the active provider, got %q", settings.OpenAI.Model)
	}
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "staging")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected invalid environment to fail fast")
	}
}

func TestLoadRejectsInvalidProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "mystery")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected invalid provider to fail fast")
	}
}

func TestProviderConfigMapping(t *testing.T) {
	settings := &Settings{
		OpenAI:    OpenAISettings{APIKey: "sk-test", BaseURL: "https://example.test", Model: "gpt-4-turbo", Organization: "org-1"},
		Anthropic: AnthropicSettings{APIKey: "ak-test", Model: "claude-haiku-4-5"},
		Ollama:    OllamaSettings{Host: "http://box:11434", Model: "llama3.2:3b"},
	}

	pc := settings.ProviderConfig()
	if pc.OpenAIAPIKey != "sk-test" || pc.AnthropicAPIKey != "ak-test" {
		t.Error("Expected credentials revealed for the registry")
	}
	if pc.OpenAIBaseURL != "https://example.test" || pc.OllamaHost != "http://box:11434" {
		t.Errorf("Expected provider settings carried over, got %+v", pc)
	}
}

func TestEnsureVectorDBPath(t *testing.T) {
	dir := t.TempDir()
	settings := &Settings{VectorDBPath: filepath.Join(dir, "data", "chroma_db")}

	if err := settings.EnsureVectorDBPath(); err != nil {
		t.Fatalf("EnsureVectorDBPath failed: %v", err)
	}
	info, err := os.Stat(settings.VectorDBPath)
	if err != nil {
		t.Fatalf("Expected directory to exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected a directory")
	}
}

func TestGetConfigPathOverride(t *testing.T) {
	t.Setenv("LLMCLIENT_CONFIG", "/tmp/custom.yaml")
	if got := GetConfigPath(); got != "/tmp/custom.yaml" {
		t.Errorf("Expected override path, got %q", got)
	}
}

func TestSecretRedaction(t *testing.T) {
	secret := Secret("sk-very-secret")

	if secret.String() == "sk-very-secret" {
		t.Error("Expected String to redact the value")
	}
	if secret.Reveal() != "sk-very-secret" {
		t.Errorf("Expected Reveal to return the raw value, got %q", secret.Reveal())
	}
	if !secret.IsSet() {
		t.Error("Expected IsSet true for non-empty secret")
	}
	if Secret("").IsSet() {
		t.Error("Expected IsSet false for empty secret")
	}

	jsonData, err := json.Marshal(struct {
		Key Secret `json:"key"`
	}{secret})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if strings.Contains(string(jsonData), "sk-very-secret") {
		t.Errorf("Expected JSON output to redact the secret, got %s", jsonData)
	}

	yamlData, err := yaml.Marshal(struct {
		Key Secret `yaml:"key"`
	}{secret})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if strings.Contains(string(yamlData), "sk-very-secret") {
		t.Errorf("Expected YAML output to redact the secret, got %s", yamlData)
	}
}
