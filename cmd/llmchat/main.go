package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jdhollis/llmclient/config"
	"github.com/jdhollis/llmclient/llm"
	"github.com/jdhollis/llmclient/llm/anthropic"
	"github.com/jdhollis/llmclient/llm/ollama"
	"github.com/jdhollis/llmclient/llm/openai"
	llmlogger "github.com/jdhollis/llmclient/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", config.GetConfigPath(), "Path to config file")
		provider    = flag.String("provider", "", "Provider to use (openai, anthropic, ollama). Defaults to the configured provider")
		model       = flag.String("model", "", "Model override. Defaults to the provider's configured model")
		system      = flag.String("system", "", "System prompt")
		temperature = flag.Float64("temperature", -1, "Temperature override (0.0-2.0)")
		maxTokens   = flag.Int("max-tokens", 0, "Max tokens override")
		stream      = flag.Bool("stream", false, "Stream the response")
		logFile     = flag.String("logfile", "", "Path to log file. If not set, logs to stdout/stderr")
		pretty      = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
	)
	flag.Parse()

	if *logFile != "" && *pretty {
		return fmt.Errorf("--logfile and --pretty are mutually exclusive")
	}

	log, err := llmlogger.InitWithOptions(*logFile, *pretty)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	settings, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	log.Info().
		Str("app", settings.AppName).
		Str("environment", settings.Environment).
		Msg("Starting")

	if err := settings.EnsureVectorDBPath(); err != nil {
		return fmt.Errorf("failed to create vector db path: %w", err)
	}

	providerName := settings.Provider
	if *provider != "" {
		providerName = *provider
	}

	registry := llm.NewRegistry(settings.ProviderConfig())
	if !registry.IsConfigured(providerName) {
		return fmt.Errorf("provider %q is not configured", providerName)
	}
	key, err := registry.Resolve(providerName, *model)
	if err != nil {
		return fmt.Errorf("failed to resolve provider: %w", err)
	}

	transport, err := buildTransport(key)
	if err != nil {
		return fmt.Errorf("failed to build %s transport: %w", key.Provider, err)
	}

	client, err := llm.New(transport,
		llm.WithModel(key.Model),
		llm.WithLogger(log),
	)
	if err != nil {
		return err
	}

	prompt, err := readPrompt()
	if err != nil {
		return err
	}

	var messages []llm.Message
	if *system != "" {
		messages = append(messages, llm.SystemMessage(*system))
	}
	messages = append(messages, llm.UserMessage(prompt))

	overrides := map[string]any{}
	if *temperature >= 0 {
		overrides["temperature"] = *temperature
	}
	if *maxTokens > 0 {
		overrides["max_tokens"] = *maxTokens
	}

	ctx := context.Background()
	if *stream {
		return streamChat(ctx, client, messages, overrides)
	}
	return chat(ctx, client, messages, overrides, log)
}

// buildTransport constructs the concrete transport for a resolved key.
func buildTransport(key *llm.TransportKey) (llm.Transport, error) {
	switch key.Provider {
	case llm.ProviderOpenAI:
		return openai.NewTransport(key.APIKey, key.BaseURL, key.Organization)
	case llm.ProviderAnthropic:
		return anthropic.NewTransport(key.APIKey)
	case llm.ProviderOllama:
		return ollama.NewTransport(key.Host)
	default:
		return nil, fmt.Errorf("unknown provider: %s", key.Provider)
	}
}

// readPrompt takes the prompt from the remaining arguments, or from stdin
// when none are given.
func readPrompt() (string, error) {
	if args := flag.Args(); len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("no prompt given")
	}
	return prompt, nil
}

func chat(ctx context.Context, client *llm.Client, messages []llm.Message, overrides map[string]any, log zerolog.Logger) error {
	resp, err := client.Chat(ctx, messages, overrides)
	if err != nil {
		return err
	}
	fmt.Println(resp.Content)
	log.Info().
		Int("input_tokens", resp.Usage.Input).
		Int("output_tokens", resp.Usage.Output).
		Int("total_tokens", resp.Usage.Total).
		Msg("Token usage")
	return nil
}

func streamChat(ctx context.Context, client *llm.Client, messages []llm.Message, overrides map[string]any) error {
	stream, err := client.StreamChat(ctx, messages, overrides)
	if err != nil {
		return err
	}
	defer stream.Close() //nolint:errcheck // best-effort close

	for stream.Next() {
		fmt.Print(stream.Text())
	}
	fmt.Println()
	return stream.Err()
}
