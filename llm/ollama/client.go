// Package ollama implements the llm.Transport interface over a local or
// remote Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/jdhollis/llmclient/llm"
)

// Transport implements llm.Transport for Ollama's API.
type Transport struct {
	client *api.Client
}

// NewTransport creates an Ollama transport. If host is empty the client is
// configured from the environment (OLLAMA_HOST or http://localhost:11434).
func NewTransport(host string) (*Transport, error) {
	if host == "" {
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return &Transport{client: client}, nil
	}

	baseURL, err := parseHost(host)
	if err != nil {
		return nil, fmt.Errorf("invalid host: %w", err)
	}
	return &Transport{client: api.NewClient(baseURL, &http.Client{})}, nil
}

// parseHost parses a host string into a URL, defaulting the scheme to http.
func parseHost(host string) (*url.URL, error) {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return url.Parse(host)
}

// Complete implements llm.Transport.Complete.
func (t *Transport) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	chatReq, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}
	chatReq.Stream = new(bool) // non-streaming

	var chatResp api.ChatResponse
	err = t.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		chatResp = resp
		return nil
	})
	if err != nil {
		return nil, convertError(err)
	}

	return &llm.Response{
		Content: chatResp.Message.Content,
		Role:    llm.RoleAssistant,
		Usage: llm.Usage{
			Input:  chatResp.PromptEvalCount,
			Output: chatResp.EvalCount,
			Total:  chatResp.PromptEvalCount + chatResp.EvalCount,
		},
		Raw: chatResp,
	}, nil
}

// Stream implements llm.Transport.Stream. Ollama's SDK is callback-driven,
// so the callback feeds a channel drained by the returned stream.
func (t *Transport) Stream(ctx context.Context, req *llm.Request) (llm.DeltaStream, error) {
	chatReq, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}
	streaming := true
	chatReq.Stream = &streaming

	streamCtx, cancel := context.WithCancel(ctx)
	s := &chatStream{
		fragments: make(chan string, 16),
		cancel:    cancel,
	}

	go func() {
		defer close(s.fragments)
		err := t.client.Chat(streamCtx, chatReq, func(resp api.ChatResponse) error {
			select {
			case s.fragments <- resp.Message.Content:
				return nil
			case <-streamCtx.Done():
				return streamCtx.Err()
			}
		})
		if err != nil && streamCtx.Err() == nil {
			s.setErr(convertError(err))
		}
	}()

	return s, nil
}

// buildChatRequest translates the neutral request into the Ollama shape.
// Sampling parameters go through the options map; names follow Ollama's
// modelfile parameters (max_tokens becomes num_predict).
func buildChatRequest(req *llm.Request) (*api.ChatRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if req.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	messages := make([]api.Message, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = api.Message{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	cfg := req.Config
	options := map[string]any{
		"temperature": cfg.Temperature,
		"num_predict": cfg.MaxTokens,
		"top_p":       cfg.TopP,
	}
	if len(cfg.Stop) > 0 {
		options["stop"] = cfg.Stop
	}
	if cfg.Seed != nil {
		options["seed"] = int(*cfg.Seed)
	}
	if cfg.FrequencyPenalty != nil {
		options["frequency_penalty"] = *cfg.FrequencyPenalty
	}
	if cfg.PresencePenalty != nil {
		options["presence_penalty"] = *cfg.PresencePenalty
	}

	return &api.ChatRequest{
		Model:    req.Model,
		Messages: messages,
		Options:  options,
	}, nil
}

// convertError classifies Ollama API errors into llm.Error values.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var statusErr api.StatusError
	if !errors.As(err, &statusErr) {
		return llm.NewNetworkError("Ollama request error", err)
	}

	switch statusErr.StatusCode {
	case http.StatusTooManyRequests:
		return llm.NewRateLimitError("Ollama rate limit", nil, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return llm.NewAuthError("Ollama auth failure", statusErr.StatusCode, err)
	case http.StatusBadRequest, http.StatusNotFound:
		return llm.NewInvalidRequestError("Ollama invalid request", statusErr.StatusCode, err)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return llm.NewTransientError("Ollama server error", statusErr.StatusCode, err)
	default:
		return llm.NewProviderError("Ollama API error", err)
	}
}

var _ llm.Transport = (*Transport)(nil)
