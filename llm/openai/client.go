// Package openai implements the llm.Transport interface over OpenAI's
// chat-completion API using the go-openai SDK.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jdhollis/llmclient/llm"
)

// The OpenAI API does not expose retry-after headers through the SDK error,
// so rate limits fall back to a fixed hint.
const defaultRetryAfter = 60 * time.Second

// Transport implements llm.Transport for OpenAI's API.
type Transport struct {
	client *openai.Client
}

// NewTransport creates an OpenAI transport. baseURL and organization are
// optional; empty values use the SDK defaults.
func NewTransport(apiKey, baseURL, organization string) (*Transport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if organization != "" {
		config.OrgID = organization
	}

	return &Transport{client: openai.NewClientWithConfig(config)}, nil
}

// Complete implements llm.Transport.Complete.
func (t *Transport) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	chatReq, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}

	chatResp, err := t.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, convertError(err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, llm.NewProviderError("no choices in OpenAI response", nil)
	}

	return &llm.Response{
		Content: chatResp.Choices[0].Message.Content,
		Role:    llm.RoleAssistant,
		Usage: llm.Usage{
			Input:  chatResp.Usage.PromptTokens,
			Output: chatResp.Usage.CompletionTokens,
			Total:  chatResp.Usage.TotalTokens,
		},
		Raw: chatResp,
	}, nil
}

// Stream implements llm.Transport.Stream.
func (t *Transport) Stream(ctx context.Context, req *llm.Request) (llm.DeltaStream, error) {
	chatReq, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}
	chatReq.Stream = true

	stream, err := t.client.CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return nil, convertError(err)
	}
	return &chatStream{stream: stream}, nil
}

// buildChatRequest translates the neutral request into the SDK shape,
// carrying both the portable and the OpenAI-specific parameter fields.
func buildChatRequest(req *llm.Request) (openai.ChatCompletionRequest, error) {
	if req == nil {
		return openai.ChatCompletionRequest{}, fmt.Errorf("request is required")
	}
	if req.Model == "" {
		return openai.ChatCompletionRequest{}, fmt.Errorf("model is required")
	}

	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}

	cfg := req.Config
	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(cfg.Temperature),
		MaxTokens:   cfg.MaxTokens,
		TopP:        float32(cfg.TopP),
		Stop:        cfg.Stop,
		User:        cfg.User,
	}

	if cfg.Seed != nil {
		seed := int(*cfg.Seed)
		chatReq.Seed = &seed
	}
	if cfg.FrequencyPenalty != nil {
		chatReq.FrequencyPenalty = float32(*cfg.FrequencyPenalty)
	}
	if cfg.PresencePenalty != nil {
		chatReq.PresencePenalty = float32(*cfg.PresencePenalty)
	}
	if len(cfg.LogitBias) > 0 {
		bias := make(map[string]int, len(cfg.LogitBias))
		for token, v := range cfg.LogitBias {
			bias[token] = int(v)
		}
		chatReq.LogitBias = bias
	}
	if cfg.ResponseFormat != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatType(cfg.ResponseFormat.Type),
		}
	}

	return chatReq, nil
}

// convertError classifies OpenAI SDK errors into llm.Error values.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return llm.NewNetworkError("OpenAI request error", err)
	}

	switch apiErr.HTTPStatusCode {
	case http.StatusTooManyRequests:
		retryAfter := defaultRetryAfter
		return llm.NewRateLimitError(
			fmt.Sprintf("OpenAI rate limit: %s", apiErr.Message),
			&retryAfter,
			err,
		)
	case http.StatusUnauthorized, http.StatusForbidden:
		return llm.NewAuthError(
			fmt.Sprintf("OpenAI auth failure: %s", apiErr.Message),
			apiErr.HTTPStatusCode,
			err,
		)
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return llm.NewInvalidRequestError(
			fmt.Sprintf("OpenAI invalid request: %s", apiErr.Message),
			apiErr.HTTPStatusCode,
			err,
		)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return llm.NewTransientError(
			fmt.Sprintf("OpenAI server error: %s", apiErr.Message),
			apiErr.HTTPStatusCode,
			err,
		)
	default:
		return llm.NewProviderError(
			fmt.Sprintf("OpenAI API error: %s", apiErr.Message),
			err,
		)
	}
}

var _ llm.Transport = (*Transport)(nil)
