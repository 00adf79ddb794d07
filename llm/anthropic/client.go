// Package anthropic implements the llm.Transport interface over Anthropic's
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jdhollis/llmclient/llm"
)

// Transport implements llm.Transport for Anthropic's API.
type Transport struct {
	client *anthropic.Client
}

// NewTransport creates an Anthropic transport with the given API key.
func NewTransport(apiKey string) (*Transport, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Transport{client: &client}, nil
}

// Complete implements llm.Transport.Complete.
func (t *Transport) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	params, err := buildMessageParams(req)
	if err != nil {
		return nil, err
	}

	message, err := t.client.Messages.New(ctx, params)
	if err != nil {
		return nil, convertError(err)
	}

	var sb strings.Builder
	for _, blockUnion := range message.Content {
		if block, ok := blockUnion.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(block.Text)
		}
	}

	input := int(message.Usage.InputTokens)
	output := int(message.Usage.OutputTokens)
	return &llm.Response{
		Content: sb.String(),
		Role:    llm.RoleAssistant,
		Usage: llm.Usage{
			Input:  input,
			Output: output,
			Total:  input + output,
		},
		Raw: message,
	}, nil
}

// Stream implements llm.Transport.Stream.
func (t *Transport) Stream(ctx context.Context, req *llm.Request) (llm.DeltaStream, error) {
	params, err := buildMessageParams(req)
	if err != nil {
		return nil, err
	}

	stream := t.client.Messages.NewStreaming(ctx, params)
	return &messageStream{stream: stream}, nil
}

// buildMessageParams translates the neutral request into the Messages API
// shape. Anthropic takes the system prompt as a separate field, so system
// messages are lifted out of the turn list. Only the portable parameter
// fields apply; the advanced OpenAI-specific fields have no equivalent here.
func buildMessageParams(req *llm.Request) (anthropic.MessageNewParams, error) {
	if req == nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("request is required")
	}
	if req.Model == "" {
		return anthropic.MessageNewParams{}, fmt.Errorf("model is required")
	}

	var systemParts []string
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case string(llm.RoleSystem):
			systemParts = append(systemParts, m.Content)
		case string(llm.RoleAssistant):
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	cfg := req.Config
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(cfg.MaxTokens),
		Messages:    messages,
		Temperature: anthropic.Float(cfg.Temperature),
		TopP:        anthropic.Float(cfg.TopP),
	}
	if len(systemParts) > 0 {
		params.System = []anthropic.TextBlockParam{
			{Text: strings.Join(systemParts, "\n\n")},
		}
	}
	if len(cfg.Stop) > 0 {
		params.StopSequences = cfg.Stop
	}

	return params, nil
}

// convertError classifies Anthropic SDK errors into llm.Error values.
func convertError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return llm.NewNetworkError("Anthropic request error", err)
	}

	switch apiErr.StatusCode {
	case http.StatusTooManyRequests:
		return llm.NewRateLimitError("Anthropic rate limit", nil, err)
	case http.StatusUnauthorized, http.StatusForbidden:
		return llm.NewAuthError("Anthropic auth failure", apiErr.StatusCode, err)
	case http.StatusBadRequest, http.StatusNotFound:
		return llm.NewInvalidRequestError("Anthropic invalid request", apiErr.StatusCode, err)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, 529:
		// 529 is Anthropic's overloaded_error status.
		return llm.NewTransientError("Anthropic server error", apiErr.StatusCode, err)
	default:
		return llm.NewProviderError("Anthropic API error", err)
	}
}

var _ llm.Transport = (*Transport)(nil)
