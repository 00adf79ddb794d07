package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Transport is the provider boundary: it accepts a model, ordered wire
// messages, and a resolved parameter set, and performs one network call.
// Implementations classify their SDK errors into *llm.Error values so the
// retry policy can distinguish transient from fatal failures.
type Transport interface {
	// Complete performs a single blocking chat-completion call.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Stream opens a single streaming chat-completion call.
	Stream(ctx context.Context, req *Request) (DeltaStream, error)
}

// Client orchestrates chat-completion calls: it resolves configuration,
// formats messages, invokes the transport (under the retry policy for
// blocking calls), and normalizes responses.
//
// A Client is safe for concurrent use; its defaults are read-only after
// construction and every call works on its own resolved config.
type Client struct {
	transport Transport
	model     string
	defaults  RequestConfig
	retry     RetryPolicy
	logger    zerolog.Logger
}

// Option configures a Client during construction.
type Option func(*Client)

// WithModel sets the model identifier used for every call.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithDefaults sets the client-level default request config. It is validated
// by New.
func WithDefaults(cfg RequestConfig) Option {
	return func(c *Client) { c.defaults = cfg }
}

// WithRetryPolicy overrides the retry policy for blocking calls.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) { c.retry = policy }
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.logger = log }
}

// New creates a Client over the given transport. Defaults not overridden via
// options are the field-level hard defaults and the standard retry policy.
func New(transport Transport, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	c := &Client{
		transport: transport,
		defaults:  DefaultRequestConfig(),
		retry:     DefaultRetryPolicy(),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if err := c.defaults.Validate(); err != nil {
		return nil, err
	}
	c.logger = c.logger.With().Str("component", "llmClient").Logger()
	return c, nil
}

// resolve produces the final parameter set for one call. Precedence:
// per-call override > client defaults > hard defaults. The override may be a
// complete *RequestConfig (used as-is after validation) or a loose
// map[string]any layered on top of the client defaults.
func (c *Client) resolve(override any) (RequestConfig, error) {
	switch o := override.(type) {
	case nil:
		return c.defaults.clone(), nil
	case RequestConfig:
		if err := o.Validate(); err != nil {
			return RequestConfig{}, err
		}
		return o.clone(), nil
	case *RequestConfig:
		if o == nil {
			return c.defaults.clone(), nil
		}
		if err := o.Validate(); err != nil {
			return RequestConfig{}, err
		}
		return o.clone(), nil
	case map[string]any:
		return c.defaults.Merge(o, c.logger)
	default:
		return RequestConfig{}, NewValidationError("config", fmt.Sprintf("unsupported override type %T", override))
	}
}

// Chat sends a blocking chat-completion request and returns the normalized
// response. Transient transport failures are retried per the retry policy;
// the last error is surfaced once attempts are exhausted.
func (c *Client) Chat(ctx context.Context, messages []Message, override any) (*Response, error) {
	cfg, err := c.resolve(override)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Model:    c.model,
		Messages: FormatMessages(messages),
		Config:   cfg,
	}

	start := time.Now()
	var resp *Response
	err = c.retry.Run(ctx, c.logger, func() error {
		r, callErr := c.transport.Complete(ctx, req)
		if callErr != nil {
			return callErr
		}
		resp = r
		return nil
	})
	if err != nil {
		c.logger.Error().Str("model", req.Model).Err(err).Msg("Chat request failed")
		return nil, fmt.Errorf("llm chat request failed: %w", err)
	}

	normalizeResponse(resp)
	c.logger.Debug().
		Str("model", req.Model).
		Int("input_tokens", resp.Usage.Input).
		Int("output_tokens", resp.Usage.Output).
		Dur("duration", time.Since(start)).
		Msg("Chat request completed")
	return resp, nil
}

// StreamChat opens a streaming chat-completion request and returns a
// single-pass stream of non-empty text fragments. The stream flag is forced
// on regardless of the resolved config. Streams are never retried: once
// fragments have been emitted, a transparent restart could duplicate output.
func (c *Client) StreamChat(ctx context.Context, messages []Message, override any) (*TextStream, error) {
	cfg, err := c.resolve(override)
	if err != nil {
		return nil, err
	}
	cfg.Stream = true

	req := &Request{
		Model:    c.model,
		Messages: FormatMessages(messages),
		Config:   cfg,
	}

	stream, err := c.transport.Stream(ctx, req)
	if err != nil {
		c.logger.Error().Str("model", req.Model).Err(err).Msg("Stream request failed")
		return nil, fmt.Errorf("llm stream request failed: %w", err)
	}

	c.logger.Debug().Str("model", req.Model).Msg("Stream opened")
	return newTextStream(stream), nil
}

// normalizeResponse fills in the response invariants: assistant role by
// default and a consistent total token count.
func normalizeResponse(resp *Response) {
	if resp.Role == "" {
		resp.Role = RoleAssistant
	}
	if resp.Usage.Total == 0 {
		resp.Usage.Total = resp.Usage.Input + resp.Usage.Output
	}
}
