package llm

import (
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/rs/zerolog"
)

// Default values applied to any field the caller does not set.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
	DefaultTopP        = 1.0
)

// ResponseFormat specifies the output format requested from the provider
// (e.g. {"type": "json_object"}).
type ResponseFormat struct {
	Type string `json:"type"`
}

// RequestConfig is the full parameter set for an outbound chat-completion
// call.
//
// Standard fields are portable across providers. Advanced fields are
// provider-specific; use APIParams(portableOnly=true) to exclude them.
//
// A RequestConfig is immutable once constructed: Merge returns a new
// instance and never touches the receiver.
type RequestConfig struct {
	// Standard parameters (portable)
	Temperature float64  // randomness, 0.0-2.0
	MaxTokens   int      // maximum tokens in the response, >= 1
	TopP        float64  // nucleus sampling, 0.0-1.0
	Stream      bool     // stream the response
	Stop        []string // stop sequences

	// Advanced parameters (provider-specific)
	Seed             *int64             // reproducible outputs
	FrequencyPenalty *float64           // -2.0 to 2.0
	PresencePenalty  *float64           // -2.0 to 2.0
	LogitBias        map[string]float64 // token likelihood adjustments
	User             string             // end-user identifier
	ResponseFormat   *ResponseFormat    // output format specification
}

// knownKeys is the full set of recognized override keys.
var knownKeys = map[string]bool{
	"temperature":       true,
	"max_tokens":        true,
	"top_p":             true,
	"stream":            true,
	"stop":              true,
	"seed":              true,
	"frequency_penalty": true,
	"presence_penalty":  true,
	"logit_bias":        true,
	"user":              true,
	"response_format":   true,
}

// DefaultRequestConfig returns a config populated with the field-level hard
// defaults.
func DefaultRequestConfig() RequestConfig {
	return RequestConfig{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		TopP:        DefaultTopP,
	}
}

// ConfigOption mutates a RequestConfig during construction.
type ConfigOption func(*RequestConfig)

func WithTemperature(v float64) ConfigOption {
	return func(c *RequestConfig) { c.Temperature = v }
}

func WithMaxTokens(v int) ConfigOption {
	return func(c *RequestConfig) { c.MaxTokens = v }
}

func WithTopP(v float64) ConfigOption {
	return func(c *RequestConfig) { c.TopP = v }
}

func WithStream(v bool) ConfigOption {
	return func(c *RequestConfig) { c.Stream = v }
}

func WithStop(stop ...string) ConfigOption {
	return func(c *RequestConfig) { c.Stop = slices.Clone(stop) }
}

func WithSeed(v int64) ConfigOption {
	return func(c *RequestConfig) { c.Seed = &v }
}

func WithFrequencyPenalty(v float64) ConfigOption {
	return func(c *RequestConfig) { c.FrequencyPenalty = &v }
}

func WithPresencePenalty(v float64) ConfigOption {
	return func(c *RequestConfig) { c.PresencePenalty = &v }
}

func WithLogitBias(bias map[string]float64) ConfigOption {
	return func(c *RequestConfig) { c.LogitBias = maps.Clone(bias) }
}

func WithUser(id string) ConfigOption {
	return func(c *RequestConfig) { c.User = id }
}

func WithResponseFormat(formatType string) ConfigOption {
	return func(c *RequestConfig) { c.ResponseFormat = &ResponseFormat{Type: formatType} }
}

// NewRequestConfig builds a config from the hard defaults plus the given
// options and validates it. Out-of-bound values fail with a
// *ValidationError; they are never clamped.
func NewRequestConfig(opts ...ConfigOption) (RequestConfig, error) {
	cfg := DefaultRequestConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return RequestConfig{}, err
	}
	return cfg, nil
}

// Validate checks every field against its declared bound.
func (c RequestConfig) Validate() error {
	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return NewValidationError("temperature", fmt.Sprintf("must be between 0.0 and 2.0, got %v", c.Temperature))
	}
	if c.TopP < 0.0 || c.TopP > 1.0 {
		return NewValidationError("top_p", fmt.Sprintf("must be between 0.0 and 1.0, got %v", c.TopP))
	}
	if c.MaxTokens < 1 {
		return NewValidationError("max_tokens", fmt.Sprintf("must be positive, got %d", c.MaxTokens))
	}
	if c.FrequencyPenalty != nil && (*c.FrequencyPenalty < -2.0 || *c.FrequencyPenalty > 2.0) {
		return NewValidationError("frequency_penalty", fmt.Sprintf("must be between -2.0 and 2.0, got %v", *c.FrequencyPenalty))
	}
	if c.PresencePenalty != nil && (*c.PresencePenalty < -2.0 || *c.PresencePenalty > 2.0) {
		return NewValidationError("presence_penalty", fmt.Sprintf("must be between -2.0 and 2.0, got %v", *c.PresencePenalty))
	}
	return nil
}

// RequestConfigFromMap builds a config from a loosely-typed mapping layered
// on top of the hard defaults. Unknown keys are dropped with a warning on
// log; known keys are range-validated exactly as in NewRequestConfig.
func RequestConfigFromMap(data map[string]any, log zerolog.Logger) (RequestConfig, error) {
	return DefaultRequestConfig().Merge(data, log)
}

// Merge layers the given overrides on top of the receiver and returns the
// result as a new, validated instance. The receiver is never modified.
// Unknown keys are dropped and logged; a bad value for a known key fails
// with a *ValidationError.
func (c RequestConfig) Merge(overrides map[string]any, log zerolog.Logger) (RequestConfig, error) {
	merged := c.clone()
	if len(overrides) == 0 {
		return merged, nil
	}

	var unknown []string
	for key, value := range overrides {
		if !knownKeys[key] {
			unknown = append(unknown, key)
			continue
		}
		if err := merged.apply(key, value); err != nil {
			return RequestConfig{}, err
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		log.Warn().Strs("keys", unknown).Msg("Unknown request config keys ignored")
	}

	if err := merged.Validate(); err != nil {
		return RequestConfig{}, err
	}
	return merged, nil
}

// clone deep-copies the config so merged instances never alias the base's
// slices or maps.
func (c RequestConfig) clone() RequestConfig {
	out := c
	out.Stop = slices.Clone(c.Stop)
	out.LogitBias = maps.Clone(c.LogitBias)
	if c.Seed != nil {
		v := *c.Seed
		out.Seed = &v
	}
	if c.FrequencyPenalty != nil {
		v := *c.FrequencyPenalty
		out.FrequencyPenalty = &v
	}
	if c.PresencePenalty != nil {
		v := *c.PresencePenalty
		out.PresencePenalty = &v
	}
	if c.ResponseFormat != nil {
		v := *c.ResponseFormat
		out.ResponseFormat = &v
	}
	return out
}

// apply sets a single known key from a loosely-typed value.
func (c *RequestConfig) apply(key string, value any) error {
	switch key {
	case "temperature":
		v, ok := toFloat(value)
		if !ok {
			return NewValidationError(key, fmt.Sprintf("expected number, got %T", value))
		}
		c.Temperature = v
	case "max_tokens":
		v, ok := toInt(value)
		if !ok {
			return NewValidationError(key, fmt.Sprintf("expected integer, got %T", value))
		}
		c.MaxTokens = v
	case "top_p":
		v, ok := toFloat(value)
		if !ok {
			return NewValidationError(key, fmt.Sprintf("expected number, got %T", value))
		}
		c.TopP = v
	case "stream":
		v, ok := value.(bool)
		if !ok {
			return NewValidationError(key, fmt.Sprintf("expected bool, got %T", value))
		}
		c.Stream = v
	case "stop":
		v, err := toStringSlice(value)
		if err != nil {
			return NewValidationError(key, err.Error())
		}
		c.Stop = v
	case "seed":
		v, ok := toInt(value)
		if !ok {
			return NewValidationError(key, fmt.Sprintf("expected integer, got %T", value))
		}
		seed := int64(v)
		c.Seed = &seed
	case "frequency_penalty":
		v, ok := toFloat(value)
		if !ok {
			return NewValidationError(key, fmt.Sprintf("expected number, got %T", value))
		}
		c.FrequencyPenalty = &v
	case "presence_penalty":
		v, ok := toFloat(value)
		if !ok {
			return NewValidationError(key, fmt.Sprintf("expected number, got %T", value))
		}
		c.PresencePenalty = &v
	case "logit_bias":
		v, err := toFloatMap(value)
		if err != nil {
			return NewValidationError(key, err.Error())
		}
		c.LogitBias = v
	case "user":
		v, ok := value.(string)
		if !ok {
			return NewValidationError(key, fmt.Sprintf("expected string, got %T", value))
		}
		c.User = v
	case "response_format":
		v, err := toResponseFormat(value)
		if err != nil {
			return NewValidationError(key, err.Error())
		}
		c.ResponseFormat = v
	}
	return nil
}

// APIParams converts the config into the parameter map sent to the provider.
// Unset advanced fields are omitted. With portableOnly, advanced fields are
// excluded entirely so the result is safe for any provider.
func (c RequestConfig) APIParams(portableOnly bool) map[string]any {
	params := map[string]any{
		"temperature": c.Temperature,
		"max_tokens":  c.MaxTokens,
		"top_p":       c.TopP,
		"stream":      c.Stream,
	}
	if len(c.Stop) > 0 {
		params["stop"] = slices.Clone(c.Stop)
	}
	if portableOnly {
		return params
	}
	if c.Seed != nil {
		params["seed"] = *c.Seed
	}
	if c.FrequencyPenalty != nil {
		params["frequency_penalty"] = *c.FrequencyPenalty
	}
	if c.PresencePenalty != nil {
		params["presence_penalty"] = *c.PresencePenalty
	}
	if len(c.LogitBias) > 0 {
		params["logit_bias"] = maps.Clone(c.LogitBias)
	}
	if c.User != "" {
		params["user"] = c.User
	}
	if c.ResponseFormat != nil {
		params["response_format"] = map[string]any{"type": c.ResponseFormat.Type}
	}
	return params
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int(v)) {
			return int(v), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func toStringSlice(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return slices.Clone(v), nil
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string element, got %T", item)
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected string list, got %T", value)
	}
}

func toFloatMap(value any) (map[string]float64, error) {
	switch v := value.(type) {
	case map[string]float64:
		return maps.Clone(v), nil
	case map[string]any:
		out := make(map[string]float64, len(v))
		for key, item := range v {
			f, ok := toFloat(item)
			if !ok {
				return nil, fmt.Errorf("expected numeric value for %q, got %T", key, item)
			}
			out[key] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected map, got %T", value)
	}
}

func toResponseFormat(value any) (*ResponseFormat, error) {
	switch v := value.(type) {
	case *ResponseFormat:
		if v == nil {
			return nil, nil
		}
		out := *v
		return &out, nil
	case ResponseFormat:
		return &v, nil
	case map[string]any:
		t, ok := v["type"].(string)
		if !ok {
			return nil, fmt.Errorf("expected response_format with string type field")
		}
		return &ResponseFormat{Type: t}, nil
	case map[string]string:
		t, ok := v["type"]
		if !ok {
			return nil, fmt.Errorf("expected response_format with type field")
		}
		return &ResponseFormat{Type: t}, nil
	default:
		return nil, fmt.Errorf("expected response format, got %T", value)
	}
}
