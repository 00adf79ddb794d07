package llm

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultRequestConfig(t *testing.T) {
	cfg := DefaultRequestConfig()
	if cfg.Temperature != 0.7 {
		t.Errorf("Expected default temperature 0.7, got %v", cfg.Temperature)
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("Expected default max tokens 1000, got %d", cfg.MaxTokens)
	}
	if cfg.TopP != 1.0 {
		t.Errorf("Expected default top_p 1.0, got %v", cfg.TopP)
	}
	if cfg.Stream {
		t.Error("Expected stream to default to false")
	}
	if cfg.Stop != nil || cfg.Seed != nil || cfg.FrequencyPenalty != nil || cfg.PresencePenalty != nil {
		t.Error("Expected optional fields to default to unset")
	}
}

func TestNewRequestConfigValidBounds(t *testing.T) {
	for _, temp := range []float64{0.0, 1.0, 2.0} {
		if _, err := NewRequestConfig(WithTemperature(temp)); err != nil {
			t.Errorf("Expected temperature %v to be valid, got %v", temp, err)
		}
	}
	for _, topP := range []float64{0.0, 0.5, 1.0} {
		if _, err := NewRequestConfig(WithTopP(topP)); err != nil {
			t.Errorf("Expected top_p %v to be valid, got %v", topP, err)
		}
	}
	for _, penalty := range []float64{-2.0, 0.0, 2.0} {
		if _, err := NewRequestConfig(WithFrequencyPenalty(penalty)); err != nil {
			t.Errorf("Expected frequency_penalty %v to be valid, got %v", penalty, err)
		}
		if _, err := NewRequestConfig(WithPresencePenalty(penalty)); err != nil {
			t.Errorf("Expected presence_penalty %v to be valid, got %v", penalty, err)
		}
	}
}

func TestNewRequestConfigInvalidBounds(t *testing.T) {
	cases := []struct {
		name  string
		opt   ConfigOption
		field string
	}{
		{"temperature too low", WithTemperature(-0.1), "temperature"},
		{"temperature too high", WithTemperature(2.1), "temperature"},
		{"top_p too low", WithTopP(-0.1), "top_p"},
		{"top_p too high", WithTopP(1.1), "top_p"},
		{"max_tokens zero", WithMaxTokens(0), "max_tokens"},
		{"max_tokens negative", WithMaxTokens(-5), "max_tokens"},
		{"frequency_penalty too low", WithFrequencyPenalty(-2.1), "frequency_penalty"},
		{"frequency_penalty too high", WithFrequencyPenalty(2.1), "frequency_penalty"},
		{"presence_penalty too low", WithPresencePenalty(-2.1), "presence_penalty"},
		{"presence_penalty too high", WithPresencePenalty(2.1), "presence_penalty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRequestConfig(tc.opt)
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}
			if vErr.Field != tc.field {
				t.Errorf("Expected field %q, got %q", tc.field, vErr.Field)
			}
		})
	}
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base, err := NewRequestConfig(
		WithTemperature(0.3),
		WithMaxTokens(500),
		WithStop("END"),
		WithSeed(42),
		WithLogitBias(map[string]float64{"50256": -100}),
	)
	if err != nil {
		t.Fatalf("Failed to build base config: %v", err)
	}

	merged, err := base.Merge(map[string]any{
		"temperature": 0.9,
		"max_tokens":  2000,
		"stop":        []string{"STOP"},
		"seed":        7,
		"logit_bias":  map[string]float64{"100": 1},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if base.Temperature != 0.3 {
		t.Errorf("Base temperature mutated: got %v", base.Temperature)
	}
	if base.MaxTokens != 500 {
		t.Errorf("Base max_tokens mutated: got %d", base.MaxTokens)
	}
	if len(base.Stop) != 1 || base.Stop[0] != "END" {
		t.Errorf("Base stop mutated: got %v", base.Stop)
	}
	if *base.Seed != 42 {
		t.Errorf("Base seed mutated: got %d", *base.Seed)
	}
	if base.LogitBias["50256"] != -100 {
		t.Errorf("Base logit_bias mutated: got %v", base.LogitBias)
	}

	if merged.Temperature != 0.9 {
		t.Errorf("Expected merged temperature 0.9, got %v", merged.Temperature)
	}
	if merged.MaxTokens != 2000 {
		t.Errorf("Expected merged max_tokens 2000, got %d", merged.MaxTokens)
	}
	if len(merged.Stop) != 1 || merged.Stop[0] != "STOP" {
		t.Errorf("Expected merged stop [STOP], got %v", merged.Stop)
	}
	if *merged.Seed != 7 {
		t.Errorf("Expected merged seed 7, got %d", *merged.Seed)
	}
}

func TestMergePreservesUnsetOverrides(t *testing.T) {
	base, err := NewRequestConfig(WithTemperature(0.2), WithUser("user-1"))
	if err != nil {
		t.Fatalf("Failed to build base config: %v", err)
	}

	merged, err := base.Merge(map[string]any{"max_tokens": 50}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Temperature != 0.2 {
		t.Errorf("Expected base temperature carried over, got %v", merged.Temperature)
	}
	if merged.User != "user-1" {
		t.Errorf("Expected base user carried over, got %q", merged.User)
	}
	if merged.MaxTokens != 50 {
		t.Errorf("Expected merged max_tokens 50, got %d", merged.MaxTokens)
	}
}

func TestMergeDropsUnknownKeys(t *testing.T) {
	base := DefaultRequestConfig()
	merged, err := base.Merge(map[string]any{
		"foo":         123,
		"temperature": 0.5,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Expected unknown keys to be dropped without error, got %v", err)
	}
	if merged.Temperature != 0.5 {
		t.Errorf("Expected known key applied, got temperature %v", merged.Temperature)
	}
	if _, ok := merged.APIParams(false)["foo"]; ok {
		t.Error("Expected unknown key to be absent from API params")
	}
}

func TestMergeValidatesOverrides(t *testing.T) {
	base := DefaultRequestConfig()
	if _, err := base.Merge(map[string]any{"temperature": 3.0}, zerolog.Nop()); err == nil {
		t.Error("Expected out-of-bound override to fail validation")
	}
	if _, err := base.Merge(map[string]any{"max_tokens": "lots"}, zerolog.Nop()); err == nil {
		t.Error("Expected wrongly-typed override to fail validation")
	}
}

func TestRequestConfigFromMap(t *testing.T) {
	cfg, err := RequestConfigFromMap(map[string]any{
		"temperature": 0.1,
		"stream":      true,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("RequestConfigFromMap failed: %v", err)
	}
	if cfg.Temperature != 0.1 {
		t.Errorf("Expected temperature 0.1, got %v", cfg.Temperature)
	}
	if !cfg.Stream {
		t.Error("Expected stream true")
	}
	// Unspecified fields fall back to hard defaults.
	if cfg.MaxTokens != DefaultMaxTokens {
		t.Errorf("Expected default max_tokens, got %d", cfg.MaxTokens)
	}
}

func TestAPIParamsPortableOnly(t *testing.T) {
	cfg, err := NewRequestConfig(
		WithTemperature(0.5),
		WithSeed(12345),
		WithFrequencyPenalty(0.5),
		WithPresencePenalty(-0.5),
		WithLogitBias(map[string]float64{"50256": -100}),
		WithUser("user-1"),
		WithResponseFormat("json_object"),
	)
	if err != nil {
		t.Fatalf("Failed to build config: %v", err)
	}

	portable := cfg.APIParams(true)
	for _, key := range []string{"seed", "frequency_penalty", "presence_penalty", "logit_bias", "user", "response_format"} {
		if _, ok := portable[key]; ok {
			t.Errorf("Expected portable params to exclude %q", key)
		}
	}
	for _, key := range []string{"temperature", "max_tokens", "top_p", "stream"} {
		if _, ok := portable[key]; !ok {
			t.Errorf("Expected portable params to include %q", key)
		}
	}

	full := cfg.APIParams(false)
	if full["seed"] != int64(12345) {
		t.Errorf("Expected full params to carry seed, got %v", full["seed"])
	}
	if full["user"] != "user-1" {
		t.Errorf("Expected full params to carry user, got %v", full["user"])
	}
}

func TestAPIParamsOmitsUnsetFields(t *testing.T) {
	params := DefaultRequestConfig().APIParams(false)
	for _, key := range []string{"stop", "seed", "frequency_penalty", "presence_penalty", "logit_bias", "user", "response_format"} {
		if _, ok := params[key]; ok {
			t.Errorf("Expected unset field %q to be omitted", key)
		}
	}
}
