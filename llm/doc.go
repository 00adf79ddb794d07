// Package llm is a thin, provider-neutral client for chat-completion APIs.
//
// It assembles request parameters from layered configuration, issues
// blocking and streaming calls through a Transport, retries transient
// failures on the blocking path, and normalizes responses into a stable
// shape.
//
// # Core Concepts
//
//  1. Messages: the Message type represents one conversation turn with a
//     role (system, user, assistant, tool) and text content. Messages are
//     values; construct them once and reuse them freely.
//
//  2. Configuration: RequestConfig is the validated parameter set for a
//     call. Per-call overrides (a complete config or a loose map) are
//     layered over client defaults, which are layered over hard defaults.
//     Merging always produces a new instance.
//
//  3. Transport: the Transport interface is the provider boundary.
//     Implementations (openai, anthropic, ollama subpackages) translate the
//     neutral Request into SDK calls and classify SDK errors into *Error
//     values.
//
//  4. Retry: RetryPolicy wraps blocking calls with bounded exponential
//     backoff. Only transient errors (rate limits, server faults) are
//     retried; validation and auth errors propagate immediately. Streaming
//     calls are never retried.
//
//  5. Streaming: StreamChat returns a TextStream, a single-pass iterator of
//     non-empty text fragments. Empty deltas from the provider are filtered
//     before they reach the consumer.
//
// Usage:
//
//	transport, _ := openai.NewTransport(apiKey, "", "")
//	client, _ := llm.New(transport,
//	    llm.WithModel("gpt-4-turbo"),
//	    llm.WithLogger(log),
//	)
//
//	resp, err := client.Chat(ctx, []llm.Message{
//	    llm.SystemMessage("You are a helpful assistant."),
//	    llm.UserMessage("Hello!"),
//	}, map[string]any{"temperature": 0.5})
package llm
