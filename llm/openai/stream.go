package openai

import (
	"errors"
	"io"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jdhollis/llmclient/llm"
)

// chatStream adapts the SDK's completion stream to llm.DeltaStream.
// Deltas without content surface as empty fragments; the consumer-facing
// stream filters those out.
type chatStream struct {
	stream *openai.ChatCompletionStream
	delta  string
	err    error
	done   bool
}

// Next advances to the next SDK chunk.
func (s *chatStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	resp, err := s.stream.Recv()
	if err != nil {
		s.done = true
		if errors.Is(err, io.EOF) {
			return false
		}
		s.err = convertError(err)
		return false
	}

	if len(resp.Choices) == 0 {
		s.delta = ""
		return true
	}
	s.delta = resp.Choices[0].Delta.Content
	if resp.Choices[0].FinishReason != "" {
		s.done = true
	}
	return true
}

// Delta returns the current text fragment, possibly empty.
func (s *chatStream) Delta() string {
	return s.delta
}

// Err returns the error that terminated the stream, if any.
func (s *chatStream) Err() error {
	return s.err
}

// Close closes the underlying SDK stream.
func (s *chatStream) Close() error {
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}

var _ llm.DeltaStream = (*chatStream)(nil)
