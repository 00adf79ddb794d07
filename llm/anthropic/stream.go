package anthropic

import (
	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/jdhollis/llmclient/llm"
)

// messageStream adapts the SDK's SSE stream to llm.DeltaStream. Events that
// carry no text (message start, block boundaries, usage deltas) surface as
// empty fragments; the consumer-facing stream filters those out.
type messageStream struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
	delta  string
	err    error
	done   bool
}

// Next advances to the next SSE event.
func (s *messageStream) Next() bool {
	if s.done || s.err != nil {
		return false
	}

	if !s.stream.Next() {
		s.done = true
		if err := s.stream.Err(); err != nil {
			s.err = convertError(err)
		}
		return false
	}

	s.delta = ""
	event := s.stream.Current()
	switch evt := event.AsAny().(type) {
	case anthropic.ContentBlockDeltaEvent:
		if d, ok := evt.Delta.AsAny().(anthropic.TextDelta); ok {
			s.delta = d.Text
		}
	case anthropic.MessageStopEvent:
		s.done = true
		return false
	}
	return true
}

// Delta returns the current text fragment, possibly empty.
func (s *messageStream) Delta() string {
	return s.delta
}

// Err returns the error that terminated the stream, if any.
func (s *messageStream) Err() error {
	return s.err
}

// Close closes the underlying SSE stream.
func (s *messageStream) Close() error {
	if s.stream != nil {
		return s.stream.Close()
	}
	return nil
}

var _ llm.DeltaStream = (*messageStream)(nil)
