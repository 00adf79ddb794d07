package llm

import "strings"

// DeltaStream is the provider-side view of a streaming response: a sequence
// of incremental deltas, each carrying zero or one text fragment.
// Implementations live in the provider packages.
type DeltaStream interface {
	// Next advances to the next delta. Returns false when the stream is
	// complete or an error occurs.
	Next() bool

	// Delta returns the text fragment of the current delta. It may be empty;
	// providers emit content-free deltas for bookkeeping events.
	Delta() string

	// Err returns any error that occurred during streaming.
	Err() error

	// Close closes the stream and releases resources.
	Close() error
}

// TextStream is the single-pass, forward-only sequence of text fragments
// returned by Client.StreamChat. Empty fragments from the provider are
// filtered out before they reach the consumer. A TextStream is not
// restartable; re-consuming requires a fresh StreamChat call.
type TextStream struct {
	src     DeltaStream
	current string
}

func newTextStream(src DeltaStream) *TextStream {
	return &TextStream{src: src}
}

// Next advances to the next non-empty fragment. Returns false when the
// stream is exhausted or failed; check Err afterwards.
func (s *TextStream) Next() bool {
	for s.src.Next() {
		if delta := s.src.Delta(); delta != "" {
			s.current = delta
			return true
		}
	}
	return false
}

// Text returns the current fragment. Only valid after Next returned true.
func (s *TextStream) Text() string {
	return s.current
}

// Err returns the error that terminated the stream, if any.
func (s *TextStream) Err() error {
	return s.src.Err()
}

// Close closes the underlying provider stream.
func (s *TextStream) Close() error {
	return s.src.Close()
}

// Collect drains the stream and returns the concatenated fragments. The
// stream is closed when Collect returns.
func (s *TextStream) Collect() (string, error) {
	defer s.Close() //nolint:errcheck // best-effort close after drain
	var sb strings.Builder
	for s.Next() {
		sb.WriteString(s.Text())
	}
	if err := s.Err(); err != nil {
		return sb.String(), err
	}
	return sb.String(), nil
}
