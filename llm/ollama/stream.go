package ollama

import (
	"context"
	"sync"

	"github.com/jdhollis/llmclient/llm"
)

// chatStream adapts Ollama's callback-driven chat API to llm.DeltaStream.
// The producer goroutine in Transport.Stream sends fragments on the channel
// and closes it when the call returns.
type chatStream struct {
	fragments chan string
	cancel    context.CancelFunc
	delta     string

	mu  sync.Mutex
	err error
}

// Next receives the next fragment from the producer.
func (s *chatStream) Next() bool {
	delta, ok := <-s.fragments
	if !ok {
		return false
	}
	s.delta = delta
	return true
}

// Delta returns the current text fragment, possibly empty.
func (s *chatStream) Delta() string {
	return s.delta
}

// setErr records the terminal stream error. Called by the producer before
// the channel closes.
func (s *chatStream) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Err returns the error that terminated the stream, if any.
func (s *chatStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels the in-flight request and drains the producer.
func (s *chatStream) Close() error {
	s.cancel()
	for range s.fragments { //nolint:revive // drain until producer exits
	}
	return nil
}

var _ llm.DeltaStream = (*chatStream)(nil)
