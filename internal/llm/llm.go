// Package llm abstracts streaming chat-completion providers.
package llm

import (
	"context"
	"errors"
	"io"
)

// Stream is a lazy, finite, non-restartable sequence of text fragments.
// Recv returns io.EOF once the provider finishes; fragments are delivered in
// provider order, never buffered or reordered.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Client abstracts a streaming language-model provider.
type Client interface {
	StreamCompletion(ctx context.Context, prompt string) (Stream, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// StreamCompletion returns ErrNotConfigured.
func (PlaceholderClient) StreamCompletion(ctx context.Context, prompt string) (Stream, error) {
	_ = ctx
	_ = prompt
	return nil, ErrNotConfigured
}

// SliceStream replays fixed fragments; useful for tests and dev mode.
type SliceStream struct {
	fragments []string
	pos       int
}

func NewSliceStream(fragments ...string) *SliceStream {
	return &SliceStream{fragments: fragments}
}

func (s *SliceStream) Recv() (string, error) {
	if s.pos >= len(s.fragments) {
		return "", io.EOF
	}
	fragment := s.fragments[s.pos]
	s.pos++
	return fragment, nil
}

func (s *SliceStream) Close() error { return nil }

var _ Stream = (*SliceStream)(nil)
