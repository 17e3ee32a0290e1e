// Package llm streams text completions from a language model backend.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/config"
)

// ErrBackendUnreachable covers every completion failure: the backend could
// not be contacted, refused the request, or broke off mid-stream.
var ErrBackendUnreachable = errors.New("completion backend unreachable")

// Provider starts one inference run per call. A stream is never resumed;
// calling Start again begins from scratch.
type Provider interface {
	Start(ctx context.Context, prompt string) (*Stream, error)
	Name() string
}

// Stream is a lazy, finite sequence of text fragments. The caller may stop
// reading at any time; Close releases the connection.
type Stream struct {
	next  func() (string, error)
	close func() error
	err   error
	done  bool
}

// NewStream builds a Stream from a fragment source. next returns io.EOF
// once the response is complete.
func NewStream(next func() (string, error), closeFn func() error) *Stream {
	return &Stream{next: next, close: closeFn}
}

// FromFragments returns a Stream replaying fixed fragments.
func FromFragments(fragments ...string) *Stream {
	i := 0
	return NewStream(func() (string, error) {
		if i >= len(fragments) {
			return "", io.EOF
		}
		i++
		return fragments[i-1], nil
	}, nil)
}

// Next returns the next fragment. ok is false at the end of the stream or
// on failure; check Err to tell them apart.
func (s *Stream) Next() (fragment string, ok bool) {
	if s.done {
		return "", false
	}
	frag, err := s.next()
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			if !errors.Is(err, ErrBackendUnreachable) {
				err = fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
			}
			s.err = err
		}
		s.Close()
		return "", false
	}
	return frag, true
}

// Err reports a mid-stream failure. Nil after a clean end.
func (s *Stream) Err() error { return s.err }

func (s *Stream) Close() error {
	s.done = true
	if s.close == nil {
		return nil
	}
	c := s.close
	s.close = nil
	return c()
}

// Collect drains a stream into the full response. On failure the partial
// text is discarded and the error returned.
func Collect(ctx context.Context, p Provider, prompt string) (string, error) {
	return Consume(ctx, p, prompt, nil)
}

// Consume drains a stream, calling onFragment with the accumulated text
// after each fragment.
func Consume(ctx context.Context, p Provider, prompt string, onFragment func(accumulated string)) (string, error) {
	s, err := p.Start(ctx, prompt)
	if err != nil {
		return "", err
	}
	defer s.Close()

	var sb strings.Builder
	for {
		frag, ok := s.Next()
		if !ok {
			break
		}
		sb.WriteString(frag)
		if onFragment != nil {
			onFragment(sb.String())
		}
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// New creates a Provider from the AI config.
func New(ctx context.Context, cfg config.AIConfig, apiKey string) (Provider, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllama(cfg.Endpoint, cfg.Model), nil
	case "gemini":
		g, err := NewGemini(ctx, apiKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: ollama, gemini)", cfg.Provider)
	}
}
