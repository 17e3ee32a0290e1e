package llm

import (
	"context"
	"fmt"
	"io"
	"iter"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.0-flash"

// Gemini streams completions from the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key required (set ai.api_key or GEMINI_API_KEY)")
	}
	if model == "" || model == defaultOllamaModel {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return fmt.Sprintf("gemini:%s", g.model) }

// Start pulls the first response before returning so that an unreachable
// backend fails here rather than mid-stream.
func (g *Gemini) Start(ctx context.Context, prompt string) (*Stream, error) {
	seq := g.client.Models.GenerateContentStream(ctx, g.model, genai.Text(prompt), nil)
	pull, stop := iter.Pull2(seq)

	first, err, ok := pull()
	if !ok {
		stop()
		return FromFragments(), nil
	}
	if err != nil {
		stop()
		return nil, fmt.Errorf("%w: gemini: %v", ErrBackendUnreachable, err)
	}

	pending := first
	next := func() (string, error) {
		for {
			if pending != nil {
				text := pending.Text()
				pending = nil
				if text != "" {
					return text, nil
				}
			}
			resp, err, ok := pull()
			if !ok {
				return "", io.EOF
			}
			if err != nil {
				return "", err
			}
			pending = resp
		}
	}
	return NewStream(next, func() error { stop(); return nil }), nil
}
