package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"time"
)

const (
	defaultOllamaEndpoint = "http://localhost:11434"
	defaultOllamaModel    = "llama3.2:3b"
)

// Ollama streams chat completions from a local Ollama server.
type Ollama struct {
	endpoint string
	model    string
	client   *http.Client
}

// NewOllama creates an Ollama provider. The HTTP client has no overall
// timeout since a stream may run for a long time; use ctx to bound it.
func NewOllama(endpoint, model string) *Ollama {
	if endpoint == "" {
		endpoint = defaultOllamaEndpoint
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &Ollama{endpoint: endpoint, model: model, client: &http.Client{}}
}

func (o *Ollama) Name() string { return fmt.Sprintf("ollama:%s", o.model) }

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatChunk struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error"`
}

func (o *Ollama) Start(ctx context.Context, prompt string) (*Stream, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model:    o.model,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %v", ErrBackendUnreachable, err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: ollama %d: %s", ErrBackendUnreachable, resp.StatusCode, string(b))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	next := func() (string, error) {
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var chunk ollamaChatChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				return "", fmt.Errorf("decoding chunk: %w", err)
			}
			if chunk.Error != "" {
				return "", fmt.Errorf("ollama: %s", chunk.Error)
			}
			if chunk.Done {
				return "", io.EOF
			}
			if chunk.Message.Content != "" {
				return chunk.Message.Content, nil
			}
		}
		if err := scanner.Err(); err != nil {
			return "", err
		}
		// Body ended without a done marker
		return "", io.ErrUnexpectedEOF
	}
	return NewStream(next, resp.Body.Close), nil
}

// Ping reports whether the server answers at all.
func (o *Ollama) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnreachable, err)
	}
	resp.Body.Close()
	return nil
}

// EnsureRunning starts `ollama serve` in the background when the server is
// down and waits up to ten seconds for it to answer.
func (o *Ollama) EnsureRunning(ctx context.Context) error {
	if o.Ping(ctx) == nil {
		return nil
	}

	cmd := exec.Command("ollama", "serve")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ollama: %w", err)
	}
	go cmd.Wait() //nolint:errcheck

	for attempt := 0; attempt < 10; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
		if o.Ping(ctx) == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: timed out waiting for ollama to start", ErrBackendUnreachable)
}
