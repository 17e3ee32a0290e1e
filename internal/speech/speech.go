// Package speech turns text into MP3 audio.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var ErrSynthesisFailed = errors.New("speech synthesis failed")

const (
	DefaultTTSURL = "https://translate.google.com/translate_tts"

	// maxChunk is the longest text the endpoint accepts per request.
	maxChunk = 200
)

type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Google synthesizes through the public translate_tts endpoint, one request
// per chunk, concatenating the MP3 frames.
type Google struct {
	baseURL string
	client  *http.Client
}

func NewGoogle(baseURL string) *Google {
	if baseURL == "" {
		baseURL = DefaultTTSURL
	}
	return &Google{baseURL: baseURL, client: &http.Client{Timeout: 20 * time.Second}}
}

func (g *Google) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	chunks := splitText(text, maxChunk)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: empty text", ErrSynthesisFailed)
	}
	if language == "" {
		language = "en"
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		q := url.Values{}
		q.Set("ie", "UTF-8")
		q.Set("client", "tw-ob")
		q.Set("tl", language)
		q.Set("q", chunk)
		q.Set("total", strconv.Itoa(len(chunks)))
		q.Set("idx", strconv.Itoa(i))
		q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(chunk)))

		if err := g.fetch(ctx, g.baseURL+"?"+q.Encode(), &audio); err != nil {
			return nil, err
		}
	}
	return audio.Bytes(), nil
}

func (g *Google) fetch(ctx context.Context, rawURL string, dst *bytes.Buffer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrSynthesisFailed, resp.StatusCode)
	}
	n, err := io.Copy(dst, resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading audio: %v", ErrSynthesisFailed, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: empty audio", ErrSynthesisFailed)
	}
	return nil
}

// splitText breaks text into chunks of at most max runes, cutting at word
// boundaries. A single word longer than max is cut mid-word.
func splitText(text string, max int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		runes := []rune(word)
		for len(runes) > max {
			flush()
			chunks = append(chunks, string(runes[:max]))
			runes = runes[max:]
		}
		n := len(runes)
		if curLen > 0 && curLen+1+n > max {
			flush()
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(string(runes))
		curLen += n
	}
	flush()
	return chunks
}
