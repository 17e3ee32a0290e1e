// Package journal reflects on a free-text journal entry and extracts the
// mood score the model is asked to lead with.
package journal

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/llm"
)

// UnknownScore marks a response with no parseable "Mood Score: N/10".
const UnknownScore = "unknown"

// Result is created from the terminal text of a completion stream.
type Result struct {
	Score   string
	Advice  string
	RawText string
}

// HasScore reports whether a numeric score was found.
func (r Result) HasScore() bool { return r.Score != UnknownScore }

var scorePattern = regexp.MustCompile(`Mood Score:\s*(\d+)/10`)

const reflectPrompt = `You are a mindful therapeutic AI.
User's Journal Entry: %q

1. First, estimate a Mood Score (1-10) based on the text. Format it EXACTLY like this: "Mood Score: 7/10".
2. Then, provide a warm, empathetic, and insightful reflection on their entry. Offer 1-2 actionable tips for their day.

Start directly with the Mood Score.`

func Prompt(entry string) string {
	return fmt.Sprintf(reflectPrompt, entry)
}

// Parse extracts the score and strips every score phrase from the advice.
// Scores outside 1-10 are treated as unknown.
func Parse(text string) Result {
	r := Result{Score: UnknownScore, RawText: text}
	if m := scorePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= 10 {
			r.Score = strconv.Itoa(n)
		}
	}
	r.Advice = strings.TrimSpace(scorePattern.ReplaceAllString(text, ""))
	return r
}

// Reflect streams a reflection for entry. onFragment sees the accumulated
// text as it arrives; the parsed Result is built only from a complete
// response.
func Reflect(ctx context.Context, p llm.Provider, entry string, onFragment func(string)) (Result, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return Result{}, fmt.Errorf("empty journal entry")
	}
	if p == nil {
		return Result{}, llm.ErrBackendUnreachable
	}
	text, err := llm.Consume(ctx, p, Prompt(entry), onFragment)
	if err != nil {
		return Result{}, fmt.Errorf("reflecting: %w", err)
	}
	return Parse(text), nil
}
