// Package tasks holds the session task list and the completion-backed
// helpers that break a task down and estimate how long the list will take.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/llm"
)

// Tone changes prompt wording only.
type Tone string

const (
	Supportive Tone = "supportive"
	Strict     Tone = "strict"
)

// ParseTone maps user input to a Tone, defaulting to Supportive.
func ParseTone(s string) Tone {
	if strings.EqualFold(strings.TrimSpace(s), string(Strict)) {
		return Strict
	}
	return Supportive
}

// ErrNoTasks is returned by EstimateTime when the list is empty.
var ErrNoTasks = errors.New("no active tasks")

// bulletChars is stripped from the start of every decomposed line.
const bulletChars = "-*•0123456789. "

// List is an ordered task list. Order is both display and deletion order.
type List struct {
	mu    sync.Mutex
	items []string
}

// Add appends text to the end of the list. Empty text is ignored.
func (l *List) Add(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	l.mu.Lock()
	l.items = append(l.items, text)
	l.mu.Unlock()
	return true
}

// Remove deletes the task at index, shifting the rest down.
func (l *List) Remove(index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("task index %d out of range [0,%d)", index, len(l.items))
	}
	l.items = append(l.items[:index:index], l.items[index+1:]...)
	return nil
}

// Items returns a copy so callers can render while removals happen.
func (l *List) Items() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.items))
	copy(out, l.items)
	return out
}

func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func DecomposePrompt(text string, tone Tone) string {
	style := "Be helpful and concise."
	if tone == Strict {
		style = "Be strict, demanding, and direct. No fluff. Order the user."
	}
	return fmt.Sprintf("Break down the task '%s' into 3-4 actionable, single-line sub-tasks. %s Output ONLY the lines.", text, style)
}

func EstimatePrompt(items []string, tone Tone) string {
	prompt := fmt.Sprintf("Estimate the total time for these tasks: %s. Return a short estimate like '2 hours'.", strings.Join(items, ", "))
	if tone == Strict {
		prompt += " Be a tough coach. Call out procrastination. Give a strict estimate."
	}
	return prompt
}

// ParseSubtasks splits a completion into subtasks, dropping bullet and
// numbering prefixes and blank lines.
func ParseSubtasks(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), bulletChars)
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Planner runs completion prompts against a task list.
type Planner struct {
	List *List
	llm  llm.Provider
}

func NewPlanner(list *List, p llm.Provider) *Planner {
	if list == nil {
		list = &List{}
	}
	return &Planner{List: list, llm: p}
}

// Decompose asks the backend for sub-tasks of text and appends them in the
// order received. Nothing is appended when the completion fails.
func (p *Planner) Decompose(ctx context.Context, text string, tone Tone) ([]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if p.llm == nil {
		return nil, llm.ErrBackendUnreachable
	}
	resp, err := llm.Collect(ctx, p.llm, DecomposePrompt(text, tone))
	if err != nil {
		return nil, fmt.Errorf("decomposing %q: %w", text, err)
	}
	subtasks := ParseSubtasks(resp)
	for _, s := range subtasks {
		p.List.Add(s)
	}
	return subtasks, nil
}

// EstimateTime streams a free-text estimate for the whole list. The result
// is not stored anywhere.
func (p *Planner) EstimateTime(ctx context.Context, tone Tone, onFragment func(string)) (string, error) {
	items := p.List.Items()
	if len(items) == 0 {
		return "", ErrNoTasks
	}
	if p.llm == nil {
		return "", llm.ErrBackendUnreachable
	}
	text, err := llm.Consume(ctx, p.llm, EstimatePrompt(items, tone), onFragment)
	if err != nil {
		return "", fmt.Errorf("estimating: %w", err)
	}
	return strings.TrimSpace(text), nil
}
