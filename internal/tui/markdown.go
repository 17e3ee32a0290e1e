package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders finished AI text. A nil renderer falls back to
// the raw text.
type markdownRenderer struct {
	width int
	r     *glamour.TermRenderer
}

func newMarkdownRenderer() *markdownRenderer {
	m := &markdownRenderer{}
	m.setWidth(80)
	return m
}

func (m *markdownRenderer) setWidth(width int) {
	if width == m.width && m.r != nil {
		return
	}
	m.width = width
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		m.r = nil
		return
	}
	m.r = r
}

func (m *markdownRenderer) render(md string) string {
	if m.r == nil {
		return md
	}
	out, err := m.r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
