package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderBottomBar(left, hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

// statusLine summarizes background work, errors and notices.
func (a *App) statusLine() string {
	switch {
	case a.err != nil:
		return errorStyle.Render(a.err.Error())
	case a.busy():
		return a.spinner.View() + " working..."
	case a.notice != "":
		return a.notice
	}
	return "? help  w weather  n news  m markets  r refresh  q quit"
}

func (a *App) withBottomBar(content, hints string) string {
	left := ""
	if a.busy() && a.mode != modeDashboard {
		left = a.spinner.View()
	}
	bar := renderBottomBar(left, hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:max(0, a.height-1)]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}
