package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

func renderHeader(width int, greeting string, now time.Time, updateVersion string) string {
	left := headerStyle.Render("NOW BRIEF") + "  " + dimStyle.Render(greeting)
	right := headerDateStyle.Render(now.Format("January 02, 2006 | 03:04 PM"))
	if updateVersion != "" {
		right = warmStyle.Render("v"+updateVersion+" available") + "  " + right
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + fmt.Sprintf("%*s", gap, "") + right
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("nowbrief")
	dim := dimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Data") + "\n" +
		"  w             Load weather      C  change city\n" +
		"  n             Load news         m  load markets\n" +
		"  c             Convert currency  B  next base currency\n" +
		"  r             Refresh everything\n\n" +
		dim.Render("AI") + "\n" +
		"  i             Weather insight   v  market vibe\n" +
		"  a             Quick assist (tab cycles mode)   A  read answer\n" +
		"  j             Journal entry     J  read reflection\n" +
		"  b             Play briefing audio\n\n" +
		dim.Render("Focus") + "\n" +
		"  t             Add task          d  break down a task\n" +
		"  x             Delete task       e  estimate time\n" +
		"  s             Toggle coach tone\n" +
		"  p             AI playlist pick  M  next playlist  P  open playlist\n" +
		"  g             Commute route     G  reopen route\n\n" +
		dim.Render("General") + "\n" +
		"  tab           Switch news/tasks focus\n" +
		"  ↑/↓           Move cursor       o  open article\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, card)
}

func (a *App) renderJournalEditor() string {
	var lines []string
	lines = append(lines, panelTitleStyle.Render("MINDFUL JOURNAL"), "")
	lines = append(lines, dimStyle.Render("How was your day? What's on your mind?"), "")
	lines = append(lines, a.journal.View())
	content := strings.Join(lines, "\n")
	return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, content)
}
