package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/briefing"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
)

func panel(title, body string, width int, active bool) string {
	style := panelStyle
	if active {
		style = panelActiveStyle
	}
	return style.Width(max(10, width-2)).Render(panelTitleStyle.Render(title) + "\n" + body)
}

func (a *App) renderDashboard() string {
	colW := max(24, a.width/3)
	header := renderHeader(a.width, a.greeting, time.Now(), a.update)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		panel("WEATHER MONITOR", a.renderWeather(), colW, false),
		panel("DAILY BRIEFING", a.renderBriefing(colW-4), colW, false),
		panel("DAILY WISDOM", a.renderWisdom(), colW, false),
	)
	middle := lipgloss.JoinHorizontal(lipgloss.Top,
		panel("TOP HEADLINES", a.renderNews(colW-4), colW, a.focus == focusNews),
		panel("MARKETS", a.renderMarkets(), colW, false),
		panel("FOCUS ZONE", a.renderTasks(colW-4), colW, a.focus == focusTasks),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		panel("MINDFUL JOURNAL", a.renderJournal(), colW, false),
		panel("VIBE STATION", a.renderVibe(), colW, false),
		panel("QUICK ASSIST", a.renderAssist(colW-4), colW, false),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, top, middle, bottom)
}

func (a *App) renderWeather() string {
	if a.loading["weather"] {
		return a.spinner.View() + " Fetching weather for " + a.city + "..."
	}
	w := a.weather
	if w == nil {
		return dimStyle.Render(a.city+": not loaded") + "\n" + keyStyle.Render("[w]") + " Get Weather"
	}
	lines := []string{
		bigValueStyle.Render(fmt.Sprintf("%.1f°C", w.TemperatureC)) + "  " + bodyStyle.Render(w.Description),
		dimStyle.Render(fmt.Sprintf("%s · Humidity %d%% · Wind %.1f m/s", w.City, w.HumidityPct, w.WindSpeed)),
		renderForecast(w.Forecast),
	}
	if a.insight != "" {
		lines = append(lines, "", italicStyle.Render(a.insight))
	} else {
		lines = append(lines, dimStyle.Render("[i] AI insight"))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderBriefing(width int) string {
	text := a.briefing
	if a.streaming[targetBriefing] && text == briefing.Placeholder {
		text = briefing.Thinking
	}
	lines := []string{
		briefingStyle.Width(max(10, width-2)).Render(bodyStyle.Render(text)),
		"",
		italicStyle.Render(briefing.Outfit(a.weather)),
	}
	if a.hasAudio {
		lines = append(lines, keyStyle.Render("[b]")+" Listen")
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderWisdom() string {
	return italicStyle.Render(`"`+a.wisdom+`"`) + "\n\n" +
		panelTitleStyle.Render("FUN FACT") + "\n" + bodyStyle.Render(a.funFact)
}

func (a *App) renderNews(width int) string {
	if a.loading["news"] {
		return a.spinner.View() + " Fetching headlines..."
	}
	if a.news == nil {
		return dimStyle.Render("Not loaded") + "\n" + keyStyle.Render("[n]") + " Get Headlines"
	}
	return renderNewsList(a.news.Articles, a.newsCursor, a.focus == focusNews, 8, width)
}

func formatQuote(q services.Quote) string {
	label := fmt.Sprintf("%-8s", q.Label)
	if !q.Available() {
		return label + " " + dimStyle.Render("N/A")
	}
	change := fmt.Sprintf("▲ %.2f%%", *q.ChangePct)
	style := upStyle
	if *q.ChangePct < 0 {
		change = fmt.Sprintf("▼ %.2f%%", -*q.ChangePct)
		style = downStyle
	}
	return label + " " + bigValueStyle.Render(fmt.Sprintf("%.2f", *q.Price)) + " " + style.Render(change)
}

func (a *App) renderMarkets() string {
	var lines []string
	switch {
	case a.loading["markets"]:
		lines = append(lines, a.spinner.View()+" Fetching quotes...")
	case a.quotes == nil:
		lines = append(lines, dimStyle.Render("Load data to see live markets."), keyStyle.Render("[m]")+" Load Markets")
	default:
		for _, q := range a.quotes {
			lines = append(lines, formatQuote(q))
		}
		if a.vibe != "" {
			lines = append(lines, "", italicStyle.Render("Vibe: "+a.vibe))
		} else if len(a.quotes.Available()) > 0 {
			lines = append(lines, dimStyle.Render("[v] Analyze Mood"))
		}
	}

	lines = append(lines, "", panelTitleStyle.Render("CURRENCY "+a.base+" → "+a.target)+dimStyle.Render(" [B]"))
	switch {
	case a.loading["rates"]:
		lines = append(lines, a.spinner.View()+" Fetching rate...")
	case a.convErr:
		lines = append(lines, errorStyle.Render("Rate Unavailable"))
	case a.conversion != nil:
		c := a.conversion
		lines = append(lines,
			bigValueStyle.Render(fmt.Sprintf("%.2f %s", c.Converted, c.Target)),
			dimStyle.Render(fmt.Sprintf("%.2f %s @ %.4f", c.Amount, c.Base, c.Rate)),
		)
	default:
		lines = append(lines, dimStyle.Render("[c] Convert"))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderTasks(width int) string {
	lines := []string{
		dimStyle.Render("Coach: " + toneLabel(a.tone) + " [s]"),
		renderTaskList(a.planner.List.Items(), a.taskCursor, a.focus == focusTasks, width),
	}
	if a.estimate != "" {
		lines = append(lines, "", italicStyle.Render("Estimate: "+a.estimate))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderJournal() string {
	if a.journalText == "" {
		return dimStyle.Render("How are you feeling?") + "\n" + keyStyle.Render("[j]") + " Write an entry"
	}
	var lines []string
	if a.mood != nil {
		score := a.mood.Score + "/10"
		if !a.mood.HasScore() {
			score = "?"
		}
		lines = append(lines, bigValueStyle.Render("Mood Score: "+score))
	}
	lines = append(lines, bodyStyle.Render(truncateStr(a.journalText, 240)))
	if a.mood != nil {
		lines = append(lines, dimStyle.Render("[J] read full reflection"))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderVibe() string {
	lines := []string{
		bigValueStyle.Render(a.playlist.Mood),
		dimStyle.Render("[p] AI pick  [M] next  [P] open"),
		"",
		panelTitleStyle.Render("COMMUTE CHECK"),
	}
	if a.commute != "" {
		lines = append(lines, dimStyle.Render(truncateStr(a.commute, 60)), dimStyle.Render("[G] open maps"))
	} else {
		lines = append(lines, dimStyle.Render("[g] plan a route"))
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderAssist(width int) string {
	mode := briefing.AssistModes[a.assistMode]
	lines := []string{dimStyle.Render("Mode: " + mode.Label() + "  [a] ask")}
	if a.assist != "" {
		lines = append(lines, "", bodyStyle.Render(truncateStr(a.assist, width*4)))
		if !a.streaming[targetAssist] {
			lines = append(lines, dimStyle.Render("[A] read full answer"))
		}
	}
	return strings.Join(lines, "\n")
}
