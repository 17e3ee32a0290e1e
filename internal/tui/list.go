package tui

import (
	"fmt"
	"strings"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
)

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// window returns the [start,end) range of a list of total items that keeps
// cursor visible in height rows.
func window(cursor, total, height int) (int, int) {
	if height < 1 {
		height = 1
	}
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := start + height
	if end > total {
		end = total
		start = max(0, end-height)
	}
	return start, end
}

func renderNewsList(articles []services.Article, cursor int, active bool, height, width int) string {
	if len(articles) == 0 {
		return dimStyle.Render("No headlines")
	}
	if width < 10 {
		width = 30
	}

	// Each item is 2 lines
	start, end := window(cursor, len(articles), height/2)

	var b strings.Builder
	for i := start; i < end; i++ {
		a := articles[i]
		if active && i == cursor {
			b.WriteString(itemSelectedStyle.Render("> " + truncateStr(a.Title, width-2)))
		} else {
			b.WriteString(itemTitleStyle.Render("  " + truncateStr(a.Title, width-2)))
		}
		b.WriteString("\n  " + itemSourceStyle.Render(truncateStr(a.Source, width-2)))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderTaskList(items []string, cursor int, active bool, width int) string {
	if len(items) == 0 {
		return dimStyle.Render("No tasks yet (t add, d break down)")
	}
	var b strings.Builder
	for i, item := range items {
		line := fmt.Sprintf("%d. %s", i+1, truncateStr(item, width-6))
		if active && i == cursor {
			b.WriteString(itemSelectedStyle.Render("> " + line))
		} else {
			b.WriteString(itemTitleStyle.Render("  " + line))
		}
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
