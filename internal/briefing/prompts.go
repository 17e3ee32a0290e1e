package briefing

import (
	"fmt"
	"strings"
	"time"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
)

const briefingPrompt = `Generate a witty, 3-sentence executive summary of the day based on this info:
Weather: %s
News: %s

Keep it professional yet engaging, like a personal assistant.`

// Prompt builds the daily briefing prompt from loaded data.
func Prompt(w *services.WeatherSnapshot, n *services.NewsSnapshot) string {
	return fmt.Sprintf(briefingPrompt, w.Summary(), n.HeadlinesSummary())
}

func greetingPrompt(now time.Time, w *services.WeatherSnapshot) string {
	return fmt.Sprintf("Generate a short, stimulating greeting (max 8 words) for a user at %s where the weather is %s, %.1fC. No quotes.",
		now.Format("January 02, 2006 | 03:04 PM"), w.Description, w.TemperatureC)
}

const funFactPrompt = "Tell me a random, mind-blowing fun fact. Max 1 sentence. No intro."

func insightPrompt(w *services.WeatherSnapshot) string {
	return fmt.Sprintf("Analyze: Weather '%s', Temp %.1fC, Humidity %d%%, Wind %.1fm/s. Provide 3 short bullet points: 1) Outfit 2) Best Activity 3) Health Note. No intro.",
		w.Description, w.TemperatureC, w.HumidityPct, w.WindSpeed)
}

// vibePrompt lists only quotes that loaded.
func vibePrompt(quotes []services.Quote) string {
	changes := make([]string, len(quotes))
	for i, q := range quotes {
		changes[i] = fmt.Sprintf("%s: %.2f%%", q.Label, *q.ChangePct)
	}
	return fmt.Sprintf("Given these 24h market changes: %s. Give a witty, 1-sentence 'Market Vibe' summary. No quotes.", strings.Join(changes, ", "))
}

func djPrompt(weather string, hour, pendingTasks int) string {
	names := make([]string, len(Playlists))
	for i, p := range Playlists {
		names[i] = "'" + p.Mood + "'"
	}
	return fmt.Sprintf("Select the best playlist from [%s] for a user where Weather=%s, Time=%d:00, PendingTasks=%d. Return ONLY the exact playlist name.",
		strings.Join(names, ", "), weather, hour, pendingTasks)
}

// AssistMode selects the quick assist prompt.
type AssistMode string

const (
	Draft   AssistMode = "draft"
	Ideas   AssistMode = "ideas"
	Explain AssistMode = "explain"
)

var AssistModes = []AssistMode{Draft, Ideas, Explain}

func (m AssistMode) Label() string {
	switch m {
	case Draft:
		return "Draft Email"
	case Ideas:
		return "Brainstorm"
	case Explain:
		return "Explain"
	}
	return string(m)
}

// AssistPrompt builds the prompt for mode, or fails for an unknown mode.
func AssistPrompt(mode AssistMode, input string) (string, error) {
	switch mode {
	case Draft:
		return "Draft a professional email/message about: " + input, nil
	case Ideas:
		return "Brainstorm creative ideas for: " + input, nil
	case Explain:
		return "Explain this concept simply: " + input, nil
	}
	return "", fmt.Errorf("unknown assist mode %q", mode)
}
