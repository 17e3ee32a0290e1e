package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/briefing"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/browser"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/journal"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/tasks"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/update"
)

// streamCmd runs fn in its own goroutine. Each emitted fragment becomes a
// fragmentMsg and the value fn returns is delivered last.
func streamCmd(ctx context.Context, target streamTarget, fn func(emit func(string)) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ch := make(chan tea.Msg, 16)
		go func() {
			defer close(ch)
			emit := func(text string) {
				select {
				case ch <- fragmentMsg{target: target, text: text, next: ch}:
				case <-ctx.Done():
				}
			}
			final := fn(emit)
			select {
			case ch <- final:
			case <-ctx.Done():
			}
		}()
		return <-ch
	}
}

// waitFor reads the next message of a running stream.
func waitFor(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (a *App) loadWeatherCmd(city string) tea.Cmd {
	ctx, orch := a.ctx, a.orch
	return func() tea.Msg {
		w, err := orch.LoadWeather(ctx, city)
		return weatherLoadedMsg{weather: w, err: err}
	}
}

func (a *App) loadNewsCmd() tea.Cmd {
	ctx, orch := a.ctx, a.orch
	return func() tea.Msg {
		n, err := orch.LoadNews(ctx)
		return newsLoadedMsg{news: n, err: err}
	}
}

func (a *App) loadMarketsCmd() tea.Cmd {
	ctx, orch := a.ctx, a.orch
	return func() tea.Msg {
		return marketsLoadedMsg{quotes: orch.LoadMarkets(ctx)}
	}
}

func (a *App) convertCmd(amount float64) tea.Cmd {
	ctx, orch := a.ctx, a.orch
	base, target := a.base, a.target
	return func() tea.Msg {
		c, err := orch.Convert(ctx, amount, base, target)
		return conversionMsg{conversion: c, err: err}
	}
}

// passCmd runs one briefing pass, streaming into the briefing panel.
func (a *App) passCmd() tea.Cmd {
	ctx, orch := a.ctx, a.orch
	return streamCmd(ctx, targetBriefing, func(emit func(string)) tea.Msg {
		return passDoneMsg{result: orch.Pass(ctx, emit)}
	})
}

func (a *App) greetingCmd() tea.Cmd {
	ctx, orch := a.ctx, a.orch
	return func() tea.Msg {
		text, _ := orch.DynamicGreeting(ctx, time.Now())
		return greetingMsg{text: text}
	}
}

func (a *App) funFactCmd() tea.Cmd {
	ctx, orch := a.ctx, a.orch
	return func() tea.Msg {
		text, _ := orch.FunFact(ctx)
		return funFactMsg{text: text}
	}
}

func (a *App) insightCmd() tea.Cmd {
	ctx, orch := a.ctx, a.orch
	return streamCmd(ctx, targetInsight, func(emit func(string)) tea.Msg {
		text, err := orch.WeatherInsight(ctx, emit)
		return streamDoneMsg{target: targetInsight, text: text, err: err}
	})
}

func (a *App) vibeCmd() tea.Cmd {
	ctx, orch := a.ctx, a.orch
	return streamCmd(ctx, targetVibe, func(emit func(string)) tea.Msg {
		text, err := orch.MarketVibe(ctx, emit)
		return streamDoneMsg{target: targetVibe, text: text, err: err}
	})
}

func (a *App) assistCmd(mode briefing.AssistMode, input string) tea.Cmd {
	ctx, orch := a.ctx, a.orch
	return streamCmd(ctx, targetAssist, func(emit func(string)) tea.Msg {
		text, err := orch.QuickAssist(ctx, mode, input, emit)
		return streamDoneMsg{target: targetAssist, text: text, err: err}
	})
}

func (a *App) estimateCmd() tea.Cmd {
	ctx, planner, tone := a.ctx, a.planner, a.tone
	return streamCmd(ctx, targetEstimate, func(emit func(string)) tea.Msg {
		text, err := planner.EstimateTime(ctx, tone, emit)
		return streamDoneMsg{target: targetEstimate, text: text, err: err}
	})
}

func (a *App) decomposeCmd(text string) tea.Cmd {
	ctx, planner, tone := a.ctx, a.planner, a.tone
	return func() tea.Msg {
		subtasks, err := planner.Decompose(ctx, text, tone)
		return decomposedMsg{subtasks: subtasks, err: err}
	}
}

func (a *App) journalCmd(entry string) tea.Cmd {
	ctx, p := a.ctx, a.llm
	return streamCmd(ctx, targetJournal, func(emit func(string)) tea.Msg {
		res, err := journal.Reflect(ctx, p, entry, emit)
		return journalDoneMsg{result: res, err: err}
	})
}

func (a *App) pickPlaylistCmd() tea.Cmd {
	ctx, orch, pending := a.ctx, a.orch, a.planner.List.Len()
	return func() tea.Msg {
		p, err := orch.PickPlaylist(ctx, time.Now(), pending)
		return playlistMsg{playlist: p, err: err}
	}
}

func (a *App) refreshCmd() tea.Cmd {
	orch := a.orch
	return func() tea.Msg {
		orch.Refresh()
		return refreshedMsg{}
	}
}

func checkUpdateCmd(ctx context.Context, version string) tea.Cmd {
	return func() tea.Msg {
		res := update.Check(ctx, version)
		if res == nil {
			return nil
		}
		return updateAvailableMsg{version: res.LatestVersion}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// playAudioCmd writes the briefing audio under dir and opens it.
func playAudioCmd(dir string, audio []byte) tea.Cmd {
	return func() tea.Msg {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errMsg{err: fmt.Errorf("creating audio dir: %w", err)}
		}
		path := filepath.Join(dir, "briefing.mp3")
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			return errMsg{err: fmt.Errorf("writing audio: %w", err)}
		}
		if err := browser.OpenFile(path); err != nil {
			return errMsg{err: err}
		}
		return noticeMsg{text: "Playing briefing audio"}
	}
}

func toneLabel(t tasks.Tone) string {
	if t == tasks.Strict {
		return "Strict Coach"
	}
	return "Supportive"
}
