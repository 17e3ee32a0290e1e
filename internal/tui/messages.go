package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/briefing"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/journal"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
)

// streamTarget names the panel a completion stream is writing into.
type streamTarget int

const (
	targetBriefing streamTarget = iota
	targetInsight
	targetVibe
	targetAssist
	targetEstimate
	targetJournal
)

// fragmentMsg carries the accumulated text of an in-flight stream. next
// yields the following message from the same stream.
type fragmentMsg struct {
	target streamTarget
	text   string
	next   <-chan tea.Msg
}

type weatherLoadedMsg struct {
	weather *services.WeatherSnapshot
	err     error
}

type newsLoadedMsg struct {
	news *services.NewsSnapshot
	err  error
}

type marketsLoadedMsg struct {
	quotes services.MarketSnapshot
}

type conversionMsg struct {
	conversion briefing.Conversion
	err        error
}

type passDoneMsg struct {
	result briefing.PassResult
}

// streamDoneMsg ends an ephemeral stream (insight, vibe, assist, estimate).
type streamDoneMsg struct {
	target streamTarget
	text   string
	err    error
}

type journalDoneMsg struct {
	result journal.Result
	err    error
}

type greetingMsg struct {
	text string
}

type funFactMsg struct {
	text string
}

type decomposedMsg struct {
	subtasks []string
	err      error
}

type playlistMsg struct {
	playlist briefing.Playlist
	err      error
}

type updateAvailableMsg struct {
	version string
}

type refreshedMsg struct{}

type errMsg struct {
	err error
}

type noticeMsg struct {
	text string
}
