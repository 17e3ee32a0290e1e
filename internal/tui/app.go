package tui

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/briefing"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/config"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/journal"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/llm"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/tasks"
)

type focusPane int

const (
	focusNews focusPane = iota
	focusTasks
)

type mode int

const (
	modeDashboard mode = iota
	modeInput
	modeJournal
	modeDetail
	modeHelp
)

// inputPurpose says what the single-line prompt is collecting.
type inputPurpose int

const (
	inputCity inputPurpose = iota
	inputAmount
	inputTask
	inputDecompose
	inputAssist
	inputCommute
)

var inputPrompts = map[inputPurpose]string{
	inputCity:      "City: ",
	inputAmount:    "Amount: ",
	inputTask:      "New task: ",
	inputDecompose: "Break down: ",
	inputAssist:    "Ask: ",
	inputCommute:   "From > To: ",
}

type App struct {
	cfg     *config.Config
	orch    *briefing.Orchestrator
	planner *tasks.Planner
	llm     llm.Provider
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	version string

	width  int
	height int
	mode   mode
	focus  focusPane

	// Sub-components
	input    textinput.Model
	purpose  inputPurpose
	journal  textarea.Model
	detail   viewport.Model
	spinner  spinner.Model
	markdown *markdownRenderer

	// Dashboard state
	city        string
	base        string
	target      string
	greeting    string
	wisdom      string
	funFact     string
	weather     *services.WeatherSnapshot
	news        *services.NewsSnapshot
	quotes      services.MarketSnapshot
	briefing    string
	hasAudio    bool
	streaming   map[streamTarget]bool
	loading     map[string]bool
	insight     string
	vibe        string
	assist      string
	assistMode  int
	estimate    string
	tone        tasks.Tone
	journalText string
	mood        *journal.Result
	amount      float64
	conversion  *briefing.Conversion
	convErr     bool
	commute     string
	playlist    briefing.Playlist
	newsCursor  int
	taskCursor  int
	update      string
	notice      string
	err         error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Cfg          *config.Config
	Orchestrator *briefing.Orchestrator
	Planner      *tasks.Planner
	LLM          llm.Provider
	Logger       *zap.Logger
	City         string
	Version      string
	Rand         *rand.Rand
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Prompt = promptStyle.Render("> ")

	ta := textarea.New()
	ta.Placeholder = "Write about your day..."
	ta.SetWidth(60)
	ta.SetHeight(6)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	city := opts.City
	if city == "" {
		city = opts.Cfg.City
	}
	planner := opts.Planner
	if planner == nil {
		planner = tasks.NewPlanner(nil, opts.LLM)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:       opts.Cfg,
		orch:      opts.Orchestrator,
		planner:   planner,
		llm:       opts.LLM,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		version:   opts.Version,
		input:     ti,
		journal:   ta,
		detail:    viewport.New(80, 20),
		spinner:   sp,
		markdown:  newMarkdownRenderer(),
		city:      city,
		base:      strings.ToUpper(opts.Cfg.Currency.Base),
		target:    opts.Cfg.TargetCurrency(),
		greeting:  briefing.Greeting(time.Now()),
		wisdom:    briefing.Wisdom(rnd),
		funFact:   briefing.FunFact(rnd),
		briefing:  briefing.Placeholder,
		streaming: map[streamTarget]bool{},
		loading:   map[string]bool{},
		tone:      tasks.Supportive,
		playlist:  opts.Orchestrator.Mood(time.Now()),
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		a.funFactCmd(),
		checkUpdateCmd(a.ctx, a.version),
	)
}

func (a *App) busy() bool {
	for _, v := range a.streaming {
		if v {
			return true
		}
	}
	for _, v := range a.loading {
		if v {
			return true
		}
	}
	return false
}

// startPass kicks off a briefing pass unless one is already streaming.
func (a *App) startPass() tea.Cmd {
	if a.streaming[targetBriefing] {
		return nil
	}
	a.streaming[targetBriefing] = true
	return a.passCmd()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.detail.Width = max(20, msg.Width-8)
		a.detail.Height = max(5, msg.Height-6)
		a.journal.SetWidth(max(20, msg.Width/2))
		a.markdown.setWidth(a.detail.Width)
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		a.notice = ""
		return a.handleKey(msg)

	case fragmentMsg:
		a.applyFragment(msg.target, msg.text)
		return a, waitFor(msg.next)

	case passDoneMsg:
		a.streaming[targetBriefing] = false
		a.briefing = msg.result.Text
		a.hasAudio = len(msg.result.Audio) > 0
		if msg.result.Degraded != nil {
			a.log.Info("briefing degraded", zap.Error(msg.result.Degraded))
		}
		return a, nil

	case weatherLoadedMsg:
		a.loading["weather"] = false
		if msg.err != nil {
			a.err = fmt.Errorf("weather not loaded for %s (press w to retry)", a.city)
			return a, nil
		}
		a.weather = msg.weather
		a.insight = ""
		return a, tea.Batch(a.startPass(), a.greetingCmd())

	case newsLoadedMsg:
		a.loading["news"] = false
		if msg.err != nil {
			a.err = errors.New("news not loaded (press n to retry)")
			return a, nil
		}
		a.news = msg.news
		a.newsCursor = 0
		return a, a.startPass()

	case marketsLoadedMsg:
		a.loading["markets"] = false
		a.quotes = msg.quotes
		a.vibe = ""
		return a, nil

	case conversionMsg:
		a.loading["rates"] = false
		if msg.err != nil {
			a.conversion = nil
			a.convErr = true
			return a, nil
		}
		c := msg.conversion
		a.conversion = &c
		a.convErr = false
		return a, nil

	case streamDoneMsg:
		a.streaming[msg.target] = false
		text := msg.text
		if msg.err != nil {
			text = streamFallback(msg.target, msg.err)
		}
		a.applyFragment(msg.target, text)
		return a, nil

	case journalDoneMsg:
		a.streaming[targetJournal] = false
		if msg.err != nil {
			a.journalText = "Couldn't reach the AI for a reflection. Try again in a moment."
			return a, nil
		}
		res := msg.result
		a.mood = &res
		a.journalText = res.Advice
		return a, nil

	case decomposedMsg:
		a.loading["decompose"] = false
		if msg.err != nil {
			a.err = errors.New("couldn't break down that task (AI connection issue)")
			return a, nil
		}
		a.notice = fmt.Sprintf("Added %d sub-tasks", len(msg.subtasks))
		return a, nil

	case greetingMsg:
		a.greeting = msg.text
		return a, nil

	case funFactMsg:
		a.funFact = msg.text
		return a, nil

	case playlistMsg:
		a.loading["playlist"] = false
		a.playlist = msg.playlist
		if msg.err != nil {
			a.err = errors.New("AI pick unavailable, keeping current playlist")
		}
		return a, nil

	case refreshedMsg:
		a.resetSession()
		return a, tea.Batch(a.funFactCmd(), a.startPass())

	case updateAvailableMsg:
		a.update = msg.version
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case noticeMsg:
		a.notice = msg.text
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) applyFragment(target streamTarget, text string) {
	switch target {
	case targetBriefing:
		a.briefing = text
	case targetInsight:
		a.insight = text
	case targetVibe:
		a.vibe = text
	case targetAssist:
		a.assist = text
		if a.mode == modeDetail {
			a.detail.SetContent(a.markdown.render(text))
			a.detail.GotoBottom()
		}
	case targetEstimate:
		a.estimate = text
	case targetJournal:
		a.journalText = text
	}
}

func streamFallback(target streamTarget, err error) string {
	if errors.Is(err, tasks.ErrNoTasks) {
		return "No active tasks."
	}
	if !errors.Is(err, llm.ErrBackendUnreachable) {
		return err.Error()
	}
	switch target {
	case targetInsight:
		return "Insight unavailable (AI connection issue)."
	case targetVibe:
		return "Vibe check unavailable (AI connection issue)."
	case targetEstimate:
		return "Estimate unavailable (AI connection issue)."
	default:
		return "AI connection issue. Try again in a moment."
	}
}

// resetSession clears everything derived from the session cache.
func (a *App) resetSession() {
	a.weather = nil
	a.news = nil
	a.quotes = nil
	a.briefing = briefing.Placeholder
	a.hasAudio = false
	a.insight = ""
	a.vibe = ""
	a.conversion = nil
	a.convErr = false
	a.greeting = briefing.Greeting(time.Now())
	a.playlist = a.orch.Mood(time.Now())
	a.newsCursor = 0
	a.notice = "Session refreshed"
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		a.cancel()
		return a, tea.Quit
	}

	switch a.mode {
	case modeInput:
		return a.handleInputKey(msg)
	case modeJournal:
		return a.handleJournalKey(msg)
	case modeDetail:
		return a.handleDetailKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeDashboard
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		a.cancel()
		return a, tea.Quit
	case "?":
		a.mode = modeHelp
		return a, nil
	case "w":
		return a, a.loadWeather()
	case "n":
		if a.loading["news"] {
			return a, nil
		}
		a.loading["news"] = true
		return a, a.loadNewsCmd()
	case "m":
		if a.loading["markets"] {
			return a, nil
		}
		a.loading["markets"] = true
		return a, a.loadMarketsCmd()
	case "r":
		if a.busy() {
			a.notice = "Wait for the current task to finish"
			return a, nil
		}
		return a, a.refreshCmd()
	case "b":
		return a, a.playAudio()
	case "i":
		if a.weather == nil || a.streaming[targetInsight] {
			return a, nil
		}
		a.streaming[targetInsight] = true
		a.insight = briefing.Thinking
		return a, a.insightCmd()
	case "v":
		if len(a.quotes.Available()) == 0 || a.streaming[targetVibe] {
			return a, nil
		}
		a.streaming[targetVibe] = true
		a.vibe = briefing.Thinking
		return a, a.vibeCmd()
	case "e":
		if a.streaming[targetEstimate] {
			return a, nil
		}
		a.streaming[targetEstimate] = true
		a.estimate = briefing.Thinking
		return a, a.estimateCmd()
	case "s":
		if a.tone == tasks.Strict {
			a.tone = tasks.Supportive
		} else {
			a.tone = tasks.Strict
		}
		return a, nil
	case "p":
		if a.loading["playlist"] {
			return a, nil
		}
		a.loading["playlist"] = true
		return a, a.pickPlaylistCmd()
	case "P":
		return a, openBrowserCmd(a.playlist.URL)
	case "M":
		a.cycleMood()
		return a, nil
	case "j":
		a.mode = modeJournal
		a.journal.Focus()
		return a, textarea.Blink
	case "J":
		if a.mood != nil {
			a.openDetail("Mindful Journal", a.mood.Advice)
		}
		return a, nil
	case "A":
		if a.assist != "" {
			a.openDetail("Quick Assist", a.assist)
		}
		return a, nil
	case "c":
		return a, a.prompt(inputAmount, "1")
	case "B":
		return a, a.cycleBase()
	case "C":
		return a, a.prompt(inputCity, a.city)
	case "t":
		return a, a.prompt(inputTask, "")
	case "d":
		return a, a.prompt(inputDecompose, "")
	case "a":
		return a, a.prompt(inputAssist, "")
	case "g":
		return a, a.prompt(inputCommute, "")
	case "G":
		if a.commute != "" {
			return a, openBrowserCmd(a.commute)
		}
		return a, nil
	case "tab":
		if a.focus == focusNews {
			a.focus = focusTasks
		} else {
			a.focus = focusNews
		}
		return a, nil
	case "down":
		a.moveCursor(1)
		return a, nil
	case "up":
		a.moveCursor(-1)
		return a, nil
	case "x", "delete":
		if a.focus == focusTasks {
			if err := a.planner.List.Remove(a.taskCursor); err == nil && a.taskCursor >= a.planner.List.Len() {
				a.taskCursor = max(0, a.planner.List.Len()-1)
			}
		}
		return a, nil
	case "o", "enter":
		if a.focus == focusNews && a.news != nil && a.newsCursor < len(a.news.Articles) {
			if u := a.news.Articles[a.newsCursor].URL; u != "" {
				return a, openBrowserCmd(u)
			}
		}
		return a, nil
	}

	return a, nil
}

func (a *App) loadWeather() tea.Cmd {
	if a.loading["weather"] {
		return nil
	}
	a.loading["weather"] = true
	return a.loadWeatherCmd(a.city)
}

func (a *App) playAudio() tea.Cmd {
	st := a.orch.State()
	if !st.HasAudio() {
		a.notice = "No briefing audio yet"
		return nil
	}
	return playAudioCmd(config.AudioDir(), st.Audio)
}

func (a *App) cycleMood() {
	for i, p := range briefing.Playlists {
		if p.Mood == a.playlist.Mood {
			next := briefing.Playlists[(i+1)%len(briefing.Playlists)]
			if err := a.orch.SetMood(next.Mood); err == nil {
				a.playlist = next
			}
			return
		}
	}
}

// cycleBase steps to the next configured base currency and converts the
// last amount again.
func (a *App) cycleBase() tea.Cmd {
	choices := a.cfg.Currency.Choices
	if len(choices) == 0 {
		return nil
	}
	next := choices[0]
	for i, c := range choices {
		if strings.EqualFold(c, a.base) {
			next = choices[(i+1)%len(choices)]
			break
		}
	}
	a.base = strings.ToUpper(next)
	a.conversion = nil
	a.convErr = false
	if a.amount <= 0 {
		return nil
	}
	a.loading["rates"] = true
	return a.convertCmd(a.amount)
}

func (a *App) moveCursor(delta int) {
	switch a.focus {
	case focusNews:
		if a.news == nil {
			return
		}
		a.newsCursor = clamp(a.newsCursor+delta, 0, len(a.news.Articles)-1)
	case focusTasks:
		a.taskCursor = clamp(a.taskCursor+delta, 0, a.planner.List.Len()-1)
	}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

func (a *App) prompt(p inputPurpose, initial string) tea.Cmd {
	a.mode = modeInput
	a.purpose = p
	a.input.Placeholder = strings.TrimSuffix(inputPrompts[p], ": ")
	// Configured cities complete with tab in the city prompt only.
	if p == inputCity {
		a.input.ShowSuggestions = true
		a.input.SetSuggestions(a.cfg.Cities)
	} else {
		a.input.SetSuggestions(nil)
		a.input.ShowSuggestions = false
	}
	a.input.SetValue(initial)
	a.input.CursorEnd()
	a.input.Focus()
	return textinput.Blink
}

func (a *App) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeDashboard
		a.input.Blur()
		return a, nil
	case "tab":
		if a.purpose == inputAssist {
			a.assistMode = (a.assistMode + 1) % len(briefing.AssistModes)
			return a, nil
		}
	case "enter":
		value := strings.TrimSpace(a.input.Value())
		a.mode = modeDashboard
		a.input.Blur()
		a.input.SetValue("")
		return a, a.submit(a.purpose, value)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit acts on a completed prompt.
func (a *App) submit(p inputPurpose, value string) tea.Cmd {
	switch p {
	case inputCity:
		if value == "" || strings.EqualFold(value, a.city) {
			return nil
		}
		a.city = value
		a.weather = nil
		a.insight = ""
		return a.loadWeather()
	case inputAmount:
		amount, err := parseAmount(value)
		if err != nil {
			a.err = err
			return nil
		}
		a.amount = amount
		a.loading["rates"] = true
		return a.convertCmd(amount)
	case inputTask:
		a.planner.List.Add(value)
		return nil
	case inputDecompose:
		if value == "" {
			return nil
		}
		a.loading["decompose"] = true
		return a.decomposeCmd(value)
	case inputAssist:
		if value == "" || a.streaming[targetAssist] {
			return nil
		}
		a.streaming[targetAssist] = true
		a.assist = briefing.Thinking
		return a.assistCmd(briefing.AssistModes[a.assistMode], value)
	case inputCommute:
		from, to, ok := strings.Cut(value, ">")
		if !ok {
			a.err = errors.New("enter a route as: start > destination")
			return nil
		}
		u, err := briefing.CommuteURL(from, to)
		if err != nil {
			a.err = err
			return nil
		}
		a.commute = u
		return openBrowserCmd(u)
	}
	return nil
}

func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func (a *App) handleJournalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeDashboard
		a.journal.Blur()
		return a, nil
	case "ctrl+s":
		entry := strings.TrimSpace(a.journal.Value())
		a.mode = modeDashboard
		a.journal.Blur()
		if entry == "" || a.streaming[targetJournal] {
			return a, nil
		}
		a.journal.Reset()
		a.streaming[targetJournal] = true
		a.mood = nil
		a.journalText = "Reflecting..."
		return a, a.journalCmd(entry)
	}

	var cmd tea.Cmd
	a.journal, cmd = a.journal.Update(msg)
	return a, cmd
}

func (a *App) openDetail(title, body string) {
	a.mode = modeDetail
	a.detail.SetContent(panelTitleStyle.Render(title) + "\n" + a.markdown.render(body))
	a.detail.GotoTop()
}

func (a *App) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		a.mode = modeDashboard
		return a, nil
	}
	var cmd tea.Cmd
	a.detail, cmd = a.detail.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  nowbrief")
	}

	switch a.mode {
	case modeHelp:
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	case modeDetail:
		return a.withBottomBar(a.detail.View(), "↑/↓ scroll  esc back")
	case modeJournal:
		return a.withBottomBar(a.renderJournalEditor(), "ctrl+s reflect  esc cancel")
	}

	view := a.renderDashboard()
	if a.mode == modeInput {
		hint := inputPrompts[a.purpose]
		if a.purpose == inputAssist {
			hint = "[" + briefing.AssistModes[a.assistMode].Label() + "] " + hint
		}
		return a.withBottomBar(view, hint+a.input.View())
	}
	return a.withBottomBar(view, a.statusLine())
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	defer app.cancel()
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
