package tui

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/briefing"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/config"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/llm"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/session"
)

type stubData struct{}

func (stubData) Weather(_ context.Context, city string) (*services.WeatherSnapshot, error) {
	return &services.WeatherSnapshot{City: city, TemperatureC: 8, Description: "light rain"}, nil
}

func (stubData) News(context.Context) (*services.NewsSnapshot, error) {
	return &services.NewsSnapshot{Articles: []services.Article{{Source: "BBC", Title: "Headline", URL: "https://bbc.co.uk/1"}}}, nil
}

func (stubData) Markets(context.Context, []config.Instrument) services.MarketSnapshot {
	return nil
}

func (stubData) Rates(_ context.Context, base string) (*services.RatesSnapshot, error) {
	if base == "EUR" {
		return &services.RatesSnapshot{Base: "EUR", Rates: map[string]float64{"INR": 90}}, nil
	}
	return nil, services.ErrUnavailable
}

type stubProvider struct {
	fragments []string
}

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) Start(context.Context, string) (*llm.Stream, error) {
	return llm.FromFragments(s.fragments...), nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	p := stubProvider{fragments: []string{"Good ", "day."}}
	orch := briefing.New(briefing.Options{
		Cache: session.New(),
		Data:  stubData{},
		LLM:   p,
	})
	cfg := &config.Config{
		City:     "Paris",
		Cities:   []string{"Paris", "Tokyo", "Berlin"},
		Currency: config.CurrencyConfig{Base: "usd", Choices: []string{"USD", "EUR", "GBP"}},
	}
	app := NewApp(RunOpts{
		Cfg:          cfg,
		Orchestrator: orch,
		LLM:          p,
		Rand:         rand.New(rand.NewPCG(1, 1)),
	})
	t.Cleanup(app.cancel)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

func typeText(a *App, s string) {
	a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func key(a *App, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := a.Update(msg)
	return cmd
}

// drain runs cmd and feeds every resulting message back into the app,
// following stream continuations.
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("too many steps")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch m := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, m...)
			continue
		}
		_, next := a.Update(msg)
		queue = append(queue, next)
	}
}

func TestStreamCmdDeliversFragmentsThenFinal(t *testing.T) {
	ctx := context.Background()
	cmd := streamCmd(ctx, targetAssist, func(emit func(string)) tea.Msg {
		emit("a")
		emit("ab")
		return streamDoneMsg{target: targetAssist, text: "ab"}
	})

	var got []string
	msg := cmd()
	for {
		f, ok := msg.(fragmentMsg)
		if !ok {
			break
		}
		got = append(got, f.text)
		msg = waitFor(f.next)()
	}
	done, ok := msg.(streamDoneMsg)
	if !ok || done.text != "ab" {
		t.Fatalf("expected final streamDoneMsg, got %#v", msg)
	}
	if strings.Join(got, ",") != "a,ab" {
		t.Errorf("fragments = %v", got)
	}
}

func TestLoadingDataRunsBriefingPass(t *testing.T) {
	a := newTestApp(t)

	drain(t, a, key(a, "w"))
	if a.weather == nil || a.weather.City != "Paris" {
		t.Fatalf("weather not loaded: %+v", a.weather)
	}
	if a.briefing != briefing.Placeholder {
		t.Errorf("briefing should wait for news, got %q", a.briefing)
	}

	drain(t, a, key(a, "n"))
	if a.briefing != "Good day." {
		t.Errorf("briefing = %q", a.briefing)
	}
	if a.streaming[targetBriefing] {
		t.Error("pass should have finished")
	}
	view := a.View()
	if !strings.Contains(view, "heavy") || !strings.Contains(view, "umbrella") {
		t.Errorf("outfit missing from view")
	}
}

func TestWeatherFailureShowsRetry(t *testing.T) {
	a := newTestApp(t)
	a.loading["weather"] = true
	a.Update(weatherLoadedMsg{err: services.ErrUnavailable})
	if a.err == nil || !strings.Contains(a.err.Error(), "press w to retry") {
		t.Errorf("expected retry hint, got %v", a.err)
	}
	if a.loading["weather"] {
		t.Error("loading flag should clear")
	}
}

func TestFragmentUpdatesBriefing(t *testing.T) {
	a := newTestApp(t)
	ch := make(chan tea.Msg)
	_, cmd := a.Update(fragmentMsg{target: targetBriefing, text: "partial", next: ch})
	if a.briefing != "partial" {
		t.Errorf("briefing = %q", a.briefing)
	}
	if cmd == nil {
		t.Error("fragment should schedule the next read")
	}
}

func TestAddAndRemoveTasks(t *testing.T) {
	a := newTestApp(t)
	for _, task := range []string{"one", "two", "three"} {
		key(a, "t")
		if a.mode != modeInput {
			t.Fatal("expected input mode")
		}
		typeText(a, task)
		key(a, "enter")
	}
	key(a, "t")
	key(a, "enter") // empty input is ignored
	if got := a.planner.List.Items(); strings.Join(got, ",") != "one,two,three" {
		t.Fatalf("tasks = %v", got)
	}

	key(a, "tab")
	key(a, "down")
	key(a, "x")
	if got := a.planner.List.Items(); strings.Join(got, ",") != "one,three" {
		t.Errorf("after delete tasks = %v", got)
	}
}

func TestConversionFailureRendersRateUnavailable(t *testing.T) {
	a := newTestApp(t)
	key(a, "c")
	a.input.SetValue("")
	typeText(a, "10")
	drain(t, a, key(a, "enter"))
	if !a.convErr {
		t.Fatal("expected conversion failure")
	}
	if !strings.Contains(a.View(), "Rate Unavailable") {
		t.Error("view should show Rate Unavailable")
	}
}

func TestFormatQuoteUnavailable(t *testing.T) {
	price, change := 101.5, -0.5
	if got := formatQuote(services.Quote{Label: "SPY"}); !strings.Contains(got, "N/A") {
		t.Errorf("unavailable quote should render N/A, got %q", got)
	}
	got := formatQuote(services.Quote{Label: "BTC", Price: &price, ChangePct: &change})
	if !strings.Contains(got, "101.50") || !strings.Contains(got, "0.50%") || strings.Contains(got, "N/A") {
		t.Errorf("unexpected quote %q", got)
	}
}

func TestStreamFallback(t *testing.T) {
	if got := streamFallback(targetVibe, llm.ErrBackendUnreachable); !strings.Contains(got, "unavailable") {
		t.Errorf("got %q", got)
	}
	if got := streamFallback(targetEstimate, errors.New("boom")); got != "boom" {
		t.Errorf("got %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		err  bool
	}{
		{"1", 1, false},
		{"1,250.5", 1250.5, false},
		{" 3 ", 3, false},
		{"-2", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if tt.err != (err != nil) || got != tt.want {
			t.Errorf("parseAmount(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestRefreshResetsSession(t *testing.T) {
	a := newTestApp(t)
	drain(t, a, key(a, "w"))
	drain(t, a, key(a, "n"))
	if a.briefing == briefing.Placeholder {
		t.Fatal("expected a generated briefing")
	}
	drain(t, a, key(a, "r"))
	if a.weather != nil || a.news != nil || a.briefing != briefing.Placeholder {
		t.Errorf("refresh should clear session state: weather=%v news=%v briefing=%q", a.weather, a.news, a.briefing)
	}
	if a.orch.State().Phase != briefing.NoData {
		t.Errorf("orchestrator phase = %v", a.orch.State().Phase)
	}
}

func TestCycleBaseReconvertsLastAmount(t *testing.T) {
	a := newTestApp(t)
	if cmd := key(a, "B"); cmd != nil || a.base != "EUR" {
		t.Fatalf("without an amount B should only switch base, got base %q", a.base)
	}
	key(a, "B")
	key(a, "B")
	if a.base != "USD" {
		t.Fatalf("base should wrap around to USD, got %q", a.base)
	}

	key(a, "c")
	a.input.SetValue("")
	typeText(a, "10")
	drain(t, a, key(a, "enter"))
	if !a.convErr {
		t.Fatal("USD rates are unavailable in this fixture")
	}

	drain(t, a, key(a, "B"))
	if a.base != "EUR" || a.convErr || a.conversion == nil {
		t.Fatalf("expected EUR conversion, got base %q conversion %+v", a.base, a.conversion)
	}
	if a.conversion.Converted != 900 || a.conversion.Target != "INR" {
		t.Errorf("unexpected conversion %+v", a.conversion)
	}
	if !strings.Contains(a.View(), "CURRENCY EUR") {
		t.Error("currency panel should show the new base")
	}
}

func TestCityPromptCompletesConfiguredCities(t *testing.T) {
	a := newTestApp(t)
	key(a, "C")
	a.input.SetValue("")
	typeText(a, "To")
	key(a, "tab")
	if got := a.input.Value(); got != "Tokyo" {
		t.Fatalf("tab should complete a configured city, got %q", got)
	}
	drain(t, a, key(a, "enter"))
	if a.city != "Tokyo" || a.weather == nil || a.weather.City != "Tokyo" {
		t.Errorf("expected weather for Tokyo, got city %q weather %+v", a.city, a.weather)
	}

	// Other prompts do not suggest cities.
	key(a, "t")
	a.input.SetValue("")
	typeText(a, "To")
	key(a, "tab")
	if got := a.input.Value(); got != "To" {
		t.Errorf("task prompt should not complete cities, got %q", got)
	}
}
