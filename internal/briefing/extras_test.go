package briefing

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/llm"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
)

func at(hour int) time.Time {
	return time.Date(2026, 1, 1, hour, 0, 0, 0, time.Local)
}

func TestGreeting(t *testing.T) {
	tests := []struct {
		hour     int
		expected string
	}{
		{5, "Good Morning"},
		{11, "Good Morning"},
		{12, "Good Afternoon"},
		{17, "Good Afternoon"},
		{18, "Good Evening"},
		{23, "Good Evening"},
		{0, "Good Evening"},
		{4, "Good Evening"},
	}
	for _, tt := range tests {
		if got := Greeting(at(tt.hour)); got != tt.expected {
			t.Errorf("hour %d: expected %q, got %q", tt.hour, tt.expected, got)
		}
	}
}

func TestOutfit(t *testing.T) {
	tests := []struct {
		temp     float64
		desc     string
		contains []string
	}{
		{5, "clear sky", []string{"heavy jacket"}},
		{10, "clouds", []string{"light jacket"}},
		{19.9, "Light Rain", []string{"light jacket", "umbrella"}},
		{20, "drizzle", []string{"T-shirt", "umbrella"}},
		{30, "sunny", []string{"T-shirt"}},
	}
	for _, tt := range tests {
		got := Outfit(&services.WeatherSnapshot{TemperatureC: tt.temp, Description: tt.desc})
		for _, want := range tt.contains {
			if !strings.Contains(got, want) {
				t.Errorf("Outfit(%v, %q) = %q, missing %q", tt.temp, tt.desc, got, want)
			}
		}
	}
	if got := Outfit(&services.WeatherSnapshot{TemperatureC: 25, Description: "clear"}); strings.Contains(got, "umbrella") {
		t.Errorf("dry weather should not suggest an umbrella: %q", got)
	}
	if Outfit(nil) != "Check outside!" {
		t.Error("expected default before weather loads")
	}
}

func TestRandomPicksAreSeeded(t *testing.T) {
	a := rand.New(rand.NewPCG(7, 7))
	b := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 10; i++ {
		if Wisdom(a) != Wisdom(b) || FunFact(a) != FunFact(b) {
			t.Fatal("same seed should give the same picks")
		}
	}
	if !slices.Contains(wisdom, Wisdom(a)) || !slices.Contains(funFacts, FunFact(a)) {
		t.Error("picks must come from the static lists")
	}
}

func TestDynamicGreeting(t *testing.T) {
	p := &fakeProvider{fragments: []string{"  Rise and shine, sunny Paris!  "}}
	o := newTestOrchestrator(newTestData(), p, nil)
	ctx := context.Background()

	got, err := o.DynamicGreeting(ctx, at(9))
	if got != "Good Morning" || err == nil {
		t.Errorf("without weather expected static greeting and error, got %q %v", got, err)
	}
	if p.calls() != 0 {
		t.Error("no completion without weather")
	}

	loadAll(t, o)
	got, err = o.DynamicGreeting(ctx, at(9))
	if err != nil || got != "Rise and shine, sunny Paris!" {
		t.Errorf("got %q %v", got, err)
	}
	o.DynamicGreeting(ctx, at(9))
	if p.calls() != 1 {
		t.Errorf("greeting should be cached, got %d calls", p.calls())
	}
	if !strings.Contains(p.prompts[0], "clear sky, 24.5C") {
		t.Errorf("prompt missing weather: %q", p.prompts[0])
	}
}

func TestDynamicGreetingFailureKeepsStatic(t *testing.T) {
	p := &fakeProvider{err: llm.ErrBackendUnreachable}
	o := newTestOrchestrator(newTestData(), p, nil)
	loadAll(t, o)

	got, err := o.DynamicGreeting(context.Background(), at(20))
	if got != "Good Evening" || !errors.Is(err, llm.ErrBackendUnreachable) {
		t.Errorf("got %q %v", got, err)
	}
	got, err = o.DynamicGreeting(context.Background(), at(20))
	if got != "Good Evening" || err != nil || p.calls() != 1 {
		t.Errorf("failed greeting should be cached: %q %v calls=%d", got, err, p.calls())
	}
}

func TestFunFact(t *testing.T) {
	p := &fakeProvider{fragments: []string{`"Sharks predate trees."`}}
	o := newTestOrchestrator(newTestData(), p, nil)

	got, err := o.FunFact(context.Background())
	if err != nil || got != "Sharks predate trees." {
		t.Errorf("got %q %v", got, err)
	}
	o.FunFact(context.Background())
	if p.calls() != 1 {
		t.Errorf("fun fact should be generated once, got %d", p.calls())
	}

	failing := newTestOrchestrator(newTestData(), &fakeProvider{err: llm.ErrBackendUnreachable}, nil)
	got, err = failing.FunFact(context.Background())
	if err == nil || !slices.Contains(funFacts, got) {
		t.Errorf("expected static fallback and error, got %q %v", got, err)
	}
}

func TestWeatherInsightAndMarketVibe(t *testing.T) {
	price, change := 100.0, -1.234
	data := newTestData()
	data.quotes = services.MarketSnapshot{{Label: "BTC", Price: &price, ChangePct: &change}, {Label: "SPY"}}
	p := &fakeProvider{fragments: []string{"ok"}}
	o := newTestOrchestrator(data, p, nil)
	ctx := context.Background()

	if _, err := o.WeatherInsight(ctx, nil); err == nil {
		t.Error("insight needs weather")
	}
	if _, err := o.MarketVibe(ctx, nil); err == nil {
		t.Error("vibe needs quotes")
	}

	loadAll(t, o)
	o.LoadMarkets(ctx)
	if _, err := o.WeatherInsight(ctx, nil); err != nil {
		t.Fatalf("WeatherInsight: %v", err)
	}
	if _, err := o.MarketVibe(ctx, nil); err != nil {
		t.Fatalf("MarketVibe: %v", err)
	}
	if !strings.Contains(p.prompts[0], "Humidity 40%") {
		t.Errorf("insight prompt: %q", p.prompts[0])
	}
	if !strings.Contains(p.prompts[1], "BTC: -1.23%") || strings.Contains(p.prompts[1], "SPY") {
		t.Errorf("vibe prompt should only list available quotes: %q", p.prompts[1])
	}
}

func TestPickPlaylist(t *testing.T) {
	p := &fakeProvider{fragments: []string{"I'd go with Lo-Fi Study today."}}
	o := newTestOrchestrator(newTestData(), p, nil)
	ctx := context.Background()

	if got := o.Mood(at(13)); got.Mood != "Focus Flow" {
		t.Errorf("default mood = %q", got.Mood)
	}
	got, err := o.PickPlaylist(ctx, at(13), 2)
	if err != nil || got.Mood != "Lo-Fi Study" {
		t.Errorf("got %+v %v", got, err)
	}
	if o.Mood(at(13)).Mood != "Lo-Fi Study" {
		t.Error("pick should become the selection")
	}
	if !strings.Contains(p.prompts[0], "Weather=Unknown, Time=13:00, PendingTasks=2") {
		t.Errorf("prompt: %q", p.prompts[0])
	}

	p.fragments = []string{"Jazz"}
	got, _ = o.PickPlaylist(ctx, at(13), 0)
	if got.Mood != "Lo-Fi Study" {
		t.Errorf("no match should keep the current selection, got %q", got.Mood)
	}
}

func TestDefaultMood(t *testing.T) {
	for hour, want := range map[int]string{0: "Morning Chill", 11: "Morning Chill", 12: "Focus Flow", 17: "Focus Flow", 18: "Upbeat Energy"} {
		if got := DefaultMood(at(hour)); got != want {
			t.Errorf("hour %d: got %q, want %q", hour, got, want)
		}
	}
}

func TestSetMood(t *testing.T) {
	o := newTestOrchestrator(newTestData(), nil, nil)
	if err := o.SetMood("Polka"); err == nil {
		t.Error("unknown playlist should fail")
	}
	if err := o.SetMood("Upbeat Energy"); err != nil || o.Mood(at(8)).Mood != "Upbeat Energy" {
		t.Errorf("SetMood: %v", err)
	}
}

func TestQuickAssist(t *testing.T) {
	p := &fakeProvider{fragments: []string{"Dear team"}}
	o := newTestOrchestrator(newTestData(), p, nil)
	ctx := context.Background()

	got, err := o.QuickAssist(ctx, Draft, " leave request ", nil)
	if err != nil || got != "Dear team" {
		t.Errorf("got %q %v", got, err)
	}
	if p.prompts[0] != "Draft a professional email/message about: leave request" {
		t.Errorf("prompt: %q", p.prompts[0])
	}
	if _, err := o.QuickAssist(ctx, "poem", "x", nil); err == nil {
		t.Error("unknown mode should fail")
	}
	if _, err := o.QuickAssist(ctx, Ideas, "  ", nil); err == nil {
		t.Error("empty input should fail")
	}
	if p.calls() != 1 {
		t.Errorf("invalid requests must not reach the backend, got %d", p.calls())
	}
}

func TestCommuteURL(t *testing.T) {
	got, err := CommuteURL("Home", "MG Road")
	if err != nil {
		t.Fatalf("CommuteURL: %v", err)
	}
	if got != "https://www.google.com/maps/dir/Home/MG%20Road" {
		t.Errorf("got %q", got)
	}
	if _, err := CommuteURL("", "Office"); err == nil {
		t.Error("missing start should fail")
	}
}
