package briefing

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/config"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/fingerprint"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/llm"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/session"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/speech"
)

type fakeData struct {
	mu         sync.Mutex
	weather    *services.WeatherSnapshot
	weatherErr error
	news       *services.NewsSnapshot
	newsErr    error
	quotes     services.MarketSnapshot
	rates      *services.RatesSnapshot
	calls      map[string]int
}

func (f *fakeData) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeData) Weather(_ context.Context, city string) (*services.WeatherSnapshot, error) {
	f.count("weather")
	if f.weatherErr != nil {
		return nil, f.weatherErr
	}
	w := *f.weather
	w.City = city
	return &w, nil
}

func (f *fakeData) News(context.Context) (*services.NewsSnapshot, error) {
	f.count("news")
	return f.news, f.newsErr
}

func (f *fakeData) Markets(context.Context, []config.Instrument) services.MarketSnapshot {
	f.count("markets")
	return f.quotes
}

func (f *fakeData) Rates(context.Context, string) (*services.RatesSnapshot, error) {
	f.count("rates")
	if f.rates == nil {
		return nil, services.ErrUnavailable
	}
	return f.rates, nil
}

type fakeProvider struct {
	mu        sync.Mutex
	fragments []string
	err       error
	// streamErr ends the stream after fragments instead of a clean EOF.
	streamErr error
	prompts   []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Start(_ context.Context, prompt string) (*llm.Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	if f.streamErr != nil {
		frags, streamErr := f.fragments, f.streamErr
		i := 0
		return llm.NewStream(func() (string, error) {
			if i < len(frags) {
				i++
				return frags[i-1], nil
			}
			return "", streamErr
		}, nil), nil
	}
	return llm.FromFragments(f.fragments...), nil
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeSynth struct {
	texts []string
	err   error
}

func (f *fakeSynth) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3:" + text), nil
}

func newTestData() *fakeData {
	return &fakeData{
		weather: &services.WeatherSnapshot{TemperatureC: 24.5, Description: "clear sky", HumidityPct: 40, WindSpeed: 3.1},
		news: &services.NewsSnapshot{Articles: []services.Article{
			{Source: "BBC", Title: "One"}, {Source: "BBC", Title: "Two"},
			{Source: "BBC", Title: "Three"}, {Source: "BBC", Title: "Four"},
		}},
	}
}

func newTestOrchestrator(data DataSource, p llm.Provider, s speech.Synthesizer) *Orchestrator {
	return New(Options{
		Cache:  session.New(),
		Data:   data,
		LLM:    p,
		Speech: s,
		Rand:   rand.New(rand.NewPCG(1, 2)),
	})
}

func loadAll(t *testing.T, o *Orchestrator) {
	t.Helper()
	if _, err := o.LoadWeather(context.Background(), "Paris"); err != nil {
		t.Fatalf("LoadWeather: %v", err)
	}
	if _, err := o.LoadNews(context.Background()); err != nil {
		t.Fatalf("LoadNews: %v", err)
	}
}

func TestPassWithoutDataIssuesNoCompletion(t *testing.T) {
	data := newTestData()
	data.weatherErr = services.ErrUnavailable
	p := &fakeProvider{fragments: []string{"hi"}}
	s := &fakeSynth{}
	o := newTestOrchestrator(data, p, s)

	if _, err := o.LoadWeather(context.Background(), "Paris"); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := o.LoadNews(context.Background()); err != nil {
		t.Fatalf("LoadNews: %v", err)
	}

	for i := 0; i < 3; i++ {
		res := o.Pass(context.Background(), nil)
		if res.Phase != NoData || res.Text != Placeholder {
			t.Errorf("pass %d: got phase %v text %q", i, res.Phase, res.Text)
		}
	}
	if p.calls() != 0 {
		t.Errorf("expected zero completion requests, got %d", p.calls())
	}
	if len(s.texts) != 0 {
		t.Errorf("expected no synthesis, got %d", len(s.texts))
	}
	if o.State().Phase != NoData {
		t.Errorf("state phase = %v, want no data", o.State().Phase)
	}
}

func TestPassStreamsOnceThenCaches(t *testing.T) {
	p := &fakeProvider{fragments: []string{"Sunny ", "day. ", "Big news."}}
	s := &fakeSynth{}
	o := newTestOrchestrator(newTestData(), p, s)
	loadAll(t, o)

	if got := o.State().Phase; got != DataReady {
		t.Fatalf("phase before pass = %v, want data ready", got)
	}

	var updates []string
	res := o.Pass(context.Background(), func(acc string) { updates = append(updates, acc) })
	if !res.Generated || res.Phase != Cached || res.Text != "Sunny day. Big news." {
		t.Fatalf("unexpected first pass %+v", res)
	}
	if len(updates) != 3 || updates[2] != res.Text {
		t.Errorf("expected 3 accumulated updates, got %q", updates)
	}
	if !strings.Contains(p.prompts[0], "Weather: 24.5°C, clear sky") || !strings.Contains(p.prompts[0], "News: One, Two, Three") {
		t.Errorf("prompt missing data: %q", p.prompts[0])
	}

	for i := 0; i < 5; i++ {
		res = o.Pass(context.Background(), nil)
		if res.Generated || res.Text != "Sunny day. Big news." {
			t.Errorf("pass %d should re-render cached text, got %+v", i, res)
		}
	}
	if p.calls() != 1 {
		t.Errorf("expected exactly one completion, got %d", p.calls())
	}
	if len(s.texts) != 1 {
		t.Errorf("expected one synthesis for unchanged text, got %d", len(s.texts))
	}

	st := o.State()
	if st.Phase != Cached || !st.HasAudio() || st.AudioSourceHash != fingerprint.Of(st.Text) {
		t.Errorf("unexpected state %+v", st)
	}
}

func TestBackendFailureCachesFallback(t *testing.T) {
	p := &fakeProvider{err: llm.ErrBackendUnreachable}
	s := &fakeSynth{}
	o := newTestOrchestrator(newTestData(), p, s)
	loadAll(t, o)

	res := o.Pass(context.Background(), nil)
	if res.Text != Fallback || !errors.Is(res.Degraded, llm.ErrBackendUnreachable) {
		t.Fatalf("expected fallback, got %+v", res)
	}

	// Backend recovers, but the fallback stays until a refresh.
	p.err = nil
	p.fragments = []string{"fresh"}
	res = o.Pass(context.Background(), nil)
	if res.Text != Fallback || res.Generated {
		t.Errorf("fallback should be cached, got %+v", res)
	}
	if p.calls() != 1 {
		t.Errorf("expected no automatic retry, got %d calls", p.calls())
	}

	o.Refresh()
	if o.State().Phase != NoData {
		t.Errorf("refresh should return to no data, got %v", o.State().Phase)
	}
	loadAll(t, o)
	res = o.Pass(context.Background(), nil)
	if res.Text != "fresh" {
		t.Errorf("expected regenerated text after refresh, got %q", res.Text)
	}
}

func TestMidStreamFailureDiscardsPartialText(t *testing.T) {
	p := &fakeProvider{fragments: []string{"Good ", "morn"}, streamErr: errors.New("connection reset")}
	s := &fakeSynth{}
	o := newTestOrchestrator(newTestData(), p, s)
	loadAll(t, o)

	var seen []string
	res := o.Pass(context.Background(), func(text string) { seen = append(seen, text) })

	if len(seen) != 2 || seen[1] != "Good morn" {
		t.Errorf("fragments should stream before the failure, saw %q", seen)
	}
	if res.Text != Fallback || res.Phase != Cached || !errors.Is(res.Degraded, llm.ErrBackendUnreachable) {
		t.Fatalf("expected cached fallback, got %+v", res)
	}
	if text, _ := session.Lookup[string](o.cache, keyText); text != Fallback {
		t.Errorf("cached text = %q, want fallback", text)
	}
	if len(s.texts) != 1 || s.texts[0] != Fallback {
		t.Errorf("partial text must not reach synthesis, got %q", s.texts)
	}
}

func TestEmptyCompletionCachesFallback(t *testing.T) {
	p := &fakeProvider{}
	o := newTestOrchestrator(newTestData(), p, nil)
	loadAll(t, o)

	res := o.Pass(context.Background(), nil)
	if res.Text != Fallback || res.Phase != Cached || !errors.Is(res.Degraded, errEmptyBriefing) {
		t.Fatalf("expected fallback for empty completion, got %+v", res)
	}
	res = o.Pass(context.Background(), nil)
	if res.Generated || p.calls() != 1 {
		t.Errorf("fallback should be cached, got %+v after %d calls", res, p.calls())
	}
	if st := o.State(); st.Phase != Cached || st.Text != Fallback {
		t.Errorf("state disagrees with pass: %v %q", st.Phase, st.Text)
	}
}

func TestCachedBriefingOutlivesDataTTL(t *testing.T) {
	p := &fakeProvider{fragments: []string{"Hello ", "day."}}
	o := New(Options{
		Cache: session.New(),
		Data:  newTestData(),
		LLM:   p,
		TTL:   TTLs{Weather: 20 * time.Millisecond, News: 20 * time.Millisecond},
	})
	loadAll(t, o)

	if res := o.Pass(context.Background(), nil); res.Text != "Hello day." {
		t.Fatalf("first pass = %+v", res)
	}
	time.Sleep(40 * time.Millisecond)

	res := o.Pass(context.Background(), nil)
	if res.Phase != Cached || res.Text != "Hello day." || res.Generated {
		t.Errorf("expired data should not hide the cached briefing, got %+v", res)
	}
	st := o.State()
	if st.Phase != res.Phase || st.Text != res.Text {
		t.Errorf("state %v %q disagrees with pass %v %q", st.Phase, st.Text, res.Phase, res.Text)
	}
	if st.Weather != nil {
		t.Error("weather entry should have expired")
	}
	if p.calls() != 1 {
		t.Errorf("expected a single completion, got %d", p.calls())
	}
}

func TestSynthesisFailureIsSwallowedAndNotRetried(t *testing.T) {
	s := &fakeSynth{err: speech.ErrSynthesisFailed}
	o := newTestOrchestrator(newTestData(), &fakeProvider{fragments: []string{"text"}}, s)
	loadAll(t, o)

	for i := 0; i < 4; i++ {
		res := o.Pass(context.Background(), nil)
		if res.Text != "text" || res.Audio != nil {
			t.Errorf("pass %d: %+v", i, res)
		}
	}
	if len(s.texts) != 1 {
		t.Errorf("expected one synthesis attempt, got %d", len(s.texts))
	}
	if o.State().HasAudio() {
		t.Error("no audio expected after failure")
	}
}

func TestAudioResynthesizedWhenTextChanges(t *testing.T) {
	s := &fakeSynth{}
	p := &fakeProvider{fragments: []string{"first"}}
	o := newTestOrchestrator(newTestData(), p, s)
	loadAll(t, o)

	o.Pass(context.Background(), nil)
	o.Refresh()
	p.fragments = []string{"second"}
	loadAll(t, o)
	o.Pass(context.Background(), nil)
	o.Pass(context.Background(), nil)

	if len(s.texts) != 2 || s.texts[0] != "first" || s.texts[1] != "second" {
		t.Errorf("unexpected synthesis sequence %q", s.texts)
	}
}

func TestCanceledPassIsNotCached(t *testing.T) {
	p := &fakeProvider{err: context.Canceled}
	o := newTestOrchestrator(newTestData(), p, nil)
	loadAll(t, o)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := o.Pass(ctx, nil)
	if res.Phase != DataReady {
		t.Errorf("phase = %v, want data ready", res.Phase)
	}
	if _, ok := session.Lookup[string](o.cache, keyText); ok {
		t.Error("abandoned pass must not cache text")
	}
}

func TestNilProviderDegrades(t *testing.T) {
	o := newTestOrchestrator(newTestData(), nil, nil)
	loadAll(t, o)
	res := o.Pass(context.Background(), nil)
	if res.Text != Fallback || !errors.Is(res.Degraded, llm.ErrBackendUnreachable) {
		t.Errorf("expected fallback, got %+v", res)
	}
}

func TestLoadWeatherCachesPerCity(t *testing.T) {
	data := newTestData()
	o := newTestOrchestrator(data, &fakeProvider{}, nil)
	ctx := context.Background()

	o.LoadWeather(ctx, "Paris")
	o.LoadWeather(ctx, "paris")
	if data.calls["weather"] != 1 {
		t.Errorf("same city should hit the cache, got %d fetches", data.calls["weather"])
	}
	w, _ := o.LoadWeather(ctx, "Tokyo")
	if data.calls["weather"] != 2 || w.City != "Tokyo" {
		t.Errorf("new city should replace the snapshot, got %d fetches, city %q", data.calls["weather"], w.City)
	}
}

func TestLoadMarketsKeepsPartialBatch(t *testing.T) {
	price, change := 100.0, 1.5
	data := newTestData()
	data.quotes = services.MarketSnapshot{
		{Label: "BTC", Price: &price, ChangePct: &change},
		{Label: "SPY"},
		{Label: "NIFTY", Price: &price, ChangePct: &change},
		{Label: "SENSEX", Price: &price, ChangePct: &change},
	}
	o := newTestOrchestrator(data, &fakeProvider{}, nil)

	m := o.LoadMarkets(context.Background())
	if len(m) != 4 || len(m.Available()) != 3 || m[1].Available() {
		t.Errorf("unexpected batch %+v", m)
	}
	o.LoadMarkets(context.Background())
	if data.calls["markets"] != 1 {
		t.Errorf("markets should be cached, got %d fetches", data.calls["markets"])
	}
}

func TestConvert(t *testing.T) {
	data := newTestData()
	data.rates = &services.RatesSnapshot{Base: "USD", Rates: map[string]float64{"INR": 83}}
	o := newTestOrchestrator(data, &fakeProvider{}, nil)
	ctx := context.Background()

	c, err := o.Convert(ctx, 2, "usd", "inr")
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if c.Converted != 166 || c.Rate != 83 || c.Target != "INR" {
		t.Errorf("unexpected conversion %+v", c)
	}
	if _, err := o.Convert(ctx, 1, "USD", "EUR"); !errors.Is(err, services.ErrUnavailable) {
		t.Errorf("missing rate should be unavailable, got %v", err)
	}
	if _, err := o.Convert(ctx, -1, "USD", "INR"); err == nil {
		t.Error("negative amount should fail")
	}
	if data.calls["rates"] != 1 {
		t.Errorf("rates should be cached per base, got %d fetches", data.calls["rates"])
	}

	data2 := newTestData()
	o2 := newTestOrchestrator(data2, &fakeProvider{}, nil)
	if _, err := o2.Convert(ctx, 1, "USD", "INR"); !errors.Is(err, services.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	o2.Convert(ctx, 1, "USD", "INR")
	if data2.calls["rates"] != 2 {
		t.Errorf("failures must not be cached, got %d fetches", data2.calls["rates"])
	}
}
