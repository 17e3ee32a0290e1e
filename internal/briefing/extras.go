package briefing

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/session"
)

var (
	errNoWeather = errors.New("weather not loaded")
	errNoQuotes  = errors.New("no market quotes available")

	errEmptyBriefing = errors.New("completion returned no text")
)

// DynamicGreeting returns an AI greeting for the loaded weather, generated
// once per city. Without weather, or when the backend fails, the static
// greeting is returned alongside the error; a failure is cached so it is
// not retried until the next refresh or city change.
func (o *Orchestrator) DynamicGreeting(ctx context.Context, now time.Time) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if g, ok := session.Lookup[string](o.cache, keyGreeting); ok {
		return g, nil
	}
	static := Greeting(now)
	w, ok := session.Lookup[*services.WeatherSnapshot](o.cache, keyWeather)
	if !ok {
		return static, errNoWeather
	}
	text, err := o.complete(ctx, greetingPrompt(now, w), nil)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		o.log.Warn("dynamic greeting failed", zap.Error(err))
		o.cache.Set(keyGreeting, static, 0)
		if err == nil {
			err = errors.New("empty greeting")
		}
		return static, err
	}
	o.cache.Set(keyGreeting, text, 0)
	return text, nil
}

// FunFact returns the session's fun fact, asking the backend once and
// falling back to a static fact.
func (o *Orchestrator) FunFact(ctx context.Context) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if f, ok := session.Lookup[string](o.cache, keyFunFact); ok {
		return f, nil
	}
	text, err := o.complete(ctx, funFactPrompt, nil)
	text = strings.Trim(strings.TrimSpace(text), `"`)
	if err != nil || text == "" {
		fact := FunFact(o.rnd)
		o.cache.Set(keyFunFact, fact, 0)
		if err != nil {
			o.log.Warn("fun fact generation failed", zap.Error(err))
		}
		return fact, err
	}
	o.cache.Set(keyFunFact, text, 0)
	return text, nil
}

// WeatherInsight streams outfit, activity and health notes for the loaded
// weather. The result is not cached.
func (o *Orchestrator) WeatherInsight(ctx context.Context, onFragment func(string)) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	w, ok := session.Lookup[*services.WeatherSnapshot](o.cache, keyWeather)
	if !ok {
		return "", errNoWeather
	}
	return o.complete(ctx, insightPrompt(w), onFragment)
}

// MarketVibe streams a one-line summary of the loaded quotes. Unavailable
// quotes are left out of the prompt.
func (o *Orchestrator) MarketVibe(ctx context.Context, onFragment func(string)) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	m, _ := session.Lookup[services.MarketSnapshot](o.cache, keyMarkets)
	quotes := m.Available()
	if len(quotes) == 0 {
		return "", errNoQuotes
	}
	return o.complete(ctx, vibePrompt(quotes), onFragment)
}

// Mood is the selected vibe station playlist, defaulting by time of day.
func (o *Orchestrator) Mood(now time.Time) Playlist {
	if mood, ok := session.Lookup[string](o.cache, keyMood); ok {
		if p, ok := FindPlaylist(mood); ok {
			return p
		}
	}
	p, _ := FindPlaylist(DefaultMood(now))
	return p
}

func (o *Orchestrator) SetMood(mood string) error {
	if _, ok := FindPlaylist(mood); !ok {
		return fmt.Errorf("unknown playlist %q", mood)
	}
	o.cache.Set(keyMood, mood, 0)
	return nil
}

// PickPlaylist asks the backend to choose a playlist for the current
// context. A response naming no known playlist keeps the current one.
func (o *Orchestrator) PickPlaylist(ctx context.Context, now time.Time, pendingTasks int) (Playlist, error) {
	current := o.Mood(now)

	o.mu.Lock()
	defer o.mu.Unlock()

	weather := "Unknown"
	if w, ok := session.Lookup[*services.WeatherSnapshot](o.cache, keyWeather); ok {
		weather = w.Summary()
	}
	text, err := o.complete(ctx, djPrompt(weather, now.Hour(), pendingTasks), nil)
	if err != nil {
		o.log.Warn("playlist pick failed", zap.Error(err))
		return current, err
	}
	p, ok := MatchPlaylist(strings.TrimSpace(text))
	if !ok {
		o.log.Debug("playlist pick matched nothing", zap.String("response", text))
		return current, nil
	}
	o.cache.Set(keyMood, p.Mood, 0)
	return p, nil
}

// QuickAssist streams a draft, brainstorm or explanation for input.
func (o *Orchestrator) QuickAssist(ctx context.Context, mode AssistMode, input string, onFragment func(string)) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("nothing to assist with")
	}
	prompt, err := AssistPrompt(mode, input)
	if err != nil {
		return "", err
	}
	return o.Ask(ctx, prompt, onFragment)
}

// Ask streams a free-form prompt.
func (o *Orchestrator) Ask(ctx context.Context, prompt string, onFragment func(string)) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.complete(ctx, prompt, onFragment)
}

// Conversion is amount in base converted to target.
type Conversion struct {
	Amount    float64
	Base      string
	Target    string
	Rate      float64
	Converted float64
}

// Convert converts amount using cached rates for base.
func (o *Orchestrator) Convert(ctx context.Context, amount float64, base, target string) (Conversion, error) {
	if amount < 0 {
		return Conversion{}, fmt.Errorf("amount must not be negative, got %v", amount)
	}
	rates, err := o.Rates(ctx, base)
	if err != nil {
		return Conversion{}, err
	}
	converted, rate, ok := rates.Convert(amount, target)
	if !ok {
		return Conversion{}, fmt.Errorf("no %s rate for %s: %w", strings.ToUpper(target), rates.Base, services.ErrUnavailable)
	}
	return Conversion{Amount: amount, Base: rates.Base, Target: strings.ToUpper(target), Rate: rate, Converted: converted}, nil
}

// CommuteURL builds a Google Maps directions link.
func CommuteURL(from, to string) (string, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return "", errors.New("both start and destination are required")
	}
	return "https://www.google.com/maps/dir/" + url.PathEscape(from) + "/" + url.PathEscape(to), nil
}
