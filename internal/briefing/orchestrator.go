// Package briefing decides when to fetch dashboard data, when to generate AI
// text, and when to re-synthesize audio. All state lives in a session.Cache
// so a refresh is a single InvalidateAll.
package briefing

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/config"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/fingerprint"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/llm"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/session"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/speech"
)

// DataSource is the subset of services.Client the orchestrator needs.
type DataSource interface {
	Weather(ctx context.Context, city string) (*services.WeatherSnapshot, error)
	News(ctx context.Context) (*services.NewsSnapshot, error)
	Markets(ctx context.Context, instruments []config.Instrument) services.MarketSnapshot
	Rates(ctx context.Context, base string) (*services.RatesSnapshot, error)
}

// TTLs for fetched data. Zero means no expiry.
type TTLs struct {
	Weather time.Duration
	News    time.Duration
	Markets time.Duration
	Rates   time.Duration
}

func TTLsFromConfig(cfg *config.Config) TTLs {
	return TTLs{
		Weather: cfg.WeatherTTL(),
		News:    cfg.NewsTTL(),
		Markets: cfg.MarketTTL(),
		Rates:   cfg.CurrencyTTL(),
	}
}

type Options struct {
	Cache       *session.Cache
	Data        DataSource
	LLM         llm.Provider
	Speech      speech.Synthesizer // nil disables audio
	Language    string
	Instruments []config.Instrument
	TTL         TTLs
	Rand        *rand.Rand
	Logger      *zap.Logger
}

// Orchestrator runs one pass at a time against a single session.
type Orchestrator struct {
	cache       *session.Cache
	data        DataSource
	llm         llm.Provider
	tts         speech.Synthesizer
	lang        string
	instruments []config.Instrument
	ttl         TTLs
	rnd         *rand.Rand
	log         *zap.Logger

	mu        sync.Mutex
	streaming atomic.Bool
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		cache:       opts.Cache,
		data:        opts.Data,
		llm:         opts.LLM,
		tts:         opts.Speech,
		lang:        opts.Language,
		instruments: opts.Instruments,
		ttl:         opts.TTL,
		rnd:         opts.Rand,
		log:         opts.Logger,
	}
	if o.cache == nil {
		o.cache = session.New()
	}
	if o.lang == "" {
		o.lang = "en"
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return o
}

// State reads the current briefing state without triggering any work.
func (o *Orchestrator) State() State {
	var s State
	s.Weather, _ = session.Lookup[*services.WeatherSnapshot](o.cache, keyWeather)
	s.News, _ = session.Lookup[*services.NewsSnapshot](o.cache, keyNews)
	s.Text, _ = session.Lookup[string](o.cache, keyText)
	s.Audio, _ = session.Lookup[[]byte](o.cache, keyAudio)
	s.AudioSourceHash, _ = session.Lookup[fingerprint.Digest](o.cache, keyAudioHash)

	s.Phase = phaseOf(o.streaming.Load(), s.Text, s.Weather != nil && s.News != nil)
	return s
}

// phaseOf derives the cycle phase. Cached text wins over data presence:
// expired weather or news never hides a briefing that was already written.
func phaseOf(streaming bool, text string, haveData bool) Phase {
	switch {
	case streaming:
		return Streaming
	case text != "":
		return Cached
	case haveData:
		return DataReady
	default:
		return NoData
	}
}

// LoadWeather returns the cached snapshot for city, fetching it when absent
// or when a different city was loaded. Failures leave the section unloaded.
func (o *Orchestrator) LoadWeather(ctx context.Context, city string) (*services.WeatherSnapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if w, ok := session.Lookup[*services.WeatherSnapshot](o.cache, keyWeather); ok && strings.EqualFold(w.City, strings.TrimSpace(city)) {
		return w, nil
	}
	w, err := o.data.Weather(ctx, city)
	if err != nil {
		o.log.Warn("weather not loaded", zap.String("city", city), zap.Error(err))
		return nil, err
	}
	o.cache.Set(keyWeather, w, o.ttl.Weather)
	// A new city means a new greeting; the briefing text is kept.
	o.cache.Delete(keyGreeting)
	return w, nil
}

// LoadNews returns the cached headlines, fetching them when absent.
func (o *Orchestrator) LoadNews(ctx context.Context) (*services.NewsSnapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	v, err := o.cache.GetOrLoad(ctx, keyNews, o.ttl.News, func(ctx context.Context) (any, error) {
		return o.data.News(ctx)
	})
	if err != nil {
		o.log.Warn("news not loaded", zap.Error(err))
		return nil, err
	}
	return v.(*services.NewsSnapshot), nil
}

// LoadMarkets returns the cached quote batch, fetching it when absent. The
// batch itself never fails; individual quotes may be unavailable.
func (o *Orchestrator) LoadMarkets(ctx context.Context) services.MarketSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	if m, ok := session.Lookup[services.MarketSnapshot](o.cache, keyMarkets); ok {
		return m
	}
	m := o.data.Markets(ctx, o.instruments)
	if len(m.Available()) < len(m) {
		o.log.Warn("some quotes unavailable", zap.Int("available", len(m.Available())), zap.Int("requested", len(m)))
	}
	o.cache.Set(keyMarkets, m, o.ttl.Markets)
	return m
}

// Markets returns the loaded quote batch without fetching.
func (o *Orchestrator) Markets() (services.MarketSnapshot, bool) {
	return session.Lookup[services.MarketSnapshot](o.cache, keyMarkets)
}

// Rates returns exchange rates for base, cached per base currency.
func (o *Orchestrator) Rates(ctx context.Context, base string) (*services.RatesSnapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	v, err := o.cache.GetOrLoad(ctx, ratesKey(base), o.ttl.Rates, func(ctx context.Context) (any, error) {
		return o.data.Rates(ctx, base)
	})
	if err != nil {
		o.log.Warn("rates not loaded", zap.String("base", base), zap.Error(err))
		return nil, err
	}
	return v.(*services.RatesSnapshot), nil
}

// PassResult is what one briefing pass produced.
type PassResult struct {
	Phase Phase
	Text  string
	Audio []byte
	// Generated is set when this pass ran a completion.
	Generated bool
	// Synthesized is set when this pass attempted speech synthesis.
	Synthesized bool
	// Degraded holds the swallowed failure behind a fallback, if any.
	Degraded error
}

// Pass runs one briefing cycle. Cached text is re-rendered as is, even
// after the weather or news entries expire. Without cached text and with
// weather or news missing it returns the placeholder and contacts nothing.
// Otherwise it streams a new briefing, calling onFragment with the
// accumulated text; a failed or empty completion caches Fallback instead,
// and only Refresh clears it. Audio is synthesized whenever the text's
// fingerprint differs from the last attempt.
func (o *Orchestrator) Pass(ctx context.Context, onFragment func(string)) PassResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	var res PassResult
	text, ok := session.Lookup[string](o.cache, keyText)
	if !ok {
		w, okW := session.Lookup[*services.WeatherSnapshot](o.cache, keyWeather)
		n, okN := session.Lookup[*services.NewsSnapshot](o.cache, keyNews)
		if !okW || !okN {
			return PassResult{Phase: phaseOf(false, "", false), Text: Placeholder}
		}

		res.Generated = true
		o.streaming.Store(true)
		generated, err := o.complete(ctx, Prompt(w, n), onFragment)
		o.streaming.Store(false)
		if err != nil && ctx.Err() != nil {
			// Abandoned by the caller; leave the cycle in DataReady.
			return PassResult{Phase: phaseOf(false, "", true), Text: Thinking, Generated: true, Degraded: err}
		}
		if err == nil && strings.TrimSpace(generated) == "" {
			err = errEmptyBriefing
		}
		if err != nil {
			o.log.Warn("briefing generation failed", zap.Error(err))
			generated = Fallback
			res.Degraded = err
		}
		text = generated
		o.cache.Set(keyText, text, 0)
	}
	res.Phase = phaseOf(false, text, true)
	res.Text = text
	res.Audio, res.Synthesized = o.syncAudio(ctx, text)
	return res
}

func (o *Orchestrator) syncAudio(ctx context.Context, text string) ([]byte, bool) {
	if o.tts == nil || text == "" {
		return nil, false
	}
	digest := fingerprint.Of(text)
	if last, ok := session.Lookup[fingerprint.Digest](o.cache, keyAudioHash); ok && last == digest {
		audio, _ := session.Lookup[[]byte](o.cache, keyAudio)
		return audio, false
	}

	// Recorded before the attempt so a failure is not retried for this text.
	o.cache.Set(keyAudioHash, digest, 0)
	audio, err := o.tts.Synthesize(ctx, text, o.lang)
	if err != nil {
		o.cache.Delete(keyAudio)
		o.log.Warn("briefing audio skipped", zap.String("text_hash", digest.String()), zap.Error(err))
		return nil, true
	}
	o.cache.Set(keyAudio, audio, 0)
	return audio, true
}

// Refresh drops every cached entry, returning the session to NoData.
func (o *Orchestrator) Refresh() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache.InvalidateAll()
	o.log.Info("session refreshed")
}

// complete streams prompt to the backend. A missing provider behaves like
// an unreachable one.
func (o *Orchestrator) complete(ctx context.Context, prompt string, onFragment func(string)) (string, error) {
	if o.llm == nil {
		return "", fmt.Errorf("no completion provider: %w", llm.ErrBackendUnreachable)
	}
	return llm.Consume(ctx, o.llm, prompt, onFragment)
}
