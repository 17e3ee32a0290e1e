package cmd

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/briefing"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/config"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/llm"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/logging"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/session"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/speech"
)

// deps is everything a command needs, built from the config file.
type deps struct {
	cfg      *config.Config
	log      *zap.Logger
	provider llm.Provider
	orch     *briefing.Orchestrator
}

func setup(ctx context.Context) (*deps, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(config.LogPath(), cfg.LogLevel)

	opts := services.OptionsFromConfig(cfg)
	opts.Logger = log
	client := services.New(opts)

	// A broken AI setup degrades to fallback text rather than failing startup.
	provider, err := llm.New(ctx, cfg.AI, cfg.AIKey())
	if err != nil {
		log.Warn("completion provider unavailable", zap.String("provider", cfg.AI.Provider), zap.Error(err))
	}

	var synth speech.Synthesizer
	if cfg.Speech.Enabled {
		synth = speech.NewGoogle("")
	}

	orch := briefing.New(briefing.Options{
		Cache:       session.New(),
		Data:        client,
		LLM:         provider,
		Speech:      synth,
		Language:    cfg.SpeechLanguage(),
		Instruments: cfg.Markets,
		TTL:         briefing.TTLsFromConfig(cfg),
		Rand:        rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
		Logger:      log,
	})

	log.Info("session started", zap.String("version", version), zap.String("provider", providerName(provider)))
	return &deps{cfg: cfg, log: log, provider: provider, orch: orch}, nil
}

func providerName(p llm.Provider) string {
	if p == nil {
		return "none"
	}
	return p.Name()
}

// city resolves --city, then the configured default.
func (r *deps) city() string {
	if flagCity != "" {
		return flagCity
	}
	return r.cfg.City
}
