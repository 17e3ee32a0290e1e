package briefing

import (
	"strings"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/fingerprint"
	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/services"
)

// Phase is where the briefing cycle currently stands.
type Phase int

const (
	NoData Phase = iota
	DataReady
	Streaming
	Cached
)

func (p Phase) String() string {
	switch p {
	case NoData:
		return "no data"
	case DataReady:
		return "data ready"
	case Streaming:
		return "streaming"
	case Cached:
		return "cached"
	default:
		return "unknown"
	}
}

const (
	Placeholder = "Please load Weather and News to generate your AI Briefing."
	Thinking    = "Thinking..."
	Fallback    = "Ready to conquer the day? (AI Connection Issue)"
)

// Session cache keys.
const (
	keyWeather   = "weather"
	keyNews      = "news"
	keyMarkets   = "markets"
	keyText      = "briefing/text"
	keyAudio     = "briefing/audio"
	keyAudioHash = "briefing/audio_hash"
	keyGreeting  = "greeting"
	keyFunFact   = "fun_fact"
	keyMood      = "vibe/mood"
)

func ratesKey(base string) string {
	return "rates/" + strings.ToUpper(strings.TrimSpace(base))
}

// State is a read-only view of the session's briefing data.
type State struct {
	Phase           Phase
	Weather         *services.WeatherSnapshot
	News            *services.NewsSnapshot
	Text            string
	Audio           []byte
	AudioSourceHash fingerprint.Digest
}

// HasAudio reports whether synthesized audio matches the current text.
func (s State) HasAudio() bool {
	return len(s.Audio) > 0 && s.Text != "" && s.AudioSourceHash == fingerprint.Of(s.Text)
}
