package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type WeatherConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
	Units  string `yaml:"units,omitempty"`
}

type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type NewsConfig struct {
	APIKey   string `yaml:"api_key,omitempty"`
	Country  string `yaml:"country,omitempty"`
	PageSize int    `yaml:"page_size,omitempty"`
	Feeds    []Feed `yaml:"feeds,omitempty"`
}

type Instrument struct {
	Label  string `yaml:"label"`
	Symbol string `yaml:"symbol"`
}

type CurrencyConfig struct {
	Base    string   `yaml:"base,omitempty"`
	Target  string   `yaml:"target,omitempty"`
	Choices []string `yaml:"choices,omitempty"`
}

type AIConfig struct {
	Provider string `yaml:"provider"` // "ollama" or "gemini"
	Endpoint string `yaml:"endpoint,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

type SpeechConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Language string `yaml:"language,omitempty"`
}

type CacheConfig struct {
	WeatherTTL  string `yaml:"weather_ttl,omitempty"`
	NewsTTL     string `yaml:"news_ttl,omitempty"`
	MarketTTL   string `yaml:"market_ttl,omitempty"`
	CurrencyTTL string `yaml:"currency_ttl,omitempty"`
}

type Config struct {
	City     string         `yaml:"city"`
	Cities   []string       `yaml:"cities,omitempty"`
	Weather  WeatherConfig  `yaml:"weather"`
	News     NewsConfig     `yaml:"news"`
	Markets  []Instrument   `yaml:"markets"`
	Currency CurrencyConfig `yaml:"currency"`
	AI       AIConfig       `yaml:"ai"`
	Speech   SpeechConfig   `yaml:"speech"`
	Cache    CacheConfig    `yaml:"cache"`
	LogLevel string         `yaml:"log_level,omitempty"`
}

// WeatherKey returns the resolved OpenWeatherMap key (config or env var).
func (c *Config) WeatherKey() string {
	if c.Weather.APIKey != "" {
		return c.Weather.APIKey
	}
	return os.Getenv("WEATHER_API_KEY")
}

// NewsKey returns the resolved NewsAPI key (config or env var).
func (c *Config) NewsKey() string {
	if c.News.APIKey != "" {
		return c.News.APIKey
	}
	return os.Getenv("NEWS_API_KEY")
}

// AIKey returns the resolved Gemini key. Ollama needs none.
func (c *Config) AIKey() string {
	if c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	return os.Getenv("GEMINI_API_KEY")
}

func (c *Config) WeatherTTL() time.Duration  { return parseDuration(c.Cache.WeatherTTL, time.Hour) }
func (c *Config) NewsTTL() time.Duration     { return parseDuration(c.Cache.NewsTTL, time.Hour) }
func (c *Config) MarketTTL() time.Duration   { return parseDuration(c.Cache.MarketTTL, time.Hour) }
func (c *Config) CurrencyTTL() time.Duration { return parseDuration(c.Cache.CurrencyTTL, 5*time.Minute) }

// GetPageSize returns the number of headlines to request, defaulting to 4.
func (c *Config) GetPageSize() int {
	if c.News.PageSize <= 0 {
		return 4
	}
	return c.News.PageSize
}

// TargetCurrency returns the conversion target, defaulting to INR.
func (c *Config) TargetCurrency() string {
	if c.Currency.Target == "" {
		return "INR"
	}
	return c.Currency.Target
}

func (c *Config) SpeechLanguage() string {
	if c.Speech.Language == "" {
		return "en"
	}
	return c.Speech.Language
}

// ParseDuration accepts Go durations plus the "Nd" day syntax.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "nowbrief", "config.yaml")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "nowbrief", "nowbrief.log")
}

// AudioDir is where synthesized briefings are written before playback.
func AudioDir() string {
	return filepath.Join(xdg.CacheHome, "nowbrief")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: embedded defaults still apply
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Unmarshal over the defaults so omitted sections keep their values
	cfg := *defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "ollama", "gemini":
	default:
		return fmt.Errorf("ai: unknown provider %q (valid: ollama, gemini)", cfg.AI.Provider)
	}
	for i, m := range cfg.Markets {
		if m.Label == "" || m.Symbol == "" {
			return fmt.Errorf("market %d: label and symbol are required", i)
		}
	}
	for _, f := range cfg.News.Feeds {
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.Name)
		}
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
		}
	}
	return nil
}
