// Package services wraps the external data APIs the dashboard reads:
// weather, news, market quotes and currency rates.
//
// Every failure mode (transport error, non-2xx status, malformed or
// incomplete payload) collapses to ErrUnavailable. Nothing here caches;
// that is the session cache's job.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Annadata-Aniketh/My-Daily-Brief-app-JP/internal/config"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// ErrUnavailable reports that a service could not produce a usable snapshot.
var ErrUnavailable = errors.New("service unavailable")

const (
	DefaultWeatherURL  = "https://api.openweathermap.org/data/2.5"
	DefaultNewsURL     = "https://newsapi.org/v2"
	DefaultMarketURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultCurrencyURL = "https://open.er-api.com/v6/latest"

	userAgent = "nowbrief/1.0"
)

// Options configures a Client. Empty base URLs use the public endpoints.
type Options struct {
	WeatherKey   string
	WeatherUnits string
	NewsKey      string
	NewsCountry  string
	NewsPageSize int
	Feeds        []config.Feed

	WeatherURL  string
	NewsURL     string
	MarketURL   string
	CurrencyURL string

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// OptionsFromConfig maps the user config onto client options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		WeatherKey:   cfg.WeatherKey(),
		WeatherUnits: cfg.Weather.Units,
		NewsKey:      cfg.NewsKey(),
		NewsCountry:  cfg.News.Country,
		NewsPageSize: cfg.GetPageSize(),
		Feeds:        cfg.News.Feeds,
	}
}

type Client struct {
	opts   Options
	http   *http.Client
	parser *gofeed.Parser
	log    *zap.Logger
}

func New(opts Options) *Client {
	if opts.WeatherURL == "" {
		opts.WeatherURL = DefaultWeatherURL
	}
	if opts.NewsURL == "" {
		opts.NewsURL = DefaultNewsURL
	}
	if opts.MarketURL == "" {
		opts.MarketURL = DefaultMarketURL
	}
	if opts.CurrencyURL == "" {
		opts.CurrencyURL = DefaultCurrencyURL
	}
	if opts.WeatherUnits == "" {
		opts.WeatherUnits = "metric"
	}
	if opts.NewsCountry == "" {
		opts.NewsCountry = "us"
	}
	if opts.NewsPageSize <= 0 {
		opts.NewsPageSize = 4
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &Client{opts: opts, http: client, parser: parser, log: logger}
}

// getJSON issues a GET and decodes a 200 response into out.
func (c *Client) getJSON(ctx context.Context, service, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, service, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %d: %s", ErrUnavailable, service, resp.StatusCode, string(b))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decoding: %v", ErrUnavailable, service, err)
	}
	return nil
}

func unavailable(service, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrUnavailable, service, reason)
}
