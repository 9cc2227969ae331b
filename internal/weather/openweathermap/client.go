// Package openweathermap implements the primary weather provider: current
// conditions and the 5-day/3-hour forecast.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/meteofuse/meteofuse/internal/provider/httpcache"
	"github.com/meteofuse/meteofuse/internal/provider/resilience"
	"github.com/meteofuse/meteofuse/internal/querystring"
	"github.com/meteofuse/meteofuse/internal/upstream"
	"github.com/meteofuse/meteofuse/internal/weather"
)

const (
	// ProviderName identifies this provider in errors and logs.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// Freshness windows per endpoint. Current conditions move faster than
	// the forecast model output, so they expire sooner.
	currentWeatherTTL = 600 * time.Second
	forecastTTL       = 3600 * time.Second
)

// Fetcher abstracts the cached transport layer.
type Fetcher interface {
	Get(ctx context.Context, url string, ttl time.Duration) (httpcache.Response, error)
}

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL overrides the API base URL (tests point it at a local server).
	BaseURL string

	// Fetcher is the cached transport. If nil, a response cache over a
	// resilient client with defaults is created.
	Fetcher Fetcher

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is the OpenWeatherMap API client.
type Client struct {
	apiKey  string
	baseURL string
	fetcher Fetcher
	logger  zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	fetcher := cfg.Fetcher
	if fetcher == nil {
		fetcher = httpcache.New(httpcache.Config{
			Doer:   resilience.NewClient(resilience.ClientConfig{Name: ProviderName}),
			Logger: cfg.Logger,
		})
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		fetcher: fetcher,
		logger:  cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetCurrentWeather fetches and parses current conditions for a location.
func (c *Client) GetCurrentWeather(ctx context.Context, loc weather.Location, units weather.UnitSystem) (*weather.CurrentWeather, error) {
	body, err := c.fetch(ctx, "weather", loc, units, currentWeatherTTL)
	if err != nil {
		return nil, err
	}
	return parseCurrentWeather(body)
}

// GetForecast fetches and parses the 5-day/3-hour forecast for a location.
func (c *Client) GetForecast(ctx context.Context, loc weather.Location, units weather.UnitSystem) (*weather.Forecast, error) {
	body, err := c.fetch(ctx, "forecast", loc, units, forecastTTL)
	if err != nil {
		return nil, err
	}
	return parseForecast(body)
}

// fetch retrieves one endpoint's raw body, surfacing the provider's error
// envelope as a typed error when present.
func (c *Client) fetch(ctx context.Context, endpoint string, loc weather.Location, units weather.UnitSystem, ttl time.Duration) ([]byte, error) {
	params := querystring.New()
	if name, ok := loc.Name(); ok {
		params.Add("q", name)
	} else if lat, lon, ok := loc.Coordinates(); ok {
		params.AddFloat("lat", lat).AddFloat("lon", lon)
	}
	params.Add("units", string(units))

	url := fmt.Sprintf("%s/%s?appid=%s&%s", c.baseURL, endpoint, c.apiKey, params.Encode())

	c.logger.Debug().
		Str("provider", ProviderName).
		Str("endpoint", endpoint).
		Stringer("location", loc).
		Msg("fetching from primary provider")

	resp, err := c.fetcher.Get(ctx, url, ttl)
	if err != nil {
		return nil, &upstream.RequestError{Provider: ProviderName, Err: err}
	}

	if reported := errorEnvelope(resp.Body); reported != nil {
		return nil, reported
	}

	return resp.Body, nil
}

// errorEnvelope detects the provider's error shape: a numeric (or
// numeric-string) "cod" in [400,600) with a "message". The status code and
// message are preserved verbatim for the caller-facing translation.
func errorEnvelope(body []byte) *upstream.ReportedError {
	var envelope struct {
		Cod     json.Number `json:"cod"`
		Message string      `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	code, err := envelope.Cod.Int64()
	if err != nil {
		return nil
	}
	if code < 400 || code >= 600 {
		return nil
	}

	return &upstream.ReportedError{
		Provider:   ProviderName,
		StatusCode: int(code),
		Message:    envelope.Message,
	}
}
