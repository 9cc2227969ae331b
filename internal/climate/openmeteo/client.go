// Package openmeteo is the secondary provider client. It fetches hourly
// air quality series and daily historical climate series from the two
// open-meteo endpoints and reduces them into the climate domain models.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/meteofuse/meteofuse/internal/climate"
	"github.com/meteofuse/meteofuse/internal/provider/httpcache"
	"github.com/meteofuse/meteofuse/internal/provider/resilience"
	"github.com/meteofuse/meteofuse/internal/querystring"
	"github.com/meteofuse/meteofuse/internal/upstream"
	"github.com/meteofuse/meteofuse/internal/weather"
)

const (
	ProviderName = "open-meteo"

	DefaultAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
	DefaultClimateURL    = "https://climate-api.open-meteo.com/v1/climate"

	// Historical queries span a fixed model window.
	DefaultHistoricalStart = "2000-01-01"
	DefaultHistoricalEnd   = "2025-12-31"

	climateModel = "EC_Earth3P_HR"

	airQualityFields = "european_aqi,european_aqi_pm2_5,european_aqi_pm10,european_aqi_no2,european_aqi_o3,european_aqi_so2"
	historicalFields = "temperature_2m_mean,windspeed_10m_mean,relative_humidity_2m_mean,precipitation_sum,cloudcover_mean,pressure_msl_mean"

	airQualityTTL = time.Hour
	historicalTTL = 24 * time.Hour
)

// Fetcher retrieves a URL, typically through the shared response cache.
type Fetcher interface {
	Get(ctx context.Context, url string, ttl time.Duration) (httpcache.Response, error)
}

// ClientConfig configures an open-meteo Client. Zero-value fields fall back
// to production defaults.
type ClientConfig struct {
	AirQualityURL   string
	ClimateURL      string
	HistoricalStart string
	HistoricalEnd   string

	Fetcher Fetcher
	Logger  zerolog.Logger

	// ReferenceDate supplies "today" for the historical reduction.
	// Defaults to time.Now.
	ReferenceDate func() time.Time
}

// Client talks to the open-meteo air quality and climate APIs.
type Client struct {
	airQualityURL   string
	climateURL      string
	historicalStart string
	historicalEnd   string

	fetcher Fetcher
	logger  zerolog.Logger
	refDate func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.AirQualityURL == "" {
		cfg.AirQualityURL = DefaultAirQualityURL
	}
	if cfg.ClimateURL == "" {
		cfg.ClimateURL = DefaultClimateURL
	}
	if cfg.HistoricalStart == "" {
		cfg.HistoricalStart = DefaultHistoricalStart
	}
	if cfg.HistoricalEnd == "" {
		cfg.HistoricalEnd = DefaultHistoricalEnd
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = httpcache.New(httpcache.Config{
			Doer: resilience.NewClient(resilience.ClientConfig{Name: ProviderName}),
		})
	}
	if cfg.ReferenceDate == nil {
		cfg.ReferenceDate = time.Now
	}
	return &Client{
		airQualityURL:   cfg.AirQualityURL,
		climateURL:      cfg.ClimateURL,
		historicalStart: cfg.HistoricalStart,
		historicalEnd:   cfg.HistoricalEnd,
		fetcher:         cfg.Fetcher,
		logger:          cfg.Logger.With().Str("provider", ProviderName).Logger(),
		refDate:         cfg.ReferenceDate,
	}
}

func (c *Client) Name() string {
	return ProviderName
}

// HourlySeries is the raw hourly air quality series, column per pollutant.
// Columns are positionally aligned with Time; a null reading decodes to 0.
type HourlySeries struct {
	Time []string  `json:"time"`
	AQI  []float64 `json:"european_aqi"`
	PM25 []float64 `json:"european_aqi_pm2_5"`
	PM10 []float64 `json:"european_aqi_pm10"`
	NO2  []float64 `json:"european_aqi_no2"`
	O3   []float64 `json:"european_aqi_o3"`
	SO2  []float64 `json:"european_aqi_so2"`
}

// DailySeries is the raw daily climate model series.
type DailySeries struct {
	Time        []string  `json:"time"`
	Temperature []float64 `json:"temperature_2m_mean"`
	WindSpeed   []float64 `json:"windspeed_10m_mean"`
	Humidity    []float64 `json:"relative_humidity_2m_mean"`
	Rain        []float64 `json:"precipitation_sum"`
	Clouds      []float64 `json:"cloudcover_mean"`
	Pressure    []float64 `json:"pressure_msl_mean"`
}

type airQualityResponse struct {
	Error  bool         `json:"error"`
	Hourly HourlySeries `json:"hourly"`
}

type climateResponse struct {
	Error bool        `json:"error"`
	Daily DailySeries `json:"daily"`
}

// GetAirQuality returns the per-day pollutant maxima around the given
// coordinates for the provider's forecast window.
func (c *Client) GetAirQuality(ctx context.Context, lat, lon float64) (*climate.AirQuality, error) {
	params := querystring.New().AddFloat("latitude", lat).AddFloat("longitude", lon)
	url := fmt.Sprintf("%s?%s&hourly=%s", c.airQualityURL, params.Encode(), airQualityFields)

	body, err := c.fetch(ctx, url, airQualityTTL, "air quality")
	if err != nil {
		return nil, err
	}

	var resp airQualityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &upstream.ParseError{Provider: ProviderName, Err: err}
	}
	if resp.Error {
		return nil, &upstream.ReportedError{
			Provider:   ProviderName,
			StatusCode: http.StatusBadRequest,
			Message:    "Cannot fetch air quality data for this location",
		}
	}
	return ReduceAirQuality(resp.Hourly), nil
}

// GetHistorical returns one climate model entry per year for the calendar
// date of the reference clock, at the given coordinates.
func (c *Client) GetHistorical(ctx context.Context, lat, lon float64, units weather.UnitSystem) (climate.Stats, error) {
	params := querystring.New().AddFloat("latitude", lat).AddFloat("longitude", lon)
	url := fmt.Sprintf("%s?%s&start_date=%s&end_date=%s&models=%s&daily=%s%s",
		c.climateURL, params.Encode(), c.historicalStart, c.historicalEnd,
		climateModel, historicalFields, unitsFragment(units))

	body, err := c.fetch(ctx, url, historicalTTL, "historical")
	if err != nil {
		return nil, err
	}

	var resp climateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &upstream.ParseError{Provider: ProviderName, Err: err}
	}
	if resp.Error {
		return nil, &upstream.ReportedError{
			Provider:   ProviderName,
			StatusCode: http.StatusBadRequest,
			Message:    "Cannot fetch historical data for this location",
		}
	}
	return ReduceHistorical(resp.Daily, c.refDate()), nil
}

func (c *Client) fetch(ctx context.Context, url string, ttl time.Duration, kind string) ([]byte, error) {
	resp, err := c.fetcher.Get(ctx, url, ttl)
	if err != nil {
		c.logger.Error().Err(err).Str("kind", kind).Msg("secondary provider request failed")
		return nil, &upstream.RequestError{Provider: ProviderName, Err: err}
	}
	return resp.Body, nil
}

func unitsFragment(units weather.UnitSystem) string {
	if units == weather.Imperial {
		return "&temperature_unit=fahrenheit&windspeed_unit=mph"
	}
	return "&windspeed_unit=ms"
}
