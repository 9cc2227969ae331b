// Package aggregate composes the per-provider fetches into the single
// weather response served to callers. The free tier gets current conditions
// and the 3-hourly forecast; the paid tier additionally gets air quality and
// historical climate data, fetched concurrently once the primary provider
// has resolved the location's coordinates.
package aggregate

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/meteofuse/meteofuse/internal/account"
	"github.com/meteofuse/meteofuse/internal/climate"
	"github.com/meteofuse/meteofuse/internal/weather"
)

// WeatherProvider is the primary provider surface the aggregation needs.
type WeatherProvider interface {
	GetCurrentWeather(ctx context.Context, loc weather.Location, units weather.UnitSystem) (*weather.CurrentWeather, error)
	GetForecast(ctx context.Context, loc weather.Location, units weather.UnitSystem) (*weather.Forecast, error)
}

// AirQualityProvider fetches per-day pollutant maxima for coordinates.
type AirQualityProvider interface {
	GetAirQuality(ctx context.Context, lat, lon float64) (*climate.AirQuality, error)
}

// HistoricalProvider fetches the yearly climate series for coordinates.
type HistoricalProvider interface {
	GetHistorical(ctx context.Context, lat, lon float64, units weather.UnitSystem) (climate.Stats, error)
}

// Result is the composite response. AirQuality and Historical are only set
// for paid-tier requests. Both are pointers so the free tier omits the keys
// entirely while a paid-tier reduction that matched nothing still marshals
// as an empty value rather than disappearing.
type Result struct {
	Weather  *weather.CurrentWeather `json:"weather"`
	Forecast *weather.Forecast       `json:"forecast"`
	Units    weather.DisplayUnits    `json:"units"`

	AirQuality *climate.AirQuality `json:"air_quality,omitempty"`
	Historical *climate.Stats      `json:"historical,omitempty"`
}

// ServiceConfig holds the dependencies for the aggregation service.
type ServiceConfig struct {
	Weather    WeatherProvider
	AirQuality AirQualityProvider
	Historical HistoricalProvider
	Logger     zerolog.Logger
}

// Service fans requests out to the providers and assembles the composite.
type Service struct {
	weather    WeatherProvider
	airQuality AirQualityProvider
	historical HistoricalProvider
	logger     zerolog.Logger
}

func NewService(cfg ServiceConfig) *Service {
	return &Service{
		weather:    cfg.Weather,
		airQuality: cfg.AirQuality,
		historical: cfg.Historical,
		logger:     cfg.Logger.With().Str("component", "aggregate").Logger(),
	}
}

// Aggregate builds the composite result for a location. Any provider failure
// aborts the whole request; partial composites are never returned.
//
// The paid-tier fetches use the coordinates from the current weather
// response, not the caller's query: only the primary provider resolves place
// names to coordinates.
func (s *Service) Aggregate(ctx context.Context, loc weather.Location, units weather.UnitSystem, tier account.Tier) (*Result, error) {
	current, err := s.weather.GetCurrentWeather(ctx, loc, units)
	if err != nil {
		return nil, err
	}

	forecast, err := s.weather.GetForecast(ctx, loc, units)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Weather:  current,
		Forecast: forecast,
		Units:    units.Display(),
	}

	if tier != account.TierPaid {
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		aq, err := s.airQuality.GetAirQuality(gctx, current.Lat, current.Lon)
		if err != nil {
			return err
		}
		result.AirQuality = aq
		return nil
	})
	g.Go(func() error {
		hist, err := s.historical.GetHistorical(gctx, current.Lat, current.Lon, units)
		if err != nil {
			return err
		}
		if hist == nil {
			hist = climate.Stats{}
		}
		result.Historical = &hist
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}
