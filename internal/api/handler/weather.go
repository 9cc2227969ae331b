// Package handler provides HTTP handlers for the MeteoFuse API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/meteofuse/meteofuse/internal/account"
	"github.com/meteofuse/meteofuse/internal/aggregate"
	"github.com/meteofuse/meteofuse/internal/api/response"
	"github.com/meteofuse/meteofuse/internal/upstream"
	"github.com/meteofuse/meteofuse/internal/weather"
)

// Aggregator is the aggregation surface the handler needs.
type Aggregator interface {
	Aggregate(ctx context.Context, loc weather.Location, units weather.UnitSystem, tier account.Tier) (*aggregate.Result, error)
}

// WeatherHandler handles the weather aggregation endpoints.
type WeatherHandler struct {
	aggregator Aggregator
	accounts   account.Resolver
	logger     zerolog.Logger
}

// WeatherHandlerConfig holds the dependencies for the weather handler.
type WeatherHandlerConfig struct {
	Aggregator Aggregator
	Accounts   account.Resolver
	Logger     zerolog.Logger
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(cfg WeatherHandlerConfig) *WeatherHandler {
	return &WeatherHandler{
		aggregator: cfg.Aggregator,
		accounts:   cfg.Accounts,
		logger:     cfg.Logger.With().Str("handler", "weather").Logger(),
	}
}

// GetByCity handles GET /v1/weather/city?city=..&units=.. - weather for a
// named place.
func (h *WeatherHandler) GetByCity(w http.ResponseWriter, r *http.Request) {
	loc, err := weather.ByName(r.URL.Query().Get("city"))
	if err != nil {
		response.BadRequest(w, r, "city is required")
		return
	}
	h.serve(w, r, loc)
}

// GetByCoordinates handles GET /v1/weather/coordinates?lat=..&lon=..&units=..
// - weather for a coordinate pair.
func (h *WeatherHandler) GetByCoordinates(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, lonErr := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if latErr != nil || lonErr != nil {
		response.BadRequest(w, r, "lat and lon must be decimal coordinates")
		return
	}

	loc, err := weather.ByCoordinates(lat, lon)
	if err != nil {
		response.BadRequest(w, r, "lat must be in [-90, 90] and lon in [-180, 180]")
		return
	}
	h.serve(w, r, loc)
}

func (h *WeatherHandler) serve(w http.ResponseWriter, r *http.Request, loc weather.Location) {
	units := weather.ParseUnitSystem(r.URL.Query().Get("units"))

	tier, err := h.accounts.ResolveTier(r.Context(), bearerToken(r))
	if err != nil {
		switch {
		case errors.Is(err, account.ErrCredentialExpired):
			response.Unauthorized(w, r, "subscription token has expired")
		case errors.Is(err, account.ErrInvalidCredential):
			response.Unauthorized(w, r, "invalid subscription token")
		case errors.Is(err, account.ErrResolverUnavailable):
			response.ServiceUnavailable(w, r, "account service unavailable")
		default:
			response.InternalError(w, r, "could not resolve subscription tier")
		}
		return
	}

	result, err := h.aggregator.Aggregate(r.Context(), loc, units, tier)
	if err != nil {
		h.writeAggregateError(w, r, loc, err)
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// writeAggregateError maps provider failures onto API responses. Errors a
// provider reported keep their status code and message; transport and
// decoding failures become a 502.
func (h *WeatherHandler) writeAggregateError(w http.ResponseWriter, r *http.Request, loc weather.Location, err error) {
	log := h.logger.With().Stringer("location", loc).Logger()

	var reported *upstream.ReportedError
	if errors.As(err, &reported) {
		log.Warn().
			Str("provider", reported.Provider).
			Int("status", reported.StatusCode).
			Str("message", reported.Message).
			Msg("provider reported an error")
		response.UpstreamError(w, r, reported.StatusCode, reported.Message)
		return
	}

	var requestErr *upstream.RequestError
	if errors.As(err, &requestErr) {
		log.Error().Err(err).Str("provider", requestErr.Provider).Msg("provider request failed")
		response.BadGateway(w, r, "weather provider is unreachable")
		return
	}

	var parseErr *upstream.ParseError
	if errors.As(err, &parseErr) {
		log.Error().Err(err).Str("provider", parseErr.Provider).Msg("provider response unreadable")
		response.BadGateway(w, r, "weather provider returned an unreadable response")
		return
	}

	log.Error().Err(err).Msg("aggregation failed")
	response.InternalError(w, r, "an unexpected error occurred")
}

// bearerToken extracts the credential from the Authorization header.
// Returns "" for anonymous requests.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
