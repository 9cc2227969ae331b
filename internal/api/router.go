// Package api provides the HTTP API for MeteoFuse.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/meteofuse/meteofuse/internal/account"
	"github.com/meteofuse/meteofuse/internal/api/handler"
	"github.com/meteofuse/meteofuse/internal/api/middleware"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics
	Aggregator  handler.Aggregator
	Accounts    account.Resolver
	Probes      []handler.ProviderProbe
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "meteofuse-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Probes)
	weatherHandler := handler.NewWeatherHandler(handler.WeatherHandlerConfig{
		Aggregator: cfg.Aggregator,
		Accounts:   cfg.Accounts,
		Logger:     cfg.Logger,
	})

	weatherRateLimit := middleware.RateLimitByIP(middleware.WeatherRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Weather aggregation - every hit fans out to upstream providers,
		// so the limit is tight.
		r.Route("/weather", func(r chi.Router) {
			r.Use(weatherRateLimit)
			r.Get("/city", weatherHandler.GetByCity)
			r.Get("/coordinates", weatherHandler.GetByCoordinates)
		})
	})

	return r
}
