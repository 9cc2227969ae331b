// Package main provides the entrypoint for the MeteoFuse API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/meteofuse/meteofuse/internal/account"
	"github.com/meteofuse/meteofuse/internal/aggregate"
	"github.com/meteofuse/meteofuse/internal/api"
	"github.com/meteofuse/meteofuse/internal/api/handler"
	"github.com/meteofuse/meteofuse/internal/api/middleware"
	"github.com/meteofuse/meteofuse/internal/climate/openmeteo"
	"github.com/meteofuse/meteofuse/internal/provider/httpcache"
	"github.com/meteofuse/meteofuse/internal/provider/resilience"
	"github.com/meteofuse/meteofuse/internal/telemetry"
	"github.com/meteofuse/meteofuse/internal/weather/openweathermap"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "meteofuse-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting MeteoFuse API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1)
	}

	// Primary provider: OpenWeatherMap
	owmAPIKey := os.Getenv("OPENWEATHERMAP_API_KEY")
	if owmAPIKey == "" {
		log.Warn().Msg("OPENWEATHERMAP_API_KEY not set - weather requests will fail")
	}

	owmTransport := resilience.NewClient(resilience.ClientConfig{Name: openweathermap.ProviderName})
	owmClient := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:  owmAPIKey,
		Fetcher: httpcache.New(httpcache.Config{Doer: owmTransport, Logger: log}),
		Logger:  log,
	})
	log.Info().Msg("openweathermap client initialized")

	// Secondary provider: open-meteo
	omTransport := resilience.NewClient(resilience.ClientConfig{Name: openmeteo.ProviderName})
	omClient := openmeteo.NewClient(openmeteo.ClientConfig{
		Fetcher: httpcache.New(httpcache.Config{Doer: omTransport, Logger: log}),
		Logger:  log,
	})
	log.Info().Msg("open-meteo client initialized")

	// Tier resolution (get signing key from environment)
	tierSigningKey := os.Getenv("TIER_SIGNING_KEY")
	if tierSigningKey == "" {
		tierSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default tier signing key - not secure for production")
	}
	accounts := account.NewJWTResolver(account.JWTResolverConfig{
		SigningKey: tierSigningKey,
		Issuer:     os.Getenv("TIER_TOKEN_ISSUER"),
	})

	aggregator := aggregate.NewService(aggregate.ServiceConfig{
		Weather:    owmClient,
		AirQuality: omClient,
		Historical: omClient,
		Logger:     log,
	})
	log.Info().Msg("aggregation service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		Metrics:     metrics,
		Aggregator:  aggregator,
		Accounts:    accounts,
		Probes: []handler.ProviderProbe{
			{Name: openweathermap.ProviderName, State: func() string { return owmTransport.State().String() }},
			{Name: openmeteo.ProviderName, State: func() string { return omTransport.State().String() }},
		},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("server stopped")
}
