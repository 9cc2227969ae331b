package openmeteo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteofuse/meteofuse/internal/climate"
	"github.com/meteofuse/meteofuse/internal/climate/openmeteo"
	"github.com/meteofuse/meteofuse/internal/provider/httpcache"
	"github.com/meteofuse/meteofuse/internal/upstream"
	"github.com/meteofuse/meteofuse/internal/weather"
)

func newClient(t *testing.T, serverURL string) *openmeteo.Client {
	t.Helper()
	return openmeteo.NewClient(openmeteo.ClientConfig{
		AirQualityURL: serverURL + "/air-quality",
		ClimateURL:    serverURL + "/climate",
		Fetcher:       httpcache.New(httpcache.Config{Doer: http.DefaultClient, Logger: zerolog.Nop()}),
		Logger:        zerolog.Nop(),
		ReferenceDate: func() time.Time {
			return time.Date(2023, time.May, 1, 9, 0, 0, 0, time.UTC)
		},
	})
}

func TestClient_GetAirQuality(t *testing.T) {
	body := `{
		"hourly": {
			"time": ["2023-08-31T00:00", "2023-08-31T01:00"],
			"european_aqi": [5, 7],
			"european_aqi_pm2_5": [3, 2],
			"european_aqi_pm10": [1, 4],
			"european_aqi_no2": [9, 1],
			"european_aqi_o3": [40, 42],
			"european_aqi_so2": [1, 2]
		}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/air-quality", r.URL.Path)
		assert.Equal(t,
			"latitude=51.5085&longitude=-0.1257&hourly=european_aqi,european_aqi_pm2_5,european_aqi_pm10,european_aqi_no2,european_aqi_o3,european_aqi_so2",
			r.URL.RawQuery)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	aq, err := newClient(t, server.URL).GetAirQuality(context.Background(), 51.5085, -0.1257)
	require.NoError(t, err)

	day, ok := aq.Get("2023-08-31")
	require.True(t, ok)
	assert.Equal(t, [climate.NumSlots]int{7, 3, 4, 9, 42, 2}, day.Values)
}

func TestClient_GetAirQuality_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": true, "reason": "Latitude must be in range of -90 to 90"}`))
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).GetAirQuality(context.Background(), 51.5, -0.12)
	require.Error(t, err)

	var reported *upstream.ReportedError
	require.ErrorAs(t, err, &reported)
	assert.Equal(t, http.StatusBadRequest, reported.StatusCode)
	assert.Equal(t, "Cannot fetch air quality data for this location", reported.Message)
}

func TestClient_GetHistorical(t *testing.T) {
	body := `{
		"daily": {
			"time": ["2000-05-01", "2000-05-02", "2010-05-01"],
			"temperature_2m_mean": [14.2, 15.0, 16.1],
			"windspeed_10m_mean": [3.4, 2.2, 5.1],
			"relative_humidity_2m_mean": [70, 65, 58],
			"precipitation_sum": [0, 1.2, null],
			"cloudcover_mean": [20, 90, 10],
			"pressure_msl_mean": [1015, 1009, 1021]
		}
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/climate", r.URL.Path)
		assert.Equal(t,
			"latitude=52.37&longitude=4.89&start_date=2000-01-01&end_date=2025-12-31&models=EC_Earth3P_HR&daily=temperature_2m_mean,windspeed_10m_mean,relative_humidity_2m_mean,precipitation_sum,cloudcover_mean,pressure_msl_mean&windspeed_unit=ms",
			r.URL.RawQuery)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	stats, err := newClient(t, server.URL).GetHistorical(context.Background(), 52.37, 4.89, weather.Metric)
	require.NoError(t, err)

	require.Len(t, stats, 2)
	assert.Equal(t, 2000, stats[0].Title)
	assert.Equal(t, 14.2, stats[0].Temp)
	assert.Equal(t, 2010, stats[1].Title)
	assert.Equal(t, 0.0, stats[1].Rain, "null precipitation decodes to 0")
}

func TestClient_GetHistorical_ImperialUnits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "&temperature_unit=fahrenheit&windspeed_unit=mph")
		assert.NotContains(t, r.URL.RawQuery, "windspeed_unit=ms")
		_, _ = w.Write([]byte(`{"daily": {"time": []}}`))
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).GetHistorical(context.Background(), 52.37, 4.89, weather.Imperial)
	require.NoError(t, err)
}

func TestClient_GetHistorical_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": true, "reason": "No data for coordinates"}`))
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).GetHistorical(context.Background(), 0, 0, weather.Metric)
	require.Error(t, err)

	var reported *upstream.ReportedError
	require.ErrorAs(t, err, &reported)
	assert.Equal(t, http.StatusBadRequest, reported.StatusCode)
	assert.Equal(t, "Cannot fetch historical data for this location", reported.Message)
}
