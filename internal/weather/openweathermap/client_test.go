package openweathermap_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteofuse/meteofuse/internal/provider/httpcache"
	"github.com/meteofuse/meteofuse/internal/upstream"
	"github.com/meteofuse/meteofuse/internal/weather"
	"github.com/meteofuse/meteofuse/internal/weather/openweathermap"
)

const currentWeatherBody = `{
	"coord": {"lat": 51.5085, "lon": -0.1257},
	"weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
	"main": {"temp": 16.4, "feels_like": 15.9, "temp_min": 14.8, "temp_max": 17.6, "pressure": 1012, "humidity": 71},
	"visibility": 10000,
	"wind": {"speed": 4.12, "deg": 240},
	"clouds": {"all": 75},
	"dt": 1693478400,
	"sys": {"country": "GB", "sunrise": 1693456882, "sunset": 1693505645},
	"timezone": 3600,
	"name": "London",
	"cod": 200
}`

func newClient(t *testing.T, serverURL string) *openweathermap.Client {
	t.Helper()
	return openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Fetcher: httpcache.New(httpcache.Config{Doer: http.DefaultClient, Logger: zerolog.Nop()}),
		Logger:  zerolog.Nop(),
	})
}

func TestClient_GetCurrentWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "appid=test-key&q=London,UK&units=metric", r.URL.RawQuery)
		_, _ = w.Write([]byte(currentWeatherBody))
	}))
	defer server.Close()

	loc, err := weather.ByName("London,UK")
	require.NoError(t, err)

	current, err := newClient(t, server.URL).GetCurrentWeather(context.Background(), loc, weather.Metric)
	require.NoError(t, err)

	assert.Equal(t, int64(1693478400), current.Timestamp)
	assert.Equal(t, 3600, current.TimezoneOffset)
	assert.Equal(t, 16.4, current.Temp)
	assert.Equal(t, 14.8, current.TempMin)
	assert.Equal(t, 17.6, current.TempMax)
	assert.Equal(t, 15.9, current.FeelsLike)
	assert.Equal(t, 51.5085, current.Lat)
	assert.Equal(t, -0.1257, current.Lon)
	assert.Equal(t, 1012, current.Pressure)
	assert.Equal(t, 71, current.Humidity)
	assert.Equal(t, 75, current.Clouds)
	assert.Equal(t, 4.12, current.WindSpeed)
	assert.Equal(t, 10000, current.Visibility)
	assert.Equal(t, "Clouds", current.ConditionCode)
	assert.Equal(t, "broken clouds", current.Description)
	assert.Equal(t, "04d", current.Icon)
	assert.Equal(t, int64(1693456882), current.Sunrise)
	assert.Equal(t, int64(1693505645), current.Sunset)

	// No rain block in the response: rate defaults to 0.
	assert.Equal(t, 0.0, current.Rain)
}

func TestClient_GetCurrentWeather_RainPresent(t *testing.T) {
	body := `{
		"coord": {"lat": 51.5, "lon": -0.12},
		"weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}],
		"main": {"temp": 12.0, "feels_like": 11.4, "temp_min": 11.0, "temp_max": 13.0, "pressure": 1003, "humidity": 90},
		"visibility": 8000,
		"wind": {"speed": 6.2},
		"clouds": {"all": 100},
		"rain": {"1h": 0.8},
		"dt": 1693478400,
		"sys": {"sunrise": 1693456882, "sunset": 1693505645},
		"timezone": 0,
		"cod": 200
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	loc, err := weather.ByName("London")
	require.NoError(t, err)

	current, err := newClient(t, server.URL).GetCurrentWeather(context.Background(), loc, weather.Metric)
	require.NoError(t, err)
	assert.Equal(t, 0.8, current.Rain)
}

func TestClient_GetCurrentWeather_ByCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "appid=test-key&lat=52.37&lon=4.89&units=imperial", r.URL.RawQuery)
		_, _ = w.Write([]byte(currentWeatherBody))
	}))
	defer server.Close()

	loc, err := weather.ByCoordinates(52.37, 4.89)
	require.NoError(t, err)

	_, err = newClient(t, server.URL).GetCurrentWeather(context.Background(), loc, weather.Imperial)
	require.NoError(t, err)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"numeric string cod", `{"cod":"404","message":"city not found"}`},
		{"numeric cod", `{"cod":404,"message":"city not found"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			loc, err := weather.ByName("Nowhereville")
			require.NoError(t, err)

			_, err = newClient(t, server.URL).GetCurrentWeather(context.Background(), loc, weather.Metric)
			require.Error(t, err)

			var reported *upstream.ReportedError
			require.ErrorAs(t, err, &reported)
			assert.Equal(t, openweathermap.ProviderName, reported.Provider)
			assert.Equal(t, http.StatusNotFound, reported.StatusCode)
			assert.Equal(t, "city not found", reported.Message)
		})
	}
}

func TestClient_GetForecast(t *testing.T) {
	body := `{
		"cod": "200",
		"city": {"name": "Amsterdam", "country": "NL", "coord": {"lat": 52.374, "lon": 4.8897}},
		"list": [
			{
				"dt": 1693494000,
				"main": {"temp": 18.2, "feels_like": 17.8, "temp_min": 17.1, "temp_max": 18.2, "pressure": 1014, "humidity": 64},
				"weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}],
				"clouds": {"all": 40},
				"wind": {"speed": 3.6},
				"visibility": 10000,
				"pop": 0.45,
				"rain": {"3h": 0.5},
				"sys": {"pod": "d"},
				"dt_txt": "2023-08-31 15:00:00"
			},
			{
				"dt": 1693504800,
				"main": {"temp": 15.9, "feels_like": 15.6, "temp_min": 15.0, "temp_max": 15.9, "pressure": 1015, "humidity": 72},
				"weather": [{"main": "Clear", "description": "clear sky", "icon": "01n"}],
				"clouds": {"all": 5},
				"wind": {"speed": 2.1},
				"visibility": 10000,
				"pop": 0,
				"sys": {"pod": "n"},
				"dt_txt": "2023-08-31 18:00:00"
			}
		]
	}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	loc, err := weather.ByName("Amsterdam")
	require.NoError(t, err)

	forecast, err := newClient(t, server.URL).GetForecast(context.Background(), loc, weather.Metric)
	require.NoError(t, err)

	assert.Equal(t, "Amsterdam", forecast.Name)
	assert.Equal(t, "NL", forecast.Country)
	assert.Equal(t, 52.374, forecast.Lat)
	assert.Equal(t, 4.8897, forecast.Lon)
	require.Len(t, forecast.Forecast, 2)

	first := forecast.Forecast[0]
	// 0.5mm over 3h becomes an hourly rate rounded to 2 decimals.
	assert.Equal(t, 0.17, first.Rain)
	assert.Equal(t, "d", first.PartOfDay)
	assert.Equal(t, 0.45, first.RainProbability)
	assert.Equal(t, "2023-08-31 15:00:00", first.TimestampText)

	second := forecast.Forecast[1]
	assert.Equal(t, 0.0, second.Rain, "missing rain block defaults to 0")
	assert.Equal(t, "n", second.PartOfDay)
}

func TestClient_CurrentWeatherCached(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(currentWeatherBody))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	loc, err := weather.ByName("London,UK")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := client.GetCurrentWeather(context.Background(), loc, weather.Metric)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), calls.Load(), "repeat requests must hit the response cache")
}
