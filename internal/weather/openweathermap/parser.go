package openweathermap

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/meteofuse/meteofuse/internal/upstream"
	"github.com/meteofuse/meteofuse/internal/weather"
)

// OpenWeatherMap response structures. Precipitation blocks are optional in
// both endpoints; their zero values give the documented rain default of 0.

type conditionBlock struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainBlock struct {
	Temp      float64 `json:"temp"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	FeelsLike float64 `json:"feels_like"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type currentWeatherResponse struct {
	Dt       int64 `json:"dt"`
	Timezone int   `json:"timezone"`
	Coord    struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Main   mainBlock        `json:"main"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int `json:"visibility"`
	Rain       struct {
		OneH float64 `json:"1h"`
	} `json:"rain"`
	Weather []conditionBlock `json:"weather"`
	Sys     struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

type forecastEntry struct {
	Dt     int64     `json:"dt"`
	Main   mainBlock `json:"main"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int `json:"visibility"`
	Rain       struct {
		ThreeH float64 `json:"3h"`
	} `json:"rain"`
	Weather []conditionBlock `json:"weather"`
	Sys     struct {
		Pod string `json:"pod"`
	} `json:"sys"`
	Pop   float64 `json:"pop"`
	DtTxt string  `json:"dt_txt"`
}

type forecastResponse struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
		Coord   struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	} `json:"city"`
	List []forecastEntry `json:"list"`
}

// parseCurrentWeather maps the /weather response into the domain record.
func parseCurrentWeather(body []byte) (*weather.CurrentWeather, error) {
	var resp currentWeatherResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &upstream.ParseError{Provider: ProviderName, Err: err}
	}
	if len(resp.Weather) == 0 {
		return nil, &upstream.ParseError{Provider: ProviderName, Err: errors.New("missing weather condition block")}
	}

	return &weather.CurrentWeather{
		Timestamp:      resp.Dt,
		TimezoneOffset: resp.Timezone,
		Temp:           resp.Main.Temp,
		TempMin:        resp.Main.TempMin,
		TempMax:        resp.Main.TempMax,
		Lat:            resp.Coord.Lat,
		Lon:            resp.Coord.Lon,
		FeelsLike:      resp.Main.FeelsLike,
		Pressure:       resp.Main.Pressure,
		Humidity:       resp.Main.Humidity,
		Clouds:         resp.Clouds.All,
		WindSpeed:      resp.Wind.Speed,
		Visibility:     resp.Visibility,
		Rain:           resp.Rain.OneH,
		ConditionCode:  resp.Weather[0].Main,
		Description:    resp.Weather[0].Description,
		Icon:           resp.Weather[0].Icon,
		Sunrise:        resp.Sys.Sunrise,
		Sunset:         resp.Sys.Sunset,
	}, nil
}

// parseForecast maps the /forecast response: the city block plus one slot
// per list entry, in the provider's (chronological) order.
func parseForecast(body []byte) (*weather.Forecast, error) {
	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &upstream.ParseError{Provider: ProviderName, Err: err}
	}
	if len(resp.List) == 0 {
		return nil, &upstream.ParseError{Provider: ProviderName, Err: errors.New("empty forecast list")}
	}

	slots := make([]weather.ThreeHourWeather, 0, len(resp.List))
	for _, e := range resp.List {
		if len(e.Weather) == 0 {
			return nil, &upstream.ParseError{Provider: ProviderName, Err: errors.New("forecast entry missing weather condition block")}
		}
		slots = append(slots, weather.ThreeHourWeather{
			Timestamp:       e.Dt,
			Temp:            e.Main.Temp,
			TempMin:         e.Main.TempMin,
			TempMax:         e.Main.TempMax,
			FeelsLike:       e.Main.FeelsLike,
			Pressure:        e.Main.Pressure,
			Humidity:        e.Main.Humidity,
			Clouds:          e.Clouds.All,
			WindSpeed:       e.Wind.Speed,
			Visibility:      e.Visibility,
			Rain:            hourlyRate(e.Rain.ThreeH),
			ConditionCode:   e.Weather[0].Main,
			Description:     e.Weather[0].Description,
			Icon:            e.Weather[0].Icon,
			PartOfDay:       e.Sys.Pod,
			RainProbability: e.Pop,
			TimestampText:   e.DtTxt,
		})
	}

	return &weather.Forecast{
		Name:     resp.City.Name,
		Country:  resp.City.Country,
		Lat:      resp.City.Coord.Lat,
		Lon:      resp.City.Coord.Lon,
		Forecast: slots,
	}, nil
}

// hourlyRate converts a 3-hour precipitation accumulation into an hourly
// rate, rounded to 2 decimal places.
func hourlyRate(threeHourAccumulation float64) float64 {
	return math.Round(threeHourAccumulation/3*100) / 100
}
