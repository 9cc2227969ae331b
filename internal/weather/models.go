// Package weather holds the canonical weather domain model: locations, unit
// systems, and the normalized records produced from the primary provider's
// responses. Records are constructed only by the provider parsers and are
// immutable once built; they live for the duration of a single request.
package weather

// CurrentWeather is the normalized current conditions for a location.
// JSON field names mirror the composite response contract.
type CurrentWeather struct {
	Timestamp      int64   `json:"dt"`
	TimezoneOffset int     `json:"timezone"`
	Temp           float64 `json:"temp"`
	TempMin        float64 `json:"temp_min"`
	TempMax        float64 `json:"temp_max"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	FeelsLike      float64 `json:"feels_like"`
	Pressure       int     `json:"pressure"`
	Humidity       int     `json:"humidity"`
	Clouds         int     `json:"clouds"`
	WindSpeed      float64 `json:"wind_speed"`
	Visibility     int     `json:"visibility"`

	// Rain is the precipitation rate in mm/h, 0 when the provider reported
	// no precipitation block.
	Rain float64 `json:"rain"`

	ConditionCode string `json:"weather_main"`
	Description   string `json:"weather_description"`
	Icon          string `json:"weather_icon"`

	Sunrise int64 `json:"sunrise"`
	Sunset  int64 `json:"sunset"`
}

// ThreeHourWeather is one 3-hour forecast slot. It carries the same physical
// fields as CurrentWeather minus the astronomical ones, plus the period-of-day
// marker and precipitation probability.
type ThreeHourWeather struct {
	Timestamp     int64   `json:"dt"`
	Temp          float64 `json:"temp"`
	TempMin       float64 `json:"temp_min"`
	TempMax       float64 `json:"temp_max"`
	FeelsLike     float64 `json:"feels_like"`
	Pressure      int     `json:"pressure"`
	Humidity      int     `json:"humidity"`
	Clouds        int     `json:"clouds"`
	WindSpeed     float64 `json:"wind_speed"`
	Visibility    int     `json:"visibility"`
	Rain          float64 `json:"rain"`
	ConditionCode string  `json:"weather_main"`
	Description   string  `json:"weather_description"`
	Icon          string  `json:"weather_icon"`

	// PartOfDay is "d" for daytime slots and "n" for night slots.
	PartOfDay string `json:"pod"`

	// RainProbability is the precipitation probability in [0, 1].
	RainProbability float64 `json:"rain_prob"`

	// TimestampText is the provider's textual timestamp for the slot.
	TimestampText string `json:"dt_txt"`
}

// Forecast is the 5-day/3-hour forecast for a resolved place. Slots are
// chronological and non-empty for a successful fetch, typically 40 entries.
type Forecast struct {
	Name     string             `json:"name"`
	Country  string             `json:"country"`
	Lat      float64            `json:"lat"`
	Lon      float64            `json:"lon"`
	Forecast []ThreeHourWeather `json:"forecasts"`
}
