package weather

// UnitSystem selects the measurement system for a request.
type UnitSystem string

const (
	// Metric is Celsius and metres per second.
	Metric UnitSystem = "metric"

	// Imperial is Fahrenheit and miles per hour.
	Imperial UnitSystem = "imperial"
)

// ParseUnitSystem maps a caller-supplied selector to a UnitSystem.
// Anything other than "imperial" resolves to Metric.
func ParseUnitSystem(s string) UnitSystem {
	if s == string(Imperial) {
		return Imperial
	}
	return Metric
}

// DisplayUnits is the per-quantity unit table returned verbatim with every
// composite response so the caller can render values correctly.
type DisplayUnits struct {
	Humidity   string `json:"humidity"`
	Pressure   string `json:"pressure"`
	WindSpeed  string `json:"wind_speed"`
	Visibility string `json:"visibility"`
	Rain       string `json:"rain"`
}

// Display returns the unit table for the system. Only wind speed differs
// between the two systems; temperatures carry no display unit because the
// providers already deliver them converted.
func (u UnitSystem) Display() DisplayUnits {
	windSpeed := "m/s"
	if u == Imperial {
		windSpeed = "mph"
	}
	return DisplayUnits{
		Humidity:   "%",
		Pressure:   "hPa",
		WindSpeed:  windSpeed,
		Visibility: "km",
		Rain:       "mm/h",
	}
}
