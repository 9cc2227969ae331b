// Package climate holds the derived climate statistics served to paid
// accounts: multi-year historical aggregates for a calendar date and daily
// air quality maxima. Both are produced by the open-meteo reducers from raw
// provider series and are immutable once built.
package climate

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// YearStats is the climate model's daily output for the requested calendar
// date in one year.
type YearStats struct {
	Temp      float64 `json:"temp"`
	WindSpeed float64 `json:"wind_speed"`
	Humidity  float64 `json:"humidity"`
	Rain      float64 `json:"rain"`
	Clouds    float64 `json:"clouds"`
	Pressure  float64 `json:"pressure"`

	// Title is the four-digit year the entry belongs to.
	Title int `json:"title"`
}

// Stats is the historical series, one entry per year in chronological order.
type Stats []YearStats

// Slot indices into a DayMax value vector.
const (
	SlotAQI = iota
	SlotPM25
	SlotPM10
	SlotNO2
	SlotO3
	SlotSO2

	NumSlots = 6
)

// DayMax is the per-day maximum reading for each tracked pollutant index.
// A slot stays 0 when the provider reported no positive reading that day.
type DayMax struct {
	Date   string
	Values [NumSlots]int
}

// AirQuality is an insertion-ordered set of per-day pollutant maxima. The
// marshalled form is a JSON object keyed by date, in the order the days
// first appeared in the provider's hourly series.
type AirQuality struct {
	days []DayMax
}

// NewAirQuality builds an AirQuality from already-ordered day entries.
func NewAirQuality(days []DayMax) *AirQuality {
	return &AirQuality{days: days}
}

// Days returns the entries in insertion order.
func (a *AirQuality) Days() []DayMax {
	return a.days
}

// Get returns the entry for the given date.
func (a *AirQuality) Get(date string) (DayMax, bool) {
	for _, d := range a.days {
		if d.Date == date {
			return d, true
		}
	}
	return DayMax{}, false
}

// Len returns the number of days tracked.
func (a *AirQuality) Len() int {
	return len(a.days)
}

// MarshalJSON emits the days as an ordered JSON object. encoding/json sorts
// map keys, so the object is written by hand to preserve insertion order.
func (a *AirQuality) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range a.days {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(d.Date)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteByte('[')
		for j, v := range d.Values {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.Itoa(v))
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
