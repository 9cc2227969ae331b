package openmeteo

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/meteofuse/meteofuse/internal/climate"
)

// ReduceHistorical keeps the daily entries whose month-day matches the
// reference date and emits one record per matching year. A reading the model
// left null contributes 0.
func ReduceHistorical(s DailySeries, ref time.Time) climate.Stats {
	monthDay := ref.Format("01-02")

	stats := climate.Stats{}
	for i, ts := range s.Time {
		year, rest, ok := strings.Cut(ts, "-")
		if !ok || rest != monthDay {
			continue
		}
		title, err := strconv.Atoi(year)
		if err != nil {
			continue
		}
		stats = append(stats, climate.YearStats{
			Temp:      at(s.Temperature, i),
			WindSpeed: at(s.WindSpeed, i),
			Humidity:  at(s.Humidity, i),
			Rain:      at(s.Rain, i),
			Clouds:    at(s.Clouds, i),
			Pressure:  at(s.Pressure, i),
			Title:     title,
		})
	}
	return stats
}

// ReduceAirQuality buckets the hourly series by calendar date and keeps the
// maximum reading per pollutant slot. Days appear in the order the series
// first mentions them; zero readings never displace an observed maximum.
func ReduceAirQuality(s HourlySeries) *climate.AirQuality {
	var days []climate.DayMax
	index := make(map[string]int)

	columns := [climate.NumSlots][]float64{s.AQI, s.PM25, s.PM10, s.NO2, s.O3, s.SO2}

	for i, ts := range s.Time {
		date, _, _ := strings.Cut(ts, "T")
		pos, seen := index[date]
		if !seen {
			pos = len(days)
			index[date] = pos
			days = append(days, climate.DayMax{Date: date})
		}
		for slot, col := range columns {
			reading := int(math.Round(at(col, i)))
			if reading != 0 && reading > days[pos].Values[slot] {
				days[pos].Values[slot] = reading
			}
		}
	}
	return climate.NewAirQuality(days)
}

// at reads column i, treating a short column as all zeros past its end.
func at(col []float64, i int) float64 {
	if i >= len(col) {
		return 0
	}
	return col[i]
}
