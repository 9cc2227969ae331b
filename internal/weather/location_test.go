package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meteofuse/meteofuse/internal/weather"
)

func TestByName(t *testing.T) {
	loc, err := weather.ByName("London,UK")
	require.NoError(t, err)

	name, ok := loc.Name()
	assert.True(t, ok)
	assert.Equal(t, "London,UK", name)

	_, _, ok = loc.Coordinates()
	assert.False(t, ok)
}

func TestByName_Empty(t *testing.T) {
	_, err := weather.ByName("")
	assert.ErrorIs(t, err, weather.ErrEmptyPlaceName)

	_, err = weather.ByName("   ")
	assert.ErrorIs(t, err, weather.ErrEmptyPlaceName)
}

func TestByCoordinates(t *testing.T) {
	loc, err := weather.ByCoordinates(52.37, 4.89)
	require.NoError(t, err)

	lat, lon, ok := loc.Coordinates()
	assert.True(t, ok)
	assert.Equal(t, 52.37, lat)
	assert.Equal(t, 4.89, lon)

	_, ok = loc.Name()
	assert.False(t, ok)
}

func TestByCoordinates_OutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"latitude too high", 91, 0},
		{"latitude too low", -91, 0},
		{"longitude too high", 0, 181},
		{"longitude too low", 0, -181},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := weather.ByCoordinates(tc.lat, tc.lon)
			assert.ErrorIs(t, err, weather.ErrInvalidCoordinates)
		})
	}
}
