package weather

import (
	"errors"
	"fmt"
	"strings"
)

// Location errors.
var (
	ErrEmptyPlaceName     = errors.New("place name must not be empty")
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// Location identifies where weather is requested. Exactly one of the two forms
// is set: a free-text place name, or a latitude/longitude pair. Values are
// validated by the constructors, so a Location in hand is always well-formed.
type Location struct {
	name     string
	lat, lon float64
	byCoords bool
}

// ByName creates a Location from a free-text place name such as "London,UK".
func ByName(name string) (Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Location{}, ErrEmptyPlaceName
	}
	return Location{name: name}, nil
}

// ByCoordinates creates a Location from a latitude/longitude pair.
func ByCoordinates(lat, lon float64) (Location, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Location{}, ErrInvalidCoordinates
	}
	return Location{lat: lat, lon: lon, byCoords: true}, nil
}

// Name returns the place name and true when the Location was built by name.
func (l Location) Name() (string, bool) {
	if l.byCoords {
		return "", false
	}
	return l.name, true
}

// Coordinates returns the latitude/longitude pair and true when the Location
// was built from coordinates.
func (l Location) Coordinates() (lat, lon float64, ok bool) {
	if !l.byCoords {
		return 0, 0, false
	}
	return l.lat, l.lon, true
}

// String renders the location for logging.
func (l Location) String() string {
	if l.byCoords {
		return fmt.Sprintf("%.4f,%.4f", l.lat, l.lon)
	}
	return l.name
}
