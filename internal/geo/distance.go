// Package geo holds the great-circle math shared by repositories and the resolver.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexivanou/nearport/internal/model"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned when text cannot be read as a coordinate.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// DistanceKm returns the haversine distance between two points in kilometres.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)
	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance is DistanceKm for model coordinates.
func Distance(a, b model.Coordinate) float64 {
	return DistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

// Valid reports whether c is a finite coordinate inside the WGS84 ranges.
func Valid(c model.Coordinate) bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// ParseCoordinate reads a latitude/longitude pair given as text.
func ParseCoordinate(lat, lon string) (model.Coordinate, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: lat %q", ErrInvalidCoordinate, lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("%w: lon %q", ErrInvalidCoordinate, lon)
	}
	c := model.Coordinate{Lat: la, Lon: lo}
	if !Valid(c) {
		return model.Coordinate{}, fmt.Errorf("%w: %v,%v out of range", ErrInvalidCoordinate, la, lo)
	}
	return c, nil
}
