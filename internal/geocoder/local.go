package geocoder

import (
	"context"
	"fmt"

	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/observability"
)

// CityFinder is the part of the city repository Local needs.
type CityFinder interface {
	FindNearestCity(ctx context.Context, lat, lon float64) (*model.City, float64, error)
}

// CountryNamer resolves an ISO country code to its display name.
type CountryNamer interface {
	GetCountryName(ctx context.Context, countryCode string) (string, error)
}

// Local reverse geocodes against the seeded cities table: the nearest city
// within maxDistanceKm is the locality.
type Local struct {
	cities        CityFinder
	countries     CountryNamer
	maxDistanceKm float64
	metrics       *observability.Metrics
}

// NewLocal creates a database backed geocoder. maxDistanceKm <= 0 disables
// the distance cut-off.
func NewLocal(cities CityFinder, countries CountryNamer, maxDistanceKm float64, metrics *observability.Metrics) *Local {
	return &Local{
		cities:        cities,
		countries:     countries,
		maxDistanceKm: maxDistanceKm,
		metrics:       metrics,
	}
}

func (l *Local) ReverseGeocode(ctx context.Context, c model.Coordinate) (model.PlaceComponents, error) {
	city, dist, err := l.cities.FindNearestCity(ctx, c.Lat, c.Lon)
	if err != nil {
		l.metrics.ObserveGeocode("local", "error")
		return model.PlaceComponents{}, fmt.Errorf("failed to find nearest city: %w", err)
	}
	if city == nil || (l.maxDistanceKm > 0 && dist > l.maxDistanceKm) {
		l.metrics.ObserveGeocode("local", "empty")
		return model.PlaceComponents{}, nil
	}

	country, err := l.countries.GetCountryName(ctx, city.CountryCode)
	if err != nil {
		l.metrics.ObserveGeocode("local", "error")
		return model.PlaceComponents{}, fmt.Errorf("failed to get country name: %w", err)
	}

	l.metrics.ObserveGeocode("local", "success")
	return model.PlaceComponents{
		Locality:    city.NameDefault,
		Country:     country,
		CountryCode: city.CountryCode,
	}, nil
}
