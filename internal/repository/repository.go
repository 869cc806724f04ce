package repository

import (
	"context"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/model"
	"github.com/jmoiron/sqlx"
)

// nearbyDelta is the half-width in degrees of the bounding box scanned
// before falling back to a full table scan.
const nearbyDelta = 2.0

// CityRepository defines operations for cities
type CityRepository interface {
	FindNearestCity(ctx context.Context, lat, lon float64) (*model.City, float64, error)
	GetCityByID(ctx context.Context, id int) (*model.City, error)
	BulkInsertCities(ctx context.Context, cities []model.City) error
}

// CountryRepository defines operations for countries
type CountryRepository interface {
	GetCountryName(ctx context.Context, countryCode string) (string, error)
	BulkInsertCountries(ctx context.Context, countries []model.Country) error
}

// AirportRepository defines operations for airports
type AirportRepository interface {
	FindNearestAirports(ctx context.Context, lat, lon float64, limit int) ([]model.NearbyAirport, error)
	BulkInsertAirports(ctx context.Context, airports []model.Airport) error
}

// PlaceRepository searches airports and cities together
type PlaceRepository interface {
	// SearchPlaces matches query against airport codes, airport names, and
	// city names by prefix. Airports come first, larger ones before smaller,
	// then cities by population.
	SearchPlaces(ctx context.Context, query string, limit int) ([]model.PlaceRow, error)
}

// Container holds all repositories
type Container struct {
	City    CityRepository
	Country CountryRepository
	Airport AirportRepository
	Place   PlaceRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			City:    &pgCityRepository{db: db},
			Country: &pgCountryRepository{db: db},
			Airport: &pgAirportRepository{db: db},
			Place:   &pgPlaceRepository{db: db},
		}
	}

	// Default to SQLite
	return &Container{
		City:    &sqliteCityRepository{db: db},
		Country: &sqliteCountryRepository{db: db},
		Airport: &sqliteAirportRepository{db: db},
		Place:   &sqlitePlaceRepository{db: db},
	}
}

// Helper to check if DB is empty (used by main)
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	// Using a safe query that works on both
	query := "SELECT (SELECT COUNT(*) FROM cities) + (SELECT COUNT(*) FROM airports)"
	err := db.GetContext(ctx, &count, query)
	if err != nil {
		// Simplify error handling for non-existent tables
		return true, nil
	}
	return count == 0, nil
}

// chunks calls fn for consecutive slices of at most size items.
func chunks[T any](items []T, size int, fn func([]T) error) error {
	for i := 0; i < len(items); i += size {
		end := min(i+size, len(items))
		if err := fn(items[i:end]); err != nil {
			return err
		}
	}
	return nil
}
