package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"

	"github.com/alexivanou/nearport/internal/geo"
	"github.com/alexivanou/nearport/internal/model"
	"github.com/jmoiron/sqlx"
)

type sqliteCityRepository struct {
	db *sqlx.DB
}

func (r *sqliteCityRepository) FindNearestCity(ctx context.Context, lat, lon float64) (*model.City, float64, error) {
	q := `
		SELECT * FROM cities
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?
	`
	var candidates []model.City
	err := r.db.SelectContext(ctx, &candidates, q, lat-nearbyDelta, lat+nearbyDelta, lon-nearbyDelta, lon+nearbyDelta)
	if err != nil {
		return nil, 0, err
	}

	if len(candidates) == 0 {
		if err := r.db.SelectContext(ctx, &candidates, "SELECT * FROM cities"); err != nil {
			return nil, 0, err
		}
	}

	var nearest *model.City
	minDist := math.MaxFloat64

	for i := range candidates {
		city := candidates[i]
		dist := geo.DistanceKm(lat, lon, city.Lat, city.Lon)
		if dist < minDist {
			minDist = dist
			nearest = &city
		}
	}

	if nearest == nil {
		return nil, 0, nil
	}
	return nearest, minDist, nil
}

func (r *sqliteCityRepository) GetCityByID(ctx context.Context, id int) (*model.City, error) {
	var city model.City
	if err := r.db.GetContext(ctx, &city, "SELECT * FROM cities WHERE id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *sqliteCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	// SQLite variable limit workaround (100 rows * 9 params)
	return chunks(cities, 100, func(batch []model.City) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cities (id, country_code, name_default, population, lat, lon, elevation, timezone, iata_code)
		VALUES (:id, :country_code, :name_default, :population, :lat, :lon, :elevation, :timezone, :iata_code)`,
			batch)
		return err
	})
}

type sqliteCountryRepository struct {
	db *sqlx.DB
}

func (r *sqliteCountryRepository) GetCountryName(ctx context.Context, countryCode string) (string, error) {
	var name string
	err := r.db.GetContext(ctx, &name, "SELECT name_default FROM countries WHERE code = ?", countryCode)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return name, err
}

func (r *sqliteCountryRepository) BulkInsertCountries(ctx context.Context, countries []model.Country) error {
	return chunks(countries, 400, func(batch []model.Country) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO countries (code, name_default)
		VALUES (:code, :name_default)`,
			batch)
		return err
	})
}

type sqliteAirportRepository struct {
	db *sqlx.DB
}

func (r *sqliteAirportRepository) FindNearestAirports(ctx context.Context, lat, lon float64, limit int) ([]model.NearbyAirport, error) {
	q := `
		SELECT * FROM airports
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?
	`
	var candidates []model.Airport
	err := r.db.SelectContext(ctx, &candidates, q, lat-nearbyDelta, lat+nearbyDelta, lon-nearbyDelta, lon+nearbyDelta)
	if err != nil {
		return nil, err
	}

	if len(candidates) < limit {
		candidates = candidates[:0]
		if err := r.db.SelectContext(ctx, &candidates, "SELECT * FROM airports"); err != nil {
			return nil, err
		}
	}

	result := make([]model.NearbyAirport, 0, len(candidates))
	for _, a := range candidates {
		result = append(result, model.NearbyAirport{
			Airport:    a,
			DistanceKm: geo.DistanceKm(lat, lon, a.Lat, a.Lon),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].DistanceKm < result[j].DistanceKm
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *sqliteAirportRepository) BulkInsertAirports(ctx context.Context, airports []model.Airport) error {
	return chunks(airports, 100, func(batch []model.Airport) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO airports (iata_code, name, city_name, country_code, lat, lon, airport_type)
		VALUES (:iata_code, :name, :city_name, :country_code, :lat, :lon, :airport_type)`,
			batch)
		return err
	})
}

type sqlitePlaceRepository struct {
	db *sqlx.DB
}

func (r *sqlitePlaceRepository) SearchPlaces(ctx context.Context, query string, limit int) ([]model.PlaceRow, error) {
	q := `
		SELECT code, name, place_type, city_name, country_name, lat, lon
		FROM (
			SELECT
				a.iata_code AS code,
				a.name AS name,
				'airport' AS place_type,
				a.city_name AS city_name,
				COALESCE(cnt.name_default, a.country_code) AS country_name,
				a.lat AS lat,
				a.lon AS lon,
				0 AS kind_rank,
				CASE a.airport_type
					WHEN 'large_airport' THEN 0
					WHEN 'medium_airport' THEN 1
					ELSE 2
				END AS size_rank,
				0 AS population
			FROM airports a
			LEFT JOIN countries cnt ON cnt.code = a.country_code
			WHERE LOWER(a.iata_code) = LOWER(?)
				OR LOWER(a.name) LIKE LOWER(?) || '%'
				OR LOWER(a.city_name) LIKE LOWER(?) || '%'
			UNION ALL
			SELECT
				c.iata_code,
				c.name_default,
				'city',
				c.name_default,
				COALESCE(cnt.name_default, c.country_code),
				c.lat,
				c.lon,
				1,
				0,
				c.population
			FROM cities c
			LEFT JOIN countries cnt ON cnt.code = c.country_code
			WHERE c.iata_code IS NOT NULL
				AND LOWER(c.name_default) LIKE LOWER(?) || '%'
		)
		ORDER BY kind_rank, size_rank, population DESC, name
		LIMIT ?
	`
	var places []model.PlaceRow
	if err := r.db.SelectContext(ctx, &places, q, query, query, query, query, limit); err != nil {
		return nil, err
	}
	return places, nil
}
