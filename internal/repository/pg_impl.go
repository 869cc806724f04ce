package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/nearport/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

// haversineSQL computes the distance in km from ($1, $2) to the row's lat/lon.
const haversineSQL = `
	6371 * acos(
		least(1.0, greatest(-1.0,
			cos(radians($1)) * cos(radians(lat)) * cos(radians(lon) - radians($2)) +
			sin(radians($1)) * sin(radians(lat))
		))
	)`

type pgCityRepository struct {
	db *sqlx.DB
}

func (r *pgCityRepository) FindNearestCity(ctx context.Context, lat, lon float64) (*model.City, float64, error) {
	// Haversine via SQL
	q := `SELECT *, ` + haversineSQL + ` AS distance
		FROM cities
		ORDER BY distance ASC
		LIMIT 1
	`
	type cityWithDist struct {
		model.City
		Distance float64 `db:"distance"`
	}

	var res cityWithDist
	if err := r.db.GetContext(ctx, &res, q, lat, lon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return &res.City, res.Distance, nil
}

func (r *pgCityRepository) GetCityByID(ctx context.Context, id int) (*model.City, error) {
	var city model.City
	if err := r.db.GetContext(ctx, &city, "SELECT * FROM cities WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *pgCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	// Chunking to avoid parameter limit issues even in PG (max 65535 parameters)
	return chunks(cities, 2000, func(batch []model.City) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cities (id, country_code, name_default, population, lat, lon, elevation, timezone, iata_code)
		VALUES (:id, :country_code, :name_default, :population, :lat, :lon, :elevation, :timezone, :iata_code)`,
			batch)
		return err
	})
}

type pgCountryRepository struct {
	db *sqlx.DB
}

func (r *pgCountryRepository) GetCountryName(ctx context.Context, countryCode string) (string, error) {
	var name string
	err := r.db.GetContext(ctx, &name, "SELECT name_default FROM countries WHERE code = $1", countryCode)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return name, err
}

func (r *pgCountryRepository) BulkInsertCountries(ctx context.Context, countries []model.Country) error {
	return chunks(countries, 2000, func(batch []model.Country) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO countries (code, name_default)
		VALUES (:code, :name_default)
		ON CONFLICT (code) DO UPDATE SET name_default = EXCLUDED.name_default`,
			batch)
		return err
	})
}

type pgAirportRepository struct {
	db *sqlx.DB
}

func (r *pgAirportRepository) FindNearestAirports(ctx context.Context, lat, lon float64, limit int) ([]model.NearbyAirport, error) {
	q := `SELECT *, ` + haversineSQL + ` AS distance
		FROM airports
		ORDER BY distance ASC
		LIMIT $3
	`
	var res []model.NearbyAirport
	if err := r.db.SelectContext(ctx, &res, q, lat, lon, limit); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *pgAirportRepository) BulkInsertAirports(ctx context.Context, airports []model.Airport) error {
	return chunks(airports, 2000, func(batch []model.Airport) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO airports (iata_code, name, city_name, country_code, lat, lon, airport_type)
		VALUES (:iata_code, :name, :city_name, :country_code, :lat, :lon, :airport_type)
		ON CONFLICT (iata_code) DO UPDATE SET
			name = EXCLUDED.name,
			city_name = EXCLUDED.city_name,
			country_code = EXCLUDED.country_code,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			airport_type = EXCLUDED.airport_type`,
			batch)
		return err
	})
}

type pgPlaceRepository struct {
	db *sqlx.DB
}

func (r *pgPlaceRepository) SearchPlaces(ctx context.Context, query string, limit int) ([]model.PlaceRow, error) {
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
			WHERE LOWER(a.iata_code) = LOWER($1)
				OR unaccent(LOWER(a.name)) LIKE unaccent(LOWER($1)) || '%'
				OR unaccent(LOWER(a.city_name)) LIKE unaccent(LOWER($1)) || '%'
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
				AND unaccent(LOWER(c.name_default)) LIKE unaccent(LOWER($1)) || '%'
		) AS places
		ORDER BY kind_rank, size_rank, population DESC, name
		LIMIT $2
	`
	var places []model.PlaceRow
	if err := r.db.SelectContext(ctx, &places, q, query, limit); err != nil {
		return nil, err
	}
	return places, nil
}
