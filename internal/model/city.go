package model

// City represents a city in the database
type City struct {
	ID          int     `db:"id"`
	CountryCode string  `db:"country_code"`
	NameDefault string  `db:"name_default"`
	Population  int     `db:"population"`
	Lat         float64 `db:"lat"`
	Lon         float64 `db:"lon"`
	Elevation   *int    `db:"elevation"`
	Timezone    *string `db:"timezone"`
	// IATACode is the code of the main airport serving the city, if any.
	// Cities without one are never offered by place search.
	IATACode *string `db:"iata_code"`
}

// Country represents a country in the database
type Country struct {
	Code        string `db:"code"`
	NameDefault string `db:"name_default"`
}

// Airport represents an airport with a scheduled-service IATA code
type Airport struct {
	IATACode    string  `db:"iata_code"`
	Name        string  `db:"name"`
	CityName    string  `db:"city_name"`
	CountryCode string  `db:"country_code"`
	Lat         float64 `db:"lat"`
	Lon         float64 `db:"lon"`
	AirportType string  `db:"airport_type"`
}

// PlaceRow is a single place search hit, either an airport or a city.
type PlaceRow struct {
	Code        string  `db:"code"`
	Name        string  `db:"name"`
	Type        string  `db:"place_type"`
	CityName    string  `db:"city_name"`
	CountryName string  `db:"country_name"`
	Lat         float64 `db:"lat"`
	Lon         float64 `db:"lon"`
}

// NearbyAirport is an airport with its distance from a query point.
type NearbyAirport struct {
	Airport
	DistanceKm float64 `db:"distance"`
}
