package model

import "strconv"

// Place types returned by the autocomplete service.
const (
	PlaceTypeAirport = "airport"
	PlaceTypeCity    = "city"
)

// Coordinate represents geographic coordinates
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PlaceComponents is what a reverse geocoder knows about a coordinate.
type PlaceComponents struct {
	Locality              string
	SubAdministrativeArea string
	AdministrativeArea    string
	Country               string
	CountryCode           string
}

// CandidateAirport is one autocomplete suggestion. Coordinates are carried
// as text, exactly as the autocomplete endpoint serves them.
type CandidateAirport struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	CityName    string `json:"city_name,omitempty"`
	CountryName string `json:"country_name,omitempty"`
	Latitude    string `json:"lat"`
	Longitude   string `json:"lon"`
}

// CandidateFromRow converts a place search hit into its wire form.
func CandidateFromRow(row PlaceRow) CandidateAirport {
	return CandidateAirport{
		Code:        row.Code,
		Name:        row.Name,
		Type:        row.Type,
		CityName:    row.CityName,
		CountryName: row.CountryName,
		Latitude:    strconv.FormatFloat(row.Lat, 'f', -1, 64),
		Longitude:   strconv.FormatFloat(row.Lon, 'f', -1, 64),
	}
}

// ResolvedLocation is the outcome of a successful nearest-airport resolution.
type ResolvedLocation struct {
	PlaceName  string     `json:"place_name"`
	Code       string     `json:"code"`
	Coordinate Coordinate `json:"coordinates"`
}
