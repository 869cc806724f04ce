package model

// SuggestRequest represents the request parameters for place search
type SuggestRequest struct {
	Query string
	Limit int
}

// SuggestResponse represents the response for place search
type SuggestResponse struct {
	Results []CandidateAirport `json:"results"`
}

// CityDetailResponse represents detailed information about a city
type CityDetailResponse struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Country     string     `json:"country"`
	Coordinates Coordinate `json:"coordinates"`
	Elevation   *int       `json:"elevation"`
	Population  int        `json:"population"`
	Timezone    *string    `json:"timezone"`
	IATACode    *string    `json:"iata_code,omitempty"`
}

// NearestCityResponse represents the response for nearest city search
type NearestCityResponse struct {
	City               CityDetailResponse `json:"city"`
	RequestCoordinates Coordinate         `json:"request_coordinates"`
	DistanceKm         float64            `json:"distance_km"`
}

// AirportDistance is an airport together with its distance from a point
type AirportDistance struct {
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	CityName    string     `json:"city_name"`
	CountryCode string     `json:"country_code"`
	Coordinates Coordinate `json:"coordinates"`
	DistanceKm  float64    `json:"distance_km"`
}

// NearestAirportsResponse represents the response for nearest airports search
type NearestAirportsResponse struct {
	RequestCoordinates Coordinate        `json:"request_coordinates"`
	Results            []AirportDistance `json:"results"`
}

// ResolveRequest describes one "use my location" call from an API client.
// Coordinate is nil when the client did not share a position.
type ResolveRequest struct {
	Coordinate *Coordinate
	ClientIP   string
	SessionID  string
}

// ErrorResponse is the JSON body for failed resolutions
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable kind and a displayable message
type ErrorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
