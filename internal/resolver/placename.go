package resolver

import (
	"strings"

	"github.com/alexivanou/nearport/internal/model"
)

// PlaceName builds the display name for reverse geocoding components:
// city (locality, else sub-administrative area), region, country.
// Empty parts are skipped, as is a region that repeats the city.
func PlaceName(c model.PlaceComponents) string {
	city := strings.TrimSpace(c.Locality)
	if city == "" {
		city = strings.TrimSpace(c.SubAdministrativeArea)
	}

	parts := make([]string, 0, 3)
	if city != "" {
		parts = append(parts, city)
	}
	if region := strings.TrimSpace(c.AdministrativeArea); region != "" && !strings.EqualFold(region, city) {
		parts = append(parts, region)
	}
	if country := strings.TrimSpace(c.Country); country != "" {
		parts = append(parts, country)
	}
	return strings.Join(parts, ", ")
}

// SearchQuery is the city-level text query for a place name: its first
// comma-separated segment.
func SearchQuery(placeName string) string {
	first, _, _ := strings.Cut(placeName, ",")
	return strings.TrimSpace(first)
}
