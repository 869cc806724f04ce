package resolver

import (
	"math"
	"strings"

	"github.com/alexivanou/nearport/internal/geo"
	"github.com/alexivanou/nearport/internal/model"
)

// SelectAirport picks the candidate to resolve to. The nearest airport with
// readable coordinates wins, first seen on ties. Without one, the first
// city entry of the full list is used. Entries without a code are skipped.
func SelectAirport(origin model.Coordinate, candidates []model.CandidateAirport) (model.CandidateAirport, bool) {
	best := -1
	bestDist := math.Inf(1)

	for i, c := range candidates {
		if !strings.EqualFold(c.Type, model.PlaceTypeAirport) || c.Code == "" {
			continue
		}
		pos, err := geo.ParseCoordinate(c.Latitude, c.Longitude)
		if err != nil {
			continue
		}
		if d := geo.Distance(origin, pos); d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best >= 0 {
		return candidates[best], true
	}

	for _, c := range candidates {
		if strings.EqualFold(c.Type, model.PlaceTypeCity) && c.Code != "" {
			return c, true
		}
	}
	return model.CandidateAirport{}, false
}
