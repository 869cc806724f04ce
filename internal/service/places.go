package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/alexivanou/nearport/internal/model"
)

const (
	defaultLimit   = 10
	maxLimit       = 50
	minQueryLength = 2
)

// ErrQueryTooShort is returned for autocomplete queries below the minimum length
var ErrQueryTooShort = fmt.Errorf("query must be at least %d characters", minQueryLength)

// SuggestPlaces searches airports and cities for the autocomplete endpoint
func (s *Service) SuggestPlaces(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error) {
	query := strings.TrimSpace(req.Query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return nil, ErrQueryTooShort
	}

	rows, err := s.placeRepo.SearchPlaces(ctx, query, clampLimit(req.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}

	results := make([]model.CandidateAirport, 0, len(rows))
	for _, row := range rows {
		results = append(results, model.CandidateFromRow(row))
	}
	return &model.SuggestResponse{Results: results}, nil
}

// FindNearestAirports lists airports ordered by distance from the given point
func (s *Service) FindNearestAirports(ctx context.Context, lat, lon float64, limit int) (*model.NearestAirportsResponse, error) {
	airports, err := s.airportRepo.FindNearestAirports(ctx, lat, lon, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to find nearest airports: %w", err)
	}

	results := make([]model.AirportDistance, 0, len(airports))
	for _, a := range airports {
		results = append(results, model.AirportDistance{
			Code:        a.IATACode,
			Name:        a.Name,
			CityName:    a.CityName,
			CountryCode: a.CountryCode,
			Coordinates: model.Coordinate{Lat: a.Lat, Lon: a.Lon},
			DistanceKm:  a.DistanceKm,
		})
	}

	return &model.NearestAirportsResponse{
		RequestCoordinates: model.Coordinate{Lat: lat, Lon: lon},
		Results:            results,
	}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}
