package resolver

import (
	"testing"

	"github.com/alexivanou/nearport/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestSelectAirport(t *testing.T) {
	origin := model.Coordinate{Lat: 0, Lon: 0}

	tests := []struct {
		name       string
		candidates []model.CandidateAirport
		wantCode   string
		wantOK     bool
	}{
		{
			name: "nearest airport wins",
			candidates: []model.CandidateAirport{
				{Code: "AAA", Type: "airport", Latitude: "0.04497", Longitude: "0"}, // ~5 km
				{Code: "BBB", Type: "airport", Latitude: "0.01799", Longitude: "0"}, // ~2 km
				{Code: "CCC", Type: "city", Latitude: "0", Longitude: "0"},
			},
			wantCode: "BBB",
			wantOK:   true,
		},
		{
			name: "first seen wins exact ties",
			candidates: []model.CandidateAirport{
				{Code: "NTH", Type: "airport", Latitude: "0.1", Longitude: "0"},
				{Code: "STH", Type: "airport", Latitude: "-0.1", Longitude: "0"},
			},
			wantCode: "NTH",
			wantOK:   true,
		},
		{
			name: "city fallback",
			candidates: []model.CandidateAirport{
				{Code: "DEL", Type: "city"},
			},
			wantCode: "DEL",
			wantOK:   true,
		},
		{
			name: "first city in full list",
			candidates: []model.CandidateAirport{
				{Code: "LON", Type: "city"},
				{Code: "LHR", Type: "airport", Latitude: "n/a", Longitude: "n/a"},
				{Code: "XLO", Type: "city"},
			},
			wantCode: "LON",
			wantOK:   true,
		},
		{
			name: "airports with unreadable coordinates fall back to city",
			candidates: []model.CandidateAirport{
				{Code: "JFK", Type: "airport", Latitude: "", Longitude: ""},
				{Code: "LGA", Type: "airport", Latitude: "40.77", Longitude: "east"},
				{Code: "NYC", Type: "city", Latitude: "40.71", Longitude: "-74.0"},
			},
			wantCode: "NYC",
			wantOK:   true,
		},
		{
			name: "valid airport beats nearer city",
			candidates: []model.CandidateAirport{
				{Code: "CTY", Type: "city", Latitude: "0", Longitude: "0"},
				{Code: "FAR", Type: "airport", Latitude: "10", Longitude: "10"},
			},
			wantCode: "FAR",
			wantOK:   true,
		},
		{
			name: "unparseable airport excluded from ranking",
			candidates: []model.CandidateAirport{
				{Code: "BAD", Type: "airport", Latitude: "0.0001", Longitude: "x"},
				{Code: "OK1", Type: "airport", Latitude: "1", Longitude: "1"},
			},
			wantCode: "OK1",
			wantOK:   true,
		},
		{
			name: "type match ignores case",
			candidates: []model.CandidateAirport{
				{Code: "UPP", Type: "AIRPORT", Latitude: "1", Longitude: "1"},
			},
			wantCode: "UPP",
			wantOK:   true,
		},
		{
			name: "airport without code skipped",
			candidates: []model.CandidateAirport{
				{Code: "", Type: "airport", Latitude: "0", Longitude: "0"},
				{Code: "HAS", Type: "airport", Latitude: "2", Longitude: "2"},
			},
			wantCode: "HAS",
			wantOK:   true,
		},
		{
			name:       "empty list",
			candidates: nil,
			wantOK:     false,
		},
		{
			name: "only unreadable airports",
			candidates: []model.CandidateAirport{
				{Code: "BAD", Type: "airport", Latitude: "north", Longitude: "west"},
			},
			wantOK: false,
		},
		{
			name: "other types ignored",
			candidates: []model.CandidateAirport{
				{Code: "STN", Type: "station", Latitude: "0", Longitude: "0"},
			},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectAirport(origin, tt.candidates)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantCode, got.Code)
			}
		})
	}
}
