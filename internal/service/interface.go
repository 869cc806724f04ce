package service

import (
	"context"

	"github.com/alexivanou/nearport/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	SuggestPlaces(ctx context.Context, req model.SuggestRequest) (*model.SuggestResponse, error)
	GetCityByID(ctx context.Context, id int) (*model.CityDetailResponse, error)
	FindNearestCity(ctx context.Context, lat, lon float64) (*model.NearestCityResponse, error)
	FindNearestAirports(ctx context.Context, lat, lon float64, limit int) (*model.NearestAirportsResponse, error)
}

// LocatorInterface resolves API clients to their nearest airport
type LocatorInterface interface {
	Resolve(ctx context.Context, req model.ResolveRequest) (*model.ResolvedLocation, error)
}
