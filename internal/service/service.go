package service

import (
	"github.com/alexivanou/nearport/internal/repository"
)

// Service provides business logic for the API
type Service struct {
	cityRepo    repository.CityRepository
	countryRepo repository.CountryRepository
	airportRepo repository.AirportRepository
	placeRepo   repository.PlaceRepository
}

// NewService creates a new service instance
func NewService(
	cityRepo repository.CityRepository,
	countryRepo repository.CountryRepository,
	airportRepo repository.AirportRepository,
	placeRepo repository.PlaceRepository,
) *Service {
	return &Service{
		cityRepo:    cityRepo,
		countryRepo: countryRepo,
		airportRepo: airportRepo,
		placeRepo:   placeRepo,
	}
}

// NewServiceFromContainer wires a Service from a repository container
func NewServiceFromContainer(repos *repository.Container) *Service {
	return NewService(repos.City, repos.Country, repos.Airport, repos.Place)
}
