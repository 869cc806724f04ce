package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/nearport/internal/model"
)

// GetCityByID retrieves detailed information about a city
func (s *Service) GetCityByID(ctx context.Context, id int) (*model.CityDetailResponse, error) {
	city, err := s.cityRepo.GetCityByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if city == nil {
		return nil, nil // City not found
	}

	detail, err := s.cityDetail(ctx, city)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindNearestCity finds the closest city to the given coordinates
func (s *Service) FindNearestCity(ctx context.Context, lat, lon float64) (*model.NearestCityResponse, error) {
	city, dist, err := s.cityRepo.FindNearestCity(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearest city: %w", err)
	}
	if city == nil {
		return nil, nil
	}

	detail, err := s.cityDetail(ctx, city)
	if err != nil {
		return nil, err
	}

	return &model.NearestCityResponse{
		City:               detail,
		RequestCoordinates: model.Coordinate{Lat: lat, Lon: lon},
		DistanceKm:         dist,
	}, nil
}

func (s *Service) cityDetail(ctx context.Context, city *model.City) (model.CityDetailResponse, error) {
	countryName, err := s.countryRepo.GetCountryName(ctx, city.CountryCode)
	if err != nil {
		return model.CityDetailResponse{}, fmt.Errorf("failed to get country name: %w", err)
	}

	return model.CityDetailResponse{
		ID:          city.ID,
		Name:        city.NameDefault,
		Country:     countryName,
		Coordinates: model.Coordinate{Lat: city.Lat, Lon: city.Lon},
		Elevation:   city.Elevation,
		Population:  city.Population,
		Timezone:    city.Timezone,
		IATACode:    city.IATACode,
	}, nil
}
