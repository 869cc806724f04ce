package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexivanou/nearport/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCityRepository implements repository.CityRepository interface
type MockCityRepository struct {
	mock.Mock
}

func (m *MockCityRepository) FindNearestCity(ctx context.Context, lat, lon float64) (*model.City, float64, error) {
	args := m.Called(ctx, lat, lon)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*model.City), args.Get(1).(float64), args.Error(2)
}

func (m *MockCityRepository) GetCityByID(ctx context.Context, id int) (*model.City, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	args := m.Called(ctx, cities)
	return args.Error(0)
}

// MockCountryRepository implements repository.CountryRepository interface
type MockCountryRepository struct {
	mock.Mock
}

func (m *MockCountryRepository) GetCountryName(ctx context.Context, countryCode string) (string, error) {
	args := m.Called(ctx, countryCode)
	return args.String(0), args.Error(1)
}

func (m *MockCountryRepository) BulkInsertCountries(ctx context.Context, countries []model.Country) error {
	args := m.Called(ctx, countries)
	return args.Error(0)
}

// MockAirportRepository implements repository.AirportRepository interface
type MockAirportRepository struct {
	mock.Mock
}

func (m *MockAirportRepository) FindNearestAirports(ctx context.Context, lat, lon float64, limit int) ([]model.NearbyAirport, error) {
	args := m.Called(ctx, lat, lon, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NearbyAirport), args.Error(1)
}

func (m *MockAirportRepository) BulkInsertAirports(ctx context.Context, airports []model.Airport) error {
	args := m.Called(ctx, airports)
	return args.Error(0)
}

// MockPlaceRepository implements repository.PlaceRepository interface
type MockPlaceRepository struct {
	mock.Mock
}

func (m *MockPlaceRepository) SearchPlaces(ctx context.Context, query string, limit int) ([]model.PlaceRow, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PlaceRow), args.Error(1)
}

type mocks struct {
	city    *MockCityRepository
	country *MockCountryRepository
	airport *MockAirportRepository
	place   *MockPlaceRepository
}

func newTestService() (*Service, mocks) {
	m := mocks{
		city:    new(MockCityRepository),
		country: new(MockCountryRepository),
		airport: new(MockAirportRepository),
		place:   new(MockPlaceRepository),
	}
	return NewService(m.city, m.country, m.airport, m.place), m
}

func TestService_GetCityByID(t *testing.T) {
	iata := "DUB"
	dublin := &model.City{ID: 2964574, CountryCode: "IE", NameDefault: "Dublin", Population: 1024027, Lat: 53.33306, Lon: -6.24889, IATACode: &iata}

	t.Run("found", func(t *testing.T) {
		svc, m := newTestService()
		m.city.On("GetCityByID", mock.Anything, 2964574).Return(dublin, nil)
		m.country.On("GetCountryName", mock.Anything, "IE").Return("Ireland", nil)

		resp, err := svc.GetCityByID(context.Background(), 2964574)
		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, "Dublin", resp.Name)
		assert.Equal(t, "Ireland", resp.Country)
		assert.Equal(t, &iata, resp.IATACode)
	})

	t.Run("not found", func(t *testing.T) {
		svc, m := newTestService()
		m.city.On("GetCityByID", mock.Anything, 1).Return(nil, nil)

		resp, err := svc.GetCityByID(context.Background(), 1)
		assert.NoError(t, err)
		assert.Nil(t, resp)
	})

	t.Run("repository error", func(t *testing.T) {
		svc, m := newTestService()
		m.city.On("GetCityByID", mock.Anything, 1).Return(nil, errors.New("db down"))

		_, err := svc.GetCityByID(context.Background(), 1)
		assert.ErrorContains(t, err, "failed to get city")
	})
}

func TestService_FindNearestCity(t *testing.T) {
	svc, m := newTestService()
	m.city.On("FindNearestCity", mock.Anything, 53.35, -6.26).
		Return(&model.City{ID: 2964574, CountryCode: "IE", NameDefault: "Dublin", Lat: 53.33306, Lon: -6.24889}, 2.1, nil)
	m.country.On("GetCountryName", mock.Anything, "IE").Return("Ireland", nil)

	resp, err := svc.FindNearestCity(context.Background(), 53.35, -6.26)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "Dublin", resp.City.Name)
	assert.Equal(t, 2.1, resp.DistanceKm)
	assert.Equal(t, model.Coordinate{Lat: 53.35, Lon: -6.26}, resp.RequestCoordinates)
	m.city.AssertExpectations(t)
	m.country.AssertExpectations(t)
}

func TestService_FindNearestCity_Empty(t *testing.T) {
	svc, m := newTestService()
	m.city.On("FindNearestCity", mock.Anything, 0.0, 0.0).Return(nil, 0.0, nil)

	resp, err := svc.FindNearestCity(context.Background(), 0, 0)
	assert.NoError(t, err)
	assert.Nil(t, resp)
	m.country.AssertNotCalled(t, "GetCountryName", mock.Anything, mock.Anything)
}
