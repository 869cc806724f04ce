package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexivanou/nearport/internal/location"
	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/observability"
	"github.com/alexivanou/nearport/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, c model.Coordinate) (model.PlaceComponents, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(model.PlaceComponents), args.Error(1)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchPlaces(ctx context.Context, query string) ([]model.CandidateAirport, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CandidateAirport), args.Error(1)
}

var heathrow = model.Coordinate{Lat: 51.4775, Lon: -0.4614}

func newLondonLocator(t *testing.T, ipLookup *location.IPLookup) (*Locator, *MockGeocoder) {
	t.Helper()

	geocoder := new(MockGeocoder)
	geocoder.On("ReverseGeocode", mock.Anything, mock.Anything).Return(model.PlaceComponents{
		Locality:           "London",
		AdministrativeArea: "England",
		Country:            "United Kingdom",
	}, nil)
	searcher := new(MockSearcher)
	searcher.On("SearchPlaces", mock.Anything, "London").Return([]model.CandidateAirport{
		{Code: "LGW", Type: "airport", Latitude: "51.1481", Longitude: "-0.1903"},
		{Code: "LHR", Type: "airport", Latitude: "51.4706", Longitude: "-0.461941"},
		{Code: "LON", Type: "city", Latitude: "51.50853", Longitude: "-0.12574"},
	}, nil)

	l := NewLocator(geocoder, searcher, ipLookup, LocatorConfig{MaxSessions: 10, SessionTTL: time.Minute},
		observability.NewMetricsForTesting(), resolver.WithLogger(zap.NewNop()))
	return l, geocoder
}

func TestLocator_ResolveWithCoordinates(t *testing.T) {
	l, geocoder := newLondonLocator(t, nil)

	loc, err := l.Resolve(context.Background(), model.ResolveRequest{Coordinate: &heathrow})
	require.NoError(t, err)
	assert.Equal(t, "LHR", loc.Code)
	assert.Equal(t, "London, England, United Kingdom", loc.PlaceName)
	assert.Equal(t, heathrow, loc.Coordinate)
	geocoder.AssertCalled(t, "ReverseGeocode", mock.Anything, heathrow)
}

func TestLocator_NoCoordinatesNoLookup(t *testing.T) {
	l, geocoder := newLondonLocator(t, nil)

	_, err := l.Resolve(context.Background(), model.ResolveRequest{ClientIP: "81.2.69.142"})
	assert.ErrorIs(t, err, resolver.ErrPermissionDenied)
	geocoder.AssertNotCalled(t, "ReverseGeocode", mock.Anything, mock.Anything)
}

func TestLocator_DisabledIPLookup(t *testing.T) {
	l, _ := newLondonLocator(t, location.NewIPLookup(false, "http://unused", time.Second, zap.NewNop()))

	_, err := l.Resolve(context.Background(), model.ResolveRequest{ClientIP: "81.2.69.142"})
	assert.ErrorIs(t, err, resolver.ErrLocationUnavailable)
}

func TestLocator_IPLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/81.2.69.142", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","lat":51.4775,"lon":-0.4614}`))
	}))
	defer srv.Close()

	l, _ := newLondonLocator(t, location.NewIPLookup(true, srv.URL, 5*time.Second, zap.NewNop()))

	loc, err := l.Resolve(context.Background(), model.ResolveRequest{ClientIP: "81.2.69.142"})
	require.NoError(t, err)
	assert.Equal(t, "LHR", loc.Code)
}

func TestLocator_Sessions(t *testing.T) {
	l, _ := newLondonLocator(t, nil)

	for i := 0; i < 3; i++ {
		_, err := l.Resolve(context.Background(), model.ResolveRequest{Coordinate: &heathrow, SessionID: "abc"})
		require.NoError(t, err)
	}
	_, err := l.Resolve(context.Background(), model.ResolveRequest{Coordinate: &heathrow, SessionID: "def"})
	require.NoError(t, err)
	_, err = l.Resolve(context.Background(), model.ResolveRequest{Coordinate: &heathrow})
	require.NoError(t, err)

	assert.Equal(t, 2, l.ActiveSessions())
}
