package geocoder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result model.PlaceComponents
	err    error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _ model.Coordinate) (model.PlaceComponents, error) {
	m.calls++
	return m.result, m.err
}

func TestCached_Hit(t *testing.T) {
	inner := &countingGeocoder{result: model.PlaceComponents{Locality: "Austin", Country: "United States"}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCached(inner, 10, time.Hour, metrics)

	r1, err := cached.ReverseGeocode(context.Background(), model.Coordinate{Lat: 30.26721, Lon: -97.74311})
	require.NoError(t, err)
	assert.Equal(t, "Austin", r1.Locality)

	// Same point at the fourth decimal.
	r2, err := cached.ReverseGeocode(context.Background(), model.Coordinate{Lat: 30.26724, Lon: -97.74308})
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")))
}

func TestCached_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: model.PlaceComponents{Locality: "Place"}}
	cached := NewCached(inner, 10, time.Hour, nil)

	_, _ = cached.ReverseGeocode(context.Background(), model.Coordinate{Lat: 30.2672, Lon: -97.7431})
	_, _ = cached.ReverseGeocode(context.Background(), model.Coordinate{Lat: 32.7767, Lon: -96.7970})

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, cached.Len())
}

func TestCached_EmptyAndErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCached(inner, 10, time.Hour, nil)
	coord := model.Coordinate{Lat: 0, Lon: -30}

	_, _ = cached.ReverseGeocode(context.Background(), coord)
	_, _ = cached.ReverseGeocode(context.Background(), coord)
	assert.Equal(t, 2, inner.calls)

	inner.err = errors.New("rate limited")
	_, err := cached.ReverseGeocode(context.Background(), coord)
	assert.Error(t, err)
	assert.Equal(t, 0, cached.Len())
}

func TestCached_Eviction(t *testing.T) {
	inner := &countingGeocoder{result: model.PlaceComponents{Locality: "Somewhere"}}
	cached := NewCached(inner, 2, time.Hour, nil)

	for _, lat := range []float64{1, 2, 3} {
		_, _ = cached.ReverseGeocode(context.Background(), model.Coordinate{Lat: lat})
	}
	assert.Equal(t, 2, cached.Len())

	// The oldest key was evicted.
	_, _ = cached.ReverseGeocode(context.Background(), model.Coordinate{Lat: 1})
	assert.Equal(t, 4, inner.calls)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "48.8566,2.3522", cacheKey(model.Coordinate{Lat: 48.85661, Lon: 2.35222}))
	assert.Equal(t, "-33.8688,151.2093", cacheKey(model.Coordinate{Lat: -33.86882, Lon: 151.20929}))
}

func TestFromConfig(t *testing.T) {
	logger := zap.NewNop()

	g, err := FromConfig(config.GeocoderConfig{Provider: config.GeocoderLocal}, nil, nil, nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &Local{}, g)

	g, err = FromConfig(config.GeocoderConfig{Provider: config.GeocoderMapbox, MapboxToken: "pk.test", CacheSize: 10, CacheTTL: time.Minute}, nil, nil, nil, logger)
	require.NoError(t, err)
	require.IsType(t, &Cached{}, g)
	assert.IsType(t, &Mapbox{}, g.(*Cached).inner)

	_, err = FromConfig(config.GeocoderConfig{Provider: "osm"}, nil, nil, nil, logger)
	assert.ErrorContains(t, err, "unknown geocoder provider")
}
