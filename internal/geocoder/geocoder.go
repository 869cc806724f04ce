package geocoder

import (
	"fmt"

	"github.com/alexivanou/nearport/internal/config"
	"github.com/alexivanou/nearport/internal/observability"
	"github.com/alexivanou/nearport/internal/resolver"
	"go.uber.org/zap"
)

// FromConfig builds the configured reverse geocoder, behind a cache when
// cfg.CacheSize is positive.
func FromConfig(
	cfg config.GeocoderConfig,
	cities CityFinder,
	countries CountryNamer,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (resolver.ReverseGeocoder, error) {
	var g resolver.ReverseGeocoder
	switch cfg.Provider {
	case config.GeocoderLocal, "":
		g = NewLocal(cities, countries, cfg.MaxDistanceKm, metrics)
	case config.GeocoderMapbox:
		g = NewMapbox(cfg.MapboxToken, cfg.MapboxBaseURL, cfg.Timeout, metrics, logger)
	default:
		return nil, fmt.Errorf("unknown geocoder provider %q", cfg.Provider)
	}

	if cfg.CacheSize > 0 {
		g = NewCached(g, cfg.CacheSize, cfg.CacheTTL, metrics)
	}
	logger.Info("Reverse geocoder ready",
		zap.String("provider", cfg.Provider),
		zap.Int("cache_size", cfg.CacheSize),
	)
	return g, nil
}
