package geocoder

import (
	"context"
	"fmt"
	"time"

	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/observability"
	"github.com/alexivanou/nearport/internal/resolver"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cached wraps a reverse geocoder with an expiring LRU cache. Keys are
// coordinates rounded to 4 decimal places (about 11 m).
type Cached struct {
	inner   resolver.ReverseGeocoder
	cache   *expirable.LRU[string, model.PlaceComponents]
	metrics *observability.Metrics
}

// NewCached creates a cache decorator around a geocoder.
func NewCached(inner resolver.ReverseGeocoder, size int, ttl time.Duration, metrics *observability.Metrics) *Cached {
	return &Cached{
		inner:   inner,
		cache:   expirable.NewLRU[string, model.PlaceComponents](size, nil, ttl),
		metrics: metrics,
	}
}

func (c *Cached) ReverseGeocode(ctx context.Context, coord model.Coordinate) (model.PlaceComponents, error) {
	key := cacheKey(coord)
	if pc, ok := c.cache.Get(key); ok {
		c.metrics.ObserveCache(true)
		return pc, nil
	}
	c.metrics.ObserveCache(false)

	pc, err := c.inner.ReverseGeocode(ctx, coord)
	if err != nil {
		return pc, err
	}
	// Only cache non-empty results so "nothing here" can be retried.
	if pc != (model.PlaceComponents{}) {
		c.cache.Add(key, pc)
	}
	return pc, nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int {
	return c.cache.Len()
}

func cacheKey(c model.Coordinate) string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}
