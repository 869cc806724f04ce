// Package geocoder turns coordinates into place components.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/observability"
	"go.uber.org/zap"
)

// DefaultMapboxURL is the public Mapbox API host.
const DefaultMapboxURL = "https://api.mapbox.com"

// Mapbox reverse geocodes with the Mapbox Geocoding v5 API.
type Mapbox struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewMapbox creates a Mapbox geocoding client. An empty baseURL uses DefaultMapboxURL.
func NewMapbox(token, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Mapbox {
	if baseURL == "" {
		baseURL = DefaultMapboxURL
	}
	return &Mapbox{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/") + "/geocoding/v5/mapbox.places",
		metrics: metrics,
		logger:  logger,
	}
}

// ReverseGeocode returns the components of the place containing c. A point
// Mapbox knows nothing about yields empty components and no error.
func (m *Mapbox) ReverseGeocode(ctx context.Context, c model.Coordinate) (model.PlaceComponents, error) {
	// Mapbox uses lon,lat order.
	coord := fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat)
	params := url.Values{
		"access_token": {m.token},
		"limit":        {"1"},
		"types":        {"place"},
	}
	u := fmt.Sprintf("%s/%s.json?%s", m.baseURL, coord, params.Encode())

	components, err := m.doRequest(ctx, u)
	switch {
	case err != nil:
		m.metrics.ObserveGeocode("mapbox", "error")
		m.logger.Warn("Mapbox reverse geocode failed", zap.Error(err))
	case components == (model.PlaceComponents{}):
		m.metrics.ObserveGeocode("mapbox", "empty")
	default:
		m.metrics.ObserveGeocode("mapbox", "success")
	}
	return components, err
}

func (m *Mapbox) doRequest(ctx context.Context, fullURL string) (model.PlaceComponents, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return model.PlaceComponents{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return model.PlaceComponents{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return model.PlaceComponents{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return model.PlaceComponents{}, fmt.Errorf("decode response: %w", err)
	}

	if len(mapboxResp.Features) == 0 {
		return model.PlaceComponents{}, nil
	}
	return mapboxResp.Features[0].components(), nil
}

// components flattens a feature and its context into place components.
// Context ids look like "region.12345"; the prefix names the layer.
func (f feature) components() model.PlaceComponents {
	var pc model.PlaceComponents
	if slices.Contains(f.PlaceType, "place") || slices.Contains(f.PlaceType, "locality") {
		pc.Locality = f.Text
	}
	for _, c := range f.Context {
		layer, _, _ := strings.Cut(c.ID, ".")
		switch layer {
		case "place":
			if pc.Locality == "" {
				pc.Locality = c.Text
			}
		case "district":
			pc.SubAdministrativeArea = c.Text
		case "region":
			pc.AdministrativeArea = c.Text
		case "country":
			pc.Country = c.Text
			pc.CountryCode = strings.ToUpper(c.ShortCode)
		}
	}
	return pc
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID        string        `json:"id"`
	PlaceType []string      `json:"place_type"`
	Text      string        `json:"text"`
	PlaceName string        `json:"place_name"`
	Center    []float64     `json:"center"` // [lon, lat]
	Context   []contextItem `json:"context"`
}

type contextItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	ShortCode string `json:"short_code"`
}
