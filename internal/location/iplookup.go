package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/resolver"
	"go.uber.org/zap"
)

// ErrNoPosition is returned when a provider has no position to give.
var ErrNoPosition = errors.New("no position available")

// IPLookup approximates a client's position from its IP address using an
// ip-api.com compatible JSON endpoint.
type IPLookup struct {
	enabled    bool
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewIPLookup creates the lookup client. A disabled lookup reports location
// services as off.
func NewIPLookup(enabled bool, baseURL string, timeout time.Duration, logger *zap.Logger) *IPLookup {
	return &IPLookup{
		enabled: enabled,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Enabled reports whether lookups are allowed.
func (l *IPLookup) Enabled() bool {
	return l.enabled
}

// Locate returns the approximate position of ip.
func (l *IPLookup) Locate(ctx context.Context, ip string) (model.Coordinate, error) {
	params := url.Values{"fields": {"status,message,lat,lon"}}
	u := fmt.Sprintf("%s/json/%s?%s", l.baseURL, url.PathEscape(ip), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return model.Coordinate{}, fmt.Errorf("ip lookup request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return model.Coordinate{}, fmt.Errorf("ip lookup error: status %d: %s", resp.StatusCode, body)
	}

	var r ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return model.Coordinate{}, fmt.Errorf("decode response: %w", err)
	}
	if r.Status != "success" {
		l.logger.Debug("IP lookup failed", zap.String("ip", ip), zap.String("message", r.Message))
		return model.Coordinate{}, fmt.Errorf("%w: %s", ErrNoPosition, r.Message)
	}
	return model.Coordinate{Lat: r.Lat, Lon: r.Lon}, nil
}

// ForIP returns a provider that locates ip on demand.
func (l *IPLookup) ForIP(ip string) resolver.LocationProvider {
	return &ipProvider{lookup: l, ip: ip}
}

type ipResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type ipProvider struct {
	lookup *IPLookup
	ip     string
}

func (p *ipProvider) PermissionState(context.Context) resolver.PermissionState {
	if !p.lookup.enabled {
		return resolver.PermissionServicesDisabled
	}
	if p.ip == "" {
		return resolver.PermissionDenied
	}
	return resolver.PermissionAuthorizedWhenInUse
}

func (p *ipProvider) RequestPermission(ctx context.Context) (resolver.PermissionState, error) {
	return p.PermissionState(ctx), nil
}

func (p *ipProvider) CurrentFix(ctx context.Context) (model.Coordinate, error) {
	return p.lookup.Locate(ctx, p.ip)
}
