package service

import (
	"context"
	"time"

	"github.com/alexivanou/nearport/internal/location"
	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/observability"
	"github.com/alexivanou/nearport/internal/resolver"
)

// LocatorConfig bounds the session registry
type LocatorConfig struct {
	MaxSessions int
	SessionTTL  time.Duration
}

// Locator answers "where is my nearest airport" for API clients. Clients
// that send a session id share one resolver, so a repeated request
// supersedes the earlier one.
type Locator struct {
	geocoder resolver.ReverseGeocoder
	places   resolver.PlaceSearcher
	ipLookup *location.IPLookup
	opts     []resolver.Option
	sessions *resolver.Sessions
}

// NewLocator creates a locator. ipLookup may be nil, in which case clients
// that share no coordinates are treated as having denied access.
func NewLocator(
	geocoder resolver.ReverseGeocoder,
	places resolver.PlaceSearcher,
	ipLookup *location.IPLookup,
	cfg LocatorConfig,
	metrics *observability.Metrics,
	opts ...resolver.Option,
) *Locator {
	l := &Locator{
		geocoder: geocoder,
		places:   places,
		ipLookup: ipLookup,
		opts:     opts,
	}
	l.sessions = resolver.NewSessions(cfg.MaxSessions, cfg.SessionTTL, l.newResolver, metrics)
	return l
}

// Resolve runs one resolution for req and waits for its outcome.
func (l *Locator) Resolve(ctx context.Context, req model.ResolveRequest) (*model.ResolvedLocation, error) {
	var r *resolver.Resolver
	if req.SessionID != "" {
		r = l.sessions.Get(req.SessionID)
	} else {
		r = l.newResolver()
	}

	loc, err := resolver.Wait(r.ResolveFrom(ctx, l.providerFor(req)))
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// ActiveSessions returns the number of live client sessions.
func (l *Locator) ActiveSessions() int {
	return l.sessions.Len()
}

func (l *Locator) providerFor(req model.ResolveRequest) resolver.LocationProvider {
	if req.Coordinate != nil || l.ipLookup == nil {
		return location.NewStatic(req.Coordinate)
	}
	return l.ipLookup.ForIP(req.ClientIP)
}

func (l *Locator) newResolver() *resolver.Resolver {
	return resolver.New(nil, l.geocoder, l.places, l.opts...)
}
