// Package resolver turns "use my current location" into the nearest airport.
//
// A resolution runs permission check, one-shot location fix (bounded by a
// timeout), reverse geocoding, and an autocomplete search, strictly in that
// order. Each Resolver runs at most one resolution at a time: a new call
// supersedes the previous one, whose result is then never delivered.
package resolver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexivanou/nearport/internal/geo"
	"github.com/alexivanou/nearport/internal/model"
	"github.com/alexivanou/nearport/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DefaultFixTimeout bounds the wait for a location fix.
const DefaultFixTimeout = 10 * time.Second

const tracerName = "github.com/alexivanou/nearport/internal/resolver"

// LocationProvider is the device (or stand-in) that knows where the user is.
type LocationProvider interface {
	PermissionState(ctx context.Context) PermissionState
	// RequestPermission prompts for access and returns the answer.
	RequestPermission(ctx context.Context) (PermissionState, error)
	// CurrentFix returns a single location reading.
	CurrentFix(ctx context.Context) (model.Coordinate, error)
}

// ReverseGeocoder turns a coordinate into place components.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, c model.Coordinate) (model.PlaceComponents, error)
}

// PlaceSearcher is the airport/city autocomplete service.
type PlaceSearcher interface {
	SearchPlaces(ctx context.Context, query string) ([]model.CandidateAirport, error)
}

// Result is the single value delivered for a non-superseded resolution.
// Exactly one of Location and Err is set.
type Result struct {
	Location *model.ResolvedLocation
	Err      error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the time source used for the fix timeout.
func WithClock(c clockwork.Clock) Option {
	return func(r *Resolver) { r.clock = c }
}

// WithFixTimeout overrides DefaultFixTimeout.
func WithFixTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.fixTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithStateHook registers fn to be called on every state change of the
// current resolution. fn runs with the resolver lock held and must not call
// back into the resolver.
func WithStateHook(fn func(ResolutionState)) Option {
	return func(r *Resolver) { r.onState = fn }
}

// Resolver resolves the user's location to the nearest airport.
type Resolver struct {
	location   LocationProvider
	geocoder   ReverseGeocoder
	places     PlaceSearcher
	clock      clockwork.Clock
	fixTimeout time.Duration
	logger     *zap.Logger
	metrics    *observability.Metrics
	tracer     trace.Tracer
	onState    func(ResolutionState)

	generation atomic.Uint64

	mu     sync.RWMutex
	state  ResolutionState
	cancel context.CancelFunc
}

// New creates a resolver. location may be nil when every call goes through ResolveFrom.
func New(location LocationProvider, geocoder ReverseGeocoder, places PlaceSearcher, opts ...Option) *Resolver {
	r := &Resolver{
		location:   location,
		geocoder:   geocoder,
		places:     places,
		clock:      clockwork.NewRealClock(),
		fixTimeout: DefaultFixTimeout,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the current observable state.
func (r *Resolver) State() ResolutionState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Resolve starts a resolution with the resolver's own location provider.
func (r *Resolver) Resolve(ctx context.Context) <-chan Result {
	return r.ResolveFrom(ctx, r.location)
}

// ResolveFrom starts a resolution using location for the permission and fix
// stages. Any resolution still in flight on r is superseded: its context is
// cancelled and its channel is closed without a value. The returned channel
// receives exactly one Result unless this call is itself superseded.
func (r *Resolver) ResolveFrom(ctx context.Context, location LocationProvider) <-chan Result {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = cancel
	gen := r.generation.Add(1)
	r.setStateLocked(ResolutionState{Stage: StageIdle})
	r.mu.Unlock()

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer cancel()

		requestID := uuid.NewString()
		logger := r.logger.With(zap.String("request_id", requestID), zap.Uint64("generation", gen))

		loc, err := r.run(ctx, gen, requestID, location, logger)
		res, ok := r.finish(gen, loc, err, logger)
		if !ok {
			return
		}
		out <- res
	}()
	return out
}

// ResolveWait runs Resolve and blocks for its outcome. It returns
// ErrSuperseded when a newer call took over.
func (r *Resolver) ResolveWait(ctx context.Context) (model.ResolvedLocation, error) {
	return Wait(r.Resolve(ctx))
}

// Wait blocks on a channel returned by Resolve or ResolveFrom.
func Wait(results <-chan Result) (model.ResolvedLocation, error) {
	res, ok := <-results
	if !ok {
		return model.ResolvedLocation{}, ErrSuperseded
	}
	if res.Err != nil {
		return model.ResolvedLocation{}, res.Err
	}
	return *res.Location, nil
}

func (r *Resolver) run(ctx context.Context, gen uint64, requestID string, location LocationProvider, logger *zap.Logger) (model.ResolvedLocation, error) {
	ctx, span := r.tracer.Start(ctx, "resolver.Resolve", trace.WithAttributes(
		attribute.String("resolver.request_id", requestID),
		attribute.Int64("resolver.generation", int64(gen)),
	))
	defer span.End()

	if location == nil {
		return model.ResolvedLocation{}, newError(KindLocationUnavailable, errors.New("no location provider"))
	}

	err := r.stage(ctx, gen, StageRequestingPermission, logger, func(ctx context.Context) error {
		return r.authorize(ctx, location)
	})
	if err != nil {
		return model.ResolvedLocation{}, err
	}

	var fix model.Coordinate
	err = r.stage(ctx, gen, StageAcquiringLocation, logger, func(ctx context.Context) error {
		var ferr error
		fix, ferr = r.acquireFix(ctx, location)
		return ferr
	})
	if err != nil {
		return model.ResolvedLocation{}, err
	}

	var placeName string
	err = r.stage(ctx, gen, StageGeocoding, logger, func(ctx context.Context) error {
		components, gerr := r.geocoder.ReverseGeocode(ctx, fix)
		if gerr != nil {
			return newError(KindGeocodingFailed, gerr)
		}
		placeName = PlaceName(components)
		if placeName == "" {
			return newError(KindGeocodingFailed, errors.New("no place found for coordinate"))
		}
		return nil
	})
	if err != nil {
		return model.ResolvedLocation{}, err
	}

	var chosen model.CandidateAirport
	err = r.stage(ctx, gen, StageSearching, logger, func(ctx context.Context) error {
		candidates, serr := r.places.SearchPlaces(ctx, SearchQuery(placeName))
		if serr != nil {
			return newError(KindAirportNotFound, serr)
		}
		var ok bool
		if chosen, ok = SelectAirport(fix, candidates); !ok {
			return newError(KindAirportNotFound, nil)
		}
		return nil
	})
	if err != nil {
		return model.ResolvedLocation{}, err
	}

	span.SetAttributes(attribute.String("resolver.code", chosen.Code))
	return model.ResolvedLocation{
		PlaceName:  placeName,
		Code:       chosen.Code,
		Coordinate: fix,
	}, nil
}

// stage moves gen into s, unless superseded, and runs fn inside a span.
func (r *Resolver) stage(ctx context.Context, gen uint64, s Stage, logger *zap.Logger, fn func(context.Context) error) error {
	if !r.transition(gen, s) {
		return ErrSuperseded
	}
	logger.Debug("Resolution stage", zap.Stringer("stage", s))

	ctx, span := r.tracer.Start(ctx, "resolver."+s.String())
	defer span.End()

	start := r.clock.Now()
	err := fn(ctx)
	r.metrics.ObserveStage(s.String(), r.clock.Since(start))

	if err != nil && KindOf(err) == "" && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (r *Resolver) authorize(ctx context.Context, location LocationProvider) error {
	d := DecidePermission(location.PermissionState(ctx))
	if d.Action == ActionRequest {
		answer, err := location.RequestPermission(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return newError(KindPermissionDenied, err)
		}
		d = decideAfterRequest(answer)
	}
	if d.Action == ActionFail {
		return d.Err
	}
	return nil
}

type fixResult struct {
	coord model.Coordinate
	err   error
}

// acquireFix waits for one location reading. If the timeout fires first the
// resolution fails; a reading that arrives later is dropped.
func (r *Resolver) acquireFix(ctx context.Context, location LocationProvider) (model.Coordinate, error) {
	fixes := make(chan fixResult, 1)
	go func() {
		c, err := location.CurrentFix(ctx)
		fixes <- fixResult{coord: c, err: err}
	}()

	timer := r.clock.NewTimer(r.fixTimeout)
	defer timer.Stop()

	select {
	case f := <-fixes:
		if f.err != nil {
			if ctx.Err() != nil {
				return model.Coordinate{}, ctx.Err()
			}
			return model.Coordinate{}, newError(KindLocationUnavailable, f.err)
		}
		if !geo.Valid(f.coord) {
			return model.Coordinate{}, newError(KindLocationUnavailable, geo.ErrInvalidCoordinate)
		}
		return f.coord, nil
	case <-timer.Chan():
		return model.Coordinate{}, newError(KindTimeout, nil)
	case <-ctx.Done():
		return model.Coordinate{}, ctx.Err()
	}
}

func (r *Resolver) transition(gen uint64, s Stage) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generation.Load() != gen {
		return false
	}
	r.setStateLocked(ResolutionState{Stage: s})
	return true
}

// finish records the terminal state for gen. It reports false when gen was
// superseded, in which case nothing may be delivered.
func (r *Resolver) finish(gen uint64, loc model.ResolvedLocation, err error, logger *zap.Logger) (Result, bool) {
	r.mu.Lock()
	if r.generation.Load() != gen {
		r.mu.Unlock()
		logger.Debug("Resolution superseded")
		r.metrics.ObserveResolution("superseded")
		return Result{}, false
	}

	var res Result
	var state ResolutionState
	if err != nil {
		res.Err = err
		state = ResolutionState{Stage: StageFailed, Reason: KindOf(err)}
	} else {
		res.Location = &loc
		state = ResolutionState{Stage: StageSuccess}
	}
	r.setStateLocked(state)
	r.mu.Unlock()

	if err != nil {
		outcome := string(KindOf(err))
		if outcome == "" {
			outcome = "canceled"
		}
		logger.Warn("Resolution failed", zap.String("kind", outcome), zap.Error(err))
		r.metrics.ObserveResolution(outcome)
		return res, true
	}

	logger.Info("Resolved nearest airport",
		zap.String("code", loc.Code),
		zap.String("place", loc.PlaceName),
	)
	r.metrics.ObserveResolution("success")
	return res, true
}

func (r *Resolver) setStateLocked(s ResolutionState) {
	r.state = s
	if r.onState != nil {
		r.onState(s)
	}
}
