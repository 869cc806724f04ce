package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nearport"

// Metrics holds the Prometheus collectors for resolutions and geocoding.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Resolutions     *prometheus.CounterVec   // labels: outcome={success,permission_denied,...,superseded}
	StageDuration   *prometheus.HistogramVec // labels: stage
	GeocodeRequests *prometheus.CounterVec   // labels: provider, outcome={success,error,empty}
	GeocodeCache    *prometheus.CounterVec   // labels: result={hit,miss}
	ActiveSessions  prometheus.Gauge
}

// NewMetrics creates all collectors and registers them with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Resolutions,
		m.StageDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.ActiveSessions,
	)
	return m
}

// NewMetricsForTesting creates unregistered collectors so tests can build
// as many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolutions_total",
			Help:      "Nearest-airport resolutions by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolution_stage_duration_seconds",
			Help:      "Time spent in each resolution stage.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"stage"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resolver_sessions",
			Help:      "Session-scoped resolvers currently held in memory.",
		}),
	}
}

// ObserveResolution counts a finished resolution.
func (m *Metrics) ObserveResolution(outcome string) {
	if m == nil {
		return
	}
	m.Resolutions.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveGeocode counts a reverse geocoding request.
func (m *Metrics) ObserveGeocode(provider, outcome string) {
	if m == nil {
		return
	}
	m.GeocodeRequests.WithLabelValues(provider, outcome).Inc()
}

// ObserveCache counts a cache lookup; hit selects the label.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.GeocodeCache.WithLabelValues("hit").Inc()
		return
	}
	m.GeocodeCache.WithLabelValues("miss").Inc()
}

// SetSessions reports the number of live session resolvers.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
