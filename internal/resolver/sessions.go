package resolver

import (
	"sync"
	"time"

	"github.com/alexivanou/nearport/internal/observability"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Sessions keeps one Resolver per client session so that a client asking
// again supersedes its own earlier request. Idle sessions expire after ttl
// and the least recently used ones are dropped beyond size.
type Sessions struct {
	mu      sync.Mutex
	cache   *expirable.LRU[string, *Resolver]
	factory func() *Resolver
	metrics *observability.Metrics
}

// NewSessions creates a session registry. factory builds the resolver for a
// session seen for the first time.
func NewSessions(size int, ttl time.Duration, factory func() *Resolver, metrics *observability.Metrics) *Sessions {
	return &Sessions{
		cache:   expirable.NewLRU[string, *Resolver](size, nil, ttl),
		factory: factory,
		metrics: metrics,
	}
}

// Get returns the resolver for id, creating it if needed.
func (s *Sessions) Get(id string) *Resolver {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.cache.Get(id); ok {
		return r
	}
	r := s.factory()
	s.cache.Add(id, r)
	s.metrics.SetSessions(s.cache.Len())
	return r
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	return s.cache.Len()
}
