package dashboard

import (
	"time"

	"github.com/krama-desa/iuran/internal/cache"
	"github.com/krama-desa/iuran/internal/metrics"
)

// Factory builds the State of a new session.
type Factory func(id Identity) *State

// Registry owns one State per session. Sessions idle for longer than the
// TTL are forgotten and start over empty.
type Registry struct {
	sessions *cache.TTLCache[string, *State]
	ttl      time.Duration
	factory  Factory
	metrics  *metrics.Collector
}

// NewRegistry creates a Registry. m may be nil.
func NewRegistry(ttl time.Duration, factory Factory, m *metrics.Collector) *Registry {
	return NewRegistryWithClock(ttl, factory, m, time.Now)
}

// NewRegistryWithClock is NewRegistry with an explicit clock.
func NewRegistryWithClock(ttl time.Duration, factory Factory, m *metrics.Collector, now func() time.Time) *Registry {
	return &Registry{
		sessions: cache.NewWithClock[string, *State](now),
		ttl:      ttl,
		factory:  factory,
		metrics:  m,
	}
}

// Get returns the State of sessionID, creating it for id if needed, and
// extends the session's lifetime.
func (r *Registry) Get(sessionID string, id Identity) *State {
	state, created := r.sessions.GetOrCreate(sessionID, r.ttl, func() *State {
		return r.factory(id)
	})
	if created {
		r.metrics.SetActiveSessions(r.sessions.Len())
	}
	return state
}

// Drop forgets sessionID.
func (r *Registry) Drop(sessionID string) {
	r.sessions.Delete(sessionID)
	r.metrics.SetActiveSessions(r.sessions.Len())
}

// Sweep forgets expired sessions and returns how many were dropped.
func (r *Registry) Sweep() int {
	n := r.sessions.Sweep()
	r.metrics.SetActiveSessions(r.sessions.Len())
	return n
}

// Len counts live sessions.
func (r *Registry) Len() int {
	return r.sessions.Len()
}
