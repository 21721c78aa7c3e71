package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/solix-energy/solix/internal/analysis"
)

// DefaultIdleTTL is how long an untouched session is kept.
const DefaultIdleTTL = 12 * time.Hour

// Registry maps session ids to sessions, creating them on first use.
type Registry struct {
	deps Deps
	ttl  time.Duration

	mu       sync.Mutex
	sessions map[string]*entry
	now      func() time.Time
}

type entry struct {
	session  *Session
	lastSeen time.Time
}

func NewRegistry(deps Deps, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultIdleTTL
	}
	return &Registry{deps: deps, ttl: ttl, sessions: make(map[string]*entry), now: time.Now}
}

// Get returns the session for id, creating it if needed.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		e = &entry{session: NewSession(id, r.deps)}
		r.sessions[id] = e
		log.Printf("[dashboard] new session %s", id)
	}
	e.lastSeen = r.now()
	return e.session
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Prune drops sessions idle for longer than the TTL. Sessions with an
// analysis in flight are kept.
func (r *Registry) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	n := 0
	for id, e := range r.sessions {
		if e.lastSeen.After(cutoff) {
			continue
		}
		if e.session.Analysis.Snapshot().Status == analysis.StatusSubmitting {
			continue
		}
		delete(r.sessions, id)
		n++
	}
	return n
}

// Run prunes on every tick until ctx ends.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Prune(); n > 0 {
				log.Printf("[dashboard] pruned %d idle sessions", n)
			}
		}
	}
}
