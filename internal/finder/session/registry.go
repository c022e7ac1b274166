// Package session keeps one aggregation State per client session in memory.
package session

import (
	"context"
	"sync"
	"time"

	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"

	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/library/log"
)

// Option customises a Registry.
type Option func(*Registry)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger overrides the registry logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

type entry struct {
	state    *model.State
	lastSeen time.Time
}

// Registry maps session ids to their State. Sessions not touched for
// idleTTL are dropped by Sweep.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	idleTTL  time.Duration
	now      func() time.Time
	logger   logSDK.Logger
}

// NewRegistry creates an empty registry; idleTTL <= 0 disables expiry.
func NewRegistry(idleTTL time.Duration, opts ...Option) *Registry {
	r := &Registry{
		sessions: map[string]*entry{},
		idleTTL:  idleTTL,
		now:      time.Now,
		logger:   log.Logger.Named("session"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Create starts a new session and returns its id.
func (r *Registry) Create() (string, *model.State) {
	id := uuid.NewString()
	state := model.NewState()

	r.mu.Lock()
	r.sessions[id] = &entry{state: state, lastSeen: r.now()}
	r.mu.Unlock()

	return id, state
}

// Get returns the State of id and refreshes its idle timer.
func (r *Registry) Get(id string) (*model.State, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.state, true
}

// Delete drops id, reporting whether it existed.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops every session idle for longer than the TTL and returns how many were dropped.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}

	deadline := r.now().Add(-r.idleTTL)
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(deadline) {
			delete(r.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps periodically until ctx is done. It always returns nil so it can
// run inside an errgroup next to the server.
func (r *Registry) Run(ctx context.Context) error {
	if r.idleTTL <= 0 {
		<-ctx.Done()
		return nil
	}

	interval := r.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("expired idle sessions", zap.Int("count", n), zap.Int("remaining", r.Len()))
			}
		}
	}
}
