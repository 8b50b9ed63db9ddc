// Package registry holds active game sessions in memory and evicts
// idle or finished ones on a timer.
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"guessquest/internal/game"
)

// ErrSessionNotFound means the session never existed or was evicted.
var ErrSessionNotFound = errors.New("session not found")

const (
	// DefaultIdleTimeout is how long a session may sit untouched
	// before eviction.
	DefaultIdleTimeout = 30 * time.Minute
	// DefaultRetention is how long a completed session stays readable
	// for summary requests.
	DefaultRetention = 5 * time.Minute

	sweepInterval = time.Minute
)

// Registry is a concurrency-safe session map with background cleanup.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session

	idleTimeout time.Duration
	retention   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a registry and starts its cleanup goroutine. Zero
// durations fall back to the defaults.
func New(idleTimeout, retention time.Duration) *Registry {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	r := &Registry{
		sessions:    make(map[string]*game.Session),
		idleTimeout: idleTimeout,
		retention:   retention,
		stop:        make(chan struct{}),
	}
	go r.janitor()
	return r
}

// Put registers a session under its ID.
func (r *Registry) Put(s *game.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
}

// Get returns the session or ErrSessionNotFound.
func (r *Registry) Get(id string) (*game.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops a session, if present.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the cleanup goroutine. Held sessions stay readable.
func (r *Registry) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *Registry) janitor() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep(time.Now())
		case <-r.stop:
			return
		}
	}
}

// sweep evicts idle sessions and completed sessions past retention.
func (r *Registry) sweep(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		idle := now.Sub(s.LastActive())
		var evict bool
		switch {
		case s.IsComplete() && idle > r.retention:
			evict = true
		case idle > r.idleTimeout:
			evict = true
		}
		if evict {
			delete(r.sessions, id)
			log.Debug().
				Str("session_id", id).
				Dur("idle", idle).
				Bool("complete", s.IsComplete()).
				Msg("evicted session")
		}
	}
}

// Sweep runs one cleanup pass immediately; the janitor calls the same
// logic on its ticker.
func (r *Registry) Sweep() {
	r.sweep(time.Now())
}
