// Package attempts implements a process-local sliding-window limiter with
// lockout, keyed by an arbitrary identifier string. It is used to throttle
// repeated scrape triggers but carries no catalog-specific knowledge.
//
// State lives only in memory: a process restart resets all counters and
// lockouts. That is an accepted limitation, not something to work around.
package attempts

import (
	"sync"
	"time"
)

// Config holds limiter settings
type Config struct {
	MaxAttempts int           // failures allowed inside one window
	Window      time.Duration // rolling window for counting failures
	Lockout     time.Duration // how long an identifier is denied once the limit is hit
}

// DefaultConfig returns the default limiter settings
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		Window:      15 * time.Minute,
		Lockout:     30 * time.Minute,
	}
}

// Decision is the outcome of a Check call
type Decision struct {
	Allowed     bool
	Remaining   int       // attempts left before lockout, when allowed
	LockedUntil time.Time // zero unless denied
}

type entry struct {
	count       int
	firstFailed time.Time
	lockedUntil time.Time
}

// Limiter tracks failed attempts per identifier. Construct one per process
// and pass it to callers; tests build isolated instances.
type Limiter struct {
	mu      sync.Mutex
	config  Config
	entries map[string]*entry
	now     func() time.Time // swappable for tests
}

// New creates a limiter with the given config
func New(config Config) *Limiter {
	return &Limiter{
		config:  config,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Check reports whether the identifier may proceed. A live lockout denies; an
// elapsed window resets state and allows; otherwise the identifier is allowed
// while under MaxAttempts.
func (l *Limiter) Check(id string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[id]
	if !ok {
		return Decision{Allowed: true, Remaining: l.config.MaxAttempts}
	}

	if !e.lockedUntil.IsZero() {
		if now.Before(e.lockedUntil) {
			return Decision{Allowed: false, LockedUntil: e.lockedUntil}
		}
		// Lockout expired
		delete(l.entries, id)
		return Decision{Allowed: true, Remaining: l.config.MaxAttempts}
	}

	if now.Sub(e.firstFailed) > l.config.Window {
		delete(l.entries, id)
		return Decision{Allowed: true, Remaining: l.config.MaxAttempts}
	}

	remaining := l.config.MaxAttempts - e.count
	if remaining <= 0 {
		// Counter filled but lockout was never stamped: stamp it now
		e.lockedUntil = now.Add(l.config.Lockout)
		return Decision{Allowed: false, LockedUntil: e.lockedUntil}
	}
	return Decision{Allowed: true, Remaining: remaining}
}

// RecordFailure increments the rolling counter for the identifier, resetting
// it first when the previous failure fell outside the window. Reaching
// MaxAttempts stamps the lockout timestamp.
func (l *Limiter) RecordFailure(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[id]
	if !ok || now.Sub(e.firstFailed) > l.config.Window {
		e = &entry{firstFailed: now}
		l.entries[id] = e
	}

	e.count++
	if e.count >= l.config.MaxAttempts {
		e.lockedUntil = now.Add(l.config.Lockout)
	}
}

// Clear removes all state for the identifier, typically on success
func (l *Limiter) Clear(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, id)
}
