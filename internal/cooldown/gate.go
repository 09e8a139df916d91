// Package cooldown suppresses repeat alerts of the same kind for the same
// instrument within a fixed window, preventing alert storms.
package cooldown

import (
	"sync"
	"time"

	"stockwatch/internal/model"
)

// DefaultWindow is the suppression window between two alerts of the same
// kind for the same instrument.
const DefaultWindow = 30 * time.Minute

// Gate tracks last-fired times per (instrument, kind). It is shared
// between the monitor loop and the command listener, so all access is
// mutex-guarded.
type Gate struct {
	mu     sync.Mutex
	window time.Duration
	fired  map[string]time.Time
	onDeny func()

	now func() time.Time // injectable for tests
}

// New creates a Gate with the given suppression window.
func New(window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Gate{
		window: window,
		fired:  make(map[string]time.Time),
		now:    time.Now,
	}
}

// Permit reports whether an alert of the given kind may fire for the
// instrument now. A true result records the fire time; a false result
// leaves state untouched.
func (g *Gate) Permit(code string, kind model.AlertKind) bool {
	key := code + ":" + string(kind)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if last, ok := g.fired[key]; ok && now.Sub(last) < g.window {
		if g.onDeny != nil {
			g.onDeny()
		}
		return false
	}
	g.fired[key] = now
	return true
}

// OnDeny registers a callback invoked for every suppressed candidate;
// feeds the suppression counter.
func (g *Gate) OnDeny(fn func()) {
	g.mu.Lock()
	g.onDeny = fn
	g.mu.Unlock()
}

// Len returns the number of tracked (instrument, kind) entries.
func (g *Gate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.fired)
}
