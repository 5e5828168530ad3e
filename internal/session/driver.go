package session

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/notematch/internal/game"
)

// Driver is the real-time collaborator of the registry's engines: on every
// tick it fires due transitions and refreshes the elapsed timer.
type Driver struct {
	Registry *Registry
	Interval time.Duration
	// IdleTimeout removes sessions unused for this long; zero keeps them.
	IdleTimeout time.Duration
	// OnEvents receives the events each session produced during a tick.
	OnEvents func(*Session, []game.Event)
	Logger   *log.Logger
}

// Run ticks until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) {
	interval := d.Interval
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.Tick(d.Registry.Clock().Now())
		case <-ctx.Done():
			return
		}
	}
}

// Tick advances every session to now.
func (d *Driver) Tick(now time.Time) {
	d.Registry.Each(func(s *Session) {
		Step(s.Engine, now)
		if events := s.Collect(); len(events) > 0 && d.OnEvents != nil {
			d.OnEvents(s, events)
		}
	})

	if d.IdleTimeout > 0 {
		if n := d.Registry.Expire(now, d.IdleTimeout); n > 0 && d.Logger != nil {
			d.Logger.Debug("expired idle sessions", "count", n, "live", d.Registry.Len())
		}
	}
}

// Step fires the engine's due transitions and, while the game is being
// played, updates its elapsed timer. It returns the number of transitions
// fired.
func Step(e *game.Engine, now time.Time) int {
	fired := e.Advance(now)
	if e.Phase() == game.PhasePlaying {
		e.UpdateTimer(e.Elapsed(now))
	}
	return fired
}
