// Package session keeps the live game engines served to remote players and
// drives their scheduled transitions in real time.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/notematch/internal/config"
	"github.com/vovakirdan/notematch/internal/core"
	"github.com/vovakirdan/notematch/internal/game"
	"github.com/vovakirdan/notematch/internal/notes"
)

// ErrNotFound is returned for unknown session ids.
var ErrNotFound = errors.New("session not found")

// maxRecentEvents bounds the per-session event history.
const maxRecentEvents = 64

// ID identifies a session.
type ID string

// Session is one player's game.
type Session struct {
	ID        ID
	Origin    string // "http", "ssh" or "local"
	CreatedAt time.Time
	Engine    *game.Engine

	mu        sync.Mutex
	lastSeen  time.Time
	recent    []game.Event
	submitted bool
}

// Touch marks the session as used at t.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.After(s.lastSeen) {
		s.lastSeen = t
	}
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Collect drains the engine's events into the session history and returns them.
func (s *Session) Collect() []game.Event {
	events := s.Engine.DrainEvents()
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, events...)
	if over := len(s.recent) - maxRecentEvents; over > 0 {
		s.recent = append([]game.Event(nil), s.recent[over:]...)
	}
	return events
}

// Recent returns the retained event history, oldest first.
func (s *Session) Recent() []game.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]game.Event, len(s.recent))
	copy(out, s.recent)
	return out
}

// MarkSubmitted records that the result was sent to the leaderboard. It
// returns false if it already was.
func (s *Session) MarkSubmitted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitted {
		return false
	}
	s.submitted = true
	return true
}

// ResetSubmitted allows a new result after the session is replayed.
func (s *Session) ResetSubmitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitted = false
	s.recent = nil
}

// Options configures the engines a Registry creates.
type Options struct {
	Config config.Config
	Table  *notes.Table
	Clock  core.Clock
	// Seed, when non-zero, seeds the n-th created engine with Seed+n.
	Seed   int64
	Logger *log.Logger
}

// Registry tracks live sessions.
// Thread-safe for concurrent access.
type Registry struct {
	mu       sync.RWMutex
	sessions map[ID]*Session
	opts     Options
	created  int64
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.Config.Difficulties == nil {
		opts.Config = config.Default()
	}
	if opts.Table == nil {
		opts.Table = notes.Default()
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Registry{
		sessions: make(map[ID]*Session),
		opts:     opts,
	}
}

// Clock returns the registry's clock.
func (r *Registry) Clock() core.Clock {
	return r.opts.Clock
}

// Config returns the configuration shared by every session.
func (r *Registry) Config() config.Config {
	return r.opts.Config
}

// Create starts a new game for teamID at difficulty d, already playing.
func (r *Registry) Create(origin, teamID string, d game.Difficulty) (*Session, error) {
	r.mu.Lock()
	r.created++
	seed := int64(0)
	if r.opts.Seed != 0 {
		seed = r.opts.Seed + r.created
	}
	r.mu.Unlock()

	id := ID(uuid.NewString())
	e := game.New(game.Options{
		Config: r.opts.Config,
		Table:  r.opts.Table,
		Clock:  r.opts.Clock,
		Seed:   seed,
		Logger: r.opts.Logger.With("session", string(id)[:8]),
	})
	e.SetTeamID(teamID)
	if err := e.InitGame(d); err != nil {
		return nil, fmt.Errorf("session: create: %w", err)
	}
	e.StartPlaying()

	now := r.opts.Clock.Now()
	s := &Session{
		ID:        id,
		Origin:    origin,
		CreatedAt: now,
		Engine:    e,
		lastSeen:  now,
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	r.opts.Logger.Info("session created", "id", id, "origin", origin, "team", teamID, "difficulty", d)
	return s, nil
}

// Get retrieves a session by ID and marks it as used.
func (r *Registry) Get(id ID) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session: %s: %w", id, ErrNotFound)
	}
	s.Touch(r.opts.Clock.Now())
	return s, nil
}

// Delete removes a session. It reports whether the session existed.
func (r *Registry) Delete(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Each calls fn for every session. fn runs outside the registry lock.
func (r *Registry) Each(fn func(*Session)) {
	r.mu.RLock()
	list := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		list = append(list, s)
	}
	r.mu.RUnlock()

	for _, s := range list {
		fn(s)
	}
}

// Expire removes sessions idle for longer than idle and returns how many.
func (r *Registry) Expire(now time.Time, idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen()) > idle {
			delete(r.sessions, id)
			n++
			r.opts.Logger.Info("session expired", "id", id)
		}
	}
	return n
}
