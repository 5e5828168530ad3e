package game

import (
	"sort"
	"time"
)

type transitionKind int

const (
	transitionResolve transitionKind = iota // compare the two face-up tiles
	transitionSettle                        // post-match layer clear check
	transitionRevert                        // turn mismatched tiles back
	transitionEnd                           // final layer cleared, end the game
)

func (k transitionKind) String() string {
	switch k {
	case transitionResolve:
		return "resolve"
	case transitionSettle:
		return "settle"
	case transitionRevert:
		return "revert"
	case transitionEnd:
		return "end"
	default:
		return "unknown"
	}
}

// transition is a delayed state change bound to the generation it was
// scheduled under.
type transition struct {
	kind transitionKind
	due  time.Time
	gen  uint64
	seq  uint64
	a, b string
}

// schedule is a queue of transitions ordered by due time, then by the
// order they were pushed.
type schedule struct {
	items []transition
	seq   uint64
}

func (s *schedule) push(t transition) {
	s.seq++
	t.seq = s.seq
	i := sort.Search(len(s.items), func(i int) bool {
		it := s.items[i]
		return it.due.After(t.due) || (it.due.Equal(t.due) && it.seq > t.seq)
	})
	s.items = append(s.items, transition{})
	copy(s.items[i+1:], s.items[i:])
	s.items[i] = t
}

// pop removes the earliest transition due at or before now.
func (s *schedule) pop(now time.Time) (transition, bool) {
	if len(s.items) == 0 || s.items[0].due.After(now) {
		return transition{}, false
	}
	t := s.items[0]
	s.items = s.items[1:]
	return t, true
}

func (s *schedule) len() int {
	return len(s.items)
}

// Advance fires every transition due at or before now, in due order, and
// returns how many fired. Transitions scheduled by a firing transition are
// timed from its due time, so a single late Advance replays the whole chain.
// Transitions from a superseded generation are discarded.
func (e *Engine) Advance(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	fired := 0
	for {
		t, ok := e.queue.pop(now)
		if !ok {
			return fired
		}
		if t.gen != e.generation {
			e.log.Debug("stale transition dropped", "kind", t.kind, "gen", t.gen, "current", e.generation)
			continue
		}
		e.fire(t)
		fired++
	}
}

// NextDue returns when the next live transition is due.
func (e *Engine) NextDue() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.queue.items {
		if t.gen == e.generation {
			return t.due, true
		}
	}
	return time.Time{}, false
}

// Pending returns the number of live transitions waiting to fire.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, t := range e.queue.items {
		if t.gen == e.generation {
			n++
		}
	}
	return n
}

func (e *Engine) fire(t transition) {
	switch t.kind {
	case transitionResolve:
		e.resolve(t)
	case transitionSettle:
		e.settle(t)
	case transitionRevert:
		e.revert(t)
	case transitionEnd:
		if !e.endGame() {
			e.log.Debug("end transition ignored", "phase", e.phase)
		}
	}
}

func (e *Engine) after(t transition, kind transitionKind, d time.Duration) {
	e.queue.push(transition{
		kind: kind,
		due:  t.due.Add(d),
		gen:  t.gen,
		a:    t.a,
		b:    t.b,
	})
}
