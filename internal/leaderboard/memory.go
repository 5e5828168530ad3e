package leaderboard

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Memory is an in-process Sink.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int64
	now     func() time.Time
}

// NewMemory creates an empty in-memory leaderboard.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// Submit validates and stores a record.
func (m *Memory) Submit(_ context.Context, r Record) (Entry, error) {
	if err := r.Validate(); err != nil {
		return Entry{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	e := Entry{ID: m.nextID, Record: r, CreatedAt: m.now()}
	m.entries = append(m.entries, e)
	return e, nil
}

// Top returns up to limit entries, best score first. Ties keep submission order.
func (m *Memory) Top(_ context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	m.mu.RLock()
	out := slices.Clone(m.entries)
	m.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		}
		return 0
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var _ Sink = (*Memory)(nil)
