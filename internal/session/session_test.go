package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/notematch/internal/config"
	"github.com/vovakirdan/notematch/internal/core"
	"github.com/vovakirdan/notematch/internal/game"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestRegistry() (*Registry, *core.ManualClock) {
	clk := &core.ManualClock{T: epoch}
	return NewRegistry(Options{Clock: clk, Seed: 10}), clk
}

func pairOf(t *testing.T, s *Session) (string, string) {
	t.Helper()
	layer, ok := s.Engine.Snapshot().ActiveLayer()
	if !ok {
		t.Fatal("no active layer")
	}
	for i, a := range layer.Tiles {
		for _, b := range layer.Tiles[i+1:] {
			if a.MIDI == b.MIDI {
				return a.ID, b.ID
			}
		}
	}
	t.Fatal("no pair on the active layer")
	return "", ""
}

func TestRegistryCreateGetDelete(t *testing.T) {
	r, _ := newTestRegistry()

	s, err := r.Create("http", "red", game.Medium)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if s.ID == "" || s.Origin != "http" {
		t.Errorf("Create() = %+v", s)
	}
	snap := s.Engine.Snapshot()
	if snap.Phase != game.PhasePlaying || snap.TeamID != "red" || snap.Difficulty != game.Medium {
		t.Errorf("new session snapshot = phase %s team %q difficulty %s", snap.Phase, snap.TeamID, snap.Difficulty)
	}

	got, err := r.Get(s.ID)
	if err != nil || got != s {
		t.Errorf("Get() = %v, %v, want the created session", got, err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	if !r.Delete(s.ID) {
		t.Error("Delete() = false for a live session")
	}
	if r.Delete(s.ID) {
		t.Error("Delete() = true for a deleted session")
	}
	if _, err := r.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete = %v, want ErrNotFound", err)
	}
}

func TestRegistryCreateUnknownDifficulty(t *testing.T) {
	r, _ := newTestRegistry()
	if _, err := r.Create("http", "red", "impossible"); !errors.Is(err, config.ErrUnknownDifficulty) {
		t.Errorf("Create() = %v, want ErrUnknownDifficulty", err)
	}
	if r.Len() != 0 {
		t.Error("failed create must not register a session")
	}
}

func TestRegistryConcurrentCreate(t *testing.T) {
	r, _ := newTestRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Create("ssh", "team", game.Easy); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if r.Len() != 20 {
		t.Errorf("Len() = %d, want 20", r.Len())
	}
	seen := map[ID]bool{}
	r.Each(func(s *Session) { seen[s.ID] = true })
	if len(seen) != 20 {
		t.Errorf("Each visited %d distinct sessions, want 20", len(seen))
	}
}

func TestDriverTickResolvesAndTimes(t *testing.T) {
	r, clk := newTestRegistry()
	s, _ := r.Create("http", "red", game.Medium)

	var mu sync.Mutex
	var got []game.EventKind
	d := &Driver{Registry: r, OnEvents: func(_ *Session, events []game.Event) {
		mu.Lock()
		defer mu.Unlock()
		for _, ev := range events {
			got = append(got, ev.Kind)
		}
	}}

	a, b := pairOf(t, s)
	s.Engine.Flip(a)
	s.Engine.Flip(b)

	d.Tick(clk.Add(2 * time.Second))
	snap := s.Engine.Snapshot()
	if snap.Busy || len(snap.Discovered) != 1 {
		t.Errorf("after tick: busy=%v discovered=%d, want resolved match", snap.Busy, len(snap.Discovered))
	}
	if snap.ElapsedTime != 2 {
		t.Errorf("ElapsedTime = %d, want 2", snap.ElapsedTime)
	}

	want := []game.EventKind{game.EventFlip, game.EventFlip, game.EventMatch}
	if len(got) != len(want) {
		t.Fatalf("OnEvents got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
	if len(s.Recent()) != 3 {
		t.Errorf("Recent() has %d events, want 3", len(s.Recent()))
	}
}

func TestDriverExpiresIdleSessions(t *testing.T) {
	r, clk := newTestRegistry()
	idle, _ := r.Create("http", "idle", game.Easy)
	busy, _ := r.Create("http", "busy", game.Easy)

	d := &Driver{Registry: r, IdleTimeout: time.Minute}
	clk.Add(45 * time.Second)
	r.Get(busy.ID)
	d.Tick(clk.Add(30 * time.Second))

	if _, err := r.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Error("idle session should have expired")
	}
	if _, err := r.Get(busy.ID); err != nil {
		t.Errorf("recently used session expired: %v", err)
	}
}

func TestDriverRunStopsOnCancel(t *testing.T) {
	r := NewRegistry(Options{Seed: 1})
	s, _ := r.Create("local", "red", game.Easy)
	a, b := pairOf(t, s)
	s.Engine.Flip(a)
	s.Engine.Flip(b)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		(&Driver{Registry: r, Interval: 5 * time.Millisecond}).Run(ctx)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for s.Engine.Snapshot().Busy {
		select {
		case <-deadline:
			t.Fatal("driver did not resolve the pending match")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestStepIdleEngine(t *testing.T) {
	e := game.New(game.Options{Seed: 3})
	now := epoch
	if Step(e, now) != 0 {
		t.Error("Step on an idle engine fired transitions")
	}
	if e.Snapshot().ElapsedTime != 0 {
		t.Error("timer should stay at 0 outside play")
	}
}

func TestSessionHistoryAndSubmitOnce(t *testing.T) {
	r, _ := newTestRegistry()
	s, _ := r.Create("http", "red", game.Easy)

	for i := 0; i < maxRecentEvents+10; i++ {
		layer, _ := s.Engine.Snapshot().ActiveLayer()
		s.Engine.Flip(layer.Tiles[0].ID)
		s.Collect()
		s.Engine.InitGame(game.Easy)
	}
	if got := len(s.Recent()); got != maxRecentEvents {
		t.Errorf("Recent() kept %d events, want %d", got, maxRecentEvents)
	}

	if !s.MarkSubmitted() {
		t.Error("first MarkSubmitted should succeed")
	}
	if s.MarkSubmitted() {
		t.Error("second MarkSubmitted should fail")
	}
	s.ResetSubmitted()
	if !s.MarkSubmitted() {
		t.Error("MarkSubmitted should succeed after ResetSubmitted")
	}
}
