package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/notematch/internal/leaderboard"
)

func TestScoreboardOrdersEntries(t *testing.T) {
	sink := leaderboard.NewMemory()
	ctx := context.Background()
	for _, r := range []leaderboard.Record{
		leaderboard.NewRecord("slow", 90, 10),
		leaderboard.NewRecord("fast", 10, 10),
	} {
		if _, err := sink.Submit(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	m := NewScoreboardModel(sink, 10, 100, 30)
	entries := m.Entries()
	if len(entries) != 2 || entries[0].TeamID != "fast" {
		t.Fatalf("entries = %+v, want fast first", entries)
	}
	v := m.View()
	if !strings.Contains(v, "fast") || !strings.Contains(v, "1:30") {
		t.Errorf("view missing rows:\n%s", v)
	}
}

func TestScoreboardEmptyAndNil(t *testing.T) {
	if v := NewScoreboardModel(leaderboard.NewMemory(), 0, 80, 24).View(); !strings.Contains(v, "No results recorded yet") {
		t.Errorf("empty view = %q", v)
	}
	if v := NewScoreboardModel(nil, 0, 80, 24).View(); !strings.Contains(v, "No leaderboard configured") {
		t.Errorf("nil view = %q", v)
	}
}

func TestScoreboardKeys(t *testing.T) {
	m := NewScoreboardModel(leaderboard.NewMemory(), 10, 80, 24)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(ScoreboardModel).IsGoingBack() {
		t.Error("esc must go back")
	}
	next, _ = m.Update(runes("q"))
	if !next.(ScoreboardModel).IsQuitting() {
		t.Error("q must quit")
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0:00"},
		{9, "0:09"},
		{75, "1:15"},
		{-4, "0:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.in); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
