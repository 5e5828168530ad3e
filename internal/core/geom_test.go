package core

import (
	"testing"
	"time"
)

func TestRectContains(t *testing.T) {
	r := NewRect(2, 3, 4, 2)

	tests := []struct {
		x, y int
		want bool
	}{
		{2, 3, true},
		{5, 4, true},
		{6, 4, false},
		{5, 5, false},
		{1, 3, false},
	}
	for _, tc := range tests {
		if got := r.Contains(tc.x, tc.y); got != tc.want {
			t.Errorf("Contains(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}
	if r.Right() != 6 || r.Bottom() != 5 {
		t.Errorf("Right/Bottom = %d/%d, want 6/5", r.Right(), r.Bottom())
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tc := range tests {
		if got := Clamp(tc.val, tc.min, tc.max); got != tc.want {
			t.Errorf("Clamp(%d, %d, %d) = %d, want %d", tc.val, tc.min, tc.max, got, tc.want)
		}
	}
}

func TestManualClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &ManualClock{T: start}

	if !c.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", c.Now(), start)
	}
	c.Add(1500 * time.Millisecond)
	if got := c.Now().Sub(start); got != 1500*time.Millisecond {
		t.Errorf("after Add, elapsed = %v, want 1.5s", got)
	}
}

func TestSeedOrNow(t *testing.T) {
	cfg := RuntimeConfig{Seed: 42}
	if cfg.SeedOrNow() != 42 {
		t.Errorf("SeedOrNow() = %d, want 42", cfg.SeedOrNow())
	}
	if (RuntimeConfig{}).SeedOrNow() == 0 {
		t.Error("SeedOrNow() with zero seed should derive a seed from time")
	}
}

func TestInputFrame(t *testing.T) {
	var f InputFrame
	if f.Has(ActionFlip) {
		t.Error("zero frame should report no actions")
	}
	f.Set(ActionFlip)
	f.Set(ActionLeft)
	if !f.Has(ActionFlip) || !f.Has(ActionLeft) {
		t.Error("Set actions should be reported by Has")
	}
	f.Clear()
	if f.Has(ActionFlip) {
		t.Error("Clear should drop every action")
	}
	if ActionFlip.String() != "Flip" {
		t.Errorf("ActionFlip.String() = %q, want %q", ActionFlip.String(), "Flip")
	}
}
