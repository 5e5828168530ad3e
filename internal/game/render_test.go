package game

import (
	"strconv"
	"strings"
	"testing"

	"github.com/vovakirdan/notematch/internal/core"
)

func TestBoardSize(t *testing.T) {
	tests := []struct {
		grid, w, h int
	}{
		{2, 13, 6},
		{6, 41, 18},
		{0, 0, 0},
	}
	for _, tc := range tests {
		w, h := BoardSize(tc.grid)
		if w != tc.w || h != tc.h {
			t.Errorf("BoardSize(%d) = %d, %d, want %d, %d", tc.grid, w, h, tc.w, tc.h)
		}
	}
}

func TestRenderLayer(t *testing.T) {
	e, _ := newEngine(t, Easy)
	w, h := BoardSize(2)
	s := core.NewScreen(w, h)

	RenderLayer(s, e.Snapshot(), 0, 0, 1)
	if s.Get(0, 0) != '┌' {
		t.Errorf("top-left = %q, want box corner", s.Get(0, 0))
	}
	if got := string([]rune(s.Row(1))[:TileW]); got != "│░░░░│" {
		t.Errorf("face-down tile row = %q, want hidden face", got)
	}
	if c := s.GetCell(TileW+TileGap, 0); c.Color != core.ColorCyan {
		t.Errorf("cursor tile border color = %v, want cyan", c.Color)
	}

	layer, _ := e.Snapshot().ActiveLayer()
	first := layer.Tiles[0]
	e.Flip(first.ID)
	s.Clear()
	RenderLayer(s, e.Snapshot(), 0, 0, -1)

	face := strings.TrimSpace(string([]rune(s.Row(1))[1 : TileW-1]))
	if want := strconv.Itoa(first.DisplayValue); face != want {
		t.Errorf("flipped face = %q, want %q", face, want)
	}
}

func TestRenderWithoutActiveLayer(t *testing.T) {
	e := New(Options{Seed: 1})
	s := core.NewScreen(10, 3)
	RenderLayer(s, e.Snapshot(), 0, 0, 0)

	if strings.TrimSpace(s.String()) != "" {
		t.Error("nothing should be drawn without an active layer")
	}
}
