package game

import (
	"fmt"

	"github.com/vovakirdan/notematch/internal/core"
)

// Tile cell geometry on the character grid.
const (
	TileW   = 6
	TileH   = 3
	TileGap = 1
)

// BoardSize returns the character size of a layer rendered by RenderLayer.
func BoardSize(gridSize int) (w, h int) {
	if gridSize <= 0 {
		return 0, 0
	}
	return gridSize*(TileW+TileGap) - TileGap, gridSize * TileH
}

// RenderLayer draws the active layer of snap at (x, y). cursor is the
// row-major index of the highlighted tile, or -1 for none.
func RenderLayer(s *core.Screen, snap Snapshot, x, y, cursor int) {
	layer, ok := snap.ActiveLayer()
	if !ok {
		return
	}
	flipped := make(map[string]bool, len(snap.FlippedTiles))
	for _, id := range snap.FlippedTiles {
		flipped[id] = true
	}

	for i, t := range layer.Tiles {
		row, col := i/layer.GridSize, i%layer.GridSize
		r := core.NewRect(x+col*(TileW+TileGap), y+row*TileH, TileW, TileH)

		border := core.ColorGray
		face := "░░░░"
		faceColor := core.ColorBlue
		switch {
		case t.Matched:
			border = core.ColorGreen
			face = centre(fmt.Sprint(t.DisplayValue), TileW-2)
			faceColor = core.ColorBrightGreen
		case t.Flipped:
			border = core.ColorYellow
			if flipped[t.ID] && snap.Busy && len(snap.FlippedTiles) == 2 {
				border = core.ColorMagenta
			}
			face = centre(fmt.Sprint(t.DisplayValue), TileW-2)
			faceColor = core.ColorBrightYellow
		}
		if i == cursor {
			border = core.ColorCyan
		}

		s.DrawBox(r, border)
		s.DrawText(r.X+1, r.Y+1, face, faceColor)
	}
}

func centre(text string, width int) string {
	pad := width - len(text)
	if pad <= 0 {
		return text[:width]
	}
	left := pad / 2
	return fmt.Sprintf("%*s%s%*s", left, "", text, pad-left, "")
}
