// Package game implements the layered note-matching engine: board
// construction, the two-flip interaction cycle, delayed match resolution,
// the layer clear cascade and the menu/playing/ended phase machine.
//
// The engine never starts timers of its own. Delayed transitions are queued
// with the session generation they belong to and fire only when a caller
// advances the engine clock with Advance, which keeps every transition
// deterministic under test and lets any front-end drive time from its own
// tick loop.
package game

import (
	"time"

	"github.com/vovakirdan/notematch/internal/config"
	"github.com/vovakirdan/notematch/internal/notes"
)

// Phase is the session lifecycle state.
type Phase string

const (
	PhaseMenu    Phase = "menu"
	PhasePlaying Phase = "playing"
	PhaseEnded   Phase = "ended"
)

// Difficulty selects a board preset.
type Difficulty = config.Difficulty

const (
	Easy   = config.DifficultyEasy
	Medium = config.DifficultyMedium
	Hard   = config.DifficultyHard
)

// Tile is one card of a layer.
type Tile struct {
	ID           string     `json:"id"`
	LayerIndex   int        `json:"layerIndex"`
	Position     [3]float64 `json:"position"` // presentation only
	MIDI         int        `json:"midiNumber"`
	DisplayValue int        `json:"displayValue"`
	Flipped      bool       `json:"isFlipped"`
	Matched      bool       `json:"isMatched"`
	Active       bool       `json:"isActive"`
}

// Flippable reports whether the tile may be turned over.
func (t Tile) Flippable() bool {
	return t.Active && !t.Matched
}

// Layer is one grid of tiles. Index 0 is the bottom layer, played last.
type Layer struct {
	Index    int    `json:"index"`
	GridSize int    `json:"gridSize"`
	Tiles    []Tile `json:"tiles"`
	Active   bool   `json:"isActive"`
	Cleared  bool   `json:"isCleared"`
}

// Tile returns the tile at a grid coordinate.
func (l Layer) Tile(row, col int) (Tile, bool) {
	if row < 0 || col < 0 || row >= l.GridSize || col >= l.GridSize {
		return Tile{}, false
	}
	return l.Tiles[row*l.GridSize+col], true
}

// Snapshot is a deep copy of the session for readers.
type Snapshot struct {
	Phase        Phase        `json:"phase"`
	Difficulty   Difficulty   `json:"difficulty"`
	Layers       []Layer      `json:"layers"`
	CurrentLayer int          `json:"currentLayerIndex"` // -1 when no layer is active
	FlippedTiles []string     `json:"flippedTiles"`
	Moves        int          `json:"moves"`
	StartTime    *time.Time   `json:"startTime"`
	ElapsedTime  int          `json:"elapsedTime"` // seconds
	Busy         bool         `json:"isBusy"`
	TeamID       string       `json:"teamId"`
	Discovered   []notes.Note `json:"discoveredNotes"`
	LastMatched  *notes.Note  `json:"matchedNote"`
	Generation   uint64       `json:"generation"`
}

// ActiveLayer returns the layer currently in play.
func (s Snapshot) ActiveLayer() (Layer, bool) {
	if s.CurrentLayer < 0 || s.CurrentLayer >= len(s.Layers) {
		return Layer{}, false
	}
	return s.Layers[s.CurrentLayer], true
}

// LayersCleared counts cleared layers.
func (s Snapshot) LayersCleared() int {
	n := 0
	for _, l := range s.Layers {
		if l.Cleared {
			n++
		}
	}
	return n
}

// TileCount returns the number of tiles on the board.
func (s Snapshot) TileCount() int {
	n := 0
	for _, l := range s.Layers {
		n += len(l.Tiles)
	}
	return n
}

// FindTile looks a tile up by id.
func (s Snapshot) FindTile(id string) (Tile, bool) {
	for _, l := range s.Layers {
		for _, t := range l.Tiles {
			if t.ID == id {
				return t, true
			}
		}
	}
	return Tile{}, false
}

// EventKind identifies an engine event.
type EventKind string

const (
	EventFlip         EventKind = "flip"
	EventMatch        EventKind = "match"
	EventMismatch     EventKind = "mismatch"
	EventLayerCleared EventKind = "layer_cleared"
	EventGameEnded    EventKind = "game_ended"
	EventResolveFault EventKind = "resolve_fault"
)

// Event tells collaborators (sound, popups, logs) what just happened.
type Event struct {
	Kind    EventKind  `json:"kind"`
	At      time.Time  `json:"at"`
	TileIDs []string   `json:"tileIds,omitempty"`
	Note    notes.Note `json:"note,omitzero"`
	Layer   int        `json:"layer"`
}
