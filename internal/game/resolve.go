package game

import (
	"slices"

	"github.com/vovakirdan/notematch/internal/notes"
)

// resolve compares the two face-up tiles once the reveal delay has passed.
func (e *Engine) resolve(t transition) {
	if len(e.flipped) != 2 || e.flipped[0] != t.a || e.flipped[1] != t.b {
		e.fault(t, "flipped tiles changed before resolution")
		return
	}
	a, okA := e.tile(t.a)
	b, okB := e.tile(t.b)
	if !okA || !okB {
		e.fault(t, "flipped tile not found")
		return
	}
	if a.Matched || b.Matched {
		e.fault(t, "flipped tile already matched")
		return
	}

	if a.MIDI != b.MIDI {
		e.emit(Event{Kind: EventMismatch, At: t.due, TileIDs: []string{t.a, t.b}, Layer: a.LayerIndex})
		e.log.Debug("mismatch", "a", t.a, "b", t.b)
		e.after(t, transitionRevert, e.cfg.Timings.MismatchRevert)
		return
	}

	for _, tile := range []*Tile{a, b} {
		tile.Matched = true
		tile.Flipped = true
		tile.Active = false
	}
	n := e.note(a.MIDI)
	if !slices.ContainsFunc(e.discovered, func(d notes.Note) bool { return d.MIDI == n.MIDI }) {
		e.discovered = append(e.discovered, n)
	}
	e.lastMatched = &n
	e.flipped = nil

	e.emit(Event{Kind: EventMatch, At: t.due, TileIDs: []string{t.a, t.b}, Note: n, Layer: a.LayerIndex})
	e.log.Debug("match", "note", n.Name, "discovered", len(e.discovered))
	e.after(t, transitionSettle, e.cfg.Timings.MatchSettle)
}

// settle runs after a match: clears the active layer when it is complete,
// promotes the next lower layer or schedules the end of the game, then
// releases the busy lock.
func (e *Engine) settle(t transition) {
	defer func() { e.busy = false }()

	if e.currentLayer < 0 || e.currentLayer >= len(e.layers) {
		return
	}
	layer := &e.layers[e.currentLayer]
	for _, tile := range layer.Tiles {
		if !tile.Matched {
			return
		}
	}

	layer.Cleared = true
	layer.Active = false
	for i := range layer.Tiles {
		layer.Tiles[i].Active = false
	}
	e.emit(Event{Kind: EventLayerCleared, At: t.due, Layer: layer.Index})
	e.log.Debug("layer cleared", "layer", layer.Index)

	next := e.currentLayer - 1
	if next < 0 {
		e.currentLayer = -1
		e.after(t, transitionEnd, e.cfg.Timings.GameEnd)
		return
	}
	e.currentLayer = next
	below := &e.layers[next]
	below.Active = true
	for i := range below.Tiles {
		below.Tiles[i].Active = true
	}
}

// revert turns mismatched tiles face down and releases the busy lock.
func (e *Engine) revert(t transition) {
	for _, id := range []string{t.a, t.b} {
		if tile, ok := e.tile(id); ok && !tile.Matched {
			tile.Flipped = false
		}
	}
	e.flipped = nil
	e.busy = false
}

// fault recovers from a resolution that cannot proceed: the transient
// resolution state is cleared and the session stays playable.
func (e *Engine) fault(t transition, reason string) {
	e.log.Error("resolution fault", "reason", reason, "a", t.a, "b", t.b, "flipped", e.flipped)
	for _, id := range e.flipped {
		if tile, ok := e.tile(id); ok && !tile.Matched {
			tile.Flipped = false
		}
	}
	e.flipped = nil
	e.busy = false
	e.emit(Event{Kind: EventResolveFault, At: t.due, TileIDs: []string{t.a, t.b}, Layer: -1})
}
