package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/vovakirdan/notematch/internal/config"
	"github.com/vovakirdan/notematch/internal/notes"
)

var (
	// ErrUnknownNote means a required pair names a note missing from the table.
	ErrUnknownNote = errors.New("unknown note")
	// ErrOddGrid means a layer cannot hold whole pairs.
	ErrOddGrid = errors.New("grid size must be positive and even")
	// ErrNotEnoughPairs means the board cannot hold the pairs asked of it.
	ErrNotEnoughPairs = errors.New("not enough pairs")
)

// tileSpacing is the distance between neighbouring tile centres and
// layerHeight the vertical gap between layers, in scene units.
const (
	tileSpacing = 1.2
	layerHeight = 0.3
)

type face struct {
	midi    int
	display int
}

// BuildBoard constructs the layers of a preset.
//
// Presets with required pairs place every required pair at least once and
// fill the remaining pair slots by resampling from that same set; the pairs
// are shuffled and dealt to layers in layer order, then each layer's tiles
// are shuffled. Other presets
// draw size²/2 distinct notes per layer from the full table, with the MIDI
// number as the display value.
//
// The last layer is returned active; all others are inactive.
func BuildBoard(rng *rand.Rand, table *notes.Table, preset config.Preset) ([]Layer, error) {
	if len(preset.Layers) == 0 {
		return nil, fmt.Errorf("game: build board: no layers: %w", ErrOddGrid)
	}
	for i, size := range preset.Layers {
		if size <= 0 || (size*size)%2 != 0 {
			return nil, fmt.Errorf("game: build board: layer %d size %d: %w", i, size, ErrOddGrid)
		}
	}

	var (
		layers []Layer
		err    error
	)
	if len(preset.Required) > 0 {
		layers, err = buildCurriculum(rng, table, preset)
	} else {
		layers, err = buildRandom(rng, table, preset)
	}
	if err != nil {
		return nil, err
	}

	top := len(layers) - 1
	layers[top].Active = true
	for i := range layers[top].Tiles {
		layers[top].Tiles[i].Active = true
	}
	return layers, nil
}

func buildCurriculum(rng *rand.Rand, table *notes.Table, preset config.Preset) ([]Layer, error) {
	required := make([]face, 0, len(preset.Required))
	for _, r := range preset.Required {
		n, ok := table.ByName(r.Note)
		if !ok {
			return nil, fmt.Errorf("game: build board: required note %q: %w", r.Note, ErrUnknownNote)
		}
		required = append(required, face{midi: n.MIDI, display: r.Display})
	}

	pairs := preset.PairCount()
	if len(required) > pairs {
		return nil, fmt.Errorf("game: build board: %d required pairs, %d slots: %w", len(required), pairs, ErrNotEnoughPairs)
	}

	deck := make([]face, 0, pairs)
	deck = append(deck, required...)
	for i := len(required); i < pairs; i++ {
		deck = append(deck, required[rng.Intn(len(required))])
	}
	shuffle(rng, deck)

	// Pairs are dealt whole so every layer can be cleared on its own.
	layers := make([]Layer, 0, len(preset.Layers))
	offset := 0
	for i, size := range preset.Layers {
		n := size * size / 2
		pool := make([]face, 0, n*2)
		for _, f := range deck[offset : offset+n] {
			pool = append(pool, f, f)
		}
		shuffle(rng, pool)
		layers = append(layers, newLayer(i, size, pool))
		offset += n
	}
	return layers, nil
}

func buildRandom(rng *rand.Rand, table *notes.Table, preset config.Preset) ([]Layer, error) {
	layers := make([]Layer, 0, len(preset.Layers))
	for i, size := range preset.Layers {
		pairs := size * size / 2
		all := table.All()
		if pairs > len(all) {
			return nil, fmt.Errorf("game: build board: layer %d needs %d notes, table has %d: %w", i, pairs, len(all), ErrNotEnoughPairs)
		}

		// Partial Fisher-Yates: the first pairs entries become a uniform
		// sample without replacement.
		for j := 0; j < pairs; j++ {
			k := j + rng.Intn(len(all)-j)
			all[j], all[k] = all[k], all[j]
		}

		pool := make([]face, 0, pairs*2)
		for _, n := range all[:pairs] {
			f := face{midi: n.MIDI, display: n.MIDI}
			pool = append(pool, f, f)
		}
		shuffle(rng, pool)
		layers = append(layers, newLayer(i, size, pool))
	}
	return layers, nil
}

// shuffle is a uniform Fisher-Yates shuffle.
func shuffle(rng *rand.Rand, pool []face) {
	for i := len(pool) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
}

func newLayer(index, size int, faces []face) Layer {
	off := float64(size-1) / 2
	tiles := make([]Tile, len(faces))
	for i, f := range faces {
		row, col := i/size, i%size
		tiles[i] = Tile{
			ID:         TileID(index, i),
			LayerIndex: index,
			Position: [3]float64{
				(float64(col) - off) * tileSpacing,
				float64(index) * layerHeight,
				(float64(row) - off) * tileSpacing,
			},
			MIDI:         f.midi,
			DisplayValue: f.display,
		}
	}
	return Layer{Index: index, GridSize: size, Tiles: tiles}
}

// TileID returns the id of the i-th tile (row-major) of a layer.
func TileID(layer, i int) string {
	return fmt.Sprintf("layer%d-tile%d", layer, i)
}
