package game

import (
	"fmt"
	"io"
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/notematch/internal/config"
	"github.com/vovakirdan/notematch/internal/core"
	"github.com/vovakirdan/notematch/internal/notes"
)

// Options configures a new Engine. Zero fields take defaults.
type Options struct {
	Config config.Config
	Table  *notes.Table
	Clock  core.Clock
	Seed   int64
	Logger *log.Logger
}

type tileRef struct {
	layer int
	index int
}

// Engine owns one game session. All methods are safe for concurrent use;
// the game itself still assumes a single player driving input.
type Engine struct {
	mu sync.Mutex

	cfg   config.Config
	table *notes.Table
	clock core.Clock
	rng   *rand.Rand
	log   *log.Logger

	phase        Phase
	difficulty   Difficulty
	layers       []Layer
	index        map[string]tileRef
	currentLayer int
	flipped      []string
	moves        int
	startTime    *time.Time
	elapsed      int
	busy         bool
	teamID       string
	discovered   []notes.Note
	lastMatched  *notes.Note

	generation uint64
	queue      schedule
	events     []Event
}

// New creates an engine in the menu phase with an empty board.
func New(opts Options) *Engine {
	if opts.Config.Difficulties == nil {
		opts.Config = config.Default()
	}
	if opts.Table == nil {
		opts.Table = notes.Default()
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Engine{
		cfg:          opts.Config,
		table:        opts.Table,
		clock:        opts.Clock,
		rng:          rand.New(rand.NewSource(opts.Seed)),
		log:          opts.Logger,
		phase:        PhaseMenu,
		currentLayer: -1,
	}
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() config.Config {
	return e.cfg
}

// Table returns the note table used for pair identifiers.
func (e *Engine) Table() *notes.Table {
	return e.table
}

// InitGame builds a fresh board for d and resets every counter. Pending
// transitions of the previous board are invalidated. Phase and team id are
// left alone.
func (e *Engine) InitGame(d Difficulty) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	preset, ok := e.cfg.Preset(d)
	if !ok {
		return fmt.Errorf("game: init %q: %w", d, config.ErrUnknownDifficulty)
	}
	layers, err := BuildBoard(e.rng, e.table, preset)
	if err != nil {
		e.log.Error("board construction failed", "difficulty", d, "err", err)
		return err
	}

	e.clearSession()
	e.difficulty = d
	e.layers = layers
	e.currentLayer = len(layers) - 1
	e.reindex()

	e.log.Debug("game initialized", "difficulty", d, "layers", len(layers), "generation", e.generation)
	return nil
}

// ResetGame returns to the menu with an empty board, dropping the team id
// and any pending transition.
func (e *Engine) ResetGame() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.clearSession()
	e.phase = PhaseMenu
	e.layers = nil
	e.index = nil
	e.teamID = ""

	e.log.Debug("game reset", "generation", e.generation)
}

// clearSession resets counters and transient state and bumps the generation.
func (e *Engine) clearSession() {
	e.generation++
	e.currentLayer = -1
	e.flipped = nil
	e.moves = 0
	e.startTime = nil
	e.elapsed = 0
	e.busy = false
	e.discovered = nil
	e.lastMatched = nil
	e.events = nil
}

func (e *Engine) reindex() {
	e.index = make(map[string]tileRef, len(e.layers)*16)
	for li, l := range e.layers {
		for ti, t := range l.Tiles {
			e.index[t.ID] = tileRef{layer: li, index: ti}
		}
	}
}

func (e *Engine) tile(id string) (*Tile, bool) {
	ref, ok := e.index[id]
	if !ok {
		return nil, false
	}
	return &e.layers[ref.layer].Tiles[ref.index], true
}

// StartPlaying moves menu -> playing. It reports whether the phase changed.
func (e *Engine) StartPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseMenu {
		return false
	}
	e.phase = PhasePlaying
	return true
}

// EndGame moves playing -> ended, only once every layer is cleared.
func (e *Engine) EndGame() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.endGame()
}

func (e *Engine) endGame() bool {
	if e.phase != PhasePlaying || !e.allCleared() {
		return false
	}
	e.phase = PhaseEnded
	e.emit(Event{Kind: EventGameEnded, Layer: -1})
	e.log.Debug("game ended", "moves", e.moves, "elapsed", e.elapsed)
	return true
}

func (e *Engine) allCleared() bool {
	if len(e.layers) == 0 {
		return false
	}
	for _, l := range e.layers {
		if !l.Cleared {
			return false
		}
	}
	return true
}

// Flip turns a tile face up. Requests that do not apply (not playing, busy,
// two tiles already up, tile already up, unknown, inactive or matched) are
// ignored and return false.
func (e *Engine) Flip(tileID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhasePlaying || e.busy || len(e.flipped) >= 2 || slices.Contains(e.flipped, tileID) {
		return false
	}
	t, ok := e.tile(tileID)
	if !ok || !t.Flippable() {
		return false
	}

	now := e.clock.Now()
	if e.startTime == nil {
		e.startTime = &now
	}
	t.Flipped = true
	e.flipped = append(e.flipped, tileID)
	e.moves++
	e.emit(Event{Kind: EventFlip, At: now, TileIDs: []string{tileID}, Note: e.note(t.MIDI), Layer: t.LayerIndex})
	e.log.Debug("flip", "tile", tileID, "moves", e.moves)

	if len(e.flipped) == 2 {
		e.busy = true
		e.queue.push(transition{
			kind: transitionResolve,
			due:  now.Add(e.cfg.Timings.Reveal),
			gen:  e.generation,
			a:    e.flipped[0],
			b:    e.flipped[1],
		})
	}
	return true
}

// UpdateTimer records the elapsed play time in seconds.
func (e *Engine) UpdateTimer(elapsedSeconds int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.elapsed = max(elapsedSeconds, 0)
}

// Elapsed returns whole seconds between the first flip and now, or 0 before
// the first flip.
func (e *Engine) Elapsed(now time.Time) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.startTime == nil {
		return 0
	}
	return int(now.Sub(*e.startTime) / time.Second)
}

// ClearLastMatched drops the transient match notification.
func (e *Engine) ClearLastMatched() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastMatched = nil
}

// SetTeamID sets the identity results are submitted under.
func (e *Engine) SetTeamID(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.teamID = id
}

// TeamID returns the current team id.
func (e *Engine) TeamID() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.teamID
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.phase
}

// DrainEvents returns and forgets the events emitted since the last call.
func (e *Engine) DrainEvents() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := e.events
	e.events = nil
	return out
}

func (e *Engine) emit(ev Event) {
	if ev.At.IsZero() {
		ev.At = e.clock.Now()
	}
	e.events = append(e.events, ev)
}

func (e *Engine) note(midi int) notes.Note {
	n, _ := e.table.ByMIDI(midi)
	return n
}

// Snapshot returns a deep copy of the session.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Phase:        e.phase,
		Difficulty:   e.difficulty,
		CurrentLayer: e.currentLayer,
		FlippedTiles: slices.Clone(e.flipped),
		Moves:        e.moves,
		ElapsedTime:  e.elapsed,
		Busy:         e.busy,
		TeamID:       e.teamID,
		Discovered:   slices.Clone(e.discovered),
		Generation:   e.generation,
	}
	if s.FlippedTiles == nil {
		s.FlippedTiles = []string{}
	}
	if s.Discovered == nil {
		s.Discovered = []notes.Note{}
	}
	if e.startTime != nil {
		st := *e.startTime
		s.StartTime = &st
	}
	if e.lastMatched != nil {
		n := *e.lastMatched
		s.LastMatched = &n
	}
	s.Layers = make([]Layer, len(e.layers))
	for i, l := range e.layers {
		l.Tiles = slices.Clone(l.Tiles)
		s.Layers[i] = l
	}
	return s
}
