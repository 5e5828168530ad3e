package sound

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"

	"github.com/vovakirdan/notematch/internal/game"
)

// Player plays a stream without blocking the caller.
type Player interface {
	Play(s beep.Streamer)
}

// Silent discards every stream.
type Silent struct{}

// Play does nothing.
func (Silent) Play(beep.Streamer) {}

// Recorder keeps the streams it is asked to play. Useful in tests and for
// rendering a session to a file.
type Recorder struct {
	mu      sync.Mutex
	streams []beep.Streamer
}

// Play records s.
func (r *Recorder) Play(s beep.Streamer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams = append(r.streams, s)
}

// Streams returns the recorded streams in play order.
func (r *Recorder) Streams() []beep.Streamer {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]beep.Streamer, len(r.streams))
	copy(out, r.streams)
	return out
}

// Cues turns engine events into sounds on a Player.
type Cues struct {
	Player Player
	Logger *log.Logger
	// Flips enables the per-flip blip.
	Flips bool
}

// CueFor returns the sound for an event, or false when the event is silent.
func (c Cues) CueFor(ev game.Event) (beep.Streamer, bool) {
	switch ev.Kind {
	case game.EventFlip:
		if !c.Flips || ev.Note.MIDI == 0 {
			return nil, false
		}
		s, err := FlipCue(ev.Note)
		if err != nil {
			c.warn(ev, err)
			return nil, false
		}
		return s, true
	case game.EventMatch:
		s, err := MatchCue(ev.Note)
		if err != nil {
			c.warn(ev, err)
			return nil, false
		}
		return s, true
	case game.EventMismatch:
		return MismatchCue(), true
	case game.EventLayerCleared:
		return SuccessCue(), true
	case game.EventGameEnded:
		return FanfareCue(), true
	}
	return nil, false
}

// Handle plays the cues of a batch of events in order.
func (c Cues) Handle(events []game.Event) {
	if c.Player == nil {
		return
	}
	for _, ev := range events {
		if s, ok := c.CueFor(ev); ok {
			c.Player.Play(s)
		}
	}
}

func (c Cues) warn(ev game.Event, err error) {
	if c.Logger != nil {
		c.Logger.Warn("no cue for event", "kind", ev.Kind, "err", err)
	}
}
