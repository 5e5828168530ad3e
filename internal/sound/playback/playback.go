// Package playback sends sound streams to the system audio device.
// It is kept apart from package sound because the device backend needs
// cgo and the platform audio libraries.
package playback

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/vovakirdan/notematch/internal/sound"
)

// Speaker plays streams on the default audio device.
type Speaker struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	closed bool
}

// Open initializes the audio device with the given buffer latency.
func Open(buffer time.Duration) (*Speaker, error) {
	if buffer <= 0 {
		buffer = 100 * time.Millisecond
	}
	if err := speaker.Init(sound.SampleRate, sound.SampleRate.N(buffer)); err != nil {
		return nil, fmt.Errorf("playback: init speaker: %w", err)
	}
	s := &Speaker{mixer: &beep.Mixer{}}
	speaker.Play(s.mixer)
	return s, nil
}

// Play mixes s into the output. Overlapping cues play together.
func (s *Speaker) Play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

// Close stops playback and releases the device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	speaker.Clear()
	speaker.Close()
}

var _ sound.Player = (*Speaker)(nil)
