// Package sound synthesizes the note tones and feedback cues of the game
// and exports them as WAV. Playback goes through a Player so the engine's
// collaborators can run silently in tests and over SSH.
package sound

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"

	"github.com/vovakirdan/notematch/internal/notes"
)

// SampleRate is used for every generated stream.
const SampleRate = beep.SampleRate(44100)

const (
	attack  = 10 * time.Millisecond
	release = 40 * time.Millisecond

	// perfect fifth above the matched note
	fifth = 1.4983070768766815
)

// NoteTone returns a sine tone of length d with a short attack and release.
func NoteTone(freq float64, d time.Duration) (beep.Streamer, error) {
	sine, err := generators.SineTone(SampleRate, freq)
	if err != nil {
		return nil, fmt.Errorf("sound: tone %.2f Hz: %w", freq, err)
	}
	return newEnvelope(beep.Take(SampleRate.N(d), sine), d), nil
}

// Gain scales a stream's amplitude; 1 leaves it unchanged, 0 silences it.
func Gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// FlipCue is a quiet blip at the flipped tile's note.
func FlipCue(n notes.Note) (beep.Streamer, error) {
	t, err := NoteTone(n.Frequency, 120*time.Millisecond)
	if err != nil {
		return nil, err
	}
	return Gain(t, 0.35), nil
}

// MatchCue plays the matched note followed by the fifth above it.
func MatchCue(n notes.Note) (beep.Streamer, error) {
	root, err := NoteTone(n.Frequency, 350*time.Millisecond)
	if err != nil {
		return nil, err
	}
	upper, err := NoteTone(n.Frequency*fifth, 250*time.Millisecond)
	if err != nil {
		// above the audible range of the sample rate, play the root alone
		return root, nil
	}
	return beep.Seq(root, upper), nil
}

// MismatchCue is a short falling pair of low tones.
func MismatchCue() beep.Streamer {
	return beep.Seq(
		tone(notes.Frequency(52), 90*time.Millisecond),
		tone(notes.Frequency(47), 140*time.Millisecond),
	)
}

// SuccessCue is the two-tone chime played when a layer is cleared.
func SuccessCue() beep.Streamer {
	return beep.Seq(
		tone(notes.Frequency(72), 150*time.Millisecond),
		tone(notes.Frequency(79), 300*time.Millisecond),
	)
}

// FanfareCue closes a finished game.
func FanfareCue() beep.Streamer {
	return beep.Seq(
		tone(notes.Frequency(72), 120*time.Millisecond),
		tone(notes.Frequency(76), 120*time.Millisecond),
		tone(notes.Frequency(79), 120*time.Millisecond),
		tone(notes.Frequency(84), 400*time.Millisecond),
	)
}

// tone is NoteTone for frequencies known to be valid.
func tone(freq float64, d time.Duration) beep.Streamer {
	t, err := NoteTone(freq, d)
	if err != nil {
		return beep.Silence(SampleRate.N(d))
	}
	return t
}

// Format is the WAV format WriteWAV produces: 16-bit mono.
var Format = beep.Format{SampleRate: SampleRate, NumChannels: 1, Precision: 2}

// WriteWAV encodes s to w until the stream is drained.
func WriteWAV(w io.WriteSeeker, s beep.Streamer) error {
	if err := wav.Encode(w, s, Format); err != nil {
		return fmt.Errorf("sound: encode wav: %w", err)
	}
	return nil
}

// envelope fades a stream in and out over its known length.
type envelope struct {
	s       beep.Streamer
	pos     int
	total   int
	attack  int
	release int
}

func newEnvelope(s beep.Streamer, d time.Duration) *envelope {
	total := SampleRate.N(d)
	att := min(SampleRate.N(attack), total/2)
	rel := min(SampleRate.N(release), total-att)
	return &envelope{s: s, total: total, attack: att, release: rel}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.pos < e.attack {
			vol = float64(e.pos) / float64(e.attack)
		}
		if left := e.total - e.pos; left < e.release {
			vol = float64(left) / float64(e.release)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error {
	return e.s.Err()
}
