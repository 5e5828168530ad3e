// Package notes holds the read-only MIDI note table used as the pair
// identifier source for the board.
package notes

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

const (
	// MinMIDI is the lowest note number in the table.
	MinMIDI = 1
	// MaxMIDI is the highest note number in the table.
	MaxMIDI = 128

	concertA     = 69
	concertAFreq = 440.0
)

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// flat spellings accepted by ByName.
var flats = map[string]string{
	"DB": "C#", "EB": "D#", "GB": "F#", "AB": "G#", "BB": "A#",
}

// Note is one entry of the table.
type Note struct {
	MIDI      int     `json:"midi"`
	Name      string  `json:"name"`
	Frequency float64 `json:"frequency"`
}

func (n Note) String() string {
	return fmt.Sprintf("%s (%d, %.2f Hz)", n.Name, n.MIDI, n.Frequency)
}

// Table maps MIDI numbers to notes. It is immutable after construction.
type Table struct {
	byMIDI []Note
	byName map[string]Note
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the shared table, built on first use.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable()
	})
	return defaultTable
}

// NewTable builds a fresh table covering MinMIDI..MaxMIDI.
func NewTable() *Table {
	t := &Table{
		byMIDI: make([]Note, 0, MaxMIDI-MinMIDI+1),
		byName: make(map[string]Note, MaxMIDI-MinMIDI+1),
	}
	for m := MinMIDI; m <= MaxMIDI; m++ {
		n := Note{MIDI: m, Name: Name(m), Frequency: Frequency(m)}
		t.byMIDI = append(t.byMIDI, n)
		t.byName[n.Name] = n
	}
	return t
}

// Name returns the scientific pitch name of a MIDI number (60 = C4).
func Name(midi int) string {
	octave := midi/12 - 1
	return fmt.Sprintf("%s%d", pitchClasses[midi%12], octave)
}

// Frequency returns the equal-tempered frequency of a MIDI number.
func Frequency(midi int) float64 {
	return concertAFreq * math.Pow(2, float64(midi-concertA)/12)
}

// ByMIDI looks a note up by number.
func (t *Table) ByMIDI(midi int) (Note, bool) {
	if midi < MinMIDI || midi > MaxMIDI {
		return Note{}, false
	}
	return t.byMIDI[midi-MinMIDI], true
}

// ByName looks a note up by name. Matching is case-insensitive and accepts
// flat spellings ("Bb4" resolves to A#4).
func (t *Table) ByName(name string) (Note, bool) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if len(key) >= 3 && key[1] == 'B' {
		if sharp, ok := flats[key[:2]]; ok {
			key = sharp + key[2:]
		}
	}
	n, ok := t.byName[key]
	return n, ok
}

// All returns a copy of every note in ascending MIDI order.
func (t *Table) All() []Note {
	out := make([]Note, len(t.byMIDI))
	copy(out, t.byMIDI)
	return out
}

// Len returns the number of notes in the table.
func (t *Table) Len() int {
	return len(t.byMIDI)
}
