package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gopxl/beep"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/notematch/internal/notes"
	"github.com/vovakirdan/notematch/internal/sound"
)

var (
	flagToneOut      string
	flagToneDuration time.Duration
	flagToneCue      string
)

var toneCmd = &cobra.Command{
	Use:   "tone <note>",
	Short: "Export a note as a WAV file",
	Long: `Render a note, or one of the game's cues built on it, to a 16-bit mono
WAV file.

Cues:
  tone     - the plain note (default)
  match    - the note followed by its fifth, as heard on a match
  success  - the layer-cleared chime (note ignored)
  fanfare  - the game-end fanfare (note ignored)

Examples:
  notematch tone A4 -o a4.wav
  notematch tone 60 --duration 2s -o middle-c.wav
  notematch tone F#4 --cue match -o match.wav`,
	Args: cobra.ExactArgs(1),
	Run:  runTone,
}

func init() {
	toneCmd.Flags().StringVarP(&flagToneOut, "output", "o", "", "Output WAV file (default <note>.wav)")
	toneCmd.Flags().DurationVar(&flagToneDuration, "duration", time.Second, "Tone length")
	toneCmd.Flags().StringVar(&flagToneCue, "cue", "tone", "What to render: tone, match, success, fanfare")
}

func runTone(_ *cobra.Command, args []string) {
	n, ok := lookupNote(notes.Default(), args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown note %q\n", args[0])
		os.Exit(1)
	}

	var (
		s   beep.Streamer
		err error
	)
	switch flagToneCue {
	case "tone":
		s, err = sound.NoteTone(n.Frequency, flagToneDuration)
	case "match":
		s, err = sound.MatchCue(n)
	case "success":
		s = sound.SuccessCue()
	case "fanfare":
		s = sound.FanfareCue()
	default:
		err = fmt.Errorf("unknown cue %q", flagToneCue)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	out := flagToneOut
	if out == "" {
		out = n.Name + ".wav"
	}
	f, err := os.Create(out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := sound.WriteWAV(f, s); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", out, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%s, %.2f Hz)\n", out, n.Name, n.Frequency)
}
