package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/notematch/internal/notes"
)

var notesCmd = &cobra.Command{
	Use:   "notes [note]",
	Short: "List the MIDI note table",
	Long: `Shows every MIDI note (1-128) with its name and frequency, or a single
note given by name or MIDI number.

Examples:
  notematch notes
  notematch notes A4
  notematch notes 60`,
	Args: cobra.MaximumNArgs(1),
	Run:  runNotes,
}

// lookupNote resolves a note name ("A4", "Bb3") or MIDI number.
func lookupNote(t *notes.Table, arg string) (notes.Note, bool) {
	if midi, err := strconv.Atoi(arg); err == nil {
		return t.ByMIDI(midi)
	}
	return t.ByName(arg)
}

func runNotes(_ *cobra.Command, args []string) {
	table := notes.Default()

	list := table.All()
	if len(args) == 1 {
		n, ok := lookupNote(table, args[0])
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: unknown note %q\n", args[0])
			os.Exit(1)
		}
		list = []notes.Note{n}
	}

	fmt.Printf("  %-4s  %-5s  %s\n", "MIDI", "Name", "Frequency")
	fmt.Printf("  %-4s  %-5s  %s\n", "----", "----", "---------")
	for _, n := range list {
		fmt.Printf("  %-4d  %-5s  %10.3f Hz\n", n.MIDI, n.Name, n.Frequency)
	}
}
