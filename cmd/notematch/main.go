// notematch is a layered memory-matching game where every pair of tiles
// hides a musical note.
//
// Usage:
//
//	notematch play             - Play in the terminal
//	notematch serve            - Start SSH server for remote play
//	notematch api              - Start the JSON HTTP API
//	notematch scores           - Show the leaderboard
//	notematch notes [note]     - List the MIDI note table
//	notematch tone <note>      - Export a note as a WAV file
//
// Global flags:
//
//	--config <path>    - Game config YAML (default: search ~/.notematch, ./configs)
//	--db <path>        - Leaderboard database (default: ~/.notematch/leaderboard.db)
//	--seed <value>     - RNG seed for reproducible boards
//	--fps <rate>       - Tick rate (default: 30)
//	--log-level <lvl>  - debug, info, warn, error
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/notematch/internal/config"
)

const defaultDBPath = "~/.notematch/leaderboard.db"

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagSeed     int64
	flagFPS      int
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "notematch",
	Short: "NoteMatch - a musical memory game for the terminal",
	Long: `NoteMatch is a layered memory game. Flip two tiles, match their notes,
clear a layer to reveal the one below, and discover every note on the way.

Available commands:
  play     - Play in the terminal
  serve    - Start SSH server for remote play
  api      - Start the JSON HTTP API
  scores   - View the leaderboard
  notes    - List the MIDI note table
  tone     - Export a note as a WAV file

Examples:
  notematch play --team red
  notematch play --difficulty hard --sound
  notematch serve --ssh :2222
  notematch api --http :8080
  notematch tone A4 -o a4.wav`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to game config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", defaultDBPath, "Path to leaderboard database")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(toneCmd)
}

// newLogger builds the command logger. fallback receives the output when
// no --log-file is given. The returned func closes the log file.
func newLogger(prefix string, fallback io.Writer) (*log.Logger, func(), error) {
	w := fallback
	closeFn := func() {}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w = f
		closeFn = func() { f.Close() }
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger.SetLevel(level)
	return logger, closeFn, nil
}

// loadConfig reads the game configuration or exits.
func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// parseDifficulty reads a --difficulty flag or exits.
func parseDifficulty(s string) config.Difficulty {
	d, err := config.ParseDifficulty(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (choose easy, medium or hard)\n", err)
		os.Exit(1)
	}
	return d
}
