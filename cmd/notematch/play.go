package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/notematch/internal/config"
	"github.com/vovakirdan/notematch/internal/core"
	"github.com/vovakirdan/notematch/internal/leaderboard"
	"github.com/vovakirdan/notematch/internal/platform/tui"
	"github.com/vovakirdan/notematch/internal/sound"
	"github.com/vovakirdan/notematch/internal/sound/playback"
	"github.com/vovakirdan/notematch/internal/storage"
)

var (
	flagDifficulty string
	flagTeam       string
	flagSound      bool
	flagTheme      string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	Long: `Start a game in the terminal.

Controls:
  Arrows/HJKL  - Move the cursor
  Space/Enter  - Flip the tile under the cursor
  R/Esc        - Abandon the game and return to login
  Tab          - Leaderboard (login and end screens)
  Ctrl+S       - Save the board as text under ~/.notematch/screenshots
  Q/Ctrl+C     - Quit

Difficulty options:
  easy   - 2 layers (4x4, 2x2) with a fixed set of notes to learn
  medium - 3 layers (6x6, 4x4, 2x2), random notes
  hard   - 4 layers (6x6, 6x6, 4x4, 2x2), random notes

Examples:
  notematch play
  notematch play --team red --difficulty medium
  notematch play --sound --log-file notematch.log
  notematch play --config ./my-notematch.yaml --seed 42`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "easy", "Difficulty: easy, medium, hard")
	playCmd.Flags().StringVar(&flagTeam, "team", "", "Team name; skips the login screen when set")
	playCmd.Flags().BoolVar(&flagSound, "sound", false, "Play note cues on the audio device")
	playCmd.Flags().StringVar(&flagTheme, "theme", "default", "Color theme: default, mono")
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg := loadConfig()
	difficulty := parseDifficulty(flagDifficulty)

	// The alt screen owns stderr, so logs go to --log-file or nowhere.
	logger, closeLog, err := newLogger("notematch", io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := playGame(cfg, difficulty, logger); err != nil {
		logger.Error("game exited", "err", err)
		closeLog()
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
	closeLog()
}

// playGame runs the local TUI and releases the database and speaker on return.
func playGame(cfg config.Config, difficulty config.Difficulty, logger *log.Logger) error {
	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}

	var sink leaderboard.Sink
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open leaderboard database: %v\n", err)
		// Continue without storage - game still works
	} else {
		sink = store
		defer store.Close()
	}

	var player sound.Player
	if flagSound {
		spk, spkErr := playback.Open(0)
		if spkErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: sound disabled: %v\n", spkErr)
		} else {
			player = spk
			defer spk.Close()
		}
	}

	return tui.Run(tui.Options{
		Config:      cfg,
		Leaderboard: sink,
		Player:      player,
		Clock:       core.SystemClock{},
		Runtime: core.RuntimeConfig{
			ScreenW:  width,
			ScreenH:  height,
			TickRate: flagFPS,
			Seed:     flagSeed,
		},
		Team:       flagTeam,
		Difficulty: difficulty,
		AutoStart:  flagTeam != "",
		Theme:      flagTheme,
		Logger:     logger,
	})
}
