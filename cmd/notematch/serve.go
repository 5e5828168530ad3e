package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/notematch/internal/platform/tui"
)

var (
	flagSSHAddr        string
	flagHostKey        string
	flagIdleTimeout    int
	flagSSHDifficulty  string
	flagSSHSharedBoard bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the NoteMatch SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own game; the SSH user name is offered as the
team name. Results go to the server's shared leaderboard.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.notematch/host_key

Examples:
  notematch serve                           # Listen on :23234 with auto-generated key
  notematch serve --ssh :2222               # Listen on port 2222
  notematch serve --host-key ./my_host_key  # Use specific host key
  notematch serve --db ./leaderboard.db     # Use specific database
  notematch serve --seed 7 --same-board     # Everyone gets the same boards

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagSSHDifficulty, "difficulty", "easy", "Difficulty preselected on login")
	serveCmd.Flags().BoolVar(&flagSSHSharedBoard, "same-board", false, "Deal every connection the boards of --seed")
}

func runServe(_ *cobra.Command, _ []string) {
	logger, closeLog, err := newLogger("notematch-ssh", os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = flagDBPath
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Game = loadConfig()
	cfg.Difficulty = parseDifficulty(flagSSHDifficulty)
	cfg.TickRate = flagFPS
	if flagSSHSharedBoard {
		cfg.Seed = flagSeed
	}

	server, err := tui.NewSSHServer(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		closeLog()
		os.Exit(1)
	}

	fmt.Printf("Starting NoteMatch SSH server on %s\n", cfg.Address)
	fmt.Println("Connect with: ssh localhost -p 23234")
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		closeLog()
		os.Exit(1)
	}
}
