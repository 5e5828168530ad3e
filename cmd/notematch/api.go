package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/notematch/internal/core"
	"github.com/vovakirdan/notematch/internal/game"
	"github.com/vovakirdan/notematch/internal/httpapi"
	"github.com/vovakirdan/notematch/internal/leaderboard"
	"github.com/vovakirdan/notematch/internal/session"
	"github.com/vovakirdan/notematch/internal/storage"
)

var (
	flagHTTPAddr     string
	flagCORSOrigin   string
	flagSessionIdle  time.Duration
	flagTickInterval time.Duration
	flagMemory       bool
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the JSON HTTP API",
	Long: `Serve game sessions and the leaderboard over HTTP.

Settings are read from flags, then from the environment (a .env file in the
working directory is loaded first):

  NOTEMATCH_HTTP_ADDR   - listen address (default :8080)
  NOTEMATCH_DB          - leaderboard database path
  NOTEMATCH_CORS_ORIGIN - allowed browser origin

Endpoints:
  GET  /api/test                     - liveness probe
  GET  /api/notes                    - MIDI note table
  POST /api/sessions                 - start a game {teamId, difficulty}
  GET  /api/sessions/{id}            - game snapshot
  POST /api/sessions/{id}/flip       - flip a tile {tileId}
  POST /api/sessions/{id}/submit     - record a finished game
  GET  /api/leaderboard?limit=N      - best results first

Examples:
  notematch api
  notematch api --http :9000 --cors http://localhost:5173
  notematch api --memory --log-level debug`,
	Args: cobra.NoArgs,
	Run:  runAPI,
}

func init() {
	apiCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP listen address (default $NOTEMATCH_HTTP_ADDR or :8080)")
	apiCmd.Flags().StringVar(&flagCORSOrigin, "cors", "", "Allowed CORS origin (default $NOTEMATCH_CORS_ORIGIN)")
	apiCmd.Flags().DurationVar(&flagSessionIdle, "session-idle", 30*time.Minute, "Drop sessions unused for this long (0 keeps them)")
	apiCmd.Flags().DurationVar(&flagTickInterval, "tick", 50*time.Millisecond, "How often pending transitions are fired")
	apiCmd.Flags().BoolVar(&flagMemory, "memory", false, "Keep the leaderboard in memory instead of SQLite")
}

// getEnv returns the environment value of k, or def when unset.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func runAPI(cmd *cobra.Command, _ []string) {
	_ = godotenv.Load() // optional .env

	logger, closeLog, err := newLogger("notematch-api", os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := serveAPI(cmd, logger); err != nil {
		logger.Error("http server stopped", "err", err)
		closeLog()
		os.Exit(1)
	}
	logger.Info("http server stopped")
	closeLog()
}

// serveAPI runs the API until interrupted and closes what it opened.
func serveAPI(cmd *cobra.Command, logger *log.Logger) error {
	addr := flagHTTPAddr
	if addr == "" {
		addr = getEnv("NOTEMATCH_HTTP_ADDR", ":8080")
	}
	dbPath := flagDBPath
	if !cmd.Flags().Changed("db") {
		dbPath = getEnv("NOTEMATCH_DB", defaultDBPath)
	}
	origin := flagCORSOrigin
	if origin == "" {
		origin = os.Getenv("NOTEMATCH_CORS_ORIGIN")
	}

	cfg := loadConfig()

	var sink leaderboard.Sink = leaderboard.NewMemory()
	if !flagMemory {
		store, openErr := storage.Open(dbPath)
		if openErr != nil {
			return fmt.Errorf("open leaderboard database %s: %w", dbPath, openErr)
		}
		defer store.Close()
		sink = store
		logger.Info("leaderboard database", "path", dbPath)
	}

	reg := session.NewRegistry(session.Options{
		Config: cfg,
		Clock:  core.SystemClock{},
		Seed:   flagSeed,
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	driver := &session.Driver{
		Registry:    reg,
		Interval:    flagTickInterval,
		IdleTimeout: flagSessionIdle,
		Logger:      logger,
		OnEvents: func(s *session.Session, events []game.Event) {
			for _, ev := range events {
				switch ev.Kind {
				case game.EventGameEnded:
					logger.Info("game ended", "session", s.ID, "team", s.Engine.TeamID())
				case game.EventResolveFault:
					logger.Warn("resolve fault recovered", "session", s.ID)
				}
			}
		},
	}
	go driver.Run(ctx)

	srv := httpapi.New(httpapi.Options{
		Sessions:    reg,
		Leaderboard: sink,
		Logger:      logger,
		AllowOrigin: origin,
	})

	return srv.ListenAndServe(ctx, addr)
}
