// Package httpapi exposes the game sessions, the note table and the
// leaderboard as a JSON API.
//
// Routes (all under /api):
//
//	GET    /test                       liveness probe
//	GET    /notes                      note table
//	POST   /sessions                   {teamId, difficulty} -> new playing session
//	GET    /sessions/{id}              snapshot
//	DELETE /sessions/{id}
//	POST   /sessions/{id}/flip         {tileId} -> {accepted, snapshot}
//	POST   /sessions/{id}/reset        back to menu
//	POST   /sessions/{id}/init         {difficulty} -> new board, playing
//	POST   /sessions/{id}/clear-match  drop the match notification
//	GET    /sessions/{id}/events       recent engine events
//	POST   /sessions/{id}/submit       ended game -> leaderboard entry
//	GET    /leaderboard?limit=N
//	POST   /leaderboard                {teamId, timeTaken, moves, score}
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/notematch/internal/leaderboard"
	"github.com/vovakirdan/notematch/internal/notes"
	"github.com/vovakirdan/notematch/internal/session"
)

// Options configures a Server.
type Options struct {
	Sessions    *session.Registry
	Leaderboard leaderboard.Sink
	Table       *notes.Table
	Logger      *log.Logger
	// AllowOrigin enables CORS for a single origin when set.
	AllowOrigin string
	// Timeout bounds handler time; zero means 10s.
	Timeout time.Duration
}

// Server bundles the router with the stores it serves.
type Server struct {
	r        *chi.Mux
	sessions *session.Registry
	board    leaderboard.Sink
	table    *notes.Table
	log      *log.Logger
	limit    int
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Table == nil {
		opts.Table = notes.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Leaderboard == nil {
		opts.Leaderboard = leaderboard.NewMemory()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewRegistry(session.Options{Table: opts.Table, Logger: opts.Logger})
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	s := &Server{
		r:        chi.NewRouter(),
		sessions: opts.Sessions,
		board:    opts.Leaderboard,
		table:    opts.Table,
		log:      opts.Logger,
		limit:    opts.Sessions.Config().Leaderboard.Limit,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(s.requestLogger)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(opts.Timeout))
	s.r.Use(jsonContentType)
	if opts.AllowOrigin != "" {
		s.r.Use(cors(opts.AllowOrigin))
	}

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, message{Message: "API endpoint not found"})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, message{Message: "method not allowed"})
	})

	s.r.Route("/api", func(r chi.Router) {
		r.Get("/test", s.handleTest)
		r.Get("/notes", s.handleNotes)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/flip", s.handleFlip)
				r.Post("/reset", s.handleReset)
				r.Post("/init", s.handleInit)
				r.Post("/clear-match", s.handleClearMatch)
				r.Get("/events", s.handleEvents)
				r.Post("/submit", s.handleSubmit)
			})
		})

		r.Get("/leaderboard", s.handleTop)
		r.Post("/leaderboard", s.handlePostResult)
	})

	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.r.ServeHTTP(w, r)
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per API request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"dur", time.Since(start),
			"req_id", chimw.GetReqID(r.Context()),
		)
	})
}

// ------------------------------ helpers ------------------------------------

type message struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, message{Message: msg})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
