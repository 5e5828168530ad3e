package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/notematch/internal/config"
	"github.com/vovakirdan/notematch/internal/game"
	"github.com/vovakirdan/notematch/internal/leaderboard"
	"github.com/vovakirdan/notematch/internal/session"
)

type testRes struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, testRes{
		Message:   "Server is working",
		Timestamp: s.sessions.Clock().Now().UTC(),
	})
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.table.All())
}

// ------------------------------ sessions -----------------------------------

type createSessionReq struct {
	TeamID     string `json:"teamId"`
	Difficulty string `json:"difficulty"`
}

type sessionRes struct {
	ID       session.ID    `json:"id"`
	Snapshot game.Snapshot `json:"snapshot"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	team := strings.TrimSpace(req.TeamID)
	if team == "" {
		writeError(w, http.StatusBadRequest, "teamId is required")
		return
	}
	d, err := config.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.sessions.Create("http", team, d)
	if err != nil {
		s.log.Error("create session", "err", err)
		writeError(w, http.StatusInternalServerError, "cannot build board")
		return
	}
	writeJSON(w, http.StatusCreated, sessionRes{ID: sess.ID, Snapshot: sess.Engine.Snapshot()})
}

// session resolves {id} and brings the engine up to date before the handler
// reads or mutates it.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := session.ID(chi.URLParam(r, "id"))
	sess, err := s.sessions.Get(id)
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	session.Step(sess.Engine, s.sessions.Clock().Now())
	sess.Collect()
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionRes{ID: sess.ID, Snapshot: sess.Engine.Snapshot()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Delete(session.ID(chi.URLParam(r, "id"))) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type flipReq struct {
	TileID string `json:"tileId"`
}

type flipRes struct {
	Accepted bool          `json:"accepted"`
	Snapshot game.Snapshot `json:"snapshot"`
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req flipReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	accepted := sess.Engine.Flip(req.TileID)
	sess.Collect()
	writeJSON(w, http.StatusOK, flipRes{Accepted: accepted, Snapshot: sess.Engine.Snapshot()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Engine.ResetGame()
	sess.ResetSubmitted()
	writeJSON(w, http.StatusOK, sessionRes{ID: sess.ID, Snapshot: sess.Engine.Snapshot()})
}

type initReq struct {
	TeamID     string `json:"teamId,omitempty"`
	Difficulty string `json:"difficulty"`
}

// handleInit deals a new board on an existing session and starts play.
func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req initReq
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	d, err := config.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	e := sess.Engine
	team := strings.TrimSpace(req.TeamID)
	if team == "" {
		team = e.TeamID()
	}
	if team == "" {
		writeError(w, http.StatusBadRequest, "teamId is required")
		return
	}

	// Replays go back through the menu so play always starts from it.
	e.ResetGame()
	e.SetTeamID(team)
	if err := e.InitGame(d); err != nil {
		s.log.Error("init game", "session", sess.ID, "err", err)
		writeError(w, http.StatusInternalServerError, "cannot build board")
		return
	}
	e.StartPlaying()
	sess.ResetSubmitted()
	writeJSON(w, http.StatusOK, sessionRes{ID: sess.ID, Snapshot: e.Snapshot()})
}

func (s *Server) handleClearMatch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Engine.ClearLastMatched()
	writeJSON(w, http.StatusOK, sessionRes{ID: sess.ID, Snapshot: sess.Engine.Snapshot()})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	events := sess.Recent()
	if events == nil {
		events = []game.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleSubmit records a finished session's result on the leaderboard, once.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	snap := sess.Engine.Snapshot()
	if snap.Phase != game.PhaseEnded {
		writeError(w, http.StatusConflict, "game has not ended")
		return
	}
	if !sess.MarkSubmitted() {
		writeError(w, http.StatusConflict, "result already submitted")
		return
	}

	rec := leaderboard.NewRecord(snap.TeamID, snap.ElapsedTime, snap.Moves)
	entry, err := s.board.Submit(r.Context(), rec)
	if err != nil {
		sess.ResetSubmitted()
		s.submitError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// ----------------------------- leaderboard ---------------------------------

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	limit := s.limit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.board.Top(r.Context(), limit)
	if err != nil {
		s.log.Error("leaderboard query", "err", err)
		writeError(w, http.StatusInternalServerError, "cannot read leaderboard")
		return
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handlePostResult(w http.ResponseWriter, r *http.Request) {
	var rec leaderboard.Record
	if err := decode(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	entry, err := s.board.Submit(r.Context(), rec)
	if err != nil {
		s.submitError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) submitError(w http.ResponseWriter, err error) {
	if errors.Is(err, leaderboard.ErrInvalidRecord) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Error("leaderboard submit", "err", err)
	writeError(w, http.StatusInternalServerError, "cannot save result")
}
