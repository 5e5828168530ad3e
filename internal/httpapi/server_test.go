package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vovakirdan/notematch/internal/config"
	"github.com/vovakirdan/notematch/internal/core"
	"github.com/vovakirdan/notematch/internal/game"
	"github.com/vovakirdan/notematch/internal/leaderboard"
	"github.com/vovakirdan/notematch/internal/notes"
	"github.com/vovakirdan/notematch/internal/session"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	srv   *Server
	clk   *core.ManualClock
	board *leaderboard.Memory
}

// newFixture serves a registry whose easy board is one 2x2 layer of A4 pairs.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Default()
	cfg.Difficulties[config.DifficultyEasy] = config.Preset{
		Layers:   []int{2},
		Required: []config.RequiredPair{{Note: "A4", Display: 2}},
	}
	clk := &core.ManualClock{T: epoch}
	reg := session.NewRegistry(session.Options{Config: cfg, Clock: clk, Seed: 7})
	board := leaderboard.NewMemory()
	return &fixture{
		srv:   New(Options{Sessions: reg, Leaderboard: board}),
		clk:   clk,
		board: board,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func (f *fixture) create(t *testing.T, team, difficulty string) sessionRes {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/sessions", createSessionReq{TeamID: team, Difficulty: difficulty})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[sessionRes](t, rec)
}

func TestTestEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/test", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	res := decodeBody[testRes](t, rec)
	if res.Message != "Server is working" {
		t.Errorf("message = %q", res.Message)
	}
	if !res.Timestamp.Equal(epoch) {
		t.Errorf("timestamp = %v, want %v", res.Timestamp, epoch)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestUnknownEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if msg := decodeBody[message](t, rec).Message; msg != "API endpoint not found" {
		t.Errorf("message = %q", msg)
	}
}

func TestNotes(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/notes", nil)
	list := decodeBody[[]notes.Note](t, rec)
	if len(list) != notes.MaxMIDI-notes.MinMIDI+1 {
		t.Fatalf("len = %d, want %d", len(list), notes.MaxMIDI-notes.MinMIDI+1)
	}
	if list[68].MIDI != 69 || list[68].Name != "A4" || list[68].Frequency != 440 {
		t.Errorf("notes[68] = %+v, want A4 at 440Hz", list[68])
	}
}

func TestCreateSessionValidation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		body any
	}{
		{"missing team", createSessionReq{Difficulty: "easy"}},
		{"blank team", createSessionReq{TeamID: "  ", Difficulty: "easy"}},
		{"bad difficulty", createSessionReq{TeamID: "red", Difficulty: "nightmare"}},
		{"unknown field", map[string]string{"team": "red"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/sessions", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, "red", "normal")
	if res.ID == "" {
		t.Fatal("empty session id")
	}
	snap := res.Snapshot
	if snap.Phase != game.PhasePlaying || snap.Difficulty != game.Medium || snap.TeamID != "red" {
		t.Errorf("snapshot = phase %s difficulty %s team %q", snap.Phase, snap.Difficulty, snap.TeamID)
	}
	if len(snap.Layers) != 3 || snap.CurrentLayer != 2 {
		t.Errorf("layers = %d, current = %d, want 3 and 2", len(snap.Layers), snap.CurrentLayer)
	}

	rec := f.do(t, http.MethodGet, "/api/sessions/"+string(res.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session status = %d", rec.Code)
	}
}

func TestSessionNotFound(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/api/sessions/missing", "/api/sessions/missing/events"} {
		if rec := f.do(t, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, rec.Code)
		}
	}
	if rec := f.do(t, http.MethodDelete, "/api/sessions/missing", nil); rec.Code != http.StatusNotFound {
		t.Errorf("DELETE status = %d, want 404", rec.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t)
	id := string(f.create(t, "red", "easy").ID)
	if rec := f.do(t, http.MethodDelete, "/api/sessions/"+id, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if rec := f.do(t, http.MethodGet, "/api/sessions/"+id, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
}

func (f *fixture) flip(t *testing.T, id, tile string) flipRes {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/flip", flipReq{TileID: tile})
	if rec.Code != http.StatusOK {
		t.Fatalf("flip status = %d, body %s", rec.Code, rec.Body.String())
	}
	return decodeBody[flipRes](t, rec)
}

func TestFlipBusyAndResolve(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, "red", "easy")
	id := string(res.ID)

	if r := f.flip(t, id, "layer0-tile0"); !r.Accepted || r.Snapshot.Moves != 1 {
		t.Fatalf("first flip = accepted %v moves %d", r.Accepted, r.Snapshot.Moves)
	}
	if r := f.flip(t, id, "layer0-tile0"); r.Accepted {
		t.Error("flipping the same tile twice must be ignored")
	}
	r := f.flip(t, id, "layer0-tile1")
	if !r.Accepted || !r.Snapshot.Busy || len(r.Snapshot.FlippedTiles) != 2 {
		t.Fatalf("second flip = accepted %v busy %v flipped %v", r.Accepted, r.Snapshot.Busy, r.Snapshot.FlippedTiles)
	}
	if r := f.flip(t, id, "layer0-tile2"); r.Accepted {
		t.Error("flip while busy must be ignored")
	}

	// Every tile holds A4, so the pair matches once the reveal delay passes.
	f.clk.Add(10 * time.Second)
	snap := decodeBody[sessionRes](t, f.do(t, http.MethodGet, "/api/sessions/"+id, nil)).Snapshot
	if snap.Busy || len(snap.FlippedTiles) != 0 {
		t.Errorf("after resolve busy %v flipped %v", snap.Busy, snap.FlippedTiles)
	}
	if snap.LastMatched == nil || snap.LastMatched.Name != "A4" {
		t.Errorf("matchedNote = %v, want A4", snap.LastMatched)
	}
	if len(snap.Discovered) != 1 {
		t.Errorf("discovered = %v, want one note", snap.Discovered)
	}

	snap = decodeBody[sessionRes](t, f.do(t, http.MethodPost, "/api/sessions/"+id+"/clear-match", nil)).Snapshot
	if snap.LastMatched != nil {
		t.Errorf("matchedNote after clear = %v", snap.LastMatched)
	}

	events := decodeBody[[]game.Event](t, f.do(t, http.MethodGet, "/api/sessions/"+id+"/events", nil))
	kinds := map[game.EventKind]int{}
	for _, ev := range events {
		kinds[ev.Kind]++
	}
	if kinds[game.EventFlip] != 2 || kinds[game.EventMatch] != 1 {
		t.Errorf("event kinds = %v, want 2 flips and 1 match", kinds)
	}
}

func TestFullGameAndSubmit(t *testing.T) {
	f := newFixture(t)
	id := string(f.create(t, "red", "easy").ID)
	path := "/api/sessions/" + id

	if rec := f.do(t, http.MethodPost, path+"/submit", nil); rec.Code != http.StatusConflict {
		t.Errorf("submit while playing status = %d, want 409", rec.Code)
	}

	f.flip(t, id, "layer0-tile0")
	f.flip(t, id, "layer0-tile1")
	f.clk.Add(10 * time.Second)
	f.do(t, http.MethodGet, path, nil)
	f.flip(t, id, "layer0-tile2")
	f.flip(t, id, "layer0-tile3")
	f.clk.Add(10 * time.Second)

	snap := decodeBody[sessionRes](t, f.do(t, http.MethodGet, path, nil)).Snapshot
	if snap.Phase != game.PhaseEnded {
		t.Fatalf("phase = %s, want ended", snap.Phase)
	}
	if snap.Moves != 4 || snap.CurrentLayer != -1 {
		t.Errorf("moves = %d current = %d, want 4 and -1", snap.Moves, snap.CurrentLayer)
	}

	rec := f.do(t, http.MethodPost, path+"/submit", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}
	entry := decodeBody[leaderboard.Entry](t, rec)
	if entry.TeamID != "red" || entry.Moves != 4 {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Score != leaderboard.Score(entry.TimeTaken, 4) {
		t.Errorf("score = %v, want %v", entry.Score, leaderboard.Score(entry.TimeTaken, 4))
	}

	if rec := f.do(t, http.MethodPost, path+"/submit", nil); rec.Code != http.StatusConflict {
		t.Errorf("second submit status = %d, want 409", rec.Code)
	}
	if f.board.Len() != 1 {
		t.Errorf("leaderboard has %d entries, want 1", f.board.Len())
	}

	// Replaying deals a fresh board for the same team and allows a new result.
	rec = f.do(t, http.MethodPost, path+"/init", initReq{Difficulty: "easy"})
	if rec.Code != http.StatusOK {
		t.Fatalf("init status = %d, body %s", rec.Code, rec.Body.String())
	}
	snap = decodeBody[sessionRes](t, rec).Snapshot
	if snap.Phase != game.PhasePlaying || snap.TeamID != "red" || snap.Moves != 0 {
		t.Errorf("replay snapshot = phase %s team %q moves %d", snap.Phase, snap.TeamID, snap.Moves)
	}
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	id := string(f.create(t, "red", "easy").ID)
	f.flip(t, id, "layer0-tile0")

	snap := decodeBody[sessionRes](t, f.do(t, http.MethodPost, "/api/sessions/"+id+"/reset", nil)).Snapshot
	if snap.Phase != game.PhaseMenu || len(snap.Layers) != 0 || snap.Moves != 0 || snap.TeamID != "" {
		t.Errorf("after reset = phase %s layers %d moves %d team %q", snap.Phase, len(snap.Layers), snap.Moves, snap.TeamID)
	}

	// Without a team the session cannot be re-dealt.
	if rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/init", initReq{Difficulty: "easy"}); rec.Code != http.StatusBadRequest {
		t.Errorf("init without team status = %d, want 400", rec.Code)
	}
	if rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/init", initReq{TeamID: "blue", Difficulty: "hard"}); rec.Code != http.StatusOK {
		t.Errorf("init with team status = %d, want 200", rec.Code)
	}
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)
	for _, r := range []leaderboard.Record{
		leaderboard.NewRecord("slow", 100, 10),
		leaderboard.NewRecord("fast", 20, 10),
		leaderboard.NewRecord("mid", 50, 10),
	} {
		if rec := f.do(t, http.MethodPost, "/api/leaderboard", r); rec.Code != http.StatusCreated {
			t.Fatalf("post %s status = %d, body %s", r.TeamID, rec.Code, rec.Body.String())
		}
	}

	if rec := f.do(t, http.MethodPost, "/api/leaderboard", leaderboard.Record{Moves: 3}); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid record status = %d, want 400", rec.Code)
	}

	entries := decodeBody[[]leaderboard.Entry](t, f.do(t, http.MethodGet, "/api/leaderboard", nil))
	want := []string{"fast", "mid", "slow"}
	if len(entries) != len(want) {
		t.Fatalf("len = %d, want %d", len(entries), len(want))
	}
	for i, team := range want {
		if entries[i].TeamID != team {
			t.Errorf("entries[%d] = %s, want %s", i, entries[i].TeamID, team)
		}
	}

	entries = decodeBody[[]leaderboard.Entry](t, f.do(t, http.MethodGet, "/api/leaderboard?limit=1", nil))
	if len(entries) != 1 || entries[0].TeamID != "fast" {
		t.Errorf("limit=1 = %+v", entries)
	}

	for _, q := range []string{"0", "-3", "x"} {
		if rec := f.do(t, http.MethodGet, "/api/leaderboard?limit="+q, nil); rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", q, rec.Code)
		}
	}
}

func TestEmptyLeaderboardIsArray(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/leaderboard", nil)
	if body := bytes.TrimSpace(rec.Body.Bytes()); string(body) != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestCORS(t *testing.T) {
	srv := New(Options{AllowOrigin: "http://localhost:5173"})
	req := httptest.NewRequest(http.MethodOptions, "/api/test", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
}
