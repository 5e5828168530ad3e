// Package storage provides SQLite-based persistence for the leaderboard.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/notematch/internal/leaderboard"
)

// Store manages the SQLite database connection for leaderboard persistence.
type Store struct {
	db *sql.DB
}

// Stats contains aggregated leaderboard statistics.
type Stats struct {
	Games      int
	BestScore  float64
	AvgScore   float64
	AvgMoves   float64
	Teams      int
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under the API.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS leaderboard (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			team_id TEXT NOT NULL,
			time_taken INTEGER NOT NULL,
			moves INTEGER NOT NULL,
			score REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_leaderboard_score ON leaderboard(score ASC, id ASC);
		CREATE INDEX IF NOT EXISTS idx_leaderboard_team ON leaderboard(team_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Submit validates and stores a record.
func (s *Store) Submit(ctx context.Context, r leaderboard.Record) (leaderboard.Entry, error) {
	if err := r.Validate(); err != nil {
		return leaderboard.Entry{}, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO leaderboard (team_id, time_taken, moves, score) VALUES (?, ?, ?, ?)",
		r.TeamID, r.TimeTaken, r.Moves, r.Score,
	)
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("storage: cannot save result: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return s.entry(ctx, id)
}

func (s *Store) entry(ctx context.Context, id int64) (leaderboard.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, team_id, time_taken, moves, score, created_at
		 FROM leaderboard WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("storage: cannot read result %d: %w", id, err)
	}
	return e, nil
}

// Top retrieves up to limit entries ordered by score ascending, ties by
// submission order.
func (s *Store) Top(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	if limit <= 0 {
		limit = leaderboard.DefaultLimit
	}
	return s.query(ctx,
		`SELECT id, team_id, time_taken, moves, score, created_at
		 FROM leaderboard
		 ORDER BY score ASC, id ASC
		 LIMIT ?`, limit)
}

// TeamEntries retrieves every entry of one team, best first.
func (s *Store) TeamEntries(ctx context.Context, teamID string) ([]leaderboard.Entry, error) {
	return s.query(ctx,
		`SELECT id, team_id, time_taken, moves, score, created_at
		 FROM leaderboard
		 WHERE team_id = ?
		 ORDER BY score ASC, id ASC`, teamID)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]leaderboard.Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []leaderboard.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return entries, nil
}

// Stats returns aggregated statistics over every stored result.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var last any
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MIN(score), 0), COALESCE(AVG(score), 0),
		        COALESCE(AVG(moves), 0), COUNT(DISTINCT team_id), MAX(created_at)
		 FROM leaderboard`,
	).Scan(&st.Games, &st.BestScore, &st.AvgScore, &st.AvgMoves, &st.Teams, &last)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	st.LastPlayed = parseTime(last)
	return st, nil
}

// Clear deletes every leaderboard entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM leaderboard"); err != nil {
		return fmt.Errorf("storage: cannot clear leaderboard: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (leaderboard.Entry, error) {
	var e leaderboard.Entry
	var createdAt any
	if err := sc.Scan(&e.ID, &e.TeamID, &e.TimeTaken, &e.Moves, &e.Score, &createdAt); err != nil {
		return e, err
	}
	e.CreatedAt = parseTime(createdAt)
	return e, nil
}

// parseTime handles both time.Time and string datetime columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

var _ leaderboard.Sink = (*Store)(nil)
