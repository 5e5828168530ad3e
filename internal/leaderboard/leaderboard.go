// Package leaderboard defines the result record a finished game produces and
// the sink contract results are submitted to and ranked by.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultLimit is the number of entries Top returns when limit is not positive.
const DefaultLimit = 100

// ErrInvalidRecord is returned for records a sink refuses to store.
var ErrInvalidRecord = errors.New("invalid leaderboard record")

// Record is one finished game. Lower Score is better.
type Record struct {
	TeamID    string  `json:"teamId"`
	TimeTaken int     `json:"timeTaken"` // seconds
	Moves     int     `json:"moves"`
	Score     float64 `json:"score"`
}

// Entry is a stored record.
type Entry struct {
	ID int64 `json:"id"`
	Record
	CreatedAt time.Time `json:"createdAt"`
}

// Sink accepts results and returns them ranked by ascending score.
type Sink interface {
	Submit(ctx context.Context, r Record) (Entry, error)
	Top(ctx context.Context, limit int) ([]Entry, error)
}

// Score is seconds per move, or 0 when no move was made.
func Score(timeTaken, moves int) float64 {
	if moves <= 0 {
		return 0
	}
	return float64(timeTaken) / float64(moves)
}

// NewRecord builds a record with its score filled in.
func NewRecord(teamID string, timeTaken, moves int) Record {
	return Record{
		TeamID:    strings.TrimSpace(teamID),
		TimeTaken: timeTaken,
		Moves:     moves,
		Score:     Score(timeTaken, moves),
	}
}

// Validate checks the record can be stored.
func (r Record) Validate() error {
	switch {
	case strings.TrimSpace(r.TeamID) == "":
		return fmt.Errorf("%w: empty team id", ErrInvalidRecord)
	case r.TimeTaken < 0:
		return fmt.Errorf("%w: negative time", ErrInvalidRecord)
	case r.Moves < 0:
		return fmt.Errorf("%w: negative moves", ErrInvalidRecord)
	case r.Score < 0:
		return fmt.Errorf("%w: negative score", ErrInvalidRecord)
	}
	return nil
}
