package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMatch is returned when a match record fails validation.
var ErrInvalidMatch = errors.New("invalid match")

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
)

// Match is a scheduled or completed contest between exactly two players.
type Match struct {
	ID             string      `json:"id"`
	Player1ID      string      `json:"player1_id"`
	Player2ID      string      `json:"player2_id"`
	Surface        Surface     `json:"surface"`
	TournamentName string      `json:"tournament_name,omitempty"`
	Round          string      `json:"round,omitempty"`
	Location       string      `json:"location,omitempty"`
	BestOf         int         `json:"best_of"`
	Status         MatchStatus `json:"status"`
	UTCStart       *time.Time  `json:"utc_start,omitempty"`
	WinnerID       string      `json:"winner_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ApplyDefaults fills surface, best_of and status when unset.
func (m *Match) ApplyDefaults() {
	if m.Surface == "" {
		m.Surface = SurfaceHard
	}
	if m.BestOf == 0 {
		m.BestOf = 3
	}
	if m.Status == "" {
		m.Status = MatchScheduled
	}
}

// Validate checks the two-player and best-of invariants.
func (m *Match) Validate() error {
	if m.Player1ID == "" || m.Player2ID == "" {
		return fmt.Errorf("%w: both players are required", ErrInvalidMatch)
	}
	if m.Player1ID == m.Player2ID {
		return fmt.Errorf("%w: player1_id and player2_id must differ", ErrInvalidMatch)
	}
	if m.BestOf != 3 && m.BestOf != 5 {
		return fmt.Errorf("%w: best_of must be 3 or 5, got %d", ErrInvalidMatch, m.BestOf)
	}
	if !m.Surface.Valid() {
		return fmt.Errorf("%w: unknown surface %q", ErrInvalidMatch, m.Surface)
	}
	return nil
}
