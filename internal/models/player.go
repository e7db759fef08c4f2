package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPlayer is returned when a player record fails validation.
var ErrInvalidPlayer = errors.New("invalid player")

// Surface identifies the court type of a match.
type Surface string

const (
	SurfaceHard       Surface = "hard"
	SurfaceClay       Surface = "clay"
	SurfaceGrass      Surface = "grass"
	SurfaceIndoorHard Surface = "indoor-hard"
)

// Valid reports whether s is one of the known surfaces.
func (s Surface) Valid() bool {
	switch s {
	case SurfaceHard, SurfaceClay, SurfaceGrass, SurfaceIndoorHard:
		return true
	}
	return false
}

// Base folds indoor hard courts into hard, which is how player statistics are kept.
func (s Surface) Base() Surface {
	if s == SurfaceIndoorHard {
		return SurfaceHard
	}
	return s
}

// WinLoss is a win/loss record on one surface.
type WinLoss struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// Player is the canonical in-core profile of a competitor.
// Optional statistics are pointers: nil means "unknown", never zero.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name,omitempty"`

	CurrentRank int      `json:"current_rank"`
	EloRating   *float64 `json:"elo_rating,omitempty"`
	HardElo     *float64 `json:"hard_elo,omitempty"`
	ClayElo     *float64 `json:"clay_elo,omitempty"`
	GrassElo    *float64 `json:"grass_elo,omitempty"`

	// Serve / return percentages, 0-100
	FirstServeWinPct        *float64 `json:"first_serve_win_pct,omitempty"`
	SecondServeWinPct       *float64 `json:"second_serve_win_pct,omitempty"`
	FirstReturnWinPct       *float64 `json:"first_return_win_pct,omitempty"`
	SecondReturnWinPct      *float64 `json:"second_return_win_pct,omitempty"`
	BreakPointsSavedPct     *float64 `json:"break_points_saved_pct,omitempty"`
	BreakPointsConvertedPct *float64 `json:"break_points_converted_pct,omitempty"`

	// Surface win percentages, 0-100
	HardCourtWinPct  *float64 `json:"hard_court_win_pct,omitempty"`
	ClayCourtWinPct  *float64 `json:"clay_court_win_pct,omitempty"`
	GrassCourtWinPct *float64 `json:"grass_court_win_pct,omitempty"`

	SurfaceRecords map[Surface]WinLoss `json:"surface_records,omitempty"`

	RecentForm  []string `json:"recent_form,omitempty"` // "W"/"L", most recent last
	Nationality string   `json:"nationality,omitempty"`
	DataSource  string   `json:"data_source,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// DisplayName returns the short name, falling back to the full name.
func (p *Player) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.FullName
}

// SurfaceWinPct looks up the surface win percentage for s.
func (p *Player) SurfaceWinPct(s Surface) *float64 {
	switch s.Base() {
	case SurfaceHard:
		return p.HardCourtWinPct
	case SurfaceClay:
		return p.ClayCourtWinPct
	case SurfaceGrass:
		return p.GrassCourtWinPct
	}
	return nil
}

// SurfaceElo returns the explicit surface-specific ELO for s, if any.
func (p *Player) SurfaceElo(s Surface) *float64 {
	switch s.Base() {
	case SurfaceHard:
		return p.HardElo
	case SurfaceClay:
		return p.ClayElo
	case SurfaceGrass:
		return p.GrassElo
	}
	return nil
}

// Validate checks rank and percentage bounds.
func (p *Player) Validate() error {
	if strings.TrimSpace(p.DisplayName()) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlayer)
	}
	if p.CurrentRank < 0 {
		return fmt.Errorf("%w: current_rank must be positive", ErrInvalidPlayer)
	}
	pcts := map[string]*float64{
		"first_serve_win_pct":        p.FirstServeWinPct,
		"second_serve_win_pct":       p.SecondServeWinPct,
		"first_return_win_pct":       p.FirstReturnWinPct,
		"second_return_win_pct":      p.SecondReturnWinPct,
		"break_points_saved_pct":     p.BreakPointsSavedPct,
		"break_points_converted_pct": p.BreakPointsConvertedPct,
		"hard_court_win_pct":         p.HardCourtWinPct,
		"clay_court_win_pct":         p.ClayCourtWinPct,
		"grass_court_win_pct":        p.GrassCourtWinPct,
	}
	for name, v := range pcts {
		if v != nil && (*v < 0 || *v > 100) {
			return fmt.Errorf("%w: %s=%.2f outside [0,100]", ErrInvalidPlayer, name, *v)
		}
	}
	return nil
}

// Float is a small helper for building optional statistics.
func Float(v float64) *float64 {
	return &v
}
