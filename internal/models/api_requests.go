package models

import "time"

// Odds are decimal bookmaker odds for each player.
type Odds struct {
	Player1 float64 `json:"player1" validate:"gt=1"`
	Player2 float64 `json:"player2" validate:"gt=1"`
}

type AnalyzeMatchRequest struct {
	Player1ID      string      `json:"player1_id" validate:"required"`
	Player2ID      string      `json:"player2_id" validate:"required,nefield=Player1ID"`
	Surface        Surface     `json:"surface" validate:"omitempty,oneof=hard clay grass indoor-hard"`
	TournamentName string      `json:"tournament_name"`
	Round          string      `json:"round"`
	Location       string      `json:"location"`
	BestOf         int         `json:"best_of" validate:"omitempty,oneof=3 5"`
	UTCStart       *time.Time  `json:"utc_start"`
	Odds           *Odds       `json:"odds"`
	Models         []ModelType `json:"models"`
}

type AnalyzeMatchResponse struct {
	Match       Match        `json:"match"`
	Predictions []Prediction `json:"predictions"`
}

type PreviewPredictionRequest struct {
	Player1ID string    `json:"player1_id" validate:"required"`
	Player2ID string    `json:"player2_id" validate:"required,nefield=Player1ID"`
	Surface   Surface   `json:"surface" validate:"omitempty,oneof=hard clay grass indoor-hard"`
	BestOf    int       `json:"best_of" validate:"omitempty,oneof=3 5"`
	Location  string    `json:"location"`
	Odds      *Odds     `json:"odds"`
	Model     ModelType `json:"model" validate:"required"`
}

type RecordOutcomeRequest struct {
	WinnerID string `json:"winner_id" validate:"required"`
}

type FeedbackRequest struct {
	WasCorrect bool   `json:"was_correct"`
	Notes      string `json:"notes"`
}

type SwitchDataSourceRequest struct {
	Name string `json:"name" validate:"required"`
}
