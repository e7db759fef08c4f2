package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidWeights is returned when a ModelWeights row fails validation.
var ErrInvalidWeights = errors.New("invalid model weights")

// FeedbackSource tells derived rows from manual submissions.
type FeedbackSource string

const (
	FeedbackDerived FeedbackSource = "derived"
	FeedbackManual  FeedbackSource = "manual"
)

// ModelFeedback is the denormalized calibration input for one prediction.
type ModelFeedback struct {
	ID               string             `json:"id"`
	PredictionID     string             `json:"prediction_id"`
	MatchID          string             `json:"match_id"`
	ModelType        ModelType          `json:"model_type"`
	WasCorrect       *bool              `json:"was_correct,omitempty"`
	ConfidenceLevel  Confidence         `json:"confidence_level"`
	PredictedProb    float64            `json:"predicted_probability"`
	CalibrationError *float64           `json:"calibration_error,omitempty"` // 0-100, lower is better
	Surface          Surface            `json:"surface"`
	FeatureSnapshot  map[string]float64 `json:"feature_snapshot,omitempty"`
	Source           FeedbackSource     `json:"source"`
	Notes            string             `json:"notes,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ModelWeights is a named, versioned feature-weight configuration.
type ModelWeights struct {
	ID            string    `json:"id"`
	Name          string    `json:"name" validate:"required"`
	Version       int       `json:"version"`
	RankingWeight float64   `json:"ranking_weight" validate:"gte=0,lte=1"`
	ServeWeight   float64   `json:"serve_weight" validate:"gte=0,lte=1"`
	ReturnWeight  float64   `json:"return_weight" validate:"gte=0,lte=1"`
	SurfaceWeight float64   `json:"surface_weight" validate:"gte=0,lte=1"`
	H2HWeight     float64   `json:"h2h_weight" validate:"gte=0,lte=1"`
	FormWeight    float64   `json:"form_weight" validate:"gte=0,lte=1"`
	FatigueWeight float64   `json:"fatigue_weight" validate:"gte=0,lte=1"`
	InjuryWeight  float64   `json:"injury_weight" validate:"gte=0,lte=1"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// WeightsSumTolerance is the allowed deviation of the weight total from 1.
const WeightsSumTolerance = 0.01

// Sum adds all eight feature weights.
func (w *ModelWeights) Sum() float64 {
	return w.RankingWeight + w.ServeWeight + w.ReturnWeight + w.SurfaceWeight +
		w.H2HWeight + w.FormWeight + w.FatigueWeight + w.InjuryWeight
}

// Validate enforces the sum-to-one invariant.
func (w *ModelWeights) Validate() error {
	if sum := w.Sum(); math.Abs(sum-1) > WeightsSumTolerance {
		return fmt.Errorf("%w: weights sum to %.3f, want 1.0", ErrInvalidWeights, sum)
	}
	return nil
}

// ComplianceStatus tracks review of a data source.
type ComplianceStatus string

const (
	CompliancePending  ComplianceStatus = "pending"
	ComplianceApproved ComplianceStatus = "approved"
	ComplianceRejected ComplianceStatus = "rejected"
)

// Compliance records the licensing/terms review of an external data source.
type Compliance struct {
	ID         string           `json:"id"`
	DataSource string           `json:"data_source" validate:"required"`
	Status     ComplianceStatus `json:"status"`
	Notes      string           `json:"notes,omitempty"`
	CheckedAt  *time.Time       `json:"checked_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// Alias maps an alternate spelling of a player's name to the player.
type Alias struct {
	Alias    string `json:"alias" validate:"required"`
	PlayerID string `json:"player_id" validate:"required"`
	Source   string `json:"source,omitempty"`
}
