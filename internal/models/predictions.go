package models

import "time"

// ModelType identifies the scoring model that produced a prediction.
type ModelType string

const (
	ModelConservative  ModelType = "conservative"
	ModelBalanced      ModelType = "balanced"
	ModelAggressive    ModelType = "aggressive"
	ModelElo           ModelType = "elo"
	ModelSurfaceExpert ModelType = "surface_expert"
	ModelEnsemble      ModelType = "ensemble"
	ModelML            ModelType = "ml"
	ModelMLEnhanced    ModelType = "ml_enhanced"
)

// AllModelTypes lists every model type a prediction can carry.
var AllModelTypes = []ModelType{
	ModelConservative,
	ModelBalanced,
	ModelAggressive,
	ModelElo,
	ModelSurfaceExpert,
	ModelEnsemble,
	ModelML,
	ModelMLEnhanced,
}

// HeuristicModelTypes are the three rule-based variants generated together.
var HeuristicModelTypes = []ModelType{ModelConservative, ModelBalanced, ModelAggressive}

// Valid reports whether t is a known model type.
func (t ModelType) Valid() bool {
	for _, m := range AllModelTypes {
		if m == t {
			return true
		}
	}
	return false
}

// Confidence is the coarse decisiveness tier of a prediction.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank orders tiers low < medium < high.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceLow:
		return 1
	case ConfidenceMedium:
		return 2
	case ConfidenceHigh:
		return 3
	}
	return 0
}

// PointSnapshot is one unit (game or point) of a simulated probability curve.
type PointSnapshot struct {
	Index              int     `json:"index"`
	Player1Probability float64 `json:"player1_probability"`
	Player2Probability float64 `json:"player2_probability"`
}

// ComponentPrediction explains one sub-model's share of an ensemble.
type ComponentPrediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"` // player 1, percentage space
	Weight      float64 `json:"weight"`
}

// Prediction is the output of one model run for one match.
// Win probabilities are stored in unit space and sum to 1.
type Prediction struct {
	ID                    string                `json:"id"`
	MatchID               string                `json:"match_id"`
	ModelType             ModelType             `json:"model_type"`
	Player1ID             string                `json:"player1_id,omitempty"`
	Player2ID             string                `json:"player2_id,omitempty"`
	Player1WinProbability float64               `json:"player1_win_probability"`
	Player2WinProbability float64               `json:"player2_win_probability"`
	PredictedWinnerID     string                `json:"predicted_winner_id"`
	ConfidenceLevel       Confidence            `json:"confidence_level"`
	PredictedSets         string                `json:"predicted_sets,omitempty"`
	ProbStraightSets      float64               `json:"prob_straight_sets"`
	ProbDecidingSet       float64               `json:"prob_deciding_set"`
	PointByPointData      []PointSnapshot       `json:"point_by_point_data,omitempty"`
	KeyFactors            string                `json:"key_factors,omitempty"`
	ComponentPredictions  []ComponentPrediction `json:"component_predictions,omitempty"`
	ActualWinnerID        string                `json:"actual_winner_id,omitempty"`
	WasCorrect            *bool                 `json:"was_correct,omitempty"`
	CompletedAt           *time.Time            `json:"completed_at,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
}

// MaxProbability is the probability assigned to the predicted winner.
func (p *Prediction) MaxProbability() float64 {
	if p.Player1WinProbability >= p.Player2WinProbability {
		return p.Player1WinProbability
	}
	return p.Player2WinProbability
}

// ApplyOutcome sets WasCorrect from the recorded winner. A prediction with no
// actual winner is ungraded and carries no WasCorrect.
func (p *Prediction) ApplyOutcome() {
	if p.ActualWinnerID == "" || p.PredictedWinnerID == "" {
		p.WasCorrect = nil
		return
	}
	correct := p.PredictedWinnerID == p.ActualWinnerID
	p.WasCorrect = &correct
}

// Graded reports whether ground truth has been recorded.
func (p *Prediction) Graded() bool {
	return p.ActualWinnerID != "" && p.WasCorrect != nil
}
