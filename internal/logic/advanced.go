package logic

import (
	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// MatchContext carries optional match details used by the advanced models.
type MatchContext struct {
	Location       string `json:"location,omitempty"`
	TournamentName string `json:"tournament_name,omitempty"`
	Round          string `json:"round,omitempty"`
}

// contextFor builds a MatchContext from a stored match.
func contextFor(m *models.Match) *MatchContext {
	if m == nil {
		return nil
	}
	return &MatchContext{Location: m.Location, TournamentName: m.TournamentName, Round: m.Round}
}

// AdvancedPrediction is the percentage-space output of the ELO, surface and
// ensemble models. Player1Probability + Player2Probability == 100.
type AdvancedPrediction struct {
	ModelType            models.ModelType             `json:"model_type"`
	Surface              models.Surface               `json:"surface"`
	Player1Probability   float64                      `json:"player1_probability"`
	Player2Probability   float64                      `json:"player2_probability"`
	Confidence           models.Confidence            `json:"confidence"`
	KeyFactors           string                       `json:"key_factors"`
	ComponentPredictions []models.ComponentPrediction `json:"component_predictions,omitempty"`
}

// Gap is the absolute probability difference in percentage points.
func (a *AdvancedPrediction) Gap() float64 {
	d := a.Player1Probability - a.Player2Probability
	if d < 0 {
		return -d
	}
	return d
}

// normalizePercent clamps player 1's share into [1,99] and returns a pair
// summing to 100.
func normalizePercent(p1, p2 float64) (float64, float64) {
	p1 = clamp(p1, 1, 99)
	p2 = clamp(p2, 1, 99)
	share := Round2(p1 / (p1 + p2) * 100)
	return share, Round2(100 - share)
}

// materialize converts an advanced result into a stored prediction record.
// Probabilities move to unit space; the percentage-space confidence is kept.
func (e *Engine) materialize(adv *AdvancedPrediction, match *models.Match, p1, p2 *models.Player) models.Prediction {
	u1 := Round2(adv.Player1Probability / 100)
	probs := ProbabilityPair{Player1: u1, Player2: Round2(1 - u1)}

	pred := e.finalize(adv.ModelType, match, p1, p2, probs, UnitGame, adv.KeyFactors)
	pred.ConfidenceLevel = adv.Confidence
	pred.ComponentPredictions = adv.ComponentPredictions
	return pred
}
