package logic

import (
	"fmt"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// GenerateAllPredictions runs the conservative, balanced and aggressive
// models against one shared base probability.
func (e *Engine) GenerateAllPredictions(match *models.Match, p1, p2 *models.Player) ([]models.Prediction, error) {
	base, err := CalculateBaseProbabilities(p1, p2, match)
	if err != nil {
		return nil, err
	}

	preds := make([]models.Prediction, 0, len(models.HeuristicModelTypes))
	for _, mt := range models.HeuristicModelTypes {
		preds = append(preds, e.heuristic(mt, match, p1, p2, base))
	}
	return preds, nil
}

// GenerateHeuristicPrediction runs a single heuristic model.
func (e *Engine) GenerateHeuristicPrediction(mt models.ModelType, match *models.Match, p1, p2 *models.Player) (models.Prediction, error) {
	if _, ok := HeuristicConfigs[mt]; !ok {
		return models.Prediction{}, fmt.Errorf("%w: %s is not a heuristic model", ErrUnknownModel, mt)
	}
	base, err := CalculateBaseProbabilities(p1, p2, match)
	if err != nil {
		return models.Prediction{}, err
	}
	return e.heuristic(mt, match, p1, p2, base), nil
}

func (e *Engine) heuristic(mt models.ModelType, match *models.Match, p1, p2 *models.Player, base ProbabilityPair) models.Prediction {
	cfg := HeuristicConfigs[mt]
	probs := ApplyModelVariance(base, cfg, e.rng)

	factors := fmt.Sprintf("Ranking #%d vs #%d; base %.1f%% on %s; variance ±%.0f%%, favourite boost %.2f",
		p1.CurrentRank, p2.CurrentRank, base.Player1*100, match.Surface, cfg.Variance*100, cfg.FavoriteBoost)

	return e.finalize(mt, match, p1, p2, probs, UnitGame, factors)
}
