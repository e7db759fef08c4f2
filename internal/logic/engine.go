package logic

import (
	"go.uber.org/zap"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// Engine runs the scoring models. It holds no mutable state of its own, so
// it is safe for concurrent use as long as its Rand is.
type Engine struct {
	rng      Rand
	logger   *zap.SugaredLogger
	registry Registry
}

// NewEngine creates an engine. A nil rng uses the process-wide entropy source.
func NewEngine(rng Rand, logger *zap.Logger) *Engine {
	if rng == nil {
		rng = EntropyRand()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		rng:      rng,
		logger:   logger.Sugar(),
		registry: DefaultRegistry(),
	}
}

// finalize turns unit-space probabilities into a full prediction record with
// the derived fields every model shares.
func (e *Engine) finalize(mt models.ModelType, match *models.Match, p1, p2 *models.Player, probs ProbabilityPair, unit PointUnit, factors string) models.Prediction {
	maxProb := probs.Max()
	straight, deciding := SetProbabilities(maxProb)

	winner := p1.ID
	if probs.Player2 > probs.Player1 {
		winner = p2.ID
	}

	return models.Prediction{
		MatchID:               match.ID,
		ModelType:             mt,
		Player1ID:             p1.ID,
		Player2ID:             p2.ID,
		Player1WinProbability: probs.Player1,
		Player2WinProbability: probs.Player2,
		PredictedWinnerID:     winner,
		ConfidenceLevel:       HeuristicConfidence(maxProb),
		PredictedSets:         PredictedSets(maxProb, match.BestOf),
		ProbStraightSets:      straight,
		ProbDecidingSet:       deciding,
		PointByPointData:      GeneratePointByPointData(probs.Player1, probs.Player2, match.BestOf, unit, e.rng).Collect(),
		KeyFactors:            factors,
	}
}
