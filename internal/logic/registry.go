package logic

import (
	"fmt"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// ScoreInput is the uniform argument of every registered scorer.
type ScoreInput struct {
	Match   *models.Match
	Player1 *models.Player
	Player2 *models.Player
	Odds    *models.Odds
	Context *MatchContext
	Weights *models.ModelWeights
}

// Scorer produces predictions for one model type.
type Scorer func(e *Engine, in ScoreInput) ([]models.Prediction, error)

// Registry maps each model type to its scorer.
type Registry map[models.ModelType]Scorer

func heuristicScorer(mt models.ModelType) Scorer {
	return func(e *Engine, in ScoreInput) ([]models.Prediction, error) {
		pred, err := e.GenerateHeuristicPrediction(mt, in.Match, in.Player1, in.Player2)
		if err != nil {
			return nil, err
		}
		return []models.Prediction{pred}, nil
	}
}

func advancedScorer(run func(e *Engine, in ScoreInput) (*AdvancedPrediction, error)) Scorer {
	return func(e *Engine, in ScoreInput) ([]models.Prediction, error) {
		if err := checkInputs(in.Match, in.Player1, in.Player2); err != nil {
			return nil, err
		}
		adv, err := run(e, in)
		if err != nil {
			return nil, err
		}
		return []models.Prediction{e.materialize(adv, in.Match, in.Player1, in.Player2)}, nil
	}
}

func (in ScoreInput) matchContext() *MatchContext {
	if in.Context != nil {
		return in.Context
	}
	return contextFor(in.Match)
}

// DefaultRegistry wires every model type.
func DefaultRegistry() Registry {
	return Registry{
		models.ModelConservative: heuristicScorer(models.ModelConservative),
		models.ModelBalanced:     heuristicScorer(models.ModelBalanced),
		models.ModelAggressive:   heuristicScorer(models.ModelAggressive),
		models.ModelElo: advancedScorer(func(e *Engine, in ScoreInput) (*AdvancedPrediction, error) {
			return e.PredictWithElo(in.Player1, in.Player2, in.Match.Surface, in.matchContext())
		}),
		models.ModelSurfaceExpert: advancedScorer(func(e *Engine, in ScoreInput) (*AdvancedPrediction, error) {
			return e.PredictWithSurfaceExpertise(in.Player1, in.Player2, in.Match.Surface)
		}),
		models.ModelEnsemble: advancedScorer(func(e *Engine, in ScoreInput) (*AdvancedPrediction, error) {
			return e.PredictWithEnsemble(in.Player1, in.Player2, in.Match.Surface, in.Odds, in.matchContext())
		}),
		models.ModelML: func(e *Engine, in ScoreInput) ([]models.Prediction, error) {
			pred, err := e.generateML(models.ModelML, in.Match, in.Player1, in.Player2, in.Weights)
			if err != nil {
				return nil, err
			}
			return []models.Prediction{pred}, nil
		},
		models.ModelMLEnhanced: func(e *Engine, in ScoreInput) ([]models.Prediction, error) {
			pred, err := e.generateML(models.ModelMLEnhanced, in.Match, in.Player1, in.Player2, in.Weights)
			if err != nil {
				return nil, err
			}
			return []models.Prediction{pred}, nil
		},
	}
}

// Validate reports model types that have no scorer.
func (r Registry) Validate() error {
	for _, mt := range models.AllModelTypes {
		if _, ok := r[mt]; !ok {
			return fmt.Errorf("%w: no scorer registered for %s", ErrUnknownModel, mt)
		}
	}
	return nil
}

// Run dispatches to the scorer registered for mt.
func (e *Engine) Run(mt models.ModelType, in ScoreInput) ([]models.Prediction, error) {
	scorer, ok := e.registry[mt]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, mt)
	}
	return scorer(e, in)
}
