package logic

import (
	"fmt"
	"strings"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// Ensemble weights. Without odds the ELO and surface models split the
// remainder evenly rather than proportionally.
const (
	ensembleEloWeight       = 0.4
	ensembleSurfaceWeight   = 0.3
	ensembleOddsWeight      = 0.2
	ensembleStatsWeight     = 0.1
	ensembleNoOddsEloWeight = 0.5
	ensembleNoOddsSurface   = 0.5

	ensembleHighConfidence = 30.0
	ensembleMediumConf     = 15.0
)

// Component labels reported in component_predictions.
const (
	ComponentElo     = "elo"
	ComponentSurface = "surface_expert"
	ComponentOdds    = "market_odds"
	ComponentStats   = "statistics"
)

// ImpliedProbability devigs decimal odds by normalising the implied pair.
// It returns player 1's percentage and false when the odds are unusable.
func ImpliedProbability(odds *models.Odds) (float64, bool) {
	if odds == nil || odds.Player1 <= 1 || odds.Player2 <= 1 {
		return 0, false
	}
	i1, i2 := 1/odds.Player1, 1/odds.Player2
	return Round2(i1 / (i1 + i2) * 100), true
}

// PredictWithEnsemble blends the ELO, surface, market and statistics views.
func (e *Engine) PredictWithEnsemble(p1, p2 *models.Player, surface models.Surface, odds *models.Odds, mctx *MatchContext) (*AdvancedPrediction, error) {
	elo, err := e.PredictWithElo(p1, p2, surface, mctx)
	if err != nil {
		return nil, err
	}
	surf, err := e.PredictWithSurfaceExpertise(p1, p2, surface)
	if err != nil {
		return nil, err
	}

	var comps []models.ComponentPrediction
	if market, ok := ImpliedProbability(odds); ok {
		comps = append(comps,
			models.ComponentPrediction{Label: ComponentElo, Probability: elo.Player1Probability, Weight: ensembleEloWeight},
			models.ComponentPrediction{Label: ComponentSurface, Probability: surf.Player1Probability, Weight: ensembleSurfaceWeight},
			models.ComponentPrediction{Label: ComponentOdds, Probability: market, Weight: ensembleOddsWeight},
		)
	} else {
		comps = append(comps,
			models.ComponentPrediction{Label: ComponentElo, Probability: elo.Player1Probability, Weight: ensembleNoOddsEloWeight},
			models.ComponentPrediction{Label: ComponentSurface, Probability: surf.Player1Probability, Weight: ensembleNoOddsSurface},
		)
	}
	if stats, ok := StatisticsProbability(p1, p2); ok {
		comps = append(comps, models.ComponentPrediction{Label: ComponentStats, Probability: stats, Weight: ensembleStatsWeight})
	}

	var weighted, total float64
	labels := make([]string, 0, len(comps))
	for _, c := range comps {
		weighted += c.Probability * c.Weight
		total += c.Weight
		labels = append(labels, fmt.Sprintf("%s %.1f%% (w=%.2f)", c.Label, c.Probability, c.Weight))
	}

	pct1, pct2 := normalizePercent(weighted/total, 100-weighted/total)

	return &AdvancedPrediction{
		ModelType:            models.ModelEnsemble,
		Surface:              elo.Surface,
		Player1Probability:   pct1,
		Player2Probability:   pct2,
		Confidence:           PercentConfidence(pct1-pct2, ensembleHighConfidence, ensembleMediumConf),
		KeyFactors:           strings.Join(labels, "; "),
		ComponentPredictions: comps,
	}, nil
}
