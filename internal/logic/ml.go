package logic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// FeatureWeights are the four weights the ML scorer consumes.
type FeatureWeights struct {
	Rank    float64 `json:"rank"`
	Serve   float64 `json:"serve"`
	Return  float64 `json:"return"`
	Surface float64 `json:"surface"`
}

// DefaultFeatureWeights apply when no ModelWeights row is supplied.
var DefaultFeatureWeights = FeatureWeights{Rank: 0.4, Serve: 0.2, Return: 0.2, Surface: 0.2}

// WeightsFrom maps a ModelWeights row onto the scorer. The h2h, form,
// fatigue and injury weights have no feature here and are ignored.
func WeightsFrom(w *models.ModelWeights) FeatureWeights {
	if w == nil {
		return DefaultFeatureWeights
	}
	return FeatureWeights{
		Rank:    w.RankingWeight,
		Serve:   w.ServeWeight,
		Return:  w.ReturnWeight,
		Surface: w.SurfaceWeight,
	}
}

// MLFeatures is the feature vector of one match.
type MLFeatures struct {
	RankDiff        float64 `json:"rank_diff"`
	ServeDiff       float64 `json:"serve_diff"`
	ReturnDiff      float64 `json:"return_diff"`
	SurfacePrefDiff float64 `json:"surface_pref_diff"`
	BestOf          int     `json:"best_of"`
}

func pctDiff(a, b *float64) float64 {
	if a == nil || b == nil {
		return 0
	}
	return (*a - *b) / 100
}

func surfacePref(p *models.Player, s models.Surface) float64 {
	if pct := p.SurfaceWinPct(s); pct != nil {
		return *pct
	}
	return 50
}

// ExtractFeatures builds the feature vector. rank_diff is p2.rank - p1.rank.
func ExtractFeatures(match *models.Match, p1, p2 *models.Player) MLFeatures {
	f := MLFeatures{
		ServeDiff:       pctDiff(p1.FirstServeWinPct, p2.FirstServeWinPct),
		ReturnDiff:      pctDiff(p1.FirstReturnWinPct, p2.FirstReturnWinPct),
		SurfacePrefDiff: (surfacePref(p1, match.Surface) - surfacePref(p2, match.Surface)) / 100,
		BestOf:          match.BestOf,
	}
	if p1.CurrentRank > 0 && p2.CurrentRank > 0 {
		f.RankDiff = float64(p2.CurrentRank - p1.CurrentRank)
	}
	return f
}

// ScoreFeatures returns player 1's win probability. The rank term is
// log-damped so large ranking gaps do not dominate linearly.
func ScoreFeatures(f MLFeatures, w FeatureWeights) float64 {
	var rankEffect float64
	if f.RankDiff != 0 {
		sign := 1.0
		if f.RankDiff < 0 {
			sign = -1
		}
		rankEffect = -sign * math.Log(math.Abs(f.RankDiff)+1) * w.Rank
	}

	linear := floats.Dot(
		[]float64{f.ServeDiff, f.ReturnDiff, f.SurfacePrefDiff},
		[]float64{w.Serve, w.Return, w.Surface},
	)

	return clamp(0.5+rankEffect+linear, minFinalProbability, maxFinalProbability)
}

// GenerateMLPrediction runs the feature model. A nil weights row uses the defaults.
func (e *Engine) GenerateMLPrediction(match *models.Match, p1, p2 *models.Player, weights *models.ModelWeights) (models.Prediction, error) {
	return e.generateML(models.ModelML, match, p1, p2, weights)
}

func (e *Engine) generateML(mt models.ModelType, match *models.Match, p1, p2 *models.Player, weights *models.ModelWeights) (models.Prediction, error) {
	if err := checkInputs(match, p1, p2); err != nil {
		return models.Prediction{}, err
	}

	w := WeightsFrom(weights)
	f := ExtractFeatures(match, p1, p2)
	p := Round2(ScoreFeatures(f, w))

	source := "default weights"
	if weights != nil {
		source = fmt.Sprintf("weights %q v%d", weights.Name, weights.Version)
	}
	factors := fmt.Sprintf("rank_diff %.0f, serve_diff %.3f, return_diff %.3f, surface_pref_diff %.3f (%s)",
		f.RankDiff, f.ServeDiff, f.ReturnDiff, f.SurfacePrefDiff, source)

	return e.finalize(mt, match, p1, p2, ProbabilityPair{Player1: p, Player2: Round2(1 - p)}, UnitPoint, factors), nil
}
