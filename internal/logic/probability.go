package logic

import (
	"errors"
	"fmt"
	"math"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

var (
	// ErrMissingInput is a precondition violation: a match or player was not supplied.
	ErrMissingInput = errors.New("missing prediction input")
	// ErrUnknownModel is returned for a model type with no registered scorer.
	ErrUnknownModel = errors.New("unknown model type")
)

// Base probability bounds for the heuristic models. Stats alone never
// justify more than a 65/35 split.
const (
	minBaseProbability = 0.35
	maxBaseProbability = 0.65

	maxRankShift = 0.2
	maxStatShift = 0.1

	minFinalProbability = 0.01
	maxFinalProbability = 0.99
)

// ProbabilityPair holds the two win probabilities of a match, unit space.
type ProbabilityPair struct {
	Player1 float64 `json:"player1"`
	Player2 float64 `json:"player2"`
}

// Max returns the larger of the two probabilities.
func (p ProbabilityPair) Max() float64 {
	return math.Max(p.Player1, p.Player2)
}

// ModelConfig parameterises a heuristic model variant.
type ModelConfig struct {
	Variance      float64
	FavoriteBoost float64
}

// HeuristicConfigs are the three rule-based model variants.
var HeuristicConfigs = map[models.ModelType]ModelConfig{
	models.ModelConservative: {Variance: 0.05, FavoriteBoost: 1.08},
	models.ModelBalanced:     {Variance: 0.10, FavoriteBoost: 1.00},
	models.ModelAggressive:   {Variance: 0.15, FavoriteBoost: 0.95},
}

// Round2 rounds to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func checkInputs(match *models.Match, p1, p2 *models.Player) error {
	switch {
	case match == nil:
		return fmt.Errorf("%w: match", ErrMissingInput)
	case p1 == nil:
		return fmt.Errorf("%w: player1", ErrMissingInput)
	case p2 == nil:
		return fmt.Errorf("%w: player2", ErrMissingInput)
	}
	return nil
}

// pctShift converts a percentage-point difference into a bounded probability
// shift. Unknown values on either side are neutral.
func pctShift(a, b *float64) float64 {
	if a == nil || b == nil {
		return 0
	}
	return clamp((*a-*b)/200, -maxStatShift, maxStatShift)
}

// CalculateBaseProbabilities derives the pre-variance probabilities shared by
// every heuristic model for a match.
func CalculateBaseProbabilities(p1, p2 *models.Player, match *models.Match) (ProbabilityPair, error) {
	if err := checkInputs(match, p1, p2); err != nil {
		return ProbabilityPair{}, err
	}

	p := 0.5
	if p1.CurrentRank > 0 && p2.CurrentRank > 0 {
		// Lower rank number is better, so a positive difference favours player 1
		p += clamp(float64(p2.CurrentRank-p1.CurrentRank)/200, -maxRankShift, maxRankShift)
	}
	p += pctShift(p1.FirstServeWinPct, p2.FirstServeWinPct)
	p += pctShift(p1.FirstReturnWinPct, p2.FirstReturnWinPct)
	p += pctShift(p1.SurfaceWinPct(match.Surface), p2.SurfaceWinPct(match.Surface))

	p = clamp(p, minBaseProbability, maxBaseProbability)
	return ProbabilityPair{Player1: p, Player2: 1 - p}, nil
}

// ApplyModelVariance applies a model's favourite boost and random
// perturbation to the base probabilities. The result is clamped to
// [0.01, 0.99], renormalised and rounded so the pair sums to exactly 1.
func ApplyModelVariance(base ProbabilityPair, cfg ModelConfig, rng Rand) ProbabilityPair {
	p1, p2 := base.Player1, base.Player2

	if boost := cfg.FavoriteBoost; boost > 0 && p1 != p2 {
		if p1 > p2 {
			p1 *= boost
			p2 /= boost
		} else {
			p2 *= boost
			p1 /= boost
		}
	}

	noise := (rng.Float64()*2 - 1) * cfg.Variance
	p1 = clamp(p1+noise, minFinalProbability, maxFinalProbability)
	p2 = clamp(p2-noise, minFinalProbability, maxFinalProbability)

	p1 = Round2(p1 / (p1 + p2))
	return ProbabilityPair{Player1: p1, Player2: Round2(1 - p1)}
}

// HeuristicConfidence classifies unit-space probabilities.
func HeuristicConfidence(maxProb float64) models.Confidence {
	switch {
	case maxProb < 0.55:
		return models.ConfidenceLow
	case maxProb <= 0.70:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceHigh
	}
}

// PercentConfidence classifies a percentage-space gap against model thresholds.
func PercentConfidence(gap, high, medium float64) models.Confidence {
	gap = math.Abs(gap)
	switch {
	case gap > high:
		return models.ConfidenceHigh
	case gap > medium:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// PredictedSets returns the winner's expected set score.
func PredictedSets(maxProb float64, bestOf int) string {
	decisive := maxProb > 0.65
	if bestOf == 5 {
		if decisive {
			return "3-0"
		}
		return "3-1"
	}
	if decisive {
		return "2-0"
	}
	return "2-1"
}

// SetProbabilities returns the straight-sets and deciding-set probabilities, 0-100.
func SetProbabilities(maxProb float64) (straight, deciding float64) {
	straight = math.Round((maxProb - 0.5) * 200)
	deciding = math.Max(0, 100-straight)
	return straight, deciding
}
