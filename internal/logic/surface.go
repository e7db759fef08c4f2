package logic

import (
	"fmt"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

const (
	expertisePerPoint     = 0.5
	rankCorrectionPerSpot = 0.2
	maxRankCorrection     = 10.0
	surfaceHighConfidence = 35.0
	surfaceMediumConf     = 20.0

	serveBaseline       = 70.0
	returnBaseline      = 40.0
	breakPointsBaseline = 40.0
)

// SurfaceExpertise scores mastery of a surface on a 0-100 scale from the
// surface win percentage or, failing that, the surface win/loss record.
func SurfaceExpertise(p *models.Player, s models.Surface) float64 {
	if pct := p.SurfaceWinPct(s); pct != nil {
		return *pct
	}
	if rec, ok := p.SurfaceRecords[s.Base()]; ok {
		if played := rec.Wins + rec.Losses; played > 0 {
			return float64(rec.Wins) / float64(played) * 100
		}
	}
	return 50
}

// PredictWithSurfaceExpertise turns the expertise gap into a probability
// offset and corrects it by ranking.
func (e *Engine) PredictWithSurfaceExpertise(p1, p2 *models.Player, surface models.Surface) (*AdvancedPrediction, error) {
	if p1 == nil || p2 == nil {
		return nil, fmt.Errorf("%w: players", ErrMissingInput)
	}
	if surface == "" {
		surface = models.SurfaceHard
	}

	x1, x2 := SurfaceExpertise(p1, surface), SurfaceExpertise(p2, surface)
	p := 50 + (x1-x2)*expertisePerPoint

	var rankAdj float64
	if p1.CurrentRank > 0 && p2.CurrentRank > 0 {
		rankAdj = clamp(float64(p2.CurrentRank-p1.CurrentRank)*rankCorrectionPerSpot, -maxRankCorrection, maxRankCorrection)
	}
	p += rankAdj

	pct1, pct2 := normalizePercent(p, 100-p)

	return &AdvancedPrediction{
		ModelType:          models.ModelSurfaceExpert,
		Surface:            surface,
		Player1Probability: pct1,
		Player2Probability: pct2,
		Confidence:         PercentConfidence(pct1-pct2, surfaceHighConfidence, surfaceMediumConf),
		KeyFactors: fmt.Sprintf("%s expertise %.1f vs %.1f; ranking correction %+.1f",
			surface, x1, x2, rankAdj),
	}, nil
}

func hasServeReturn(p *models.Player) bool {
	return p.FirstServeWinPct != nil && p.FirstReturnWinPct != nil
}

func statisticsScore(p *models.Player) float64 {
	score := (*p.FirstServeWinPct - serveBaseline) + (*p.FirstReturnWinPct - returnBaseline)
	if p.BreakPointsConvertedPct != nil {
		score += *p.BreakPointsConvertedPct - breakPointsBaseline
	}
	return score
}

// StatisticsProbability compares serve, return and break-point performance
// against tour baselines. It returns player 1's percentage and false when
// either player lacks serve/return data.
func StatisticsProbability(p1, p2 *models.Player) (float64, bool) {
	if p1 == nil || p2 == nil || !hasServeReturn(p1) || !hasServeReturn(p2) {
		return 0, false
	}
	p := 50 + (statisticsScore(p1)-statisticsScore(p2))*0.5
	return Round2(clamp(p, 1, 99)), true
}
