package logic

import (
	"fmt"
	"math"
	"strings"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

const (
	defaultElo         = 1500.0
	eloPerWinPctPoint  = 25.0
	formWindow         = 5
	formScale          = 5.0
	formMultiplier     = 3.0
	homeAdvantage      = 2.0
	eloHighConfidence  = 30.0
	eloMediumThreshold = 15.0
)

// SurfaceElo resolves a player's rating for a surface: an explicit surface
// ELO, else one estimated from the surface win percentage, else the general
// rating, else 1500. The second value names the source used.
func SurfaceElo(p *models.Player, s models.Surface) (float64, string) {
	if v := p.SurfaceElo(s); v != nil {
		return *v, "surface"
	}
	if pct := p.SurfaceWinPct(s); pct != nil {
		return defaultElo + (*pct-50)*eloPerWinPctPoint, "estimated"
	}
	if p.EloRating != nil {
		return *p.EloRating, "general"
	}
	return defaultElo, "default"
}

// EloExpectation is the logistic expected score of a against b.
func EloExpectation(eloA, eloB float64) float64 {
	return 1 / (1 + math.Pow(10, (eloB-eloA)/400))
}

// FormScore weights the last five results by recency (oldest 1 .. newest 5)
// and scales the result to [-5, 5]. Unknown entries are ignored.
func FormScore(form []string) float64 {
	if len(form) > formWindow {
		form = form[len(form)-formWindow:]
	}

	var sum, weights float64
	for i, r := range form {
		var v float64
		switch strings.ToUpper(strings.TrimSpace(r)) {
		case "W", "WIN":
			v = 1
		case "L", "LOSS":
			v = -1
		default:
			continue
		}
		w := float64(i + 1)
		sum += v * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return sum / weights * formScale
}

func isHome(location, nationality string) bool {
	if location == "" || nationality == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(location), strings.ToUpper(nationality))
}

// PredictWithElo scores a match with surface ELO, recent form and a small
// home-nation adjustment.
func (e *Engine) PredictWithElo(p1, p2 *models.Player, surface models.Surface, mctx *MatchContext) (*AdvancedPrediction, error) {
	if p1 == nil || p2 == nil {
		return nil, fmt.Errorf("%w: players", ErrMissingInput)
	}
	if surface == "" {
		surface = models.SurfaceHard
	}

	elo1, src1 := SurfaceElo(p1, surface)
	elo2, src2 := SurfaceElo(p2, surface)
	base := EloExpectation(elo1, elo2) * 100

	form1, form2 := FormScore(p1.RecentForm), FormScore(p2.RecentForm)
	adj := (form1 - form2) * formMultiplier

	var home string
	if mctx != nil {
		if isHome(mctx.Location, p1.Nationality) {
			adj += homeAdvantage
			home = p1.DisplayName()
		}
		if isHome(mctx.Location, p2.Nationality) {
			adj -= homeAdvantage
			home = p2.DisplayName()
		}
	}

	pct1, pct2 := normalizePercent(base+adj, 100-base-adj)

	factors := fmt.Sprintf("ELO %.0f (%s) vs %.0f (%s) on %s; form %.1f vs %.1f",
		elo1, src1, elo2, src2, surface, form1, form2)
	if home != "" {
		factors += "; home advantage " + home
	}

	return &AdvancedPrediction{
		ModelType:          models.ModelElo,
		Surface:            surface,
		Player1Probability: pct1,
		Player2Probability: pct2,
		Confidence:         PercentConfidence(pct1-pct2, eloHighConfidence, eloMediumThreshold),
		KeyFactors:         factors,
	}, nil
}
