package logic

import (
	"strings"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// playerIndex resolves player references by id, then by name.
type playerIndex struct {
	byID   map[string]*models.Player
	byName map[string]*models.Player
}

func newPlayerIndex(players []models.Player) *playerIndex {
	idx := &playerIndex{
		byID:   make(map[string]*models.Player, len(players)),
		byName: make(map[string]*models.Player, len(players)*2),
	}
	for i := range players {
		p := &players[i]
		if p.ID != "" {
			idx.byID[p.ID] = p
		}
		for _, n := range []string{p.Name, p.FullName} {
			if key := strings.ToLower(strings.TrimSpace(n)); key != "" {
				if _, dup := idx.byName[key]; !dup {
					idx.byName[key] = p
				}
			}
		}
	}
	return idx
}

func (idx *playerIndex) resolve(ref string) *models.Player {
	if p, ok := idx.byID[ref]; ok {
		return p
	}
	return idx.byName[strings.ToLower(strings.TrimSpace(ref))]
}

// PredictMatches scores a batch of matches with one model. Player references
// in each match may be ids or names; matches whose players cannot be resolved
// or scored are skipped with a warning.
func (e *Engine) PredictMatches(matches []models.Match, players []models.Player, mt models.ModelType) []models.Prediction {
	idx := newPlayerIndex(players)

	var out []models.Prediction
	for i := range matches {
		m := matches[i]
		m.ApplyDefaults()

		p1, p2 := idx.resolve(m.Player1ID), idx.resolve(m.Player2ID)
		if p1 == nil || p2 == nil {
			e.logger.Warnw("Skipping match with unresolved players",
				"match", m.ID, "player1", m.Player1ID, "player2", m.Player2ID)
			continue
		}

		preds, err := e.Run(mt, ScoreInput{Match: &m, Player1: p1, Player2: p2})
		if err != nil {
			e.logger.Warnw("Skipping match that failed to score", "match", m.ID, "model", mt, "error", err)
			continue
		}
		out = append(out, preds...)
	}
	return out
}
