package logic

import (
	"iter"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// PointUnit selects the granularity of a simulated probability curve.
type PointUnit int

const (
	UnitGame PointUnit = iota
	UnitPoint
)

const (
	maxMomentum   = 0.15
	momentumStep  = 0.05
	momentumDecay = 0.95
	minPointProb  = 0.3
	maxPointProb  = 0.7
)

// unitCount keeps the 3:5 ratio between best-of-3 and best-of-5 matches.
func unitCount(unit PointUnit, bestOf int) int {
	five := bestOf == 5
	switch unit {
	case UnitPoint:
		if five {
			return 200
		}
		return 120
	default:
		if five {
			return 50
		}
		return 30
	}
}

// PointSequence lazily produces per-unit probability snapshots. It is finite
// and cannot be restarted: each snapshot is generated once, on demand.
type PointSequence struct {
	base     float64
	total    int
	next     int
	momentum float64
	rng      Rand
}

// GeneratePointByPointData starts a momentum random walk around p1's share of
// the pair.
func GeneratePointByPointData(p1, p2 float64, bestOf int, unit PointUnit, rng Rand) *PointSequence {
	base := 0.5
	if total := p1 + p2; total > 0 {
		base = p1 / total
	}
	return &PointSequence{
		base:  base,
		total: unitCount(unit, bestOf),
		rng:   rng,
	}
}

// Len is the total number of units the sequence yields.
func (s *PointSequence) Len() int { return s.total }

// Next returns the following snapshot, or false once the sequence is exhausted.
func (s *PointSequence) Next() (models.PointSnapshot, bool) {
	if s.next >= s.total {
		return models.PointSnapshot{}, false
	}

	s.momentum = clamp(s.momentum+(s.rng.Float64()*2-1)*momentumStep, -maxMomentum, maxMomentum)
	s.momentum *= momentumDecay

	p1 := Round2(clamp(s.base+s.momentum, minPointProb, maxPointProb))
	snap := models.PointSnapshot{
		Index:              s.next,
		Player1Probability: p1,
		Player2Probability: Round2(1 - p1),
	}
	s.next++
	return snap, true
}

// All yields the remaining snapshots.
func (s *PointSequence) All() iter.Seq[models.PointSnapshot] {
	return func(yield func(models.PointSnapshot) bool) {
		for {
			snap, ok := s.Next()
			if !ok || !yield(snap) {
				return
			}
		}
	}
}

// Collect drains the sequence into a slice.
func (s *PointSequence) Collect() []models.PointSnapshot {
	out := make([]models.PointSnapshot, 0, s.total-s.next)
	for snap := range s.All() {
		out = append(out, snap)
	}
	return out
}
