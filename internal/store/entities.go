package store

import (
	"strings"
	"time"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// entity describes how a backend handles one record type: identity,
// creation timestamp, create-time defaults and validation.
type entity[T any] struct {
	name    string
	id      func(*T) *string
	created func(*T) *time.Time
	prepare func(*T) error // defaults + validation on create
	check   func(*T) error // validation after an update merge
}

func noCheck[T any](*T) error { return nil }

var playerEntity = entity[models.Player]{
	name:    "player",
	id:      func(p *models.Player) *string { return &p.ID },
	created: func(p *models.Player) *time.Time { return &p.CreatedAt },
	prepare: func(p *models.Player) error {
		p.Nationality = strings.ToUpper(strings.TrimSpace(p.Nationality))
		return p.Validate()
	},
	check: func(p *models.Player) error { return p.Validate() },
}

var matchEntity = entity[models.Match]{
	name:    "match",
	id:      func(m *models.Match) *string { return &m.ID },
	created: func(m *models.Match) *time.Time { return &m.CreatedAt },
	prepare: func(m *models.Match) error {
		m.ApplyDefaults()
		return m.Validate()
	},
	check: func(m *models.Match) error { return m.Validate() },
}

var predictionEntity = entity[models.Prediction]{
	name:    "prediction",
	id:      func(p *models.Prediction) *string { return &p.ID },
	created: func(p *models.Prediction) *time.Time { return &p.CreatedAt },
	prepare: gradePrediction,
	check:   gradePrediction,
}

// gradePrediction keeps was_correct consistent with actual_winner_id on every
// write; a caller-supplied value is overridden.
func gradePrediction(p *models.Prediction) error {
	p.ApplyOutcome()
	return nil
}

var complianceEntity = entity[models.Compliance]{
	name:    "compliance",
	id:      func(c *models.Compliance) *string { return &c.ID },
	created: func(c *models.Compliance) *time.Time { return &c.CreatedAt },
	prepare: func(c *models.Compliance) error {
		if c.Status == "" {
			c.Status = models.CompliancePending
		}
		return nil
	},
	check: noCheck[models.Compliance],
}

var weightsEntity = entity[models.ModelWeights]{
	name:    "model weights",
	id:      func(w *models.ModelWeights) *string { return &w.ID },
	created: func(w *models.ModelWeights) *time.Time { return &w.CreatedAt },
	prepare: func(w *models.ModelWeights) error {
		if w.Version == 0 {
			w.Version = 1
		}
		return w.Validate()
	},
	check: func(w *models.ModelWeights) error { return w.Validate() },
}

var feedbackEntity = entity[models.ModelFeedback]{
	name:    "model feedback",
	id:      func(f *models.ModelFeedback) *string { return &f.ID },
	created: func(f *models.ModelFeedback) *time.Time { return &f.CreatedAt },
	prepare: func(f *models.ModelFeedback) error {
		if f.Source == "" {
			f.Source = models.FeedbackDerived
		}
		return nil
	},
	check: noCheck[models.ModelFeedback],
}
