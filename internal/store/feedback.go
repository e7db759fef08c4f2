package store

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// BuildFeedback synthesizes the feedback row for a prediction from the match
// and the current player profiles. wasCorrect overrides the prediction's own
// grading when non-nil.
func BuildFeedback(pred *models.Prediction, match *models.Match, p1, p2 *models.Player, wasCorrect *bool, source models.FeedbackSource) models.ModelFeedback {
	if wasCorrect == nil {
		wasCorrect = pred.WasCorrect
	}
	fb := models.ModelFeedback{
		PredictionID:    pred.ID,
		MatchID:         pred.MatchID,
		ModelType:       pred.ModelType,
		WasCorrect:      wasCorrect,
		ConfidenceLevel: pred.ConfidenceLevel,
		PredictedProb:   pred.MaxProbability(),
		Source:          source,
	}
	if match != nil {
		fb.Surface = match.Surface
	}
	if wasCorrect != nil {
		outcome := 0.0
		if *wasCorrect {
			outcome = 1
		}
		calibration := math.Round(math.Abs(fb.PredictedProb-outcome)*100*100) / 100
		fb.CalibrationError = &calibration
	}
	if p1 != nil && p2 != nil {
		fb.FeatureSnapshot = FeatureSnapshot(p1, p2, fb.Surface)
	}
	return fb
}

// FeatureSnapshot records the player1-minus-player2 deltas known at grading
// time. Deltas with a missing side are omitted.
func FeatureSnapshot(p1, p2 *models.Player, surface models.Surface) map[string]float64 {
	snap := make(map[string]float64, 5)
	if p1.CurrentRank > 0 && p2.CurrentRank > 0 {
		snap["ranking_delta"] = float64(p2.CurrentRank - p1.CurrentRank)
	}
	put := func(key string, a, b *float64) {
		if a != nil && b != nil {
			snap[key] = math.Round((*a-*b)*100) / 100
		}
	}
	put("elo_delta", p1.EloRating, p2.EloRating)
	put("serve_delta", p1.FirstServeWinPct, p2.FirstServeWinPct)
	put("return_delta", p1.FirstReturnWinPct, p2.FirstReturnWinPct)
	if surface != "" {
		put("surface_delta", p1.SurfaceWinPct(surface), p2.SurfaceWinPct(surface))
	}
	return snap
}

// feedbackDeriver keeps exactly one derived feedback row per prediction and
// fans every stored feedback row out to listeners.
type feedbackDeriver struct {
	players  PlayerCollection
	matches  Collection[models.Match]
	feedback Collection[models.ModelFeedback]
	logger   *zap.SugaredLogger

	mu        sync.RWMutex
	listeners []FeedbackListener
}

func newFeedbackDeriver(players PlayerCollection, matches Collection[models.Match], feedback Collection[models.ModelFeedback], logger *zap.Logger) *feedbackDeriver {
	return &feedbackDeriver{
		players:  players,
		matches:  matches,
		feedback: feedback,
		logger:   logger.Sugar(),
	}
}

func (d *feedbackDeriver) subscribe(l FeedbackListener) {
	d.mu.Lock()
	d.listeners = append(d.listeners, l)
	d.mu.Unlock()
}

func (d *feedbackDeriver) notify(fb models.ModelFeedback) {
	d.mu.RLock()
	listeners := append([]FeedbackListener(nil), d.listeners...)
	d.mu.RUnlock()
	for _, l := range listeners {
		l(fb)
	}
}

// derive upserts the derived row for pred. Predictions whose match does not
// exist are skipped. Failures are logged; the prediction write has already
// succeeded and is not undone.
func (d *feedbackDeriver) derive(ctx context.Context, pred models.Prediction) {
	if err := d.upsert(ctx, pred); err != nil {
		d.logger.Warnw("Failed to derive model feedback",
			"prediction", pred.ID, "match", pred.MatchID, "error", err)
	}
}

func (d *feedbackDeriver) upsert(ctx context.Context, pred models.Prediction) error {
	match, err := First(ctx, d.matches, ByID(pred.MatchID))
	if err != nil {
		return fmt.Errorf("load match: %w", err)
	}
	if match == nil {
		return nil
	}

	p1ID, p2ID := pred.Player1ID, pred.Player2ID
	if p1ID == "" || p2ID == "" {
		p1ID, p2ID = match.Player1ID, match.Player2ID
	}
	p1, err := d.players.Get(ctx, p1ID)
	if err != nil {
		return fmt.Errorf("load player %s: %w", p1ID, err)
	}
	p2, err := d.players.Get(ctx, p2ID)
	if err != nil {
		return fmt.Errorf("load player %s: %w", p2ID, err)
	}

	fb := BuildFeedback(&pred, match, p1, p2, nil, models.FeedbackDerived)

	existing, err := First(ctx, d.feedback, ListOptions{Filters: Filter{
		"prediction_id": pred.ID,
		"source":        string(models.FeedbackDerived),
	}})
	if err != nil {
		return fmt.Errorf("load feedback: %w", err)
	}

	var stored models.ModelFeedback
	if existing == nil {
		stored, err = d.feedback.Create(ctx, fb)
	} else {
		var patch map[string]any
		if patch, err = toFields(fb); err == nil {
			delete(patch, "id")
			delete(patch, "created_at")
			// absent keys would otherwise keep stale values
			patch["was_correct"] = fb.WasCorrect
			patch["calibration_error"] = fb.CalibrationError
			stored, err = d.feedback.Update(ctx, existing.ID, patch)
		}
	}
	if err != nil {
		return err
	}
	d.notify(stored)
	return nil
}

// feedbackCollection notifies listeners of directly written rows.
type feedbackCollection struct {
	Collection[models.ModelFeedback]
	deriver *feedbackDeriver
}

func (c *feedbackCollection) Create(ctx context.Context, fb models.ModelFeedback) (models.ModelFeedback, error) {
	stored, err := c.Collection.Create(ctx, fb)
	if err != nil {
		return stored, err
	}
	c.deriver.notify(stored)
	return stored, nil
}

// predictionCollection derives feedback after every successful write.
type predictionCollection struct {
	Collection[models.Prediction]
	deriver *feedbackDeriver
}

func newPredictionCollection(inner Collection[models.Prediction], d *feedbackDeriver) *predictionCollection {
	return &predictionCollection{Collection: inner, deriver: d}
}

func (c *predictionCollection) Create(ctx context.Context, pred models.Prediction) (models.Prediction, error) {
	stored, err := c.Collection.Create(ctx, pred)
	if err != nil {
		return stored, err
	}
	c.deriver.derive(ctx, stored)
	return stored, nil
}

func (c *predictionCollection) Update(ctx context.Context, id string, patch map[string]any) (models.Prediction, error) {
	stored, err := c.Collection.Update(ctx, id, patch)
	if err != nil {
		return stored, err
	}
	c.deriver.derive(ctx, stored)
	return stored, nil
}

// weightsCollection keeps at most one active ModelWeights row.
type weightsCollection struct {
	Collection[models.ModelWeights]
	mu sync.Mutex
}

func newWeightsCollection(inner Collection[models.ModelWeights]) *weightsCollection {
	return &weightsCollection{Collection: inner}
}

func (c *weightsCollection) Create(ctx context.Context, w models.ModelWeights) (models.ModelWeights, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, err := c.Collection.Create(ctx, w)
	if err != nil || !stored.IsActive {
		return stored, err
	}
	return stored, c.deactivateOthers(ctx, stored.ID)
}

func (c *weightsCollection) Update(ctx context.Context, id string, patch map[string]any) (models.ModelWeights, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, err := c.Collection.Update(ctx, id, patch)
	if err != nil || !stored.IsActive {
		return stored, err
	}
	return stored, c.deactivateOthers(ctx, stored.ID)
}

func (c *weightsCollection) deactivateOthers(ctx context.Context, keep string) error {
	active, err := c.Collection.List(ctx, ListOptions{Filters: Filter{"is_active": true}})
	if err != nil {
		return fmt.Errorf("list active weights: %w", err)
	}
	for _, w := range active {
		if w.ID == keep {
			continue
		}
		if _, err := c.Collection.Update(ctx, w.ID, map[string]any{"is_active": false}); err != nil {
			return fmt.Errorf("deactivate weights %s: %w", w.ID, err)
		}
	}
	return nil
}
