package logic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
	"github.com/matchpoint-labs/tennis-predict/internal/store"
)

var (
	predictionsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tennis_predictions_generated_total",
		Help: "Total number of predictions persisted, by model",
	}, []string{"model"})

	outcomesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tennis_match_outcomes_recorded_total",
		Help: "Total number of match outcomes recorded",
	})
)

type predictionService struct {
	engine   *Engine
	store    store.Store
	redis    RedisClient
	cacheTTL time.Duration
	logger   *zap.SugaredLogger
}

// NewPredictionService wires the engine to a store. rdb may be nil, in which
// case match predictions are always read from the store.
func NewPredictionService(engine *Engine, st store.Store, rdb RedisClient, cacheTTL time.Duration, logger *zap.Logger) PredictionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &predictionService{
		engine:   engine,
		store:    st,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   logger.Sugar(),
	}
}

// resolvePlayer accepts an id or a name / full name, matched the same way
// as PredictMatches: trimmed and case-insensitive.
func (s *predictionService) resolvePlayer(ctx context.Context, ref string) (*models.Player, error) {
	p, err := s.store.Players().Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	name := strings.TrimSpace(ref)
	if name != "" {
		candidates, err := s.store.Players().List(ctx, store.ListOptions{Filters: store.Filter{
			store.OrKey: []store.Filter{
				{"name": store.Contains(name)},
				{"full_name": store.Contains(name)},
			},
		}})
		if err != nil {
			return nil, err
		}
		if p := newPlayerIndex(candidates).resolve(name); p != nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: player %s", store.ErrNotFound, ref)
}

func (s *predictionService) resolvePair(ctx context.Context, ref1, ref2 string) (*models.Player, *models.Player, error) {
	var p1, p2 *models.Player
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p1, err = s.resolvePlayer(gctx, ref1)
		return err
	})
	g.Go(func() error {
		var err error
		p2, err = s.resolvePlayer(gctx, ref2)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if p1.ID == p2.ID {
		return nil, nil, fmt.Errorf("%w: player1 and player2 resolve to the same player", models.ErrInvalidMatch)
	}
	return p1, p2, nil
}

// weightsFor loads the active ModelWeights row for ml_enhanced; other models
// use their built-in parameters.
func (s *predictionService) weightsFor(ctx context.Context, mt models.ModelType) (*models.ModelWeights, error) {
	if mt != models.ModelMLEnhanced {
		return nil, nil
	}
	w, err := store.ActiveWeights(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("load active weights: %w", err)
	}
	return w, nil
}

func (s *predictionService) score(ctx context.Context, mt models.ModelType, in ScoreInput) ([]models.Prediction, error) {
	if !mt.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, mt)
	}
	w, err := s.weightsFor(ctx, mt)
	if err != nil {
		return nil, err
	}
	in.Weights = w
	return s.engine.Run(mt, in)
}

// AnalyzeMatch creates the match and one prediction per requested model.
// Writes are independent: if a prediction fails to persist, the match and the
// predictions stored so far are returned together with the error.
func (s *predictionService) AnalyzeMatch(ctx context.Context, req models.AnalyzeMatchRequest) (*models.AnalyzeMatchResponse, error) {
	p1, p2, err := s.resolvePair(ctx, req.Player1ID, req.Player2ID)
	if err != nil {
		return nil, err
	}

	modelTypes := req.Models
	if len(modelTypes) == 0 {
		modelTypes = models.HeuristicModelTypes
	}
	for _, mt := range modelTypes {
		if !mt.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModel, mt)
		}
	}

	match, err := s.store.Matches().Create(ctx, models.Match{
		Player1ID:      p1.ID,
		Player2ID:      p2.ID,
		Surface:        req.Surface,
		TournamentName: req.TournamentName,
		Round:          req.Round,
		Location:       req.Location,
		BestOf:         req.BestOf,
		UTCStart:       req.UTCStart,
	})
	if err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	resp := &models.AnalyzeMatchResponse{Match: match, Predictions: []models.Prediction{}}
	defer s.invalidate(ctx, match.ID)

	in := ScoreInput{
		Match:   &match,
		Player1: p1,
		Player2: p2,
		Odds:    req.Odds,
		Context: &MatchContext{Location: req.Location, TournamentName: req.TournamentName, Round: req.Round},
	}
	for _, mt := range modelTypes {
		preds, err := s.score(ctx, mt, in)
		if err != nil {
			return resp, fmt.Errorf("run %s model: %w", mt, err)
		}
		for _, pred := range preds {
			pred.MatchID = match.ID
			stored, err := s.store.Predictions().Create(ctx, pred)
			if err != nil {
				s.logger.Errorw("Failed to persist prediction",
					"match", match.ID, "model", mt, "persisted", len(resp.Predictions), "error", err)
				return resp, fmt.Errorf("create %s prediction: %w", mt, err)
			}
			predictionsGenerated.WithLabelValues(string(mt)).Inc()
			resp.Predictions = append(resp.Predictions, stored)
		}
	}

	s.logger.Infow("Match analyzed", "match", match.ID, "models", len(modelTypes), "predictions", len(resp.Predictions))
	return resp, nil
}

// PreviewPrediction runs one model on a transient match without persisting.
func (s *predictionService) PreviewPrediction(ctx context.Context, req models.PreviewPredictionRequest) (*models.Prediction, error) {
	p1, p2, err := s.resolvePair(ctx, req.Player1ID, req.Player2ID)
	if err != nil {
		return nil, err
	}
	match := models.Match{Player1ID: p1.ID, Player2ID: p2.ID, Surface: req.Surface, BestOf: req.BestOf, Location: req.Location}
	match.ApplyDefaults()
	if err := match.Validate(); err != nil {
		return nil, err
	}

	preds, err := s.score(ctx, req.Model, ScoreInput{Match: &match, Player1: p1, Player2: p2, Odds: req.Odds})
	if err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return nil, fmt.Errorf("%w: %s produced no prediction", ErrUnknownModel, req.Model)
	}
	return &preds[0], nil
}

// RecordOutcome completes the match and grades each of its predictions. The
// store re-derives model feedback from every graded prediction.
func (s *predictionService) RecordOutcome(ctx context.Context, matchID, winnerID string) ([]models.Prediction, error) {
	match, err := store.First(ctx, s.store.Matches(), store.ByID(matchID))
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, fmt.Errorf("%w: match %s", store.ErrNotFound, matchID)
	}
	if winnerID != match.Player1ID && winnerID != match.Player2ID {
		return nil, fmt.Errorf("%w: winner %s did not play match %s", models.ErrInvalidMatch, winnerID, matchID)
	}

	if _, err := s.store.Matches().Update(ctx, matchID, map[string]any{
		"status":    models.MatchCompleted,
		"winner_id": winnerID,
	}); err != nil {
		return nil, fmt.Errorf("complete match: %w", err)
	}
	defer s.invalidate(ctx, matchID)

	preds, err := s.store.Predictions().List(ctx, store.ListOptions{Filters: store.Filter{"match_id": matchID}})
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	now := time.Now().UTC()
	graded := make([]models.Prediction, 0, len(preds))
	for _, p := range preds {
		updated, err := s.store.Predictions().Update(ctx, p.ID, map[string]any{
			"actual_winner_id": winnerID,
			"completed_at":     now,
		})
		if err != nil {
			return graded, fmt.Errorf("grade prediction %s: %w", p.ID, err)
		}
		graded = append(graded, updated)
	}

	outcomesRecorded.Inc()
	s.logger.Infow("Match outcome recorded", "match", matchID, "winner", winnerID, "graded", len(graded))
	return graded, nil
}

func cacheKey(matchID string) string {
	return "predictions:match:" + matchID
}

// MatchPredictions reads through the Redis cache when one is configured.
// Cache failures are logged and fall back to the store.
func (s *predictionService) MatchPredictions(ctx context.Context, matchID string) ([]models.Prediction, error) {
	if s.redis != nil {
		data, err := s.redis.Get(ctx, cacheKey(matchID)).Bytes()
		switch {
		case err == nil:
			var cached []models.Prediction
			if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
				return cached, nil
			}
		case !errors.Is(err, redis.Nil):
			s.logger.Warnw("Prediction cache read failed", "match", matchID, "error", err)
		}
	}

	preds, err := s.store.Predictions().List(ctx, store.ListOptions{
		Filters: store.Filter{"match_id": matchID},
		Sort:    "created_at",
	})
	if err != nil {
		return nil, err
	}
	if preds == nil {
		preds = []models.Prediction{}
	}

	if s.redis != nil {
		if data, err := json.Marshal(preds); err == nil {
			if err := s.redis.Set(ctx, cacheKey(matchID), data, s.cacheTTL).Err(); err != nil {
				s.logger.Warnw("Prediction cache write failed", "match", matchID, "error", err)
			}
		}
	}
	return preds, nil
}

func (s *predictionService) invalidate(ctx context.Context, matchID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, cacheKey(matchID)).Err(); err != nil {
		s.logger.Warnw("Prediction cache invalidation failed", "match", matchID, "error", err)
	}
}

// SubmitFeedback stores a manual feedback row built from the current player
// profiles.
func (s *predictionService) SubmitFeedback(ctx context.Context, predictionID string, wasCorrect bool, notes string) (*models.ModelFeedback, error) {
	pred, err := store.First(ctx, s.store.Predictions(), store.ByID(predictionID))
	if err != nil {
		return nil, err
	}
	if pred == nil {
		return nil, fmt.Errorf("%w: prediction %s", store.ErrNotFound, predictionID)
	}

	match, err := store.First(ctx, s.store.Matches(), store.ByID(pred.MatchID))
	if err != nil {
		return nil, err
	}

	p1ID, p2ID := pred.Player1ID, pred.Player2ID
	if match != nil && (p1ID == "" || p2ID == "") {
		p1ID, p2ID = match.Player1ID, match.Player2ID
	}
	p1, err := s.store.Players().Get(ctx, p1ID)
	if err != nil {
		return nil, err
	}
	p2, err := s.store.Players().Get(ctx, p2ID)
	if err != nil {
		return nil, err
	}

	fb := store.BuildFeedback(pred, match, p1, p2, &wasCorrect, models.FeedbackManual)
	fb.Notes = notes
	stored, err := s.store.ModelFeedback().Create(ctx, fb)
	if err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return &stored, nil
}
