package logic

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// RedisClient defines the subset of the Redis client used for caching
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// PredictionService runs the models against stored players and keeps
// predictions, outcomes and feedback in the data-access layer.
type PredictionService interface {
	AnalyzeMatch(ctx context.Context, req models.AnalyzeMatchRequest) (*models.AnalyzeMatchResponse, error)
	PreviewPrediction(ctx context.Context, req models.PreviewPredictionRequest) (*models.Prediction, error)
	RecordOutcome(ctx context.Context, matchID, winnerID string) ([]models.Prediction, error)
	MatchPredictions(ctx context.Context, matchID string) ([]models.Prediction, error)
	SubmitFeedback(ctx context.Context, predictionID string, wasCorrect bool, notes string) (*models.ModelFeedback, error)
}

// AccuracyService summarizes how well each model has done.
type AccuracyService interface {
	Summary(ctx context.Context) ([]models.ModelAccuracy, error)
	Trend(ctx context.Context, days int) ([]models.AccuracyPoint, error)
}
