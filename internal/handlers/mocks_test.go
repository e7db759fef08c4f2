package handlers

import (
	"context"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// MockPredictionService
type MockPredictionService struct {
	AnalyzeMatchFunc      func(ctx context.Context, req models.AnalyzeMatchRequest) (*models.AnalyzeMatchResponse, error)
	PreviewPredictionFunc func(ctx context.Context, req models.PreviewPredictionRequest) (*models.Prediction, error)
	RecordOutcomeFunc     func(ctx context.Context, matchID, winnerID string) ([]models.Prediction, error)
	MatchPredictionsFunc  func(ctx context.Context, matchID string) ([]models.Prediction, error)
	SubmitFeedbackFunc    func(ctx context.Context, predictionID string, wasCorrect bool, notes string) (*models.ModelFeedback, error)
}

func (m *MockPredictionService) AnalyzeMatch(ctx context.Context, req models.AnalyzeMatchRequest) (*models.AnalyzeMatchResponse, error) {
	if m.AnalyzeMatchFunc != nil {
		return m.AnalyzeMatchFunc(ctx, req)
	}
	return &models.AnalyzeMatchResponse{}, nil
}

func (m *MockPredictionService) PreviewPrediction(ctx context.Context, req models.PreviewPredictionRequest) (*models.Prediction, error) {
	if m.PreviewPredictionFunc != nil {
		return m.PreviewPredictionFunc(ctx, req)
	}
	return &models.Prediction{ModelType: req.Model}, nil
}

func (m *MockPredictionService) RecordOutcome(ctx context.Context, matchID, winnerID string) ([]models.Prediction, error) {
	if m.RecordOutcomeFunc != nil {
		return m.RecordOutcomeFunc(ctx, matchID, winnerID)
	}
	return []models.Prediction{}, nil
}

func (m *MockPredictionService) MatchPredictions(ctx context.Context, matchID string) ([]models.Prediction, error) {
	if m.MatchPredictionsFunc != nil {
		return m.MatchPredictionsFunc(ctx, matchID)
	}
	return []models.Prediction{}, nil
}

func (m *MockPredictionService) SubmitFeedback(ctx context.Context, predictionID string, wasCorrect bool, notes string) (*models.ModelFeedback, error) {
	if m.SubmitFeedbackFunc != nil {
		return m.SubmitFeedbackFunc(ctx, predictionID, wasCorrect, notes)
	}
	return &models.ModelFeedback{PredictionID: predictionID, WasCorrect: &wasCorrect, Notes: notes}, nil
}

// MockAccuracyService
type MockAccuracyService struct {
	SummaryFunc func(ctx context.Context) ([]models.ModelAccuracy, error)
	TrendFunc   func(ctx context.Context, days int) ([]models.AccuracyPoint, error)
}

func (m *MockAccuracyService) Summary(ctx context.Context) ([]models.ModelAccuracy, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx)
	}
	return []models.ModelAccuracy{}, nil
}

func (m *MockAccuracyService) Trend(ctx context.Context, days int) ([]models.AccuracyPoint, error) {
	if m.TrendFunc != nil {
		return m.TrendFunc(ctx, days)
	}
	return []models.AccuracyPoint{}, nil
}

type MockExportQueue struct {
	Depth int
}

func (m *MockExportQueue) QueueDepth() int { return m.Depth }
