package logic

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"gonum.org/v1/gonum/stat"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
	"github.com/matchpoint-labs/tennis-predict/internal/store"
)

// ErrAnalyticsDisabled is returned by Trend when no ClickHouse connection is
// configured.
var ErrAnalyticsDisabled = errors.New("analytics store not configured")

type accuracyService struct {
	store store.Store
	ch    driver.Conn
}

// NewAccuracyService computes summaries from the store and trends from
// ClickHouse. ch may be nil.
func NewAccuracyService(st store.Store, ch driver.Conn) AccuracyService {
	return &accuracyService{store: st, ch: ch}
}

// Summary aggregates derived feedback rows that have been graded, one entry
// per model in model-type order.
func (s *accuracyService) Summary(ctx context.Context) ([]models.ModelAccuracy, error) {
	rows, err := s.store.ModelFeedback().List(ctx, store.ListOptions{Filters: store.Filter{
		"source": string(models.FeedbackDerived),
	}})
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	type acc struct {
		correct     int
		calibration []float64
		brier       []float64
	}
	byModel := make(map[models.ModelType]*acc)
	for _, fb := range rows {
		if fb.WasCorrect == nil {
			continue
		}
		a := byModel[fb.ModelType]
		if a == nil {
			a = &acc{}
			byModel[fb.ModelType] = a
		}
		outcome := 0.0
		if *fb.WasCorrect {
			a.correct++
			outcome = 1
		}
		if fb.CalibrationError != nil {
			a.calibration = append(a.calibration, *fb.CalibrationError)
		}
		diff := fb.PredictedProb - outcome
		a.brier = append(a.brier, diff*diff)
	}

	out := make([]models.ModelAccuracy, 0, len(byModel))
	for mt, a := range byModel {
		graded := len(a.brier)
		entry := models.ModelAccuracy{
			ModelType:  mt,
			Graded:     graded,
			Correct:    a.correct,
			Accuracy:   Round2(float64(a.correct) / float64(graded)),
			BrierScore: Round2(stat.Mean(a.brier, nil)),
		}
		if len(a.calibration) > 0 {
			entry.MeanCalibrationError = Round2(stat.Mean(a.calibration, nil))
		}
		out = append(out, entry)
	}
	order := make(map[models.ModelType]int, len(models.AllModelTypes))
	for i, mt := range models.AllModelTypes {
		order[mt] = i
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].ModelType] < order[out[j].ModelType] })
	return out, nil
}

// Trend returns daily accuracy per model for the last days days.
func (s *accuracyService) Trend(ctx context.Context, days int) ([]models.AccuracyPoint, error) {
	if s.ch == nil {
		return nil, ErrAnalyticsDisabled
	}
	if days <= 0 || days > 365 {
		days = 30
	}

	rows, err := s.ch.Query(ctx, `
		SELECT
			toDate(created_at) AS day,
			model_type,
			count() AS graded,
			avg(was_correct) AS accuracy
		FROM tennis_analytics.model_feedback
		WHERE source = 'derived' AND created_at >= now() - INTERVAL ? DAY
		GROUP BY day, model_type
		ORDER BY day, model_type
	`, days)
	if err != nil {
		return nil, fmt.Errorf("query accuracy trend: %w", err)
	}
	defer rows.Close()

	var out []models.AccuracyPoint
	for rows.Next() {
		var (
			p         models.AccuracyPoint
			modelType string
		)
		if err := rows.Scan(&p.Day, &modelType, &p.Graded, &p.Accuracy); err != nil {
			return nil, fmt.Errorf("scan accuracy trend: %w", err)
		}
		p.ModelType = models.ModelType(modelType)
		p.Accuracy = Round2(p.Accuracy)
		out = append(out, p)
	}
	return out, rows.Err()
}
