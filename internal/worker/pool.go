// Package worker implements the buffered worker pool that exports graded
// model feedback to ClickHouse. It decouples the request path from analytics
// writes:
// - Load shedding when the queue is full
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
	"github.com/matchpoint-labs/tennis-predict/internal/store"
)

// Prometheus metrics
var (
	feedbackEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tennis_feedback_enqueued_total",
		Help: "Total number of feedback rows queued for export",
	})

	feedbackExported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tennis_feedback_exported_total",
		Help: "Total number of feedback rows written to ClickHouse",
	})

	feedbackFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tennis_feedback_failed_total",
		Help: "Total number of feedback rows that failed to export",
	})

	feedbackLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tennis_feedback_load_shed_total",
		Help: "Total number of feedback rows dropped due to load shedding",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tennis_feedback_queue_depth",
		Help: "Current depth of the feedback export queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tennis_feedback_batch_insert_duration_seconds",
		Help:    "Duration of feedback batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})
)

const createAnalyticsTable = `
	CREATE TABLE IF NOT EXISTS tennis_analytics.model_feedback (
		created_at DateTime64(3),
		feedback_id String,
		prediction_id String,
		match_id String,
		model_type LowCardinality(String),
		surface LowCardinality(String),
		source LowCardinality(String),
		confidence_level LowCardinality(String),
		was_correct UInt8,
		predicted_probability Float64,
		calibration_error Float64,
		ranking_delta Float64,
		elo_delta Float64
	) ENGINE = MergeTree()
	ORDER BY (model_type, created_at)
`

// Job represents one feedback row waiting for export
type Job struct {
	Feedback models.ModelFeedback
	Queued   time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Logger        *zap.Logger
}

// Pool manages a pool of workers exporting feedback rows
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	stopOnce sync.Once
	mu       sync.RWMutex
	stopped  bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// EnsureSchema creates the analytics database and table.
func EnsureSchema(ctx context.Context, ch driver.Conn) error {
	if err := ch.Exec(ctx, "CREATE DATABASE IF NOT EXISTS tennis_analytics"); err != nil {
		return fmt.Errorf("create analytics database: %w", err)
	}
	if err := ch.Exec(ctx, createAnalyticsTable); err != nil {
		return fmt.Errorf("create model_feedback table: %w", err)
	}
	return nil
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Feedback export pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop closes the queue and waits for workers to flush what is left
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping feedback export pool...")

		p.mu.Lock()
		p.stopped = true
		close(p.jobQueue)
		p.mu.Unlock()

		p.wg.Wait()
		if p.cancel != nil {
			p.cancel()
		}
		p.logger.Info("Feedback export pool stopped")
	})
}

// Enqueue adds a feedback row without blocking. It returns false and sheds
// the row when the queue is full or the pool has stopped.
func (p *Pool) Enqueue(fb models.ModelFeedback) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		feedbackLoadShed.Inc()
		return false
	}

	select {
	case p.jobQueue <- Job{Feedback: fb, Queued: time.Now()}:
		feedbackEnqueued.Inc()
		return true
	default:
		p.logger.Warnw("Feedback export queue full, dropping row", "prediction", fb.PredictionID)
		feedbackLoadShed.Inc()
		return false
	}
}

// Listener returns a store listener that queues graded rows. Ungraded rows
// carry no accuracy signal and are not exported.
func (p *Pool) Listener() store.FeedbackListener {
	return func(fb models.ModelFeedback) {
		if fb.WasCorrect == nil {
			return
		}
		p.Enqueue(fb)
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker drains the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Feedback batch export failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			feedbackFailed.Add(float64(len(batch)))
		} else {
			feedbackExported.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// processBatch writes a batch of feedback rows to ClickHouse
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx := context.Background()
	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO tennis_analytics.model_feedback (
			created_at, feedback_id, prediction_id, match_id, model_type, surface, source,
			confidence_level, was_correct, predicted_probability, calibration_error,
			ranking_delta, elo_delta
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, job := range batch {
		fb := job.Feedback
		row := toAnalyticsRow(fb, job.Queued)
		if err := chBatch.Append(
			row.CreatedAt,
			row.FeedbackID,
			row.PredictionID,
			row.MatchID,
			row.ModelType,
			row.Surface,
			row.Source,
			row.ConfidenceLevel,
			row.WasCorrect,
			row.PredictedProbability,
			row.CalibrationError,
			row.RankingDelta,
			row.EloDelta,
		); err != nil {
			p.logger.Warnw("Failed to append feedback to batch", "error", err, "prediction", fb.PredictionID)
			continue
		}
	}

	if err := chBatch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// analyticsRow is the flattened ClickHouse form of a feedback row
type analyticsRow struct {
	CreatedAt            time.Time
	FeedbackID           string
	PredictionID         string
	MatchID              string
	ModelType            string
	Surface              string
	Source               string
	ConfidenceLevel      string
	WasCorrect           uint8
	PredictedProbability float64
	CalibrationError     float64
	RankingDelta         float64
	EloDelta             float64
}

func toAnalyticsRow(fb models.ModelFeedback, queued time.Time) analyticsRow {
	row := analyticsRow{
		CreatedAt:            queued, // grading time, not the row's creation
		FeedbackID:           fb.ID,
		PredictionID:         fb.PredictionID,
		MatchID:              fb.MatchID,
		ModelType:            string(fb.ModelType),
		Surface:              string(fb.Surface),
		Source:               string(fb.Source),
		ConfidenceLevel:      string(fb.ConfidenceLevel),
		PredictedProbability: fb.PredictedProb,
		RankingDelta:         fb.FeatureSnapshot["ranking_delta"],
		EloDelta:             fb.FeatureSnapshot["elo_delta"],
	}
	if fb.WasCorrect != nil && *fb.WasCorrect {
		row.WasCorrect = 1
	}
	if fb.CalibrationError != nil {
		row.CalibrationError = *fb.CalibrationError
	}
	return row
}

// reportQueueDepth periodically updates the queue depth metric
func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
