package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/matchpoint-labs/tennis-predict/internal/logic"
	"github.com/matchpoint-labs/tennis-predict/internal/store"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// DataSources is the switchable backend registry
type DataSources interface {
	ActiveName() string
	Names() []string
	Switch(name string) (bool, error)
}

// ExportQueue reports the depth of the feedback export queue
type ExportQueue interface {
	QueueDepth() int
}

// DependencyFunc probes or prepares one backing service
type DependencyFunc func(ctx context.Context) error

type Config struct {
	Store       store.Store
	DataSources DataSources
	ExportQueue ExportQueue
	Checks      map[string]DependencyFunc
	Installers  map[string]DependencyFunc
	Logger      *zap.Logger
	// Services
	Prediction logic.PredictionService
	Accuracy   logic.AccuracyService
}

type Handler struct {
	store      store.Store
	sources    DataSources
	export     ExportQueue
	checks     map[string]DependencyFunc
	installers map[string]DependencyFunc
	logger     *zap.SugaredLogger
	validator  *validator.Validate
	prediction logic.PredictionService
	accuracy   logic.AccuracyService
}

func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Handler{
		store:      cfg.Store,
		sources:    cfg.DataSources,
		export:     cfg.ExportQueue,
		checks:     cfg.Checks,
		installers: cfg.Installers,
		logger:     cfg.Logger.Sugar(),
		validator:  validator.New(),
		prediction: cfg.Prediction,
		accuracy:   cfg.Accuracy,
	}
}
