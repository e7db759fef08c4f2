// Package store is the data-access layer. The same collection contract is
// implemented in memory and against PostgreSQL; filtering, sorting, defaults
// and the derivation of model feedback behave identically on both.
package store

import (
	"context"
	"errors"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// ErrNotFound is returned by Update on a missing id.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned by Create when the id is already taken.
var ErrConflict = errors.New("already exists")

// Collection is the contract shared by every entity collection.
type Collection[T any] interface {
	List(ctx context.Context, opts ListOptions) ([]T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, id string, patch map[string]any) (T, error)
}

// PlayerCollection additionally supports single get and removal.
type PlayerCollection interface {
	Collection[models.Player]
	// Get returns nil, nil when the player does not exist.
	Get(ctx context.Context, id string) (*models.Player, error)
	// Remove is a no-op when the player does not exist.
	Remove(ctx context.Context, id string) error
}

// AliasWriter is a write-only collection of player name aliases.
type AliasWriter interface {
	Create(ctx context.Context, alias models.Alias) error
}

// FeedbackListener is called with every derived or manual feedback row
// after it is stored.
type FeedbackListener func(models.ModelFeedback)

// Store is one backend of the data-access layer.
type Store interface {
	Name() string
	Players() PlayerCollection
	Matches() Collection[models.Match]
	Predictions() Collection[models.Prediction]
	Compliance() Collection[models.Compliance]
	ModelWeights() Collection[models.ModelWeights]
	ModelFeedback() Collection[models.ModelFeedback]
	Alias() AliasWriter
	Auth() Auth
	AppLogs() AppLogs
	OnFeedback(l FeedbackListener)
}

// First returns the first record matching opts, or nil.
func First[T any](ctx context.Context, c Collection[T], opts ListOptions) (*T, error) {
	opts.Limit = 1
	items, err := c.List(ctx, opts)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

// ActiveWeights returns the active ModelWeights row, or nil.
func ActiveWeights(ctx context.Context, s Store) (*models.ModelWeights, error) {
	return First(ctx, s.ModelWeights(), ListOptions{Filters: Filter{"is_active": true}})
}
