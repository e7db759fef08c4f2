package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// memCollection keeps records in insertion order behind a RWMutex.
type memCollection[T any] struct {
	mu    sync.RWMutex
	items []T
	ent   entity[T]
}

func newMemCollection[T any](ent entity[T]) *memCollection[T] {
	return &memCollection[T]{ent: ent}
}

func (c *memCollection[T]) List(_ context.Context, opts ListOptions) ([]T, error) {
	c.mu.RLock()
	snapshot := make([]T, len(c.items))
	copy(snapshot, c.items)
	c.mu.RUnlock()
	return apply(snapshot, opts)
}

func (c *memCollection[T]) Create(_ context.Context, item T) (T, error) {
	if err := c.ent.prepare(&item); err != nil {
		var zero T
		return zero, err
	}
	if created := c.ent.created(&item); created.IsZero() {
		*created = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if id := c.ent.id(&item); *id == "" {
		*id = uuid.NewString()
	} else if c.indexOf(*id) >= 0 {
		var zero T
		return zero, fmt.Errorf("%w: %s %s", ErrConflict, c.ent.name, *id)
	}
	c.items = append(c.items, item)
	return item, nil
}

func (c *memCollection[T]) Update(_ context.Context, id string, patch map[string]any) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	idx := c.indexOf(id)
	if idx < 0 {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, c.ent.name, id)
	}
	merged, err := mergePatch(c.items[idx], patch)
	if err != nil {
		return zero, err
	}
	if err := c.ent.check(&merged); err != nil {
		return zero, err
	}
	c.items[idx] = merged
	return merged, nil
}

// indexOf must be called with the lock held.
func (c *memCollection[T]) indexOf(id string) int {
	for i := range c.items {
		if *c.ent.id(&c.items[i]) == id {
			return i
		}
	}
	return -1
}

type memPlayers struct {
	*memCollection[models.Player]
}

func (p memPlayers) Get(_ context.Context, id string) (*models.Player, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if idx := p.indexOf(id); idx >= 0 {
		player := p.items[idx]
		return &player, nil
	}
	return nil, nil
}

func (p memPlayers) Remove(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if idx := p.indexOf(id); idx >= 0 {
		p.items = append(p.items[:idx], p.items[idx+1:]...)
	}
	return nil
}

type memAliases struct {
	mu      sync.Mutex
	aliases []models.Alias
}

func (a *memAliases) Create(_ context.Context, alias models.Alias) error {
	if alias.Alias == "" || alias.PlayerID == "" {
		return fmt.Errorf("%w: alias and player_id are required", models.ErrInvalidPlayer)
	}
	a.mu.Lock()
	a.aliases = append(a.aliases, alias)
	a.mu.Unlock()
	return nil
}

// MemoryStore is the in-process backend.
type MemoryStore struct {
	players     memPlayers
	matches     *memCollection[models.Match]
	predictions *predictionCollection
	compliance  *memCollection[models.Compliance]
	weights     *weightsCollection
	feedback    *feedbackCollection
	aliases     *memAliases
	auth        Auth
	appLogs     AppLogs
	deriver     *feedbackDeriver
}

// NewMemoryStore returns an empty in-memory backend.
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &MemoryStore{
		players:    memPlayers{newMemCollection(playerEntity)},
		matches:    newMemCollection(matchEntity),
		compliance: newMemCollection(complianceEntity),
		aliases:    &memAliases{},
		auth:       anonymousAuth{},
		appLogs:    newZapAppLogs(logger),
	}
	rawFeedback := newMemCollection(feedbackEntity)
	s.deriver = newFeedbackDeriver(s.players, s.matches, rawFeedback, logger)
	s.feedback = &feedbackCollection{Collection: rawFeedback, deriver: s.deriver}
	s.predictions = newPredictionCollection(newMemCollection(predictionEntity), s.deriver)
	s.weights = newWeightsCollection(newMemCollection(weightsEntity))
	return s
}

func (s *MemoryStore) Name() string { return "memory" }
func (s *MemoryStore) Players() PlayerCollection { return s.players }
func (s *MemoryStore) Matches() Collection[models.Match] { return s.matches }
func (s *MemoryStore) Predictions() Collection[models.Prediction] { return s.predictions }
func (s *MemoryStore) Compliance() Collection[models.Compliance] { return s.compliance }
func (s *MemoryStore) ModelWeights() Collection[models.ModelWeights] { return s.weights }
func (s *MemoryStore) ModelFeedback() Collection[models.ModelFeedback] { return s.feedback }
func (s *MemoryStore) Alias() AliasWriter { return s.aliases }
func (s *MemoryStore) Auth() Auth { return s.auth }
func (s *MemoryStore) AppLogs() AppLogs { return s.appLogs }
func (s *MemoryStore) OnFeedback(l FeedbackListener) { s.deriver.subscribe(l) }
