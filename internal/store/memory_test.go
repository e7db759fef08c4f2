package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

func seedPlayers(t *testing.T, s Store) (models.Player, models.Player) {
	t.Helper()
	ctx := context.Background()
	p1, err := s.Players().Create(ctx, models.Player{
		Name: "Alcaraz", CurrentRank: 2, EloRating: models.Float(2150),
		FirstServeWinPct: models.Float(74), FirstReturnWinPct: models.Float(35),
		HardCourtWinPct: models.Float(80), Nationality: "esp",
	})
	require.NoError(t, err)
	p2, err := s.Players().Create(ctx, models.Player{
		Name: "Sinner", CurrentRank: 1, EloRating: models.Float(2200),
		FirstServeWinPct: models.Float(77), FirstReturnWinPct: models.Float(33),
		HardCourtWinPct: models.Float(84), Nationality: "ITA",
	})
	require.NoError(t, err)
	return p1, p2
}

func TestMemoryStore_CreateAssignsIDAndDefaults(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(zap.NewNop())
	p1, p2 := seedPlayers(t, s)

	assert.NotEmpty(t, p1.ID)
	assert.NotEqual(t, p1.ID, p2.ID)
	assert.False(t, p1.CreatedAt.IsZero())
	assert.Equal(t, "ESP", p1.Nationality)

	m, err := s.Matches().Create(ctx, models.Match{Player1ID: p1.ID, Player2ID: p2.ID})
	require.NoError(t, err)
	assert.Equal(t, models.SurfaceHard, m.Surface)
	assert.Equal(t, 3, m.BestOf)
	assert.Equal(t, models.MatchScheduled, m.Status)

	c, err := s.Compliance().Create(ctx, models.Compliance{DataSource: "atp"})
	require.NoError(t, err)
	assert.Equal(t, models.CompliancePending, c.Status)

	w, err := s.ModelWeights().Create(ctx, models.ModelWeights{Name: "base", RankingWeight: 0.5, ServeWeight: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 1, w.Version)
}

func TestMemoryStore_CreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	_, err := s.Matches().Create(ctx, models.Match{Player1ID: "a", Player2ID: "a"})
	assert.ErrorIs(t, err, models.ErrInvalidMatch)

	_, err = s.ModelWeights().Create(ctx, models.ModelWeights{Name: "bad", RankingWeight: 0.5})
	assert.ErrorIs(t, err, models.ErrInvalidWeights)
}

func TestMemoryStore_UpdateMissing(t *testing.T) {
	s := NewMemoryStore(nil)
	_, err := s.Matches().Update(context.Background(), "nope", map[string]any{"status": "live"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "nope")
}

func TestMemoryStore_UpdateMergesAndKeepsID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	p1, _ := seedPlayers(t, s)

	updated, err := s.Players().Update(ctx, p1.ID, map[string]any{"current_rank": 3, "id": "other"})
	require.NoError(t, err)
	assert.Equal(t, p1.ID, updated.ID)
	assert.Equal(t, 3, updated.CurrentRank)
	assert.Equal(t, "Alcaraz", updated.Name)
}

func TestMemoryStore_PlayerGetRemove(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	p1, _ := seedPlayers(t, s)

	got, err := s.Players().Get(ctx, p1.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alcaraz", got.Name)

	missing, err := s.Players().Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.Players().Remove(ctx, p1.ID))
	require.NoError(t, s.Players().Remove(ctx, p1.ID))
	all, err := s.Players().List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMemoryStore_ConcurrentCreateUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Compliance().Create(ctx, models.Compliance{DataSource: "src"})
		}()
	}
	wg.Wait()

	all, err := s.Compliance().List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 50)
	seen := make(map[string]bool)
	for _, c := range all {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestMemoryStore_PredictionDerivesFeedback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	p1, p2 := seedPlayers(t, s)

	var seen []models.ModelFeedback
	s.OnFeedback(func(fb models.ModelFeedback) { seen = append(seen, fb) })

	m, err := s.Matches().Create(ctx, models.Match{Player1ID: p1.ID, Player2ID: p2.ID})
	require.NoError(t, err)

	pred, err := s.Predictions().Create(ctx, models.Prediction{
		MatchID: m.ID, ModelType: models.ModelBalanced,
		Player1ID: p1.ID, Player2ID: p2.ID,
		Player1WinProbability: 0.4, Player2WinProbability: 0.6,
		PredictedWinnerID: p2.ID, ConfidenceLevel: models.ConfidenceMedium,
	})
	require.NoError(t, err)

	rows, err := s.ModelFeedback().List(ctx, ListOptions{Filters: Filter{"prediction_id": pred.ID}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].WasCorrect)
	assert.Nil(t, rows[0].CalibrationError)
	assert.Equal(t, models.FeedbackDerived, rows[0].Source)
	assert.Equal(t, models.SurfaceHard, rows[0].Surface)
	assert.Equal(t, -1.0, rows[0].FeatureSnapshot["ranking_delta"])
	assert.Equal(t, -50.0, rows[0].FeatureSnapshot["elo_delta"])
	assert.Equal(t, -4.0, rows[0].FeatureSnapshot["surface_delta"])

	_, err = s.Predictions().Update(ctx, pred.ID, map[string]any{
		"actual_winner_id": p2.ID,
		"was_correct":      true,
	})
	require.NoError(t, err)

	rows, err = s.ModelFeedback().List(ctx, ListOptions{Filters: Filter{"prediction_id": pred.ID}})
	require.NoError(t, err)
	require.Len(t, rows, 1, "outcome must update the existing row")
	require.NotNil(t, rows[0].WasCorrect)
	assert.True(t, *rows[0].WasCorrect)
	require.NotNil(t, rows[0].CalibrationError)
	assert.InDelta(t, 40.0, *rows[0].CalibrationError, 1e-9)

	assert.Len(t, seen, 2)
}

func TestMemoryStore_WasCorrectFollowsActualWinner(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)
	p1, p2 := seedPlayers(t, s)

	m, err := s.Matches().Create(ctx, models.Match{Player1ID: p1.ID, Player2ID: p2.ID})
	require.NoError(t, err)

	yes := true
	pred, err := s.Predictions().Create(ctx, models.Prediction{
		MatchID: m.ID, ModelType: models.ModelElo,
		Player1ID: p1.ID, Player2ID: p2.ID,
		Player1WinProbability: 0.4, Player2WinProbability: 0.6,
		PredictedWinnerID: p2.ID, WasCorrect: &yes,
	})
	require.NoError(t, err)
	assert.Nil(t, pred.WasCorrect, "no actual winner, so not graded")

	pred, err = s.Predictions().Update(ctx, pred.ID, map[string]any{"actual_winner_id": p2.ID})
	require.NoError(t, err)
	require.NotNil(t, pred.WasCorrect)
	assert.True(t, *pred.WasCorrect)

	rows, err := s.ModelFeedback().List(ctx, ListOptions{Filters: Filter{"prediction_id": pred.ID}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].WasCorrect)
	assert.True(t, *rows[0].WasCorrect)
	require.NotNil(t, rows[0].CalibrationError)
	assert.InDelta(t, 40.0, *rows[0].CalibrationError, 1e-9)

	pred, err = s.Predictions().Update(ctx, pred.ID, map[string]any{"actual_winner_id": p1.ID, "was_correct": true})
	require.NoError(t, err)
	require.NotNil(t, pred.WasCorrect)
	assert.False(t, *pred.WasCorrect, "a contradicting was_correct is overridden")

	rows, err = s.ModelFeedback().List(ctx, ListOptions{Filters: Filter{"prediction_id": pred.ID}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].WasCorrect)
	assert.False(t, *rows[0].WasCorrect)
}

func TestMemoryStore_CreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	_, err := s.Players().Create(ctx, models.Player{ID: "p1", Name: "Ruud"})
	require.NoError(t, err)
	_, err = s.Players().Create(ctx, models.Player{ID: "p1", Name: "Rune"})
	assert.ErrorIs(t, err, ErrConflict)

	players, err := s.Players().List(ctx, ListOptions{Filters: Filter{"id": "p1"}})
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Ruud", players[0].Name)
}

func TestMemoryStore_PredictionWithoutMatchSkipsFeedback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	_, err := s.Predictions().Create(ctx, models.Prediction{MatchID: "ghost", ModelType: models.ModelElo})
	require.NoError(t, err)

	rows, err := s.ModelFeedback().List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestMemoryStore_SingleActiveWeights(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(nil)

	a, err := s.ModelWeights().Create(ctx, models.ModelWeights{Name: "a", RankingWeight: 1, IsActive: true})
	require.NoError(t, err)
	b, err := s.ModelWeights().Create(ctx, models.ModelWeights{Name: "b", ServeWeight: 1, IsActive: true})
	require.NoError(t, err)

	active, err := ActiveWeights(ctx, s)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, b.ID, active.ID)

	_, err = s.ModelWeights().Update(ctx, a.ID, map[string]any{"is_active": true})
	require.NoError(t, err)

	all, err := s.ModelWeights().List(ctx, ListOptions{Filters: Filter{"is_active": true}})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, a.ID, all[0].ID)
}

func TestMemoryStore_Alias(t *testing.T) {
	s := NewMemoryStore(nil)
	assert.NoError(t, s.Alias().Create(context.Background(), models.Alias{Alias: "Carlitos", PlayerID: "p1"}))
	assert.ErrorIs(t, s.Alias().Create(context.Background(), models.Alias{Alias: "x"}), models.ErrInvalidPlayer)
}
