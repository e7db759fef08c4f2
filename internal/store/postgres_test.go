package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

// MockRow implements pgx.Row
type MockRow struct {
	raw []byte
	err error
}

func (r *MockRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.raw
	return nil
}

// MockRows implements pgx.Rows over a fixed set of JSON documents
type MockRows struct {
	pgx.Rows
	docs []string
	idx  int
}

func (m *MockRows) Next() bool {
	m.idx++
	return m.idx <= len(m.docs)
}

func (m *MockRows) Scan(dest ...any) error {
	*(dest[0].(*[]byte)) = []byte(m.docs[m.idx-1])
	return nil
}

func (m *MockRows) Err() error { return nil }
func (m *MockRows) Close()     {}

// MockPool records statements and serves canned rows. Inserts and updates
// echo the written document back, as RETURNING row_to_json would.
type MockPool struct {
	queries []string
	args    [][]any
	rows    map[string][]string // table -> documents
	// insertErr fails every INSERT when set
	insertErr error
}

func (p *MockPool) record(sql string, args []any) {
	p.queries = append(p.queries, sql)
	p.args = append(p.args, args)
}

func (p *MockPool) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.record(sql, args)
	for table, docs := range p.rows {
		if strings.Contains(sql, "FROM "+table+" t") {
			return &MockRows{docs: docs}, nil
		}
	}
	return &MockRows{}, nil
}

func (p *MockPool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.record(sql, args)
	switch {
	case strings.HasPrefix(sql, "INSERT"):
		if p.insertErr != nil {
			return &MockRow{err: p.insertErr}
		}
		return &MockRow{raw: []byte(args[0].(string))}
	case strings.HasPrefix(sql, "UPDATE"):
		return &MockRow{raw: []byte(args[0].(string))}
	}
	for table, docs := range p.rows {
		if strings.Contains(sql, "FROM "+table+" t") && len(docs) > 0 {
			return &MockRow{raw: []byte(docs[0])}
		}
	}
	return &MockRow{err: pgx.ErrNoRows}
}

func (p *MockPool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.record(sql, args)
	return pgconn.NewCommandTag("OK"), nil
}

func TestPostgresStore_CreateUsesRemoteColumns(t *testing.T) {
	pool := &MockPool{}
	s := NewPostgresStore(pool, nil)

	m, err := s.Matches().Create(context.Background(), models.Match{Player1ID: "a", Player2ID: "b"})
	require.NoError(t, err)
	assert.Equal(t, "a", m.Player1ID)
	assert.Equal(t, "b", m.Player2ID)
	assert.Equal(t, 3, m.BestOf)
	assert.NotEmpty(t, m.ID)

	require.NotEmpty(t, pool.queries)
	assert.Contains(t, pool.queries[0], "json_populate_record(NULL::matches")

	var written map[string]any
	require.NoError(t, json.Unmarshal([]byte(pool.args[0][0].(string)), &written))
	assert.Equal(t, "a", written["player_a_id"])
	assert.Equal(t, "b", written["player_b_id"])
	assert.NotContains(t, written, "player1_id")
	// every column is written, absent ones as null
	assert.Contains(t, written, "winner_id")
	assert.Nil(t, written["winner_id"])
}

func TestPostgresStore_CreateDuplicateID(t *testing.T) {
	pool := &MockPool{insertErr: &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}}
	s := NewPostgresStore(pool, nil)

	_, err := s.Players().Create(context.Background(), models.Player{ID: "p1", Name: "Ruud"})
	assert.ErrorIs(t, err, ErrConflict)

	pool.insertErr = errors.New("connection reset")
	_, err = s.Players().Create(context.Background(), models.Player{ID: "p2", Name: "Rune"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestPostgresStore_ListNormalizesRemoteRows(t *testing.T) {
	pool := &MockPool{rows: map[string][]string{
		"players": {
			`{"id":"p1","display_name":"Medvedev","ranking":5,"elo_rating":null,"first_serve_win_pct":"73.5"}`,
			`{"id":"p2","name":"Zverev","rank":3,"full_name":null}`,
		},
	}}
	s := NewPostgresStore(pool, nil)

	players, err := s.Players().List(context.Background(), SortOnly("current_rank"))
	require.NoError(t, err)
	require.Len(t, players, 2)

	assert.Equal(t, "Zverev", players[0].Name)
	assert.Equal(t, 3, players[0].CurrentRank)
	assert.Equal(t, "Medvedev", players[1].Name)
	assert.Equal(t, 5, players[1].CurrentRank)
	assert.Nil(t, players[1].EloRating)
	require.NotNil(t, players[1].FirstServeWinPct)
	assert.Equal(t, 73.5, *players[1].FirstServeWinPct)

	assert.Contains(t, pool.queries[0], `ORDER BY t."rank" ASC NULLS LAST`)
}

func TestPostgresStore_GetMissingPlayer(t *testing.T) {
	s := NewPostgresStore(&MockPool{}, nil)
	p, err := s.Players().Get(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Nil(t, p)

	_, err = s.Players().Update(context.Background(), "nope", map[string]any{"name": "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPostgresStore_UpdatePrediction(t *testing.T) {
	pool := &MockPool{rows: map[string][]string{
		"predictions": {`{"id":"pr1","match_id":"m1","model_type":"elo","win_prob_a":0.7,"win_prob_b":0.3,"player_a_id":"a","player_b_id":"b","predicted_winner_id":"a"}`},
	}}
	s := NewPostgresStore(pool, nil)

	pred, err := s.Predictions().Update(context.Background(), "pr1", map[string]any{"actual_winner_id": "a", "was_correct": false})
	require.NoError(t, err)
	assert.Equal(t, 0.7, pred.Player1WinProbability)
	assert.Equal(t, "a", pred.ActualWinnerID)
	require.NotNil(t, pred.WasCorrect)
	assert.True(t, *pred.WasCorrect, "was_correct follows the recorded winner, not the patch")

	var update string
	for _, q := range pool.queries {
		if strings.HasPrefix(q, "UPDATE predictions") {
			update = q
		}
	}
	assert.Contains(t, update, `"win_prob_a"`)
	assert.Contains(t, update, "WHERE t.id = $2")
}

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name     string
		opts     ListOptions
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "no options",
			wantSQL: "SELECT row_to_json(t) FROM matches t WHERE 1=1 ORDER BY t.created_at ASC",
		},
		{
			name:     "renamed exact filter with limit",
			opts:     ListOptions{Filters: Filter{"player1_id": "a"}, Sort: "-created_at", Limit: 5},
			wantSQL:  `SELECT row_to_json(t) FROM matches t WHERE 1=1 AND t."player_a_id" = $1 ORDER BY t."created_at" DESC NULLS LAST, t.created_at ASC LIMIT 5`,
			wantArgs: []any{"a"},
		},
		{
			name:    "operator filters stay client side and block the limit",
			opts:    ListOptions{Filters: Filter{"tournament_name": Contains("open")}, Sort: "best_of", Limit: 5},
			wantSQL: `SELECT row_to_json(t) FROM matches t WHERE 1=1 ORDER BY t."best_of" ASC NULLS LAST, t.created_at ASC`,
		},
		{
			name:    "unknown sort column is not pushed",
			opts:    ListOptions{Sort: "location; DROP TABLE matches", Limit: 1},
			wantSQL: "SELECT row_to_json(t) FROM matches t WHERE 1=1 ORDER BY t.created_at ASC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildListQuery(matchesTable, tt.opts)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestTableMapping_RoundTrip(t *testing.T) {
	canonical := map[string]any{
		"id":                      "x",
		"player1_win_probability": 0.55,
		"player2_win_probability": 0.45,
		"player1_id":              "a",
	}
	remote := predictionsTable.ToRemote(canonical)
	assert.Equal(t, 0.55, remote["win_prob_a"])
	assert.Equal(t, "a", remote["player_a_id"])
	assert.Len(t, remote, len(predictionsTable.fields))

	back := predictionsTable.FromRemote(remote)
	assert.Equal(t, canonical, back)
}
