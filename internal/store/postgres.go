package store

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/matchpoint-labs/tennis-predict/internal/models"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

// PgPool defines the interface for PostgreSQL connection pool
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Connect opens a pgx pool and verifies connectivity.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return pool, nil
}

// pgCollection stores records as rows of one table. Rows are read with
// row_to_json and written with json_populate_record, so the mapping layer is
// the only place that knows column names.
type pgCollection[T any] struct {
	pool PgPool
	m    tableMapping
	ent  entity[T]
}

func newPgCollection[T any](pool PgPool, m tableMapping, ent entity[T]) *pgCollection[T] {
	return &pgCollection[T]{pool: pool, m: m, ent: ent}
}

func (c *pgCollection[T]) decode(raw []byte) (T, error) {
	var row map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&row); err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s row: %w", c.m.table, err)
	}
	return fromFields[T](c.m.FromRemote(row))
}

func (c *pgCollection[T]) encode(item T) (string, error) {
	fields, err := toFields(item)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(c.m.ToRemote(fields))
	if err != nil {
		return "", fmt.Errorf("encode %s row: %w", c.m.table, err)
	}
	return string(data), nil
}

func (c *pgCollection[T]) List(ctx context.Context, opts ListOptions) ([]T, error) {
	sql, args := buildListQuery(c.m, opts)
	rows, err := c.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.m.table, err)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.m.table, err)
		}
		item, err := c.decode(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.m.table, err)
	}
	return apply(items, opts)
}

func (c *pgCollection[T]) get(ctx context.Context, id string) (*T, error) {
	var raw []byte
	err := c.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT row_to_json(t) FROM %s t WHERE t.id = $1", c.m.table), id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", c.ent.name, id, err)
	}
	item, err := c.decode(raw)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *pgCollection[T]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if err := c.ent.prepare(&item); err != nil {
		return zero, err
	}
	if id := c.ent.id(&item); *id == "" {
		*id = uuid.NewString()
	}
	if created := c.ent.created(&item); created.IsZero() {
		*created = time.Now().UTC()
	}

	doc, err := c.encode(item)
	if err != nil {
		return zero, err
	}
	var raw []byte
	err = c.pool.QueryRow(ctx, fmt.Sprintf(
		"INSERT INTO %[1]s AS t SELECT * FROM json_populate_record(NULL::%[1]s, $1::json) RETURNING row_to_json(t)",
		c.m.table), doc).Scan(&raw)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return zero, fmt.Errorf("%w: %s %s", ErrConflict, c.ent.name, *c.ent.id(&item))
	}
	if err != nil {
		return zero, fmt.Errorf("insert %s: %w", c.ent.name, err)
	}
	return c.decode(raw)
}

func (c *pgCollection[T]) Update(ctx context.Context, id string, patch map[string]any) (T, error) {
	var zero T
	current, err := c.get(ctx, id)
	if err != nil {
		return zero, err
	}
	if current == nil {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, c.ent.name, id)
	}
	merged, err := mergePatch(*current, patch)
	if err != nil {
		return zero, err
	}
	if err := c.ent.check(&merged); err != nil {
		return zero, err
	}

	doc, err := c.encode(merged)
	if err != nil {
		return zero, err
	}
	quoted := make([]string, 0, len(c.m.fields))
	for _, col := range c.m.columns() {
		quoted = append(quoted, quoteIdent(col))
	}
	cols := strings.Join(quoted, ", ")

	var raw []byte
	err = c.pool.QueryRow(ctx, fmt.Sprintf(
		"UPDATE %[1]s AS t SET (%[2]s) = (SELECT %[2]s FROM json_populate_record(NULL::%[1]s, $1::json)) WHERE t.id = $2 RETURNING row_to_json(t)",
		c.m.table, cols), doc, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, c.ent.name, id)
	}
	if err != nil {
		return zero, fmt.Errorf("update %s %s: %w", c.ent.name, id, err)
	}
	return c.decode(raw)
}

type pgPlayers struct {
	*pgCollection[models.Player]
}

func (p pgPlayers) Get(ctx context.Context, id string) (*models.Player, error) {
	return p.get(ctx, id)
}

func (p pgPlayers) Remove(ctx context.Context, id string) error {
	if _, err := p.pool.Exec(ctx, "DELETE FROM players WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	return nil
}

type pgAliases struct {
	pool PgPool
}

func (a pgAliases) Create(ctx context.Context, alias models.Alias) error {
	if alias.Alias == "" || alias.PlayerID == "" {
		return fmt.Errorf("%w: alias and player_id are required", models.ErrInvalidPlayer)
	}
	_, err := a.pool.Exec(ctx,
		"INSERT INTO player_aliases (alias, player_id, source) VALUES ($1, $2, $3)",
		alias.Alias, alias.PlayerID, alias.Source)
	if err != nil {
		return fmt.Errorf("insert alias: %w", err)
	}
	return nil
}

// PostgresStore is the remote backend.
type PostgresStore struct {
	pool        PgPool
	players     pgPlayers
	matches     *pgCollection[models.Match]
	predictions *predictionCollection
	compliance  *pgCollection[models.Compliance]
	weights     *weightsCollection
	feedback    *feedbackCollection
	aliases     pgAliases
	auth        Auth
	appLogs     AppLogs
	deriver     *feedbackDeriver
}

// NewPostgresStore wires every collection to pool.
func NewPostgresStore(pool PgPool, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PostgresStore{
		pool:       pool,
		players:    pgPlayers{newPgCollection(pool, playersTable, playerEntity)},
		matches:    newPgCollection(pool, matchesTable, matchEntity),
		compliance: newPgCollection(pool, complianceTable, complianceEntity),
		aliases:    pgAliases{pool: pool},
		auth:       anonymousAuth{},
		appLogs:    newZapAppLogs(logger),
	}
	rawFeedback := newPgCollection(pool, feedbackTable, feedbackEntity)
	s.deriver = newFeedbackDeriver(s.players, s.matches, rawFeedback, logger)
	s.feedback = &feedbackCollection{Collection: rawFeedback, deriver: s.deriver}
	s.predictions = newPredictionCollection(newPgCollection(pool, predictionsTable, predictionEntity), s.deriver)
	s.weights = newWeightsCollection(newPgCollection(pool, weightsTable, weightsEntity))
	return s
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Name() string { return "postgres" }
func (s *PostgresStore) Players() PlayerCollection { return s.players }
func (s *PostgresStore) Matches() Collection[models.Match] { return s.matches }
func (s *PostgresStore) Predictions() Collection[models.Prediction] { return s.predictions }
func (s *PostgresStore) Compliance() Collection[models.Compliance] { return s.compliance }
func (s *PostgresStore) ModelWeights() Collection[models.ModelWeights] { return s.weights }
func (s *PostgresStore) ModelFeedback() Collection[models.ModelFeedback] { return s.feedback }
func (s *PostgresStore) Alias() AliasWriter { return s.aliases }
func (s *PostgresStore) Auth() Auth { return s.auth }
func (s *PostgresStore) AppLogs() AppLogs { return s.appLogs }
func (s *PostgresStore) OnFeedback(l FeedbackListener) { s.deriver.subscribe(l) }
