package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vsinha/fcrecon/pkg/domain/entities"
	"github.com/vsinha/fcrecon/pkg/domain/repositories"
)

// Store persists memoized datasets and run history in PostgreSQL
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ repositories.MemoRepository = (*Store)(nil)
	_ repositories.RunRepository  = (*Store)(nil)
)

// Open connects to dsn and creates the tables if needed
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the connection pool
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS memo_datasets (
	key TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	payload BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reconciliation_runs (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	status TEXT NOT NULL,
	summary JSONB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON reconciliation_runs(started_at);
`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create store schema: %w", err)
	}
	return nil
}

// GetDataset returns the payload stored under key
func (s *Store) GetDataset(ctx context.Context, key string) ([]byte, bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM memo_datasets WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get dataset %s: %w", key, err)
	}
	return payload, true, nil
}

// PutDataset stores payload under key, replacing any previous value
func (s *Store) PutDataset(ctx context.Context, key, kind string, payload []byte) error {
	if payload == nil {
		payload = []byte{}
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO memo_datasets (key, kind, payload) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET kind = EXCLUDED.kind, payload = EXCLUDED.payload, created_at = now()`,
		key, kind, payload)
	if err != nil {
		return fmt.Errorf("put dataset %s: %w", key, err)
	}
	return nil
}

// SaveRun inserts or replaces a run record
func (s *Store) SaveRun(ctx context.Context, run *entities.RunRecord) error {
	summary, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run %s: %w", run.ID, err)
	}

	var finishedAt interface{}
	if !run.FinishedAt.IsZero() {
		finishedAt = run.FinishedAt
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO reconciliation_runs (id, started_at, finished_at, status, summary) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
	started_at = EXCLUDED.started_at,
	finished_at = EXCLUDED.finished_at,
	status = EXCLUDED.status,
	summary = EXCLUDED.summary`,
		run.ID, run.StartedAt, finishedAt, string(run.Status), summary)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// ListRuns returns runs newest first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*entities.RunRecord, error) {
	var limitArg interface{}
	if limit > 0 {
		limitArg = limit
	}

	rows, err := s.pool.Query(ctx, `
SELECT summary FROM reconciliation_runs
ORDER BY started_at DESC, id DESC
LIMIT $1`, limitArg)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*entities.RunRecord
	for rows.Next() {
		var summary []byte
		if err := rows.Scan(&summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		var run entities.RunRecord
		if err := json.Unmarshal(summary, &run); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
