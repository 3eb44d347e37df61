package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/plotscout/plotscout-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the store. pgxmock satisfies
// it for unit tests.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS searches (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	user_id       TEXT NOT NULL,
	session_id    TEXT,
	query         TEXT NOT NULL,
	criteria      JSONB NOT NULL,
	results_count INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	trace         JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS search_stages (
	id        TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	search_id TEXT NOT NULL REFERENCES searches(id),
	stage     TEXT NOT NULL,
	status    TEXT NOT NULL,
	details   JSONB,
	error     TEXT,
	timestamp TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_searches_status ON searches(status);
CREATE INDEX IF NOT EXISTS idx_searches_user ON searches(user_id);
CREATE INDEX IF NOT EXISTS idx_search_stages_search_id ON search_stages(search_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.SearchRun) error {
	criteriaJSON, err := json.Marshal(run.Criteria)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal criteria")
	}
	traceJSON, err := json.Marshal(run.Trace)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal trace")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save run")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO searches (id, user_id, session_id, query, criteria, results_count, status, trace, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, run.UserID, run.SessionID, run.Query, criteriaJSON,
		run.ResultsCount, string(run.Status), traceJSON, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: insert search")
	}

	for _, st := range run.Trace.Stages {
		detailsJSON, err := json.Marshal(st.Details)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal stage details")
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO search_stages (id, search_id, stage, status, details, error, timestamp)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New().String(), run.ID, st.Stage, string(st.Status), detailsJSON, st.Error, st.Timestamp,
		)
		if err != nil {
			return eris.Wrap(err, "postgres: insert stage")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit save run")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.SearchRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, session_id, query, criteria, results_count, status, trace, created_at
		 FROM searches WHERE id = $1`, runID)

	run, err := scanPgRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.SearchRun, error) {
	query := `SELECT id, user_id, session_id, query, criteria, results_count, status, trace, created_at
		 FROM searches WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		query += ` AND status = ` + arg(string(filter.Status))
	}
	if filter.UserID != "" {
		query += ` AND user_id = ` + arg(filter.UserID)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.SearchRun
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) ListStages(ctx context.Context, runID string) ([]model.RunStage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, search_id, stage, status, details, error, timestamp
		 FROM search_stages WHERE search_id = $1 ORDER BY timestamp`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list stages")
	}
	defer rows.Close()

	var stages []model.RunStage
	for rows.Next() {
		var st model.RunStage
		var status string
		var detailsJSON []byte
		if err := rows.Scan(&st.ID, &st.RunID, &st.Stage, &status, &detailsJSON, &st.Error, &st.Timestamp); err != nil {
			return nil, eris.Wrap(err, "postgres: scan stage")
		}
		st.Status = model.StageStatus(status)
		if len(detailsJSON) > 0 {
			if err := json.Unmarshal(detailsJSON, &st.Details); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal stage details")
			}
		}
		stages = append(stages, st)
	}
	return stages, eris.Wrap(rows.Err(), "postgres: list stages iterate")
}

func scanPgRun(row pgx.Row) (*model.SearchRun, error) {
	var run model.SearchRun
	var sessionID *string
	var criteriaJSON, traceJSON []byte
	var status string

	err := row.Scan(&run.ID, &run.UserID, &sessionID, &run.Query, &criteriaJSON,
		&run.ResultsCount, &status, &traceJSON, &run.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrap(err, "run not found")
		}
		return nil, err
	}

	if sessionID != nil {
		run.SessionID = *sessionID
	}
	run.Status = model.RunStatus(status)
	if err := json.Unmarshal(criteriaJSON, &run.Criteria); err != nil {
		return nil, eris.Wrap(err, "unmarshal criteria")
	}
	if err := json.Unmarshal(traceJSON, &run.Trace); err != nil {
		return nil, eris.Wrap(err, "unmarshal trace")
	}
	return &run, nil
}
