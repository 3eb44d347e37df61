package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/plotscout/plotscout-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS searches (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	session_id    TEXT,
	query         TEXT NOT NULL,
	criteria      TEXT NOT NULL,
	results_count INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	trace         TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS search_stages (
	id        TEXT PRIMARY KEY,
	search_id TEXT NOT NULL REFERENCES searches(id),
	stage     TEXT NOT NULL,
	status    TEXT NOT NULL,
	details   TEXT,
	error     TEXT,
	timestamp DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_searches_status ON searches(status);
CREATE INDEX IF NOT EXISTS idx_searches_user ON searches(user_id);
CREATE INDEX IF NOT EXISTS idx_search_stages_search_id ON search_stages(search_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun writes the run and its per-stage rows in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.SearchRun) error {
	criteriaJSON, err := json.Marshal(run.Criteria)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal criteria")
	}
	traceJSON, err := json.Marshal(run.Trace)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal trace")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save run")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO searches (id, user_id, session_id, query, criteria, results_count, status, trace, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.UserID, run.SessionID, run.Query, string(criteriaJSON),
		run.ResultsCount, string(run.Status), string(traceJSON), run.CreatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert search")
	}

	for _, st := range run.Trace.Stages {
		detailsJSON, err := json.Marshal(st.Details)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal stage details")
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO search_stages (id, search_id, stage, status, details, error, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), run.ID, st.Stage, string(st.Status), string(detailsJSON), st.Error, st.Timestamp,
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert stage")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.SearchRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, session_id, query, criteria, results_count, status, trace, created_at
		 FROM searches WHERE id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.SearchRun, error) {
	query := `SELECT id, user_id, session_id, query, criteria, results_count, status, trace, created_at
		 FROM searches WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.SearchRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) ListStages(ctx context.Context, runID string) ([]model.RunStage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, search_id, stage, status, details, error, timestamp
		 FROM search_stages WHERE search_id = ? ORDER BY timestamp`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list stages")
	}
	defer rows.Close()

	var stages []model.RunStage
	for rows.Next() {
		var st model.RunStage
		var status, detailsJSON string
		var ts time.Time
		if err := rows.Scan(&st.ID, &st.RunID, &st.Stage, &status, &detailsJSON, &st.Error, &ts); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan stage")
		}
		st.Status = model.StageStatus(status)
		st.Timestamp = ts
		if detailsJSON != "" {
			if err := json.Unmarshal([]byte(detailsJSON), &st.Details); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal stage details")
			}
		}
		stages = append(stages, st)
	}
	return stages, eris.Wrap(rows.Err(), "sqlite: list stages iterate")
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.SearchRun, error) {
	var run model.SearchRun
	var sessionID sql.NullString
	var criteriaJSON, traceJSON, status string

	err := row.Scan(&run.ID, &run.UserID, &sessionID, &run.Query, &criteriaJSON,
		&run.ResultsCount, &status, &traceJSON, &run.CreatedAt)
	if err != nil {
		return nil, err
	}

	run.SessionID = sessionID.String
	run.Status = model.RunStatus(status)
	if err := json.Unmarshal([]byte(criteriaJSON), &run.Criteria); err != nil {
		return nil, eris.Wrap(err, "unmarshal criteria")
	}
	if err := json.Unmarshal([]byte(traceJSON), &run.Trace); err != nil {
		return nil, eris.Wrap(err, "unmarshal trace")
	}
	return &run, nil
}
