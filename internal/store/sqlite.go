package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/seanpattencode/invoice-cli/internal/model"
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
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	input_dir    TEXT NOT NULL,
	output_path  TEXT NOT NULL,
	oracle       TEXT NOT NULL,
	attempts     INTEGER NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	stats        TEXT,
	started_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME
);

CREATE TABLE IF NOT EXISTS document_results (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	filename     TEXT NOT NULL,
	row          TEXT NOT NULL,
	attempts     INTEGER NOT NULL,
	errors       INTEGER NOT NULL DEFAULT 0,
	result       TEXT NOT NULL,
	processed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_document_results_run_id ON document_results(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run model.Run) error {
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stats")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input_dir, output_path, oracle, attempts, status, stats, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputDir, run.OutputPath, run.Oracle, run.Attempts, string(run.Status), string(statsJSON), run.StartedAt,
	)
	return eris.Wrap(err, "sqlite: insert run")
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, stats model.RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal stats")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, stats = ?, completed_at = ? WHERE id = ?`,
		string(status), string(statsJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input_dir, output_path, oracle, attempts, status, stats, started_at, completed_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_dir, output_path, oracle, attempts, status, stats, started_at, completed_at FROM runs
		 ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveDocumentResult(ctx context.Context, res model.DocumentResult) error {
	rowJSON, err := json.Marshal(res.Row)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal row")
	}
	resultJSON, err := json.Marshal(res.Result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO document_results (id, run_id, filename, row, attempts, errors, result, processed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.RunID, res.Filename, string(rowJSON), res.Attempts, res.Errors, string(resultJSON), res.ProcessedAt,
	)
	return eris.Wrapf(err, "sqlite: insert document result for run %s", res.RunID)
}

func (s *SQLiteStore) ListDocumentResults(ctx context.Context, runID string) ([]model.DocumentResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, filename, row, attempts, errors, result, processed_at FROM document_results
		 WHERE run_id = ? ORDER BY processed_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list document results %s", runID)
	}
	defer rows.Close()

	var results []model.DocumentResult
	for rows.Next() {
		r, err := scanDocumentResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: list document results iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var statsJSON sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(&r.ID, &r.InputDir, &r.OutputPath, &r.Oracle, &r.Attempts, &r.Status, &statsJSON, &r.StartedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if statsJSON.Valid && statsJSON.String != "" {
		if err := json.Unmarshal([]byte(statsJSON.String), &r.Stats); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal stats")
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	return &r, nil
}

func scanDocumentResult(row scannable) (*model.DocumentResult, error) {
	var res model.DocumentResult
	var rowJSON, resultJSON string

	err := row.Scan(&res.ID, &res.RunID, &res.Filename, &rowJSON, &res.Attempts, &res.Errors, &resultJSON, &res.ProcessedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("document result not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan document result")
	}

	if err := json.Unmarshal([]byte(rowJSON), &res.Row); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal row")
	}
	if err := json.Unmarshal([]byte(resultJSON), &res.Result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal result")
	}
	return &res, nil
}
