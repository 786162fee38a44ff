package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/seanpattencode/invoice-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock implements it,
// which is how the unit tests run without a server.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":      `INSERT INTO runs (id, input_dir, output_path, oracle, attempts, status, stats, started_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"complete_run":    `UPDATE runs SET status = $1, stats = $2, completed_at = $3 WHERE id = $4`,
	"get_run":         `SELECT id, input_dir, output_path, oracle, attempts, status, stats, started_at, completed_at FROM runs WHERE id = $1`,
	"insert_document": `INSERT INTO document_results (id, run_id, filename, row, attempts, errors, result, processed_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
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

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	input_dir    TEXT NOT NULL,
	output_path  TEXT NOT NULL,
	oracle       TEXT NOT NULL,
	attempts     INTEGER NOT NULL,
	status       TEXT NOT NULL DEFAULT 'running',
	stats        JSONB,
	started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS document_results (
	id           TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL REFERENCES runs(id),
	filename     TEXT NOT NULL,
	row          JSONB NOT NULL,
	attempts     INTEGER NOT NULL,
	errors       INTEGER NOT NULL DEFAULT 0,
	result       JSONB NOT NULL,
	processed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_document_results_run_id ON document_results(run_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run model.Run) error {
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stats")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, input_dir, output_path, oracle, attempts, status, stats, started_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.InputDir, run.OutputPath, run.Oracle, run.Attempts, string(run.Status), statsJSON, run.StartedAt,
	)
	return eris.Wrap(err, "postgres: insert run")
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, stats model.RunStats) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal stats")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, stats = $2, completed_at = $3 WHERE id = $4`,
		string(status), statsJSON, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, input_dir, output_path, oracle, attempts, status, stats, started_at, completed_at FROM runs WHERE id = $1`,
		runID,
	)
	r, err := scanPostgresRun(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, input_dir, output_path, oracle, attempts, status, stats, started_at, completed_at FROM runs
		 ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPostgresRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) SaveDocumentResult(ctx context.Context, res model.DocumentResult) error {
	rowJSON, err := json.Marshal(res.Row)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal row")
	}
	resultJSON, err := json.Marshal(res.Result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO document_results (id, run_id, filename, row, attempts, errors, result, processed_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		res.ID, res.RunID, res.Filename, rowJSON, res.Attempts, res.Errors, resultJSON, res.ProcessedAt,
	)
	return eris.Wrapf(err, "postgres: insert document result for run %s", res.RunID)
}

func (s *PostgresStore) ListDocumentResults(ctx context.Context, runID string) ([]model.DocumentResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, run_id, filename, row, attempts, errors, result, processed_at FROM document_results
		 WHERE run_id = $1 ORDER BY processed_at`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list document results %s", runID)
	}
	defer rows.Close()

	var results []model.DocumentResult
	for rows.Next() {
		var res model.DocumentResult
		var rowJSON, resultJSON []byte

		if err := rows.Scan(&res.ID, &res.RunID, &res.Filename, &rowJSON, &res.Attempts, &res.Errors, &resultJSON, &res.ProcessedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document result")
		}
		if err := json.Unmarshal(rowJSON, &res.Row); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal row")
		}
		if err := json.Unmarshal(resultJSON, &res.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
		results = append(results, res)
	}
	return results, eris.Wrap(rows.Err(), "postgres: list document results iterate")
}

func scanPostgresRun(row pgx.Row) (*model.Run, error) {
	var r model.Run
	var statsJSON []byte
	var completedAt *time.Time

	err := row.Scan(&r.ID, &r.InputDir, &r.OutputPath, &r.Oracle, &r.Attempts, &r.Status, &statsJSON, &r.StartedAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.New("run not found")
		}
		return nil, eris.Wrap(err, "scan run")
	}

	if len(statsJSON) > 0 {
		if err := json.Unmarshal(statsJSON, &r.Stats); err != nil {
			return nil, eris.Wrap(err, "unmarshal stats")
		}
	}
	r.CompletedAt = completedAt
	return &r, nil
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
