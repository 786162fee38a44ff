package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanpattencode/invoice-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	run := testRun()
	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(run.ID, run.InputDir, run.OutputPath, run.Oracle, run.Attempts,
			string(run.Status), pgxmock.AnyArg(), run.StartedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.CreateRun(context.Background(), run))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("completed", pgxmock.AnyArg(), pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", model.RunCompleted, model.RunStats{Documents: 4})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("completed", pgxmock.AnyArg(), pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "ghost", model.RunCompleted, model.RunStats{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	started := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "input_dir", "output_path", "oracle", "attempts", "status", "stats", "started_at", "completed_at",
	}).AddRow(
		"run-1", "invoices", "out.csv", "exec", 3, model.RunCompleted,
		[]byte(`{"documents":7,"conflicts":1,"empty":0,"failed":0}`), started, nil,
	)

	mock.ExpectQuery(`SELECT id, input_dir, output_path, oracle, attempts, status, stats, started_at, completed_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(rows)

	got, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, model.RunCompleted, got.Status)
	assert.Equal(t, 7, got.Stats.Documents)
	assert.Nil(t, got.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, input_dir, output_path, oracle, attempts, status, stats, started_at, completed_at FROM runs WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveDocumentResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	res := model.DocumentResult{
		ID:          "doc-1",
		RunID:       "run-1",
		Filename:    "inv.pdf",
		Row:         model.OutputRow{Filename: "inv.pdf", Reason: model.RemovalFailure},
		Attempts:    1,
		Errors:      1,
		Result:      model.ReconciliationResult{},
		ProcessedAt: time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO document_results`).
		WithArgs("doc-1", "run-1", "inv.pdf", pgxmock.AnyArg(), 1, 1, pgxmock.AnyArg(), res.ProcessedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveDocumentResult(context.Background(), res))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	started := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "input_dir", "output_path", "oracle", "attempts", "status", "stats", "started_at", "completed_at",
	}).
		AddRow("run-2", "invoices", "out.csv", "api", 1, model.RunRunning, []byte(nil), started, nil).
		AddRow("run-1", "invoices", "out.csv", "exec", 3, model.RunCompleted, []byte(`{"documents":2}`), started.Add(-time.Hour), &started)

	mock.ExpectQuery(`SELECT .+ FROM runs`).
		WithArgs(20).
		WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 2, runs[1].Stats.Documents)
	require.NotNil(t, runs[1].CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListDocumentResults(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	processed := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "run_id", "filename", "row", "attempts", "errors", "result", "processed_at",
	}).AddRow(
		"doc-1", "run-1", "inv.pdf",
		[]byte(`{"filename":"inv.pdf","date":"03/15/24","tail_number":"N433SP","event_type":"ANNUAL","component_description":"","reason":"Scheduled"}`),
		3, 0,
		[]byte(`{"final":{"date":"03/15/24","tail_number":"N433SP","event_type":"ANNUAL","component_description":""},"has_conflict":false}`),
		processed,
	)

	mock.ExpectQuery(`SELECT .+ FROM document_results`).
		WithArgs("run-1").
		WillReturnRows(rows)

	results, err := s.ListDocumentResults(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "inv.pdf", results[0].Filename)
	assert.Equal(t, "N433SP", results[0].Row.TailNumber)
	assert.Equal(t, model.RemovalScheduled, results[0].Row.Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}
