package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seanpattencode/invoice-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testRun() model.Run {
	return model.Run{
		ID:         uuid.New().String(),
		InputDir:   "invoices",
		OutputPath: "invoice_analysis.csv",
		Oracle:     "exec",
		Attempts:   3,
		Status:     model.RunRunning,
		StartedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run := testRun()
	require.NoError(t, s.CreateRun(ctx, run))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "invoices", got.InputDir)
	assert.Equal(t, model.RunRunning, got.Status)
	assert.Nil(t, got.CompletedAt)

	stats := model.RunStats{Documents: 12, Conflicts: 2, Empty: 1}
	require.NoError(t, s.CompleteRun(ctx, run.ID, model.RunCompleted, stats))

	got, err = s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, got.Status)
	assert.Equal(t, stats, got.Stats)
	require.NotNil(t, got.CompletedAt)
}

func TestSQLiteStore_CompleteRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	err := s.CompleteRun(context.Background(), "no-such-run", model.RunCompleted, model.RunStats{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetRun(context.Background(), "no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		run := testRun()
		run.StartedAt = base.Add(time.Duration(i) * time.Minute)
		run.InputDir = []string{"first", "second", "third"}[i]
		require.NoError(t, s.CreateRun(ctx, run))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "third", runs[0].InputDir)
	assert.Equal(t, "second", runs[1].InputDir)
}

func TestSQLiteStore_DocumentResults(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run := testRun()
	require.NoError(t, s.CreateRun(ctx, run))

	res := model.DocumentResult{
		ID:       uuid.New().String(),
		RunID:    run.ID,
		Filename: "N433SP-annual.pdf",
		Row: model.OutputRow{
			Filename:   "N433SP-annual.pdf",
			Date:       "03/15/24",
			TailNumber: "N433SP",
			EventType:  "ANNUAL",
			Reason:     model.RemovalScheduled,
		},
		Attempts: 3,
		Errors:   1,
		Result: model.ReconciliationResult{
			Final:       model.ExtractionRecord{Date: "03/15/24", TailNumber: "N433SP", EventType: "ANNUAL"},
			HasConflict: true,
			Conflicts:   map[string][]string{"date": {"03/15/24", "03/16/24"}},
		},
		ProcessedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.SaveDocumentResult(ctx, res))

	results, err := s.ListDocumentResults(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, res.Filename, results[0].Filename)
	assert.Equal(t, res.Row, results[0].Row)
	assert.Equal(t, 1, results[0].Errors)
	assert.True(t, results[0].Result.HasConflict)
	assert.Equal(t, []string{"03/15/24", "03/16/24"}, results[0].Result.Conflicts["date"])
}

func TestSQLiteStore_ListDocumentResults_Empty(t *testing.T) {
	s := newTestSQLite(t)

	results, err := s.ListDocumentResults(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, results)
}
