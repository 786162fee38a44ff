package extract

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/seanpattencode/invoice-cli/internal/model"
	"github.com/seanpattencode/invoice-cli/internal/oracle"
	"github.com/seanpattencode/invoice-cli/internal/sink"
	"github.com/seanpattencode/invoice-cli/internal/store"
)

// --- Oracle Mock ---

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) Extract(ctx context.Context, documentPath, prompt string) (string, error) {
	args := m.Called(ctx, documentPath, prompt)
	return args.String(0), args.Error(1)
}

func (m *mockOracle) Name() string { return "mock" }

// --- Sink Mock ---

type mockSink struct {
	mock.Mock
	rows []model.OutputRow
}

func (m *mockSink) Append(row model.OutputRow) error {
	args := m.Called(row)
	if args.Error(0) == nil {
		m.rows = append(m.rows, row)
	}
	return args.Error(0)
}

func (m *mockSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateRun(ctx context.Context, run model.Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, stats model.RunStats) error {
	args := m.Called(ctx, runID, status, stats)
	return args.Error(0)
}

func (m *mockStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Run), args.Error(1)
}

func (m *mockStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Run), args.Error(1)
}

func (m *mockStore) SaveDocumentResult(ctx context.Context, res model.DocumentResult) error {
	args := m.Called(ctx, res)
	return args.Error(0)
}

func (m *mockStore) ListDocumentResults(ctx context.Context, runID string) ([]model.DocumentResult, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentResult), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Ensure interface compliance ---
var (
	_ oracle.Oracle = (*mockOracle)(nil)
	_ sink.Sink     = (*mockSink)(nil)
	_ store.Store   = (*mockStore)(nil)
)
