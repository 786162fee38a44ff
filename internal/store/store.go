package store

import (
	"context"

	"github.com/seanpattencode/invoice-cli/internal/model"
)

// Store records run history. It is auxiliary to the CSV output: callers
// treat write failures as warnings, so the batch never dies on a bad
// database.
type Store interface {
	CreateRun(ctx context.Context, run model.Run) error
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, stats model.RunStats) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	SaveDocumentResult(ctx context.Context, res model.DocumentResult) error
	ListDocumentResults(ctx context.Context, runID string) ([]model.DocumentResult, error)

	Migrate(ctx context.Context) error
	Close() error
}
