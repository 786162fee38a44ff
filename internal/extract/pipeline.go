package extract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seanpattencode/invoice-cli/internal/docsrc"
	"github.com/seanpattencode/invoice-cli/internal/model"
	"github.com/seanpattencode/invoice-cli/internal/oracle"
	"github.com/seanpattencode/invoice-cli/internal/sink"
	"github.com/seanpattencode/invoice-cli/internal/store"
)

// Options configures a pipeline run.
type Options struct {
	Attempts   int
	InputDir   string
	OutputPath string
}

// Pipeline extracts maintenance events from a set of invoice documents:
// oracle attempts, reconciliation, removal classification, one output row
// per document.
type Pipeline struct {
	oracle oracle.Oracle
	sink   sink.Sink
	store  store.Store
	opts   Options
}

// NewPipeline wires a pipeline. store may be nil to disable run history;
// sink may be nil only when callers use ProcessDocument directly.
func NewPipeline(o oracle.Oracle, s sink.Sink, st store.Store, opts Options) *Pipeline {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	return &Pipeline{oracle: o, sink: s, store: st, opts: opts}
}

// ProcessDocument runs the configured number of oracle attempts against one
// document and reduces them to a result. Attempt failures degrade to null
// records rather than aborting; the document always yields a row.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc docsrc.Document) model.DocumentResult {
	log := zap.L().With(zap.String("document", doc.Name))

	attempts := make([]model.ExtractionAttempt, 0, p.opts.Attempts)
	errCount := 0
	for i := 1; i <= p.opts.Attempts; i++ {
		rec, ok := p.attempt(ctx, log, doc.Path, i)
		if !ok {
			errCount++
		}
		attempts = append(attempts, model.ExtractionAttempt{Index: i, Record: rec})
	}

	res := Reconcile(attempts)
	reason := ClassifyRemoval(res.Final.EventType, res.Final.ComponentDescription)

	return model.DocumentResult{
		ID:          uuid.New().String(),
		Filename:    doc.Name,
		Row:         model.BuildOutputRow(doc.Name, res, reason),
		Attempts:    len(attempts),
		Errors:      errCount,
		Result:      res,
		ProcessedAt: time.Now().UTC(),
	}
}

func (p *Pipeline) attempt(ctx context.Context, log *zap.Logger, path string, index int) (model.ExtractionRecord, bool) {
	raw, err := p.oracle.Extract(ctx, path, ExtractionPrompt)
	if err != nil {
		log.Warn("pipeline: oracle attempt failed",
			zap.Int("attempt", index),
			zap.Error(err))
		return model.ExtractionRecord{}, false
	}

	rec, err := Normalize(raw)
	if err != nil {
		log.Warn("pipeline: unparseable oracle output",
			zap.Int("attempt", index),
			zap.String("raw", rawPrefix(raw)),
			zap.Error(err))
	}
	return rec, true
}

// Run processes documents sequentially, appending one row per document.
// A sink failure aborts the batch; store failures only warn. Cancellation
// stops at a document boundary, leaving every appended row durable.
func (p *Pipeline) Run(ctx context.Context, docs []docsrc.Document) (model.RunStats, error) {
	log := zap.L()

	run := model.Run{
		ID:         uuid.New().String(),
		InputDir:   p.opts.InputDir,
		OutputPath: p.opts.OutputPath,
		Oracle:     p.oracle.Name(),
		Attempts:   p.opts.Attempts,
		Status:     model.RunRunning,
		StartedAt:  time.Now().UTC(),
	}
	if p.store != nil {
		if err := p.store.CreateRun(ctx, run); err != nil {
			log.Warn("pipeline: create run", zap.Error(err))
		}
	}

	var stats model.RunStats
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			p.completeRun(run.ID, model.RunFailed, stats)
			return stats, eris.Wrap(err, "pipeline: interrupted")
		}

		log.Info("pipeline: processing document",
			zap.String("document", doc.Name),
			zap.Int("index", i+1),
			zap.Int("total", len(docs)))

		res := p.ProcessDocument(ctx, doc)
		res.RunID = run.ID

		if err := p.sink.Append(res.Row); err != nil {
			p.completeRun(run.ID, model.RunFailed, stats)
			return stats, eris.Wrapf(err, "pipeline: append row for %s", doc.Name)
		}

		stats.Documents++
		if res.Row.ConflictFlag != "" {
			stats.Conflicts++
		}
		if res.Result.Final.IsEmpty() {
			stats.Empty++
		}
		if res.Errors > 0 && res.Errors == res.Attempts {
			stats.Failed++
		}

		if p.store != nil {
			if err := p.store.SaveDocumentResult(ctx, res); err != nil {
				log.Warn("pipeline: save document result",
					zap.String("document", doc.Name),
					zap.Error(err))
			}
		}

		p.logResult(res)
	}

	p.completeRun(run.ID, model.RunCompleted, stats)

	log.Info("pipeline: run complete",
		zap.Int("documents", stats.Documents),
		zap.Int("conflicts", stats.Conflicts),
		zap.Int("empty", stats.Empty),
		zap.Int("failed", stats.Failed))

	return stats, nil
}

// completeRun writes the final run status on its own context; the batch
// context may already be cancelled when a run ends.
func (p *Pipeline) completeRun(runID string, status model.RunStatus, stats model.RunStats) {
	if p.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.store.CompleteRun(ctx, runID, status, stats); err != nil {
		zap.L().Warn("pipeline: complete run", zap.Error(err))
	}
}

func (p *Pipeline) logResult(res model.DocumentResult) {
	log := zap.L().With(zap.String("document", res.Filename))
	log.Info("pipeline: extracted",
		zap.String("date", res.Row.Date),
		zap.String("tail", res.Row.TailNumber),
		zap.String("event", res.Row.EventType),
		zap.String("component", res.Row.ComponentDescription),
		zap.String("reason", string(res.Row.Reason)))
	if res.Row.ConflictFlag != "" {
		log.Warn("pipeline: attempts disagreed",
			zap.String("details", res.Row.ConflictDetails))
	}
}

// rawPrefix trims oracle output for log lines.
func rawPrefix(s string) string {
	runes := []rune(s)
	if len(runes) <= 50 {
		return s
	}
	return string(runes[:50]) + "..."
}
