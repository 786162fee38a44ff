package oracle

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/seanpattencode/invoice-cli/internal/config"
	"github.com/seanpattencode/invoice-cli/internal/doctext"
	"github.com/seanpattencode/invoice-cli/pkg/anthropic"
)

// Oracle produces one raw extraction reply for a document. An error means
// the invocation itself failed (missing binary, timeout, API refusal); what
// a failed attempt does to the document is the caller's call.
type Oracle interface {
	Extract(ctx context.Context, documentPath, prompt string) (string, error)
	Name() string
}

// New builds the oracle named by oracle.provider.
func New(cfg *config.Config) (Oracle, error) {
	switch cfg.Oracle.Provider {
	case "exec":
		return NewExec(cfg.Oracle), nil
	case "api":
		client := anthropic.NewClient(cfg.Oracle.Key)
		reader := doctext.New(cfg.Input.Encoding, cfg.PdfToText.BinPath)
		return NewAPI(client, reader, cfg.Oracle), nil
	case "script":
		return NewScript(cfg.Oracle.ScriptPath)
	default:
		return nil, eris.Errorf("oracle: unsupported provider: %s", cfg.Oracle.Provider)
	}
}

// Compile-time interface checks.
var (
	_ Oracle = (*Exec)(nil)
	_ Oracle = (*API)(nil)
	_ Oracle = (*Script)(nil)
	_ Oracle = (*Stub)(nil)
)
