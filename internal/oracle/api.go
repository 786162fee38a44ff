package oracle

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/seanpattencode/invoice-cli/internal/config"
	"github.com/seanpattencode/invoice-cli/internal/doctext"
	"github.com/seanpattencode/invoice-cli/pkg/anthropic"
)

// API extracts over the Anthropic Messages API. The document is read to
// text locally and sent in the user turn; the instruction block is cached
// for an hour since it is identical for every document in a batch.
type API struct {
	client    anthropic.Client
	reader    doctext.Reader
	model     string
	maxTokens int64
	timeout   time.Duration
}

// NewAPI creates an API oracle from config.
func NewAPI(client anthropic.Client, reader doctext.Reader, cfg config.OracleConfig) *API {
	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &API{
		client:    client,
		reader:    reader,
		model:     cfg.Model,
		maxTokens: maxTokens,
		timeout:   timeout,
	}
}

// Name identifies the adapter in logs and run records.
func (a *API) Name() string { return "api" }

// Extract reads the document, sends it under the instructions, and returns
// the reply text. A truncated reply is returned as-is; the normalizer
// decides whether anything usable survived.
func (a *API) Extract(ctx context.Context, documentPath, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.reader.Text(ctx, documentPath)
	if err != nil {
		return "", err
	}

	resp, err := a.client.Complete(ctx, anthropic.CompletionRequest{
		Model:        a.model,
		MaxTokens:    a.maxTokens,
		Instructions: prompt,
		CacheTTL:     "1h",
		Document:     "Invoice document:\n\n" + text,
	})
	if err != nil {
		return "", eris.Wrap(err, "oracle: api extraction")
	}
	resp.Usage.LogCost(a.model, "extract")

	if resp.StopReason == "max_tokens" {
		zap.L().Warn("oracle: reply truncated",
			zap.String("document", documentPath),
			zap.Int64("max_tokens", a.maxTokens))
	}

	return resp.Text, nil
}
