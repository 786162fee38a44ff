package oracle

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/seanpattencode/invoice-cli/internal/config"
)

// Exec drives an LLM CLI that accepts a file argument and reads its
// instructions from stdin. Each call gets its own timeout so a hung
// invocation cannot stall the rest of the batch.
type Exec struct {
	binPath string
	timeout time.Duration
}

// NewExec creates an Exec oracle from config. Empty bin path falls back to
// "claude", non-positive timeout to 30s.
func NewExec(cfg config.OracleConfig) *Exec {
	bin := cfg.BinPath
	if bin == "" {
		bin = "claude"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Exec{binPath: bin, timeout: timeout}
}

// Name identifies the adapter in logs and run records.
func (e *Exec) Name() string { return "exec" }

// Extract runs the CLI against the document and returns its stdout. The
// prompt is staged through a temp file and streamed on stdin so it never
// touches argv.
func (e *Exec) Extract(ctx context.Context, documentPath, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	promptFile, err := os.CreateTemp("", "invoice-prompt-*.txt")
	if err != nil {
		return "", eris.Wrap(err, "oracle: create prompt file")
	}
	defer os.Remove(promptFile.Name())
	defer promptFile.Close()

	if _, err := promptFile.WriteString(prompt); err != nil {
		return "", eris.Wrap(err, "oracle: write prompt file")
	}
	if _, err := promptFile.Seek(0, io.SeekStart); err != nil {
		return "", eris.Wrap(err, "oracle: rewind prompt file")
	}

	cmd := exec.CommandContext(ctx, e.binPath, "--dangerously-skip-permissions", documentPath)
	cmd.Stdin = promptFile

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", eris.Wrapf(err, "oracle: %s failed for %s: %s",
			e.binPath, documentPath, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}
