package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seanpattencode/invoice-cli/internal/doctext"
	"github.com/seanpattencode/invoice-cli/internal/extract"
	"github.com/seanpattencode/invoice-cli/internal/model"
	"github.com/seanpattencode/invoice-cli/internal/oracle"
	"github.com/seanpattencode/invoice-cli/internal/sink"
)

// previewLimit caps how much of the document the diagnostic shows.
const previewLimit = 500

var debugOutput string

// debugResult is the single-document diagnostic printed to stdout.
type debugResult struct {
	Filename string                 `json:"filename"`
	Preview  string                 `json:"preview,omitempty"`
	Raw      string                 `json:"raw"`
	Record   model.ExtractionRecord `json:"record"`
	Reason   model.RemovalReason    `json:"reason"`
}

var debugCmd = &cobra.Command{
	Use:   "debug <file>",
	Short: "Run a single extraction attempt against one invoice",
	Long:  "Prints the document preview, the raw oracle output, and the normalized fields for one invoice, and writes a six-column diagnostic CSV. Always a single attempt, so conflict columns are absent.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		if err := cfg.Validate("debug"); err != nil {
			return err
		}

		o, err := oracle.New(cfg)
		if err != nil {
			return err
		}

		res := debugResult{Filename: filepath.Base(path)}

		if strings.EqualFold(filepath.Ext(path), ".txt") {
			preview, err := doctext.NewPlainText(cfg.Input.Encoding).Preview(ctx, path, previewLimit)
			if err != nil {
				zap.L().Warn("debug: preview failed", zap.Error(err))
			} else {
				res.Preview = preview
			}
		}

		raw, err := o.Extract(ctx, path, extract.ExtractionPrompt)
		if err != nil {
			return eris.Wrap(err, "debug: oracle extraction")
		}
		res.Raw = raw

		rec, err := extract.Normalize(raw)
		if err != nil {
			zap.L().Warn("debug: unparseable oracle output", zap.Error(err))
		}
		res.Record = rec
		res.Reason = extract.ClassifyRemoval(rec.EventType, rec.ComponentDescription)

		output := cfg.Output.DebugCSVPath
		if debugOutput != "" {
			output = debugOutput
		}
		row := model.BuildOutputRow(res.Filename, model.ReconciliationResult{Final: rec}, res.Reason)
		if err := writeDebugCSV(output, row); err != nil {
			return err
		}
		zap.L().Info("debug: wrote diagnostic row", zap.String("output", output))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

// writeDebugCSV writes one six-column diagnostic row.
func writeDebugCSV(path string, row model.OutputRow) error {
	cs, err := sink.NewCSV(path, model.DebugHeaders())
	if err != nil {
		return err
	}
	if err := cs.Append(row); err != nil {
		_ = cs.Close()
		return err
	}
	return cs.Close()
}

func init() {
	debugCmd.Flags().StringVar(&debugOutput, "output", "", "diagnostic CSV path (default from config)")
	rootCmd.AddCommand(debugCmd)
}
