package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seanpattencode/invoice-cli/internal/model"
	"github.com/seanpattencode/invoice-cli/internal/review"
	"github.com/seanpattencode/invoice-cli/pkg/notion"
)

var (
	reviewCSV    string
	reviewDryRun bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Push conflicted rows to the Notion review database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		csvPath := cfg.Output.CSVPath
		if reviewCSV != "" {
			csvPath = reviewCSV
		}

		rows, err := review.LoadConflicts(csvPath)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			zap.L().Info("no conflicts to review", zap.String("csv", csvPath))
			return nil
		}

		if reviewDryRun {
			formatConflicts(os.Stdout, rows)
			return nil
		}

		if err := cfg.Validate("review"); err != nil {
			return err
		}

		client := notion.NewClient(cfg.Notion.Token)
		created, err := review.NewPusher(client, cfg.Notion.ReviewDB).Push(ctx, rows)
		if err != nil {
			return err
		}

		zap.L().Info("review push complete",
			zap.Int("conflicts", len(rows)),
			zap.Int("created", created))
		return nil
	},
}

// formatConflicts writes a tabular list of conflicted rows to w.
func formatConflicts(out io.Writer, rows []model.OutputRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FILENAME\tDATE\tTAIL\tEVENT\tDETAILS")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.Filename, r.Date, r.TailNumber, r.EventType, r.ConflictDetails)
	}
	_ = w.Flush()
}

func init() {
	reviewCmd.Flags().StringVar(&reviewCSV, "csv", "", "results CSV to scan (default from config)")
	reviewCmd.Flags().BoolVar(&reviewDryRun, "dry-run", false, "print candidate rows instead of pushing")
	rootCmd.AddCommand(reviewCmd)
}
