package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seanpattencode/invoice-cli/internal/sink"
)

var (
	exportCSV string
	exportOut string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert a results CSV into an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		csvPath := cfg.Output.CSVPath
		if exportCSV != "" {
			csvPath = exportCSV
		}
		out := exportOut
		if out == "" {
			out = strings.TrimSuffix(csvPath, ".csv") + ".xlsx"
		}

		if err := sink.ExportXLSX(csvPath, out); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("csv", csvPath),
			zap.String("xlsx", out))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportCSV, "csv", "", "results CSV to convert (default from config)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "XLSX path (default: CSV path with .xlsx extension)")
	rootCmd.AddCommand(exportCmd)
}
