package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seanpattencode/invoice-cli/internal/docsrc"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Mirror new invoices from the FTP drop into the input directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("fetch"); err != nil {
			return err
		}

		src := docsrc.NewFTPSource(docsrc.FTPOptions{
			Timeout: time.Duration(cfg.Input.FTPTimeoutSecs) * time.Second,
		})

		names, err := src.Mirror(ctx, cfg.Input.FTPURL, cfg.Input.Dir, cfg.Input.Extensions)
		if err != nil {
			return err
		}

		zap.L().Info("fetch complete",
			zap.Int("downloaded", len(names)),
			zap.String("dir", cfg.Input.Dir))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
