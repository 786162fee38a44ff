package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seanpattencode/invoice-cli/internal/docsrc"
	"github.com/seanpattencode/invoice-cli/internal/extract"
	"github.com/seanpattencode/invoice-cli/internal/model"
	"github.com/seanpattencode/invoice-cli/internal/oracle"
	"github.com/seanpattencode/invoice-cli/internal/sink"
	"github.com/seanpattencode/invoice-cli/internal/store"
)

var (
	runDir      string
	runAttempts int
	runOutput   string
	runLimit    int
	runOffline  bool
	runNoStore  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract maintenance events from every invoice in a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if !runOffline {
			if err := cfg.Validate("run"); err != nil {
				return err
			}
		}

		dir := cfg.Input.Dir
		if runDir != "" {
			dir = runDir
		}
		attempts := cfg.Oracle.Attempts
		if runAttempts > 0 {
			attempts = runAttempts
		}
		output := cfg.Output.CSVPath
		if runOutput != "" {
			output = runOutput
		}

		docs, err := docsrc.List(dir, cfg.Input.Extensions)
		if err != nil {
			return err
		}
		if runLimit > 0 && len(docs) > runLimit {
			docs = docs[:runLimit]
		}
		if len(docs) == 0 {
			zap.L().Info("no documents found", zap.String("dir", dir))
			return nil
		}

		var o oracle.Oracle
		if runOffline {
			o = oracle.NewStub()
		} else {
			o, err = oracle.New(cfg)
			if err != nil {
				return err
			}
		}

		var st store.Store
		if !runNoStore {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return eris.Wrap(err, "migrate store")
			}
		}

		cs, err := sink.NewCSV(output, model.OutputHeaders())
		if err != nil {
			return err
		}
		defer func() {
			if err := cs.Close(); err != nil {
				zap.L().Warn("close sink", zap.Error(err))
			}
		}()

		zap.L().Info("starting run",
			zap.String("dir", dir),
			zap.Int("documents", len(docs)),
			zap.String("oracle", o.Name()),
			zap.Int("attempts", attempts),
			zap.String("output", output))

		p := extract.NewPipeline(o, cs, st, extract.Options{
			Attempts:   attempts,
			InputDir:   dir,
			OutputPath: output,
		})

		if _, err := p.Run(ctx, docs); err != nil {
			return err
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runDir, "dir", "", "invoice directory (default from config)")
	runCmd.Flags().IntVar(&runAttempts, "attempts", 0, "oracle attempts per document (default from config)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "results CSV path (default from config)")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "max number of documents to process")
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "use the stub oracle (no binary, key, or network needed)")
	runCmd.Flags().BoolVar(&runNoStore, "no-store", false, "skip run-history recording")
	rootCmd.AddCommand(runCmd)
}
