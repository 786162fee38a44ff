package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seanpattencode/invoice-cli/internal/docsrc"
	"github.com/seanpattencode/invoice-cli/internal/extract"
	"github.com/seanpattencode/invoice-cli/internal/model"
	"github.com/seanpattencode/invoice-cli/internal/oracle"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve single-document extraction over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		o, err := oracle.New(cfg)
		if err != nil {
			return err
		}

		// Responses go to the caller; nothing is appended or recorded.
		p := extract.NewPipeline(o, nil, nil, extract.Options{Attempts: 1})

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(p),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "serve: listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

// newRouter builds the HTTP surface: a health probe and a synchronous
// single-document extraction endpoint.
func newRouter(p *extract.Pipeline) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", handleHealth)
	r.Post("/extract", handleExtract(p))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extractResponse mirrors the row the batch pipeline would emit, minus the
// conflict columns; a single attempt cannot conflict.
type extractResponse struct {
	Filename string                 `json:"filename"`
	Record   model.ExtractionRecord `json:"record"`
	Reason   model.RemovalReason    `json:"reason"`
}

func handleExtract(p *extract.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Document string `json:"document"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Document == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document is required"})
			return
		}

		doc := docsrc.Document{Name: filepath.Base(req.Document), Path: req.Document}
		res := p.ProcessDocument(r.Context(), doc)
		if res.Errors == res.Attempts {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "oracle invocation failed"})
			return
		}

		writeJSON(w, http.StatusOK, extractResponse{
			Filename: res.Filename,
			Record:   res.Result.Final,
			Reason:   res.Row.Reason,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("serve: write response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
