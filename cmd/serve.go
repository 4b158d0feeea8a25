package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-cli/internal/model"
	"github.com/sells-group/geo-cli/internal/orchestrator"
	"github.com/sells-group/geo-cli/internal/store"
)

var servePort int

// runner is the slice of the orchestrator the HTTP handlers need.
type runner interface {
	Execute(ctx context.Context, req model.AnalysisRequest) (*model.Result, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(buildOrchestrator(), st),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background()) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(o runner, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", handleAnalyze(o, st))
		r.Post("/compare", handleCompare(o, st))
		r.Get("/runs", handleListRuns(st))
		r.Get("/runs/search", handleSearchRuns(st))
		r.Get("/runs/{id}", handleGetRun(st))
	})

	return r
}

func handleAnalyze(o runner, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		runAnalysis(w, r, o, st, req)
	}
}

func handleCompare(o runner, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query   string   `json:"query"`
			Domains []string `json:"domains"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if len(req.Domains) < 2 {
			writeError(w, http.StatusBadRequest, "at least two domains are required")
			return
		}
		runAnalysis(w, r, o, st, model.AnalysisRequest{
			Query:       req.Query,
			BrandDomain: req.Domains[0],
			Competitors: req.Domains[1:],
		})
	}
}

func runAnalysis(w http.ResponseWriter, r *http.Request, o runner, st store.Store, req model.AnalysisRequest) {
	result, err := o.Execute(r.Context(), req)
	if err != nil {
		if errors.Is(err, orchestrator.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		zap.L().Error("analysis failed", zap.String("query", req.Query), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	go saveHistory(st, result)
	writeJSON(w, http.StatusOK, result)
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		summaries, err := st.ListRecent(r.Context(), r.URL.Query().Get("brand"), limit)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}
		if summaries == nil {
			summaries = []store.RunSummary{}
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

func handleSearchRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			writeError(w, http.StatusBadRequest, "q is required")
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		hits, err := st.Search(r.Context(), q, limit)
		if err != nil {
			zap.L().Error("search runs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "search runs failed")
			return
		}
		if hits == nil {
			hits = []store.SearchHit{}
		}
		writeJSON(w, http.StatusOK, hits)
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		result, err := st.GetResult(r.Context(), id)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				writeError(w, http.StatusNotFound, "run not found")
				return
			}
			zap.L().Error("get run failed", zap.String("run_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "get run failed")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
