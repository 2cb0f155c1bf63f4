// Package http exposes finished traversal runs over a small read-only JSON
// API, plus Prometheus metrics.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/molonc/treealign/pkg/domain"
	"github.com/molonc/treealign/pkg/ports"
)

// Server serves stored traversal results.
type Server struct {
	store  ports.ResultStore
	logger *slog.Logger
}

// NewHandler creates the HTTP handler over a result store.
func NewHandler(store ports.ResultStore, logger *slog.Logger) http.Handler {
	s := &Server{store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/runs", s.listRuns)
	r.Get("/runs/{runID}", s.getRun)
	r.Get("/runs/{runID}/assignments", s.getAssignments)
	r.Delete("/runs/{runID}", s.deleteRun)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.List(r.Context())
	if err != nil {
		s.serverError(w, "list runs", err)
		return
	}
	s.writeJSON(w, map[string][]string{"runs": runs})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	result, ok := s.loadRun(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, result)
}

// getAssignments renders the clone assignment table as CSV, the shape
// downstream analysis notebooks ingest.
func (s *Server) getAssignments(w http.ResponseWriter, r *http.Request) {
	result, ok := s.loadRun(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	fmt.Fprintln(w, "cell_id,clone_id")
	for _, cell := range sortedKeys(result.CloneAssign) {
		fmt.Fprintf(w, "%s,%s\n", cell, result.CloneAssign[cell])
	}
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if err := s.store.Delete(r.Context(), runID); err != nil {
		s.serverError(w, "delete run", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) loadRun(w http.ResponseWriter, r *http.Request) (*domain.Result, bool) {
	runID := chi.URLParam(r, "runID")
	result, err := s.store.Load(r.Context(), runID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			http.Error(w, "run not found", http.StatusNotFound)
			return nil, false
		}
		s.serverError(w, "load run", err)
		return nil, false
	}
	return result, true
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
