// Package httpapi exposes the simulation pipeline over HTTP. It is a thin
// boundary: decode, delegate, encode; all semantics live in the
// simulation package.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/joelkehle/envsim/internal/simulation"
)

// Simulator is the pipeline surface the server needs.
type Simulator interface {
	Simulate(ctx context.Context, prompt string, source simulation.EntitySource) (simulation.SimulationResult, error)
	Explain(ctx context.Context, result simulation.SimulationResult) map[string]string
}

type Server struct {
	sim    Simulator
	source simulation.EntitySource
}

func NewServer(sim Simulator, source simulation.EntitySource) http.Handler {
	s := &Server{sim: sim, source: source}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/simulate", s.handleSimulate)
	mux.HandleFunc("/api/insights", s.handleInsights)
	return withCORS(mux)
}

// withCORS allows any origin. The service fronts a public demo frontend;
// nothing here is authenticated or stateful.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Environmental Data Simulation API",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "data-simulation-api",
	})
}

type simulateRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, simulation.KindInvalidPrompt, "Request body must be JSON with a prompt field.")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, simulation.KindInvalidPrompt, "Prompt cannot be empty.")
		return
	}

	result, err := s.sim.Simulate(r.Context(), req.Prompt, s.source)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": result})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	var result simulation.SimulationResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		writeError(w, http.StatusBadRequest, simulation.KindDataFormat, "Request body must be a simulation result JSON.")
		return
	}
	if len(result.DataPoints) == 0 {
		writeError(w, http.StatusBadRequest, simulation.KindDataFormat, "Simulation result has no data points.")
		return
	}
	insights := s.sim.Explain(r.Context(), result)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "insights": insights})
}

func writePipelineError(w http.ResponseWriter, err error) {
	var pe *simulation.Error
	if errors.As(err, &pe) {
		writeJSON(w, statusForKind(pe.Kind), pe)
		return
	}
	writeError(w, http.StatusInternalServerError, simulation.KindGenerationService, err.Error())
}

func statusForKind(kind simulation.Kind) int {
	switch kind {
	case simulation.KindInvalidPrompt, simulation.KindInvalidSpecification:
		return http.StatusUnprocessableEntity
	case simulation.KindDataFormat:
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, status int, kind simulation.Kind, message string) {
	writeJSON(w, status, map[string]any{
		"error":       kind,
		"message":     message,
		"suggestions": []string{},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}
