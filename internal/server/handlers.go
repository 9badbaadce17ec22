package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/Parkside-Labs/evalgate/internal/engine"
	"github.com/Parkside-Labs/evalgate/internal/logger"
	"github.com/Parkside-Labs/evalgate/internal/redact"
)

const contentTypeJSON = "application/json"

// healthHandler responds to health check requests
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	s.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "evalgate",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// runsHandler lists runs (GET) or submits a new evaluation run (POST).
// A POST blocks until the spawned engine process exits, then answers with
// the final run record; other requests are served concurrently meanwhile.
func (s *Server) runsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		runs := make([]Run, 0, len(s.runs))
		for _, run := range s.runs {
			runs = append(runs, *run)
		}
		s.mu.Unlock()
		s.respondWithJSON(w, http.StatusOK, runs)

	case http.MethodPost:
		s.handleRunSubmit(w, r)

	default:
		s.respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) handleRunSubmit(w http.ResponseWriter, r *http.Request) {
	form, ok := s.decodeForm(w, r)
	if !ok {
		return
	}

	spec, opts, err := form.Validate(s.knownModels())
	if err != nil {
		s.respondValidation(w, err)
		return
	}

	run := newRun(uuid.NewString(), spec, opts)
	s.storeRun(run)

	summary, err := s.runner.Run(r.Context(), run.ID, spec, opts)
	if err != nil {
		record := s.failRun(run, recordStatusFor(err), redact.Error(err))
		s.respondWithJSON(w, statusForRunError(err), record)
		return
	}

	s.respondWithJSON(w, http.StatusOK, s.completeRun(run, summary))
}

// runDetailsHandler returns details for a specific run
func (s *Server) runDetailsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	run, ok := s.getRun(r.PathValue("id"))
	if !ok {
		s.respondWithError(w, http.StatusNotFound, "Run not found")
		return
	}
	s.respondWithJSON(w, http.StatusOK, run)
}

// runCancelHandler cancels an in-flight run
func (s *Server) runCancelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := r.PathValue("id")
	run, found, wasRunning := s.cancelRun(id)
	if !found {
		s.respondWithError(w, http.StatusNotFound, "Run not found")
		return
	}
	if !wasRunning {
		s.respondWithError(w, http.StatusConflict, "Run is not in flight")
		return
	}

	if !s.runner.Cancel(id) {
		logger.WithField("run_id", id).Warn("Cancel requested for run no longer tracked")
	}
	s.respondWithJSON(w, http.StatusOK, run)
}

// previewHandler estimates what a prospective run would do without
// executing any model calls.
func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	form, ok := s.decodeForm(w, r)
	if !ok {
		return
	}

	spec, opts, err := form.Validate(s.knownModels())
	if err != nil {
		s.respondValidation(w, err)
		return
	}

	estimate, err := s.runner.Preview(r.Context(), spec, opts)
	if err != nil {
		s.respondWithError(w, statusForRunError(err), redact.Error(err))
		return
	}
	s.respondWithJSON(w, http.StatusOK, estimate)
}

// reportsHandler lists recent HTML reports, newest first.
func (s *Server) reportsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	reports, err := s.runner.Reports(limit)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, redact.Error(err))
		return
	}
	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// modelsHandler exposes the engine's configured model list.
func (s *Server) modelsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	models, err := s.runner.Models()
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, redact.Error(err))
		return
	}
	s.respondWithJSON(w, http.StatusOK, map[string]interface{}{"models": models})
}

// decodeForm reads a RunForm from the request body, answering 400 itself
// when the payload is not JSON.
func (s *Server) decodeForm(w http.ResponseWriter, r *http.Request) (engine.RunForm, bool) {
	var form engine.RunForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		logger.Infof("Invalid JSON payload: %v", err)
		s.respondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return form, false
	}
	return form, true
}

// respondValidation answers a rejected form with field-level messages.
func (s *Server) respondValidation(w http.ResponseWriter, err error) {
	if ve, ok := engine.AsValidation(err); ok {
		s.respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "invalid run configuration",
			"fields": ve.Fields,
		})
		return
	}
	s.respondWithError(w, http.StatusBadRequest, redact.Error(err))
}

// knownModels fetches the configured model list for validation. Best
// effort: when the engine config cannot be read, validation falls back to
// presence checks and the submit path surfaces the config error later.
func (s *Server) knownModels() []string {
	models, err := s.runner.Models()
	if err != nil {
		logger.WithField("error", redact.Error(err)).Debug("Engine config unavailable for validation")
		return nil
	}
	return models
}

// statusForRunError maps the error taxonomy onto HTTP status codes.
func statusForRunError(err error) int {
	switch {
	case errors.Is(err, engine.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrCapacity):
		return http.StatusTooManyRequests
	case errors.Is(err, engine.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, engine.ErrProcess), errors.Is(err, engine.ErrSpawn):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// recordStatusFor maps a run error to the record status stored in the run map.
func recordStatusFor(err error) string {
	if errors.Is(err, engine.ErrTimeout) {
		return StatusTimedOut
	}
	return StatusFailed
}
