package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Parkside-Labs/evalgate/internal/config"
	"github.com/Parkside-Labs/evalgate/internal/logger"
	"github.com/Parkside-Labs/evalgate/internal/results"
	"github.com/Parkside-Labs/evalgate/internal/runner"
)

// Common errors returned by the server
var (
	// ErrServerRunning is returned when attempting to start an already running server
	ErrServerRunning = errors.New("server is already running")
)

// Server is the HTTP front-end. It owns the in-memory run map; the process
// registry and everything below it belong to the injected Runner.
type Server struct {
	port       int
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	running    bool

	cfg    *config.Config
	runner *runner.Runner

	runs map[string]*Run
}

// NewServer creates a server on the configured port. The server is
// initialized but not started; use Start to begin listening.
func NewServer(cfg *config.Config, r *runner.Runner) *Server {
	logger.WithField("port", cfg.Server.Port).Debug("Creating new server")

	return &Server{
		port:   cfg.Server.Port,
		cfg:    cfg,
		runner: r,
		runs:   make(map[string]*Run),
	}
}

// Start begins listening for HTTP requests on the configured port.
// The server runs until the provided context is canceled.
// Returns http.ErrServerClosed on graceful shutdown, or any other error if startup fails.
func (s *Server) Start(ctx context.Context) error {
	logger.WithField("port", s.port).Info("Starting HTTP server")

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Warn("Attempted to start already running server")
		return ErrServerRunning
	}
	s.running = true
	s.mu.Unlock()

	addr := fmt.Sprintf("0.0.0.0:%d", s.port)
	if s.port == 0 {
		addr = "localhost:0" // Let OS assign port
	}

	var err error
	s.listener, err = net.Listen("tcp", addr)
	if err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		logger.WithFields(map[string]interface{}{
			"error":   err.Error(),
			"address": addr,
		}).Error("Failed to create listener")
		return fmt.Errorf("failed to listen: %w", err)
	}

	logger.WithField("address", s.listener.Addr().String()).Info("Server listening")

	mux := http.NewServeMux()
	log := logger.GetLogger()
	middleware := logger.HTTPMiddleware(log)

	mux.Handle("/", middleware(http.HandlerFunc(s.indexHandler)))
	mux.Handle("/health", middleware(http.HandlerFunc(s.healthHandler)))
	mux.Handle("/runs", middleware(http.HandlerFunc(s.runsHandler)))
	mux.Handle("/runs/{id}", middleware(http.HandlerFunc(s.runDetailsHandler)))
	mux.Handle("/runs/{id}/cancel", middleware(http.HandlerFunc(s.runCancelHandler)))
	mux.Handle("/preview", middleware(http.HandlerFunc(s.previewHandler)))
	mux.Handle("/reports", middleware(http.HandlerFunc(s.reportsHandler)))
	mux.Handle("/models", middleware(http.HandlerFunc(s.modelsHandler)))

	s.httpServer = &http.Server{Handler: mux}

	// Handle shutdown when context is canceled
	go func() {
		<-ctx.Done()
		logger.Info("Server shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithField("error", err.Error()).Error("Error during server shutdown")
		}
	}()

	err = s.httpServer.Serve(s.listener)

	s.mu.Lock()
	s.running = false
	s.listener = nil
	s.mu.Unlock()

	if err == http.ErrServerClosed {
		logger.Info("Server shut down gracefully")
		return err
	}
	if err != nil {
		logger.WithField("error", err.Error()).Error("Server error")
	}
	return err
}

// Address returns the actual address the server is listening on.
// Returns empty string if the server is not running.
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// storeRun adds a run record to the in-memory map.
func (s *Server) storeRun(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

// getRun fetches a copy of a run record by id. Handlers never hold a bare
// pointer into the map outside the lock; every read and mutation goes
// through the locked accessors below.
func (s *Server) getRun(id string) (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return Run{}, false
	}
	return *run, true
}

// completeRun attaches the summary and marks the record completed. A run
// already marked cancelled stays cancelled: the kill raced the process exit
// and the user's intent wins. Returns a copy safe to marshal.
func (s *Server) completeRun(run *Run, summary *results.Summary) Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.Summary = summary
	if run.Status != StatusCancelled {
		run.Status = StatusCompleted
	}
	run.Updated = time.Now()
	return *run
}

// failRun records the failure status and its redacted message, with the same
// cancelled-wins rule as completeRun. Returns a copy safe to marshal.
func (s *Server) failRun(run *Run, status, message string) Run {
	s.mu.Lock()
	defer s.mu.Unlock()

	run.Error = message
	if run.Status != StatusCancelled {
		run.Status = status
	}
	run.Updated = time.Now()
	return *run
}

// cancelRun transitions a running record to cancelled. The booleans report
// whether the run exists and whether it was still in flight; the status
// check and the transition happen under one lock acquisition.
func (s *Server) cancelRun(id string) (Run, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return Run{}, false, false
	}
	if run.Status != StatusRunning {
		return *run, true, false
	}
	run.Status = StatusCancelled
	run.Updated = time.Now()
	return *run, true, true
}

// respondWithError sends a JSON error response with the specified status code
func (s *Server) respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	response := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Errorf("Failed to encode error response: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// respondWithJSON sends a JSON response with the specified status code
func (s *Server) respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}
