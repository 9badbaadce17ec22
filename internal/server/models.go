// Package server implements the HTTP front-end for evalgate: a form page,
// a JSON API for submitting and tracking evaluation runs, and read-only
// views over the engine's reports.
package server

import (
	"time"

	"github.com/Parkside-Labs/evalgate/internal/engine"
	"github.com/Parkside-Labs/evalgate/internal/results"
)

// Status constants for Run
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusTimedOut  = "timed_out"
)

// Run is the server's record of one submitted evaluation, kept in the
// in-memory run map for the life of the serving process.
type Run struct {
	ID      string           `json:"id"`
	RunType string           `json:"run_type"`
	Args    []string         `json:"args"`
	Status  string           `json:"status"`
	Created time.Time        `json:"created"`
	Updated time.Time        `json:"updated"`
	Summary *results.Summary `json:"summary,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// newRun builds a running record for a freshly admitted spec.
func newRun(id string, spec engine.RunSpec, opts engine.Options) *Run {
	now := time.Now()
	return &Run{
		ID:      id,
		RunType: string(spec.Type()),
		Args:    engine.BuildArgs(spec, opts),
		Status:  StatusRunning,
		Created: now,
		Updated: now,
	}
}
