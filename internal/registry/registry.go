// Package registry tracks in-flight evaluation processes. It enforces the
// concurrency cap, arms a per-run timeout that force-kills the process, and
// keeps the tracked set in lockstep with the processes believed to still be
// running.
package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/Parkside-Labs/evalgate/internal/engine"
	"github.com/Parkside-Labs/evalgate/internal/logger"
)

// Process is the handle the registry needs to terminate a tracked run.
type Process interface {
	// Terminate sends a kill signal to the process (and its group, on
	// platforms that support it). It must be safe to call more than once.
	Terminate() error

	// Pid returns the OS process id, or 0 when unknown.
	Pid() int
}

// ActiveEvaluation is one tracked in-flight run. Owned exclusively by the
// registry for its lifetime.
type ActiveEvaluation struct {
	ID          string
	CommandLine string
	Started     time.Time
	proc        Process
	timer       *time.Timer
}

// Registry is the bounded collection of in-flight evaluation processes.
// All methods are safe for concurrent use; a single mutex serializes every
// mutation so the capacity invariant holds under real parallelism.
//
// Construct instances explicitly with New and tear them down with Shutdown.
// There is deliberately no package-level singleton and no signal handling
// here; the serving layer owns the lifecycle.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*ActiveEvaluation
	max     int
	log     *logger.Logger
}

// New creates a registry that admits at most maxConcurrent simultaneous runs.
func New(maxConcurrent int) *Registry {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Registry{
		entries: make(map[string]*ActiveEvaluation),
		max:     maxConcurrent,
		log:     logger.GetLogger(),
	}
}

// CanStartNew reports whether a new run would be admitted right now.
func (r *Registry) CanStartNew() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries) < r.max
}

// Len returns the number of currently tracked runs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Register tracks a freshly spawned process under id and arms its timeout.
// When the timeout fires the id is unregistered, onTimeout (if non-nil)
// invoked so the caller can classify the failure, and the process terminated.
//
// Returns engine.ErrCapacity when the registry is full; the tracked set is
// left unchanged in that case.
func (r *Registry) Register(id string, proc Process, commandLine string, timeout time.Duration, onTimeout func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) >= r.max {
		return fmt.Errorf("%w: %d evaluations already running", engine.ErrCapacity, len(r.entries))
	}
	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("evaluation %s is already registered", id)
	}

	entry := &ActiveEvaluation{
		ID:          id,
		CommandLine: commandLine,
		Started:     time.Now(),
		proc:        proc,
	}
	entry.timer = time.AfterFunc(timeout, func() {
		r.expire(id, onTimeout)
	})
	r.entries[id] = entry

	r.log.WithFields(map[string]interface{}{
		"run_id":  id,
		"pid":     proc.Pid(),
		"timeout": timeout,
		"tracked": len(r.entries),
	}).Debug("Evaluation registered")
	return nil
}

// Unregister removes id from the tracked set and cancels its pending
// timeout. It is idempotent: unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(id)
}

// Cancel terminates the process tracked under id and unregisters it.
// Termination is best-effort: the entry is removed immediately rather than
// waiting for confirmed process death.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok {
		r.remove(id)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	if err := entry.proc.Terminate(); err != nil {
		r.log.WithFields(map[string]interface{}{
			"run_id": id,
			"error":  err.Error(),
		}).Warn("Failed to terminate evaluation process")
	}
	r.log.WithField("run_id", id).Info("Evaluation cancelled")
	return true
}

// Shutdown cancels every tracked run. Used by the serving layer on exit.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Cancel(id)
	}
}

// Active returns a snapshot of the tracked runs.
func (r *Registry) Active() []ActiveEvaluation {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ActiveEvaluation, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, ActiveEvaluation{
			ID:          entry.ID,
			CommandLine: entry.CommandLine,
			Started:     entry.Started,
		})
	}
	return out
}

// expire handles a fired timeout: if the id is still tracked, kill the
// process, drop the entry, and notify the caller. A timer that fires after
// Unregister already ran finds nothing and does nothing.
func (r *Registry) expire(id string, onTimeout func()) {
	r.mu.Lock()
	entry, ok := r.entries[id]
	if ok {
		r.remove(id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}

	r.log.WithFields(map[string]interface{}{
		"run_id":  id,
		"elapsed": time.Since(entry.Started),
	}).Warn("Evaluation timed out, killing process")

	// Notify before killing: the goroutine awaiting the process must see
	// the timeout marker by the time the kill unblocks its Wait.
	if onTimeout != nil {
		onTimeout()
	}
	if err := entry.proc.Terminate(); err != nil {
		r.log.WithFields(map[string]interface{}{
			"run_id": id,
			"error":  err.Error(),
		}).Warn("Failed to terminate timed-out process")
	}
}

// remove deletes id and stops its timer. Callers must hold r.mu.
func (r *Registry) remove(id string) {
	entry, ok := r.entries[id]
	if !ok {
		return
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}
	delete(r.entries, id)
}
