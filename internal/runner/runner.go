// Package runner orchestrates evaluation runs: it admits a validated run
// spec, spawns the engine through the registry, awaits the process, and
// reduces whatever the engine left behind into a summary or a classified
// error.
package runner

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/Parkside-Labs/evalgate/internal/config"
	"github.com/Parkside-Labs/evalgate/internal/engine"
	"github.com/Parkside-Labs/evalgate/internal/logger"
	"github.com/Parkside-Labs/evalgate/internal/preview"
	"github.com/Parkside-Labs/evalgate/internal/redact"
	"github.com/Parkside-Labs/evalgate/internal/registry"
	"github.com/Parkside-Labs/evalgate/internal/results"
)

// dryRunTimeout bounds preview invocations; a dry run makes no model calls
// and should return almost immediately.
const dryRunTimeout = time.Minute

// Runner wires the command builder, process registry, and result parser
// into the submit-and-await path.
type Runner struct {
	cfg       *config.Config
	reg       *registry.Registry
	spawner   Spawner
	parser    *results.Parser
	dryParser results.DryRunParser
	log       *logger.Logger
}

// New creates a Runner over an explicitly constructed registry.
func New(cfg *config.Config, reg *registry.Registry) *Runner {
	return &Runner{
		cfg:     cfg,
		reg:     reg,
		spawner: NewSpawner(),
		parser: &results.Parser{
			ResultsFile: cfg.ResultsFile,
			ReportsDir:  cfg.ReportsDir,
		},
		dryParser: results.TextDryRunParser{},
		log:       logger.GetLogger(),
	}
}

// SetSpawner replaces the process spawner. Used by tests.
func (r *Runner) SetSpawner(s Spawner) { r.spawner = s }

// Run executes the evaluation described by spec under the given id and
// blocks until it finishes. Validation happened upstream; this method owns
// admission, spawning, awaiting, and result reduction.
//
// Every returned error wraps one of the engine sentinel errors. A failure
// after the run was admitted always releases its concurrency slot first.
func (r *Runner) Run(ctx context.Context, id string, spec engine.RunSpec, opts engine.Options) (*results.Summary, error) {
	if err := r.cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	// Cheap pre-check so a saturated registry rejects before we fork.
	// Register re-checks under its lock, so two racing admissions cannot
	// both slip through.
	if !r.reg.CanStartNew() {
		return nil, fmt.Errorf("%w: try again when a run finishes", engine.ErrCapacity)
	}

	args := engine.BuildArgs(spec, opts)
	commandLine := r.cfg.EngineBin + " " + strings.Join(args, " ")
	timeout := r.cfg.TimeoutFor(spec.Type())

	runLog := r.log.WithFields(map[string]interface{}{
		"run_id":   id,
		"run_type": string(spec.Type()),
	})
	runLog.Infof("Starting evaluation: %s", commandLine)

	proc, err := r.spawner.Spawn(ctx, r.cfg.EngineBin, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrSpawn, redact.Error(err))
	}

	var timedOut atomic.Bool
	if err := r.reg.Register(id, proc, commandLine, timeout, func() {
		timedOut.Store(true)
	}); err != nil {
		// Lost the admission race after forking; reap the process.
		_ = proc.Terminate()
		return nil, err
	}

	res := proc.Wait()
	r.reg.Unregister(id)

	if timedOut.Load() {
		return nil, fmt.Errorf("%w: killed after %s", engine.ErrTimeout, timeout)
	}
	if res.Err != nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrProcess, redact.Error(res.Err))
	}
	if !engine.CompletedExit(res.ExitCode) {
		runLog.WithField("exit_code", res.ExitCode).Warn("Evaluation process failed")
		return nil, fmt.Errorf("%w: exit code %d: %s",
			engine.ErrProcess, res.ExitCode, redact.Text(tail(res.Stderr)))
	}

	summary, err := r.parser.Parse()
	if err != nil {
		// The run itself completed; only its summary is unavailable.
		return nil, err
	}
	if summary == nil {
		return nil, fmt.Errorf("%w: results file %s not found after completed run",
			engine.ErrParse, r.cfg.ResultsFile)
	}

	runLog.WithFields(map[string]interface{}{
		"total":     summary.TotalTests,
		"passed":    summary.PassedTests,
		"pass_rate": summary.PassRate,
	}).Info("Evaluation completed")
	return summary, nil
}

// Cancel terminates the run tracked under id. Returns false when no such
// run is in flight.
func (r *Runner) Cancel(id string) bool {
	return r.reg.Cancel(id)
}

// DryRun asks the engine to describe the run without executing any model
// calls and returns the redacted preview text.
func (r *Runner) DryRun(ctx context.Context, spec engine.RunSpec, opts engine.Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dryRunTimeout)
	defer cancel()

	args := engine.BuildDryRunArgs(spec, opts)
	proc, err := r.spawner.Spawn(ctx, r.cfg.EngineBin, args...)
	if err != nil {
		return "", fmt.Errorf("%w: %s", engine.ErrSpawn, redact.Error(err))
	}

	res := proc.Wait()
	if res.Err != nil {
		return "", fmt.Errorf("%w: %s", engine.ErrProcess, redact.Error(res.Err))
	}
	if res.ExitCode != engine.ExitOK {
		return "", fmt.Errorf("%w: dry-run exit code %d: %s",
			engine.ErrProcess, res.ExitCode, redact.Text(tail(res.Stderr)))
	}
	return redact.Text(res.Stdout), nil
}

// Preview loads the engine's configured models, performs a dry run to learn
// the actual test count, and folds both into an estimate. The dry run is
// best-effort: when it fails the estimate falls back to heuristics alone.
func (r *Runner) Preview(ctx context.Context, spec engine.RunSpec, opts engine.Options) (preview.Estimate, error) {
	engineCfg, err := config.LoadEngineConfig(r.cfg.EngineConfigPath)
	if err != nil {
		return preview.Estimate{}, err
	}

	actualTestCount := 0
	var tests []results.TestPreview
	if output, err := r.DryRun(ctx, spec, opts); err == nil {
		actualTestCount = r.dryParser.CountTests(output)
		tests = r.dryParser.ParseDryRun(output)
	} else {
		r.log.WithField("error", redact.Error(err)).Warn("Dry run failed, estimating without it")
	}

	estimator := &preview.Estimator{
		Models:            engineCfg.ModelIDs(),
		AvgSecondsPerTest: r.cfg.AvgSecondsPerTest,
		AvgTokensPerTest:  r.cfg.AvgTokensPerTest,
	}
	est := estimator.Estimate(spec, opts, actualTestCount)
	est.Tests = tests
	return est, nil
}

// Models returns the engine's configured model identifiers.
func (r *Runner) Models() ([]string, error) {
	engineCfg, err := config.LoadEngineConfig(r.cfg.EngineConfigPath)
	if err != nil {
		return nil, err
	}
	return engineCfg.ModelIDs(), nil
}

// Reports lists recent HTML report paths, newest first.
func (r *Runner) Reports(limit int) ([]string, error) {
	return r.parser.ListReports(limit)
}

// LatestReport returns the newest HTML report path, or "" when none exist.
func (r *Runner) LatestReport() (string, error) {
	return r.parser.LatestReport()
}

// tail returns the last few lines of captured output, enough to explain a
// failure without echoing an entire verbose log into an error message.
func tail(s string) string {
	const maxLines = 10
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}
