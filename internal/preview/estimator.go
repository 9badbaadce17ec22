// Package preview computes what a prospective run would cost before anyone
// commits to it. Everything here is an estimate from static per-run-type
// heuristics; no invariant ties it to actual run outcomes.
package preview

import (
	"fmt"

	"github.com/Parkside-Labs/evalgate/internal/engine"
	"github.com/Parkside-Labs/evalgate/internal/results"
)

// Fixed test count heuristics.
const (
	smokeTestCount = 5

	// filteredEstimateCap bounds the guess for pattern and retry runs.
	// An exact count would require actually applying the filter, which
	// this calculator does not do; the cap is a known approximation
	// carried over from the original behavior, not a bug.
	filteredEstimateCap = 10

	defaultFirstCount = 10
)

// freeTierCost is the fixed informational cost line. There is no real
// accounting behind it.
const freeTierCost = "Free (within free-tier quota)"

// Estimate is a preview of a prospective run. Regenerated on every request,
// never persisted.
type Estimate struct {
	Description     string                `json:"description"`
	TestCount       int                   `json:"test_count"`
	ModelCount      int                   `json:"model_count"`
	Models          []string              `json:"models"`
	EstimatedTime   int                   `json:"estimated_time_seconds"`
	EstimatedCost   string                `json:"estimated_cost"`
	EstimatedTokens int                   `json:"estimated_tokens"`
	CacheEnabled    bool                  `json:"cache_enabled"`
	Tests           []results.TestPreview `json:"tests,omitempty"`
}

// Estimator computes run previews from static heuristics.
type Estimator struct {
	// Models is the engine's configured model list.
	Models []string

	// AvgSecondsPerTest and AvgTokensPerTest scale the estimates.
	AvgSecondsPerTest int
	AvgTokensPerTest  int
}

// Estimate previews the given run. actualTestCount, when positive, is the
// test count reported by a dry run; run types that need it fall back to
// heuristics when it is 0.
func (e *Estimator) Estimate(spec engine.RunSpec, opts engine.Options, actualTestCount int) Estimate {
	testCount := e.testCount(spec, actualTestCount)
	modelCount, models := e.modelSelection(spec)

	return Estimate{
		Description:     describe(spec),
		TestCount:       testCount,
		ModelCount:      modelCount,
		Models:          models,
		EstimatedTime:   testCount * modelCount * e.AvgSecondsPerTest,
		EstimatedCost:   freeTierCost,
		EstimatedTokens: testCount * modelCount * e.AvgTokensPerTest,
		CacheEnabled:    !opts.NoCache,
	}
}

func (e *Estimator) testCount(spec engine.RunSpec, actual int) int {
	switch s := spec.(type) {
	case engine.Smoke:
		return smokeTestCount
	case engine.Model, engine.Full:
		return actual
	case engine.Pattern, engine.Retry:
		if actual > filteredEstimateCap {
			return filteredEstimateCap
		}
		return actual
	case engine.First:
		if s.Count > 0 {
			return s.Count
		}
		return defaultFirstCount
	default:
		return actual
	}
}

func (e *Estimator) modelSelection(spec engine.RunSpec) (int, []string) {
	switch s := spec.(type) {
	case engine.Smoke:
		return 1, e.headModel()
	case engine.Model:
		return 1, []string{s.Name}
	case engine.First:
		if s.ModelName != "" {
			return 1, []string{s.ModelName}
		}
		return len(e.Models), e.Models
	default: // full, pattern, retry
		return len(e.Models), e.Models
	}
}

func (e *Estimator) headModel() []string {
	if len(e.Models) == 0 {
		return nil
	}
	return e.Models[:1]
}

func describe(spec engine.RunSpec) string {
	switch s := spec.(type) {
	case engine.Smoke:
		return fmt.Sprintf("Smoke test: %d quick checks against one model", smokeTestCount)
	case engine.Model:
		return fmt.Sprintf("All tests against model %s", s.Name)
	case engine.Full:
		return "Full suite: every test against every configured model"
	case engine.Pattern:
		return fmt.Sprintf("Tests matching pattern %q (count is an estimate)", s.Expr)
	case engine.First:
		if s.ModelName != "" {
			return fmt.Sprintf("First %d tests against model %s", s.Count, s.ModelName)
		}
		return fmt.Sprintf("First %d tests against every configured model", s.Count)
	case engine.Retry:
		return "Retry previously failed tests (count is an estimate)"
	default:
		return string(spec.Type())
	}
}
