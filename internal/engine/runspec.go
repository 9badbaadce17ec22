// Package engine describes the command-line contract of the external
// evaluation engine: run types, argument construction, and the error
// taxonomy shared by every layer that talks to it.
package engine

import "strconv"

// RunType selects which subset of tests and models an evaluation executes.
type RunType string

const (
	RunTypeSmoke   RunType = "smoke"
	RunTypeModel   RunType = "model"
	RunTypeFull    RunType = "full"
	RunTypePattern RunType = "pattern"
	RunTypeFirst   RunType = "first"
	RunTypeRetry   RunType = "retry"
)

// RunTypes lists every valid run type in form-display order.
var RunTypes = []RunType{
	RunTypeSmoke,
	RunTypeModel,
	RunTypeFull,
	RunTypePattern,
	RunTypeFirst,
	RunTypeRetry,
}

// IsValid reports whether t names a known run type.
func (t RunType) IsValid() bool {
	switch t {
	case RunTypeSmoke, RunTypeModel, RunTypeFull, RunTypePattern, RunTypeFirst, RunTypeRetry:
		return true
	default:
		return false
	}
}

// RunSpec is the tagged union of run configurations. Each variant carries
// only the fields relevant to its run type, so callers never probe optional
// fields that may not apply.
type RunSpec interface {
	Type() RunType
	// positionals returns the arguments that follow the run type on the
	// engine command line.
	positionals() []string
}

// Smoke runs a fixed handful of quick checks against the default model.
type Smoke struct{}

func (Smoke) Type() RunType { return RunTypeSmoke }
func (Smoke) positionals() []string { return nil }

// Model runs the full test set against a single named model.
type Model struct {
	Name string
}

func (m Model) Type() RunType { return RunTypeModel }
func (m Model) positionals() []string { return []string{m.Name} }

// Full runs every test against every configured model.
type Full struct{}

func (Full) Type() RunType { return RunTypeFull }
func (Full) positionals() []string { return nil }

// Pattern runs the tests whose descriptions match a regular expression.
type Pattern struct {
	Expr string
}

func (p Pattern) Type() RunType { return RunTypePattern }
func (p Pattern) positionals() []string { return []string{p.Expr} }

// First runs the first N tests, optionally pinned to a single model.
type First struct {
	Count     int
	ModelName string // optional
}

func (f First) Type() RunType { return RunTypeFirst }

func (f First) positionals() []string {
	args := []string{strconv.Itoa(f.Count)}
	if f.ModelName != "" {
		args = append(args, "model", f.ModelName)
	}
	return args
}

// Retry re-runs only the tests that failed in the previous run.
type Retry struct{}

func (Retry) Type() RunType { return RunTypeRetry }
func (Retry) positionals() []string { return nil }

// Options are the boolean flags shared by every run type.
type Options struct {
	NoCache bool `json:"no_cache"`
	Verbose bool `json:"verbose"`
	NoHTML  bool `json:"no_html"`
}
