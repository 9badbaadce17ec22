package engine

import (
	"regexp"
	"strings"
)

// RunForm is the wire-level run configuration as submitted by the web form
// or assembled from CLI arguments. All fields are optional at this layer;
// Validate narrows the form into the RunSpec variant for its run type.
type RunForm struct {
	RunType   string `json:"run_type"`
	ModelName string `json:"model_name,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Count     int    `json:"count,omitempty"`
	NoCache   bool   `json:"no_cache,omitempty"`
	Verbose   bool   `json:"verbose,omitempty"`
	NoHTML    bool   `json:"no_html,omitempty"`
}

// Validate checks the form against the configured model list and produces
// the tagged RunSpec plus shared options. knownModels may be nil, in which
// case model identifiers are only checked for presence, not recognition.
func (f RunForm) Validate(knownModels []string) (RunSpec, Options, error) {
	opts := Options{NoCache: f.NoCache, Verbose: f.Verbose, NoHTML: f.NoHTML}

	runType := RunType(strings.TrimSpace(f.RunType))
	if !runType.IsValid() {
		return nil, opts, NewValidationError("run_type",
			"must be one of: smoke, model, full, pattern, first, retry")
	}

	switch runType {
	case RunTypeSmoke:
		return Smoke{}, opts, nil

	case RunTypeModel:
		name := strings.TrimSpace(f.ModelName)
		if name == "" {
			return nil, opts, NewValidationError("model_name", "required for model runs")
		}
		if !recognizedModel(name, knownModels) {
			return nil, opts, NewValidationError("model_name", "unknown model identifier: "+name)
		}
		return Model{Name: name}, opts, nil

	case RunTypeFull:
		return Full{}, opts, nil

	case RunTypePattern:
		expr := strings.TrimSpace(f.Pattern)
		if expr == "" {
			return nil, opts, NewValidationError("pattern", "required for pattern runs")
		}
		if _, err := regexp.Compile(expr); err != nil {
			return nil, opts, NewValidationError("pattern", "not a valid regular expression")
		}
		return Pattern{Expr: expr}, opts, nil

	case RunTypeFirst:
		if f.Count <= 0 {
			return nil, opts, NewValidationError("count", "must be a positive integer")
		}
		name := strings.TrimSpace(f.ModelName)
		if name != "" && !recognizedModel(name, knownModels) {
			return nil, opts, NewValidationError("model_name", "unknown model identifier: "+name)
		}
		return First{Count: f.Count, ModelName: name}, opts, nil

	case RunTypeRetry:
		return Retry{}, opts, nil
	}

	// Unreachable: IsValid covers every case above.
	return nil, opts, NewValidationError("run_type", "unsupported run type")
}

func recognizedModel(name string, knownModels []string) bool {
	if len(knownModels) == 0 {
		return true
	}
	for _, m := range knownModels {
		if m == name {
			return true
		}
	}
	return false
}
