package engine

// Command line flags understood by the evaluation engine.
const (
	flagNoCache = "--no-cache"
	flagVerbose = "--verbose"
	flagNoHTML  = "--no-html"

	// subcommandDryRun asks the engine to describe a run without
	// executing any model calls.
	subcommandDryRun = "dry-run"
)

// Exit codes reported by the evaluation engine.
const (
	// ExitOK means the run completed and every test passed.
	ExitOK = 0

	// ExitTestFailures means the run completed but some tests failed.
	// This is a non-fatal completion: results are on disk and must be
	// parsed, not treated as a process error.
	ExitTestFailures = 100
)

// CompletedExit reports whether an engine exit code represents a finished
// run whose results file should be parsed.
func CompletedExit(code int) bool {
	return code == ExitOK || code == ExitTestFailures
}

// BuildArgs maps a validated run spec and its options to the ordered
// argument list for the evaluation engine. The run type always comes first,
// followed by the variant's positionals, followed by enabled flags.
//
// BuildArgs has no error path: malformed input is rejected by RunForm
// validation before a RunSpec can exist.
func BuildArgs(spec RunSpec, opts Options) []string {
	args := []string{string(spec.Type())}
	args = append(args, spec.positionals()...)

	if opts.NoCache {
		args = append(args, flagNoCache)
	}
	if opts.Verbose {
		args = append(args, flagVerbose)
	}
	if opts.NoHTML {
		args = append(args, flagNoHTML)
	}
	return args
}

// BuildDryRunArgs prefixes the engine's dry-run subcommand to the argument
// list so the engine reports what the run would do instead of executing it.
func BuildDryRunArgs(spec RunSpec, opts Options) []string {
	return append([]string{subcommandDryRun}, BuildArgs(spec, opts)...)
}
