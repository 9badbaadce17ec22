package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Parkside-Labs/evalgate/internal/config"
	"github.com/Parkside-Labs/evalgate/internal/redact"
	"github.com/Parkside-Labs/evalgate/internal/registry"
	"github.com/Parkside-Labs/evalgate/internal/runner"
)

type runFlags struct {
	noCache bool
	verbose bool
	noHTML  bool
}

// newRunCommand creates the run subcommand
func newRunCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <run-type> [args]",
		Short: "Execute an evaluation run and print its summary",
		Long: `Execute an evaluation run and print its summary.

Run types:
  smoke                      quick checks against one model
  model <name>               all tests against a single model
  full                       every test against every model
  pattern <regex>            tests whose descriptions match a pattern
  first <count> [model <m>]  the first N tests
  retry                      only the tests that failed last time`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluation(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Disable the engine's response cache")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Pass verbose output through to the engine")
	cmd.Flags().BoolVar(&flags.noHTML, "no-html", false, "Skip HTML report generation")

	return cmd
}

func runEvaluation(cmd *cobra.Command, args []string, flags *runFlags) error {
	form, err := formFromArgs(args)
	if err != nil {
		return err
	}
	form.NoCache = flags.noCache
	form.Verbose = flags.verbose
	form.NoHTML = flags.noHTML

	cfg, reg, r, err := buildRunner()
	if err != nil {
		return err
	}
	defer reg.Shutdown()

	spec, opts, err := form.Validate(knownModels(cfg))
	if err != nil {
		return err
	}

	id := uuid.NewString()
	summary, err := r.Run(cmd.Context(), id, spec, opts)
	if err != nil {
		return fmt.Errorf("%s", redact.Error(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tests:     %d total, %d passed, %d failed\n",
		summary.TotalTests, summary.PassedTests, summary.FailedTests)
	fmt.Fprintf(out, "Pass rate: %.1f%%\n", summary.PassRate)
	if summary.HTMLReportPath != "" {
		fmt.Fprintf(out, "Report:    %s\n", summary.HTMLReportPath)
	}
	return nil
}

// buildRunner assembles the config, registry, and runner shared by the
// one-shot subcommands.
func buildRunner() (*config.Config, *registry.Registry, *runner.Runner, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	reg := registry.New(cfg.MaxConcurrent)
	return cfg, reg, runner.New(cfg, reg), nil
}

// knownModels fetches the engine's configured models for validation.
// Best-effort: a missing engine config degrades to presence-only checks.
func knownModels(cfg *config.Config) []string {
	engineCfg, err := config.LoadEngineConfig(cfg.EngineConfigPath)
	if err != nil {
		return nil
	}
	return engineCfg.ModelIDs()
}
