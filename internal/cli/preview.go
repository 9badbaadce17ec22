package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Parkside-Labs/evalgate/internal/redact"
)

// newPreviewCommand creates the preview subcommand
func newPreviewCommand() *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "preview <run-type> [args]",
		Short: "Estimate what a run would do without executing any model calls",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return previewEvaluation(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Estimate with the engine's response cache disabled")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Pass verbose output through to the engine")
	cmd.Flags().BoolVar(&flags.noHTML, "no-html", false, "Estimate without HTML report generation")

	return cmd
}

func previewEvaluation(cmd *cobra.Command, args []string, flags *runFlags) error {
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

	estimate, err := r.Preview(cmd.Context(), spec, opts)
	if err != nil {
		return fmt.Errorf("%s", redact.Error(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, estimate.Description)
	fmt.Fprintf(out, "Tests:  %d across %d model(s): %s\n",
		estimate.TestCount, estimate.ModelCount, strings.Join(estimate.Models, ", "))
	fmt.Fprintf(out, "Time:   ~%ds\n", estimate.EstimatedTime)
	fmt.Fprintf(out, "Tokens: ~%d\n", estimate.EstimatedTokens)
	fmt.Fprintf(out, "Cost:   %s\n", estimate.EstimatedCost)
	fmt.Fprintf(out, "Cache:  %v\n", estimate.CacheEnabled)
	for _, test := range estimate.Tests {
		fmt.Fprintf(out, "  - %s (%d assertions)\n", test.Description, test.AssertionCount)
	}
	return nil
}
