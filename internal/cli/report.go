package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newReportCommand creates the report subcommand
func newReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the path of the most recent HTML report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, r, err := buildRunner()
			if err != nil {
				return err
			}
			defer reg.Shutdown()

			latest, err := r.LatestReport()
			if err != nil {
				return err
			}
			if latest == "" {
				return fmt.Errorf("no reports have been generated yet")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), latest)
			return err
		},
	}
}

// newReportsCommand creates the reports subcommand
func newReportsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List recent HTML reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, r, err := buildRunner()
			if err != nil {
				return err
			}
			defer reg.Shutdown()

			reports, err := r.Reports(limit)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "no reports have been generated yet")
				return err
			}
			for _, report := range reports {
				fmt.Fprintln(cmd.OutOrStdout(), report)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of reports to list")
	return cmd
}

// newModelsCommand creates the models subcommand
func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the evaluation engine's configured models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, reg, r, err := buildRunner()
			if err != nil {
				return err
			}
			defer reg.Shutdown()

			models, err := r.Models()
			if err != nil {
				return err
			}
			for _, model := range models {
				fmt.Fprintln(cmd.OutOrStdout(), model)
			}
			return nil
		},
	}
}
