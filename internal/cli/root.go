// Package cli wires the cobra command tree for the evalgate binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Execute runs the CLI
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	var showVersion bool

	cmd := &cobra.Command{
		Use:   "evalgate",
		Short: "evalgate - web front-end and CLI wrapper for LLM evaluation suites",
		Long: `evalgate - web front-end and CLI wrapper for LLM evaluation suites

evalgate turns a run configuration into a command line for the external
evaluation engine, spawns and tracks the engine process with a timeout and
a concurrency cap, and summarizes the pass/fail results it writes to disk.

Examples:
  evalgate run smoke
  evalgate run model gemini-2.0-flash --no-cache
  evalgate run first 10 model gemini-2.0-flash
  evalgate preview pattern "auth.*"
  evalgate serve --port 3001`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "evalgate version "+version)
				return err
			}
			return cmd.Help()
		},
	}

	cmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")

	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newPreviewCommand())
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newReportCommand())
	cmd.AddCommand(newReportsCommand())
	cmd.AddCommand(newModelsCommand())

	return cmd
}
