// Package cli implements the hnrflow command line interface.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// ErrStepsFailed is returned with --strict when any workflow step failed
var ErrStepsFailed = errors.New("workflow steps failed")

// ErrInterrupted is returned when the run was cancelled before all steps ran
var ErrInterrupted = errors.New("workflow interrupted")

// runOptions holds the parsed flags
type runOptions struct {
	configFile string
	envFile    string
	reportFile string
	noCleanup  bool
	strict     bool
}

// Execute runs the CLI
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand creates the root command with production dependencies
func NewRootCommand() *cobra.Command {
	return newRootCommand(nil)
}

// newRootCommand creates the root command. A nil deps uses the real
// implementations, created only when the workflow actually runs.
func newRootCommand(deps *Dependencies) *cobra.Command {
	var showVersion bool
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "hnrflow",
		Short: "hnrflow - cross-service agent workflow for the HNR platform",
		Long: `hnrflow - cross-service agent workflow for the HNR platform

hnrflow checks the health of all eight HNR services, then creates a monitor,
a board with a task, a document, a blog post, a chat message, dashboard
metrics and a QR code. The monitor and board are cleaned up at the end.

Service URLs come from CHAT_URL, KANBAN_URL, WATCHPOST_URL, BLOG_URL,
DOCS_URL, DASHBOARD_URL, QR_URL and APP_DIR_URL. Set DASHBOARD_KEY to submit
metrics.

Examples:
  hnrflow
  hnrflow --env-file .env --report-file run.json
  hnrflow --config hnrflow.yaml --no-cleanup --strict`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "hnrflow version "+version)
				return err
			}
			cmd.SilenceUsage = true
			if deps == nil {
				deps = NewRealDependencies()
			}
			return runWorkflow(cmd, opts, deps)
		},
	}

	cmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Show version information")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Load environment variables from a dotenv file")
	cmd.Flags().BoolVar(&opts.noCleanup, "no-cleanup", false, "Keep the demo monitor and board after the run")
	cmd.Flags().StringVar(&opts.reportFile, "report-file", "", "Write a run report (.json, .yaml or .yml)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Exit with an error when any step failed")

	return cmd
}
