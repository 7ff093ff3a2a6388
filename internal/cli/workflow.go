package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Backland-Labs/hnrflow/internal/config"
	"github.com/Backland-Labs/hnrflow/internal/logger"
	"github.com/Backland-Labs/hnrflow/internal/report"
	"github.com/Backland-Labs/hnrflow/internal/workflow"
)

// runWorkflow executes the workflow, cancelling it on SIGINT or SIGTERM
func runWorkflow(cmd *cobra.Command, opts *runOptions, deps *Dependencies) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			deps.Printer.Warning("Interrupt received, cleaning up before exit...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runWorkflowWithDependencies(ctx, opts, deps)
}

// runWorkflowWithDependencies is the testable version of runWorkflow with dependency injection
func runWorkflowWithDependencies(ctx context.Context, opts *runOptions, deps *Dependencies) error {
	cfg, err := deps.ConfigLoader.Load(config.Options{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if opts.noCleanup {
		cfg.Cleanup = false
	}
	if opts.reportFile != "" {
		cfg.ReportFile = opts.reportFile
	}
	if cfg.ReportFile != "" {
		if _, err := report.FormatFor(cfg.ReportFile); err != nil {
			return fmt.Errorf("invalid report file: %w", err)
		}
	}

	log := logger.InitializeFromConfig(cfg)
	defer func() { _ = log.Sync() }()

	runID := uuid.NewString()
	log = log.WithRun(runID, cfg.AgentName)
	log.WithFields(map[string]interface{}{
		"cleanup": cfg.Cleanup,
		"strict":  opts.strict,
	}).Debug("Starting hnrflow")

	runner, err := deps.RunnerFactory.NewRunner(cfg, deps.Printer, runID)
	if err != nil {
		return fmt.Errorf("failed to create workflow engine: %w", err)
	}

	result := runner.Run(ctx)

	if err := result.CleanupErr(); err != nil {
		log.WithError(err).Warn("Cleanup did not complete")
	}

	if cfg.ReportFile != "" {
		if err := deps.ReportWriter.Save(result, cfg.ReportFile); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		deps.Printer.Info("Report written to %s", cfg.ReportFile)
	}

	if result.Interrupted {
		return fmt.Errorf("%w after %d of %d steps", ErrInterrupted, len(result.Steps), workflow.StepCount())
	}

	if err := result.Err(); err != nil {
		log.WithError(err).Warn("Workflow finished with failed steps")
		if opts.strict {
			return fmt.Errorf("%w: %d failed", ErrStepsFailed, result.Count(workflow.StatusFailed))
		}
	}
	return nil
}
