package cli

import (
	"context"

	"github.com/Backland-Labs/hnrflow/internal/config"
	"github.com/Backland-Labs/hnrflow/internal/logger"
	"github.com/Backland-Labs/hnrflow/internal/output"
	"github.com/Backland-Labs/hnrflow/internal/report"
	"github.com/Backland-Labs/hnrflow/internal/workflow"
)

// ConfigLoader interface for dependency injection in tests
type ConfigLoader interface {
	Load(opts config.Options) (*config.Config, error)
}

// WorkflowRunner runs the workflow once and reports the outcome
type WorkflowRunner interface {
	Run(ctx context.Context) *workflow.Report
}

// RunnerFactory builds a WorkflowRunner from the final configuration
type RunnerFactory interface {
	NewRunner(cfg *config.Config, printer *output.Printer, runID string) (WorkflowRunner, error)
}

// ReportWriter persists run reports
type ReportWriter interface {
	Save(r *workflow.Report, path string) error
}

// Real implementations for production use

// RealConfigLoader implements ConfigLoader using the real config package
type RealConfigLoader struct{}

func (r *RealConfigLoader) Load(opts config.Options) (*config.Config, error) {
	return config.Load(opts)
}

// RealRunnerFactory creates workflow engines
type RealRunnerFactory struct{}

func (f *RealRunnerFactory) NewRunner(cfg *config.Config, printer *output.Printer, runID string) (WorkflowRunner, error) {
	return workflow.NewEngine(cfg,
		workflow.WithPrinter(printer),
		workflow.WithLogger(logger.GetLogger()),
		workflow.WithRunID(runID),
	)
}

// RealReportWriter implements ReportWriter using the report package
type RealReportWriter struct{}

func (w *RealReportWriter) Save(r *workflow.Report, path string) error {
	return report.Save(r, path)
}

// Dependencies struct for injection
type Dependencies struct {
	ConfigLoader  ConfigLoader
	RunnerFactory RunnerFactory
	ReportWriter  ReportWriter
	Printer       *output.Printer
}

// NewRealDependencies creates production dependencies
func NewRealDependencies() *Dependencies {
	return &Dependencies{
		ConfigLoader:  &RealConfigLoader{},
		RunnerFactory: &RealRunnerFactory{},
		ReportWriter:  &RealReportWriter{},
		Printer:       output.NewPrinter(),
	}
}
