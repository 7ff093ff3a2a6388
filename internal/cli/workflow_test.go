package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Backland-Labs/hnrflow/internal/config"
	"github.com/Backland-Labs/hnrflow/internal/hnrtest"
	"github.com/Backland-Labs/hnrflow/internal/output"
	"github.com/Backland-Labs/hnrflow/internal/report"
	"github.com/Backland-Labs/hnrflow/internal/workflow"
)

type MockConfigLoader struct {
	mock.Mock
}

func (m *MockConfigLoader) Load(opts config.Options) (*config.Config, error) {
	args := m.Called(opts)
	cfg, _ := args.Get(0).(*config.Config)
	return cfg, args.Error(1)
}

type MockRunnerFactory struct {
	mock.Mock
}

func (m *MockRunnerFactory) NewRunner(cfg *config.Config, printer *output.Printer, runID string) (WorkflowRunner, error) {
	args := m.Called(cfg, printer, runID)
	runner, _ := args.Get(0).(WorkflowRunner)
	return runner, args.Error(1)
}

type MockWorkflowRunner struct {
	mock.Mock
}

func (m *MockWorkflowRunner) Run(ctx context.Context) *workflow.Report {
	args := m.Called(ctx)
	return args.Get(0).(*workflow.Report)
}

type MockReportWriter struct {
	mock.Mock
}

func (m *MockReportWriter) Save(r *workflow.Report, path string) error {
	args := m.Called(r, path)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		AgentName: config.DefaultAgentName,
		Timeout:   config.DefaultTimeout,
		Cleanup:   true,
		Verbosity: config.VerbosityNormal,
	}
}

func reportWith(statuses ...workflow.StepStatus) *workflow.Report {
	r := &workflow.Report{RunID: "run-1", Total: 8}
	for i, s := range statuses {
		r.Steps = append(r.Steps, workflow.StepResult{Number: i + 1, Title: "step", Status: s, Message: string(s)})
	}
	return r
}

type mockDeps struct {
	*Dependencies
	loader  *MockConfigLoader
	factory *MockRunnerFactory
	runner  *MockWorkflowRunner
	writer  *MockReportWriter
	out     *bytes.Buffer
}

func newMockDeps() *mockDeps {
	out := new(bytes.Buffer)
	m := &mockDeps{
		loader:  &MockConfigLoader{},
		factory: &MockRunnerFactory{},
		runner:  &MockWorkflowRunner{},
		writer:  &MockReportWriter{},
		out:     out,
	}
	m.Dependencies = &Dependencies{
		ConfigLoader:  m.loader,
		RunnerFactory: m.factory,
		ReportWriter:  m.writer,
		Printer:       output.NewPrinterWithWriters(out, out, false),
	}
	return m
}

func (m *mockDeps) assertExpectations(t *testing.T) {
	m.loader.AssertExpectations(t)
	m.factory.AssertExpectations(t)
	m.runner.AssertExpectations(t)
	m.writer.AssertExpectations(t)
}

func TestRunWorkflowWithDependencies(t *testing.T) {
	allSuccess := []workflow.StepStatus{
		workflow.StatusSuccess, workflow.StatusSuccess, workflow.StatusSuccess, workflow.StatusSuccess,
		workflow.StatusSuccess, workflow.StatusSuccess, workflow.StatusSkipped, workflow.StatusSuccess,
	}
	oneFailed := []workflow.StepStatus{
		workflow.StatusFailed, workflow.StatusSuccess, workflow.StatusSuccess, workflow.StatusSuccess,
		workflow.StatusSuccess, workflow.StatusSuccess, workflow.StatusSkipped, workflow.StatusSuccess,
	}

	tests := []struct {
		name       string
		opts       runOptions
		setupMocks func(*mockDeps)
		wantErr    error
		errorMsg   string
	}{
		{
			name: "successful run",
			opts: runOptions{configFile: "hnrflow.yaml", envFile: ".env"},
			setupMocks: func(m *mockDeps) {
				m.loader.On("Load", config.Options{ConfigFile: "hnrflow.yaml", EnvFile: ".env"}).Return(testConfig(), nil)
				m.factory.On("NewRunner", mock.MatchedBy(func(c *config.Config) bool { return c.Cleanup }), m.Printer, mock.AnythingOfType("string")).
					Return(m.runner, nil)
				m.runner.On("Run", mock.Anything).Return(reportWith(allSuccess...))
			},
		},
		{
			name: "failed steps exit cleanly without strict",
			setupMocks: func(m *mockDeps) {
				m.loader.On("Load", config.Options{}).Return(testConfig(), nil)
				m.factory.On("NewRunner", mock.Anything, m.Printer, mock.Anything).Return(m.runner, nil)
				m.runner.On("Run", mock.Anything).Return(reportWith(oneFailed...))
			},
		},
		{
			name: "failed steps return an error with strict",
			opts: runOptions{strict: true},
			setupMocks: func(m *mockDeps) {
				m.loader.On("Load", config.Options{}).Return(testConfig(), nil)
				m.factory.On("NewRunner", mock.Anything, m.Printer, mock.Anything).Return(m.runner, nil)
				m.runner.On("Run", mock.Anything).Return(reportWith(oneFailed...))
			},
			wantErr:  ErrStepsFailed,
			errorMsg: "workflow steps failed: 1 failed",
		},
		{
			name: "strict passes when nothing failed",
			opts: runOptions{strict: true},
			setupMocks: func(m *mockDeps) {
				m.loader.On("Load", config.Options{}).Return(testConfig(), nil)
				m.factory.On("NewRunner", mock.Anything, m.Printer, mock.Anything).Return(m.runner, nil)
				m.runner.On("Run", mock.Anything).Return(reportWith(allSuccess...))
			},
		},
		{
			name: "no-cleanup flag disables cleanup",
			opts: runOptions{noCleanup: true},
			setupMocks: func(m *mockDeps) {
				m.loader.On("Load", config.Options{}).Return(testConfig(), nil)
				m.factory.On("NewRunner", mock.MatchedBy(func(c *config.Config) bool { return !c.Cleanup }), m.Printer, mock.Anything).
					Return(m.runner, nil)
				m.runner.On("Run", mock.Anything).Return(reportWith(allSuccess...))
			},
		},
		{
			name: "report file flag writes report",
			opts: runOptions{reportFile: "out/run.yaml"},
			setupMocks: func(m *mockDeps) {
				rep := reportWith(allSuccess...)
				m.loader.On("Load", config.Options{}).Return(testConfig(), nil)
				m.factory.On("NewRunner", mock.Anything, m.Printer, mock.Anything).Return(m.runner, nil)
				m.runner.On("Run", mock.Anything).Return(rep)
				m.writer.On("Save", rep, "out/run.yaml").Return(nil)
			},
		},
		{
			name: "report file from config",
			setupMocks: func(m *mockDeps) {
				cfg := testConfig()
				cfg.ReportFile = "run.json"
				m.loader.On("Load", config.Options{}).Return(cfg, nil)
				m.factory.On("NewRunner", mock.Anything, m.Printer, mock.Anything).Return(m.runner, nil)
				m.runner.On("Run", mock.Anything).Return(reportWith(allSuccess...))
				m.writer.On("Save", mock.Anything, "run.json").Return(nil)
			},
		},
		{
			name: "report save failure",
			opts: runOptions{reportFile: "run.json"},
			setupMocks: func(m *mockDeps) {
				m.loader.On("Load", config.Options{}).Return(testConfig(), nil)
				m.factory.On("NewRunner", mock.Anything, m.Printer, mock.Anything).Return(m.runner, nil)
				m.runner.On("Run", mock.Anything).Return(reportWith(allSuccess...))
				m.writer.On("Save", mock.Anything, "run.json").Return(errors.New("disk full"))
			},
			errorMsg: "failed to save report: disk full",
		},
		{
			name: "unsupported report extension fails before running",
			opts: runOptions{reportFile: "run.txt"},
			setupMocks: func(m *mockDeps) {
				m.loader.On("Load", config.Options{}).Return(testConfig(), nil)
			},
			errorMsg: "invalid report file",
		},
		{
			name: "config load error",
			setupMocks: func(m *mockDeps) {
				m.loader.On("Load", config.Options{}).Return(nil, errors.New("invalid HNRFLOW_TIMEOUT_SECONDS"))
			},
			errorMsg: "failed to load config: invalid HNRFLOW_TIMEOUT_SECONDS",
		},
		{
			name: "engine creation error",
			setupMocks: func(m *mockDeps) {
				m.loader.On("Load", config.Options{}).Return(testConfig(), nil)
				m.factory.On("NewRunner", mock.Anything, m.Printer, mock.Anything).Return(nil, errors.New("bad endpoint"))
			},
			errorMsg: "failed to create workflow engine: bad endpoint",
		},
		{
			name: "interrupted run",
			setupMocks: func(m *mockDeps) {
				rep := reportWith(workflow.StatusSuccess, workflow.StatusSuccess)
				rep.Interrupted = true
				m.loader.On("Load", config.Options{}).Return(testConfig(), nil)
				m.factory.On("NewRunner", mock.Anything, m.Printer, mock.Anything).Return(m.runner, nil)
				m.runner.On("Run", mock.Anything).Return(rep)
			},
			wantErr:  ErrInterrupted,
			errorMsg: "workflow interrupted after 2 of 8 steps",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockDeps()
			tt.setupMocks(m)

			opts := tt.opts
			err := runWorkflowWithDependencies(context.Background(), &opts, m.Dependencies)

			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			} else {
				assert.NoError(t, err)
			}
			m.assertExpectations(t)
		})
	}
}

func TestRootCommandRunsWorkflow(t *testing.T) {
	m := newMockDeps()
	m.loader.On("Load", config.Options{ConfigFile: "c.yaml"}).Return(testConfig(), nil)
	m.factory.On("NewRunner", mock.MatchedBy(func(c *config.Config) bool { return !c.Cleanup }), m.Printer, mock.Anything).
		Return(m.runner, nil)
	m.runner.On("Run", mock.Anything).Return(reportWith(workflow.StatusFailed))

	cmd := newRootCommand(m.Dependencies)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--config", "c.yaml", "--no-cleanup", "--strict"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStepsFailed)
	m.assertExpectations(t)
}

func TestWorkflowAgainstFakePlatform(t *testing.T) {
	p := hnrtest.New(t)
	env := map[string]string{
		"CHAT_URL":      p.URL(config.ServiceChat),
		"KANBAN_URL":    p.URL(config.ServiceKanban),
		"WATCHPOST_URL": p.URL(config.ServiceWatchpost),
		"BLOG_URL":      p.URL(config.ServiceBlog),
		"DOCS_URL":      p.URL(config.ServiceDocs),
		"DASHBOARD_URL": p.URL(config.ServiceDashboard),
		"QR_URL":        p.URL(config.ServiceQR),
		"APP_DIR_URL":   p.URL(config.ServiceAppDirectory),
		"DASHBOARD_KEY": "dash-key",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
	for _, k := range []string{"HNRFLOW_AGENT_NAME", "HNRFLOW_TIMEOUT_SECONDS", "HNRFLOW_CLEANUP", "HNRFLOW_VERBOSITY", "HNRFLOW_REPORT_FILE"} {
		t.Setenv(k, "")
	}

	out := new(bytes.Buffer)
	deps := NewRealDependencies()
	deps.Printer = output.NewPrinterWithWriters(out, out, false)
	reportPath := filepath.Join(t.TempDir(), "reports", "run.json")

	cmd := newRootCommand(deps)
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--report-file", reportPath, "--strict"})
	require.NoError(t, cmd.Execute())

	saved, err := report.Load(reportPath)
	require.NoError(t, err)
	require.Len(t, saved.Steps, 8)
	for _, s := range saved.Steps {
		assert.Equal(t, workflow.StatusSuccess, s.Status, "step %d", s.Number)
	}
	assert.Equal(t, 8, saved.Healthy)
	assert.NotEmpty(t, saved.RunID)
	assert.Len(t, saved.Cleanup, 2)

	assert.Len(t, p.Find(http.MethodDelete, "/api/v1/monitors/"+hnrtest.MonitorID), 1)
	assert.Len(t, p.Find(http.MethodPost, "/api/v1/boards/"+hnrtest.BoardID+"/archive"), 1)
	assert.Contains(t, out.String(), "Report written to "+reportPath)
}
