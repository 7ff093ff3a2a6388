// Package workflow runs the cross-service agent workflow: a health check of
// every HNR service followed by best-effort steps that create a monitor, a
// board with a task, a document, a blog post, a chat message, dashboard
// metrics and a QR code, and finally cleanup of the monitor and board.
//
// Steps never abort the run. A failed step is recorded and the next one runs.
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Backland-Labs/hnrflow/internal/apiclient"
	"github.com/Backland-Labs/hnrflow/internal/config"
	"github.com/Backland-Labs/hnrflow/internal/logger"
	"github.com/Backland-Labs/hnrflow/internal/output"
	"github.com/Backland-Labs/hnrflow/internal/services"
)

// healthTarget is one endpoint visited by the health check
type healthTarget struct {
	name    string
	baseURL string
	client  *apiclient.Client
}

// Engine orchestrates the workflow execution
type Engine struct {
	cfg     *config.Config
	printer *output.Printer
	log     *logger.Logger
	now     func() time.Time
	runID   string

	targets   []healthTarget
	watchpost *services.Watchpost
	kanban    *services.Kanban
	docs      *services.Docs
	blog      *services.BlogService
	chat      *services.Chat
	dashboard *services.Dashboard
	qr        *services.QR
}

// Option configures an Engine
type Option func(*Engine)

// WithPrinter sets the printer used for progress output
func WithPrinter(p *output.Printer) Option {
	return func(e *Engine) { e.printer = p }
}

// WithLogger sets the structured logger
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRunID sets the run id instead of generating one
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// NewEngine creates a workflow engine with one client per configured endpoint
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		printer: output.NewPrinter(),
		log:     logger.GetLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}
	e.log = e.log.WithRun(e.runID, cfg.AgentName)

	clients := make(map[string]*apiclient.Client, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		c, err := apiclient.New(ep.BaseURL,
			apiclient.WithName(ep.Name),
			apiclient.WithTimeout(cfg.Timeout),
			apiclient.WithLogger(e.log),
		)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint %s: %w", ep.Name, err)
		}
		clients[ep.Name] = c
		e.targets = append(e.targets, healthTarget{name: ep.Name, baseURL: c.BaseURL(), client: c})
	}

	required := []string{
		config.ServiceChat, config.ServiceKanban, config.ServiceWatchpost, config.ServiceBlog,
		config.ServiceDocs, config.ServiceDashboard, config.ServiceQR,
	}
	for _, name := range required {
		if clients[name] == nil {
			return nil, fmt.Errorf("no endpoint configured for %s", name)
		}
	}

	e.watchpost = services.NewWatchpost(clients[config.ServiceWatchpost])
	e.kanban = services.NewKanban(clients[config.ServiceKanban])
	e.docs = services.NewDocs(clients[config.ServiceDocs])
	e.blog = services.NewBlog(clients[config.ServiceBlog])
	e.chat = services.NewChat(clients[config.ServiceChat])
	e.dashboard = services.NewDashboard(clients[config.ServiceDashboard])
	e.qr = services.NewQR(clients[config.ServiceQR])
	return e, nil
}

// RunID returns the id attached to this engine's logs and reports
func (e *Engine) RunID() string {
	return e.runID
}

// step is one workflow stage
type step struct {
	title string
	fn    func(r *run, ctx context.Context) StepResult
}

var steps = []step{
	{"Health Check", (*run).checkHealth},
	{"Create a Health Monitor", (*run).createMonitor},
	{"Create a Board and Task", (*run).createBoardAndTask},
	{"Create a Workspace and Document", (*run).createDocument},
	{"Publish a Status Post", (*run).publishPost},
	{"Send Status Notification", (*run).notifyChat},
	{"Submit Operational Metrics", (*run).submitMetrics},
	{"Generate Status Page Link", (*run).generateQR},
}

// StepCount is the number of steps in a full run
func StepCount() int {
	return len(steps)
}

// run holds the state of a single execution, including created artifacts
type run struct {
	*Engine
	report *Report

	monitorID  string
	monitorKey string
	boardID    string
	boardKey   string
}

// Run executes all steps in order, then cleanup. It always returns a report.
// When ctx is cancelled no further steps start, but cleanup still runs.
func (e *Engine) Run(ctx context.Context) *Report {
	r := &run{
		Engine: e,
		report: &Report{
			RunID:     e.runID,
			Agent:     e.cfg.AgentName,
			StartedAt: e.now(),
			Total:     len(e.targets),
		},
	}

	e.log.Infof("Starting workflow against %d services", len(e.targets))
	e.printer.Info("🤖 HNR Cross-Service Agent Workflow")
	e.printer.Detail("Time:  %s", r.report.StartedAt.UTC().Format(time.RFC3339))
	e.printer.Detail("Agent: %s", e.cfg.AgentName)
	e.printer.Detail("Run:   %s", e.runID)

	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			r.report.Interrupted = true
			e.log.WithError(err).Warnf("Workflow interrupted before step %d", i+1)
			e.printer.Warning("Interrupted, remaining steps not run")
			break
		}

		e.printer.StepHeader(i+1, s.title)
		timed := e.log.WithField("step", i+1).Timed(s.title)

		res := s.fn(r, ctx)
		res.Number = i + 1
		res.Title = s.title
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
		r.report.Steps = append(r.report.Steps, res)

		if res.Status == StatusFailed {
			timed.DoneWithError(fmt.Errorf("%s", res.Message))
		} else {
			timed.Done()
		}
	}

	r.printSummary()

	if e.cfg.Cleanup {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*e.cfg.Timeout)
		r.cleanup(cleanupCtx)
		cancel()
	} else {
		e.printer.Skip("Cleanup disabled, demo resources were kept")
	}

	r.report.FinishedAt = e.now()
	e.log.WithFields(map[string]interface{}{
		"succeeded": r.report.Count(StatusSuccess),
		"skipped":   r.report.Count(StatusSkipped),
		"failed":    r.report.Count(StatusFailed),
		"healthy":   r.report.Healthy,
	}).Info("Workflow finished")
	return r.report
}

func (r *run) printSummary() {
	title := "✅ Workflow Complete!"
	if r.report.Interrupted {
		title = "⚠️  Workflow Interrupted"
	}
	r.printer.Banner(title)

	for _, s := range r.report.Steps {
		switch s.Status {
		case StatusSuccess:
			r.printer.Success("Step %d: %s", s.Number, s.Title)
		case StatusSkipped:
			r.printer.Skip("Step %d: %s (%s)", s.Number, s.Title, s.Message)
		default:
			r.printer.Failure("Step %d: %s (%s)", s.Number, s.Title, s.Message)
		}
	}
	r.printer.Println()
	r.printer.Info("%d succeeded, %d skipped, %d failed",
		r.report.Count(StatusSuccess), r.report.Count(StatusSkipped), r.report.Count(StatusFailed))
}

// cleanup deletes the monitor and archives the board when they were created.
// Outcomes are recorded but never change the step results.
func (r *run) cleanup(ctx context.Context) {
	if r.monitorID == "" && r.boardID == "" {
		return
	}
	r.printer.Println()
	r.printer.Info("🧹 Cleaning up demo resources...")

	if r.monitorID != "" {
		res, err := r.watchpost.DeleteMonitor(ctx, r.monitorID, r.monitorKey)
		r.recordCleanup("delete_monitor", r.monitorID, res, err)
	}
	if r.boardID != "" {
		res, err := r.kanban.ArchiveBoard(ctx, r.boardID, r.boardKey)
		r.recordCleanup("archive_board", r.boardID, res, err)
	}
}

func (r *run) recordCleanup(action, target string, res *apiclient.Result, err error) {
	a := CleanupAction{Action: action, Target: target, Err: err}
	switch {
	case err != nil:
		a.Message = err.Error()
	case res.IsError:
		a.Message = res.ErrorMessage()
		a.Err = res.Err()
	default:
		a.Success = true
	}
	r.report.Cleanup = append(r.report.Cleanup, a)

	log := r.log.WithFields(map[string]interface{}{"action": action, "target": target})
	if a.Success {
		log.Debug("Cleanup action succeeded")
		r.printer.Detail("%s %s", cleanupVerb(action), target)
		return
	}
	log.WithError(a.Err).Warn("Cleanup action failed")
	r.printer.Warning("Could not %s %s: %s", cleanupPhrase(action), target, a.Message)
}

func cleanupVerb(action string) string {
	if action == "delete_monitor" {
		return "Deleted monitor"
	}
	return "Archived board"
}

func cleanupPhrase(action string) string {
	if action == "delete_monitor" {
		return "delete monitor"
	}
	return "archive board"
}
