package workflow

import (
	"context"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/Backland-Labs/hnrflow/internal/apiclient"
	"github.com/Backland-Labs/hnrflow/internal/config"
	"github.com/Backland-Labs/hnrflow/internal/content"
	"github.com/Backland-Labs/hnrflow/internal/services"
)

const (
	monitorIntervalSeconds = 300
	taskPriority           = 2
	qrSize                 = 256
	messagePreviewLength   = 80
)

func succeeded(message string, details ...string) StepResult {
	return StepResult{Status: StatusSuccess, Message: message, Details: details}
}

func skipped(message string) StepResult {
	return StepResult{Status: StatusSkipped, Message: message}
}

func failed(err error, format string, args ...interface{}) StepResult {
	return StepResult{Status: StatusFailed, Message: fmt.Sprintf(format, args...), Err: err}
}

// callFailed reports a request that got no usable response
func (r *run) callFailed(what string, err error) StepResult {
	r.log.WithError(err).Warnf("%s failed", what)
	r.printer.Failure("%s failed: %v", what, err)
	return failed(err, "%s failed", what)
}

// resultFailed reports a request the service answered with an error status
func (r *run) resultFailed(what string, res *apiclient.Result) StepResult {
	r.log.WithField("status", res.Status).Warnf("%s failed: %s", what, res.ErrorMessage())
	r.printer.Warning("%s failed: %s", what, res.ErrorMessage())
	return failed(res.Err(), "%s failed: %s", what, res.ErrorMessage())
}

func (r *run) clock() string {
	return r.now().Format("15:04")
}

func (r *run) checkHealth(ctx context.Context) StepResult {
	var errs *multierror.Error
	healthy := 0

	for _, t := range r.targets {
		progress := r.printer.StartProgress("Checking " + t.name)
		h, err := services.CheckHealth(ctx, t.client)
		progress.Stop()

		svc := ServiceHealth{Name: t.name, URL: t.baseURL}
		switch {
		case err != nil:
			svc.Status = "unreachable"
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", t.name, err))
			r.log.WithError(err).WithField("service", t.name).Debug("Health check failed")
		case h.IsError:
			svc.Status = fmt.Sprintf("HTTP %d", h.Result.Status)
		default:
			svc.Status = h.Status
			svc.Healthy = h.OK()
		}
		if svc.Healthy {
			healthy++
		}
		r.report.Services = append(r.report.Services, svc)
		r.printer.ServiceStatus(svc.Healthy, t.name, t.baseURL)
	}

	r.report.Healthy = healthy
	total := len(r.targets)
	r.printer.Println()
	if healthy < total {
		r.printer.Warning("Only %d/%d services healthy. Some steps may fail.", healthy, total)
		return failed(errs.ErrorOrNil(), "Only %d/%d services healthy", healthy, total)
	}
	r.printer.Success("All %d services healthy!", healthy)
	return succeeded(fmt.Sprintf("All %d services healthy", healthy))
}

func (r *run) createMonitor(ctx context.Context) StepResult {
	req := services.MonitorRequest{
		Name:            fmt.Sprintf("Workflow Demo (%s)", r.clock()),
		URL:             r.cfg.URL(config.ServiceChat) + services.HealthPath,
		MonitorType:     "http",
		IntervalSeconds: monitorIntervalSeconds,
		Tags:            []string{"demo", "workflow"},
	}

	progress := r.printer.StartProgress("Creating monitor")
	m, err := r.watchpost.CreateMonitor(ctx, req)
	progress.Stop()
	if err != nil {
		return r.callFailed("Monitor creation", err)
	}
	if m.IsError {
		return r.resultFailed("Monitor creation", m.Result)
	}

	r.monitorID = m.ID
	r.monitorKey = m.ManageKey
	r.printer.Success("Monitor created: %s", m.Name)
	r.printer.Detail("ID: %s", m.ID)
	if r.cfg.IsVerbose() {
		r.printer.Detail("Manage key: %s", m.ManageKey)
	}
	return succeeded("Monitor created: "+m.Name, "id: "+m.ID)
}

func (r *run) createBoardAndTask(ctx context.Context) StepResult {
	progress := r.printer.StartProgress("Creating board")
	board, err := r.kanban.CreateBoard(ctx, services.BoardRequest{
		Name:        fmt.Sprintf("Workflow Demo %s", r.clock()),
		Description: "Automated workflow demonstration board",
	})
	progress.Stop()
	if err != nil {
		return r.callFailed("Board creation", err)
	}
	if board.IsError {
		return r.resultFailed("Board creation", board.Result)
	}

	r.boardID = board.ID
	r.boardKey = board.ManageKey
	r.printer.Success("Board created: %s", board.Name)
	details := []string{"board: " + board.ID}

	detail, err := r.kanban.GetBoard(ctx, board.ID)
	if err != nil {
		return r.callFailed("Loading board columns", err)
	}
	column, ok := detail.FirstColumn()
	if !ok {
		msg := "Board has no columns, task not created"
		if detail.IsError {
			msg = "Could not load board columns, task not created"
		}
		r.printer.Warning("%s", msg)
		return succeeded("Board created, "+lowerFirst(msg), details...)
	}

	progress = r.printer.StartProgress("Creating task")
	task, err := r.kanban.CreateTask(ctx, board.ID, board.ManageKey, services.TaskRequest{
		Title:       "Investigate service health patterns",
		Description: "Analyze uptime data and identify reliability improvements",
		ColumnID:    column.ID,
		Priority:    taskPriority,
		Labels:      []string{"monitoring", "automation"},
		ActorName:   r.cfg.AgentName,
	})
	progress.Stop()
	if err != nil {
		return r.callFailed("Task creation", err)
	}
	if task.IsError {
		return r.resultFailed("Task creation", task.Result)
	}

	r.printer.Success("Task created: %s", task.Title)
	r.printer.Detail("Priority: %s", task.Priority)
	return succeeded("Board and task created", append(details, "task: "+task.Title)...)
}

func (r *run) createDocument(ctx context.Context) StepResult {
	progress := r.printer.StartProgress("Creating workspace")
	ws, err := r.docs.CreateWorkspace(ctx, services.WorkspaceRequest{
		Name:        fmt.Sprintf("Workflow Docs %s", r.clock()),
		Description: "Documentation for the cross-service workflow demo",
	})
	progress.Stop()
	if err != nil {
		return r.callFailed("Workspace creation", err)
	}
	if ws.IsError {
		return r.resultFailed("Workspace creation", ws.Result)
	}
	r.printer.Success("Workspace created: %s", ws.Name)

	body, err := content.HealthReport(r.report.summary(r.now()))
	if err != nil {
		return failed(err, "Rendering health report failed")
	}

	progress = r.printer.StartProgress("Creating document")
	doc, err := r.docs.CreateDocument(ctx, ws.Slug, ws.ManageKey, services.DocumentRequest{
		Title:   content.HealthReportTitle,
		Content: body,
		Tags:    []string{"health", "automated", "demo"},
	})
	progress.Stop()
	if err != nil {
		return r.callFailed("Document creation", err)
	}
	if doc.IsError {
		return r.resultFailed("Document creation", doc.Result)
	}

	r.printer.Success("Document created: %s", doc.Title)
	r.printer.Detail("Slug: %s", doc.Slug)
	return succeeded("Document created: "+doc.Title, "workspace: "+ws.Slug, "document: "+doc.Slug)
}

func (r *run) publishPost(ctx context.Context) StepResult {
	progress := r.printer.StartProgress("Creating blog")
	blog, err := r.blog.CreateBlog(ctx, services.BlogRequest{
		Name:        fmt.Sprintf("Workflow Updates %s", r.clock()),
		Description: "Automated status updates from agent workflows",
	})
	progress.Stop()
	if err != nil {
		return r.callFailed("Blog creation", err)
	}
	if blog.IsError {
		return r.resultFailed("Blog creation", blog.Result)
	}
	r.printer.Success("Blog created: %s", blog.Name)

	summary := r.report.summary(r.now())
	body, err := content.StatusPost(summary)
	if err != nil {
		return failed(err, "Rendering status post failed")
	}

	progress = r.printer.StartProgress("Publishing post")
	post, err := r.blog.CreatePost(ctx, blog.ID, blog.ManageKey, services.PostRequest{
		Title:   content.StatusPostTitle(summary),
		Content: body,
		Tags:    []string{"status", "automated"},
		Status:  "published",
	})
	progress.Stop()
	if err != nil {
		return r.callFailed("Post creation", err)
	}
	if post.IsError {
		return r.resultFailed("Post creation", post.Result)
	}

	r.printer.Success("Post published: %s", post.Title)
	return succeeded("Post published: "+post.Title, "blog: "+blog.ID)
}

func (r *run) notifyChat(ctx context.Context) StepResult {
	rooms, err := r.chat.ListRooms(ctx)
	if err != nil {
		return r.callFailed("Listing rooms", err)
	}
	room, ok := rooms.Pick(services.DefaultRoom)
	if !ok {
		if rooms.IsError {
			r.log.WithField("status", rooms.Result.Status).Debug("Room listing returned an error")
		}
		r.printer.Warning("No rooms found")
		return skipped("No rooms found")
	}

	message, err := content.ChatMessage(r.report.summary(r.now()))
	if err != nil {
		return failed(err, "Rendering chat message failed")
	}

	progress := r.printer.StartProgress("Sending message")
	msg, err := r.chat.PostMessage(ctx, room.ID, services.MessageRequest{
		Content:    message,
		Sender:     r.cfg.AgentName,
		SenderType: "agent",
	})
	progress.Stop()
	if err != nil {
		return r.callFailed("Sending message", err)
	}
	if msg.IsError {
		return r.resultFailed("Sending message", msg.Result)
	}

	r.printer.Success("Message sent to #%s", room.Name)
	r.printer.Detail("Content: %s", preview(msg.Content, messagePreviewLength))
	return succeeded("Message sent to #"+room.Name, "room: "+room.ID)
}

// uptimeStats builds the metrics submitted to the dashboard
func uptimeStats(healthy, total int) []services.Stat {
	pct := 0.0
	if total > 0 {
		pct = math.Round(float64(healthy)/float64(total)*1000) / 10
	}
	return []services.Stat{
		{Key: "demo_services_healthy", Value: float64(healthy)},
		{Key: "demo_services_total", Value: float64(total)},
		{Key: "demo_uptime_pct", Value: pct},
		{Key: "demo_workflow_runs", Value: 1},
	}
}

func (r *run) submitMetrics(ctx context.Context) StepResult {
	if !r.cfg.HasDashboardKey() {
		r.printer.Skip("Skipped, set DASHBOARD_KEY to submit metrics")
		r.printer.Detail("(The manage key is printed on first service startup)")
		return skipped("DASHBOARD_KEY not set")
	}

	stats := uptimeStats(r.report.Healthy, r.report.Total)
	progress := r.printer.StartProgress("Submitting metrics")
	ack, err := r.dashboard.SubmitStats(ctx, r.cfg.DashboardKey, stats)
	progress.Stop()
	if err != nil {
		return r.callFailed("Metric submission", err)
	}
	if ack.IsError {
		return r.resultFailed("Metric submission", ack.Result)
	}

	r.printer.Success("Submitted %d metrics", ack.Accepted)
	details := make([]string, 0, len(stats))
	for _, s := range stats {
		line := fmt.Sprintf("%s: %g", s.Key, s.Value)
		r.printer.Detail("%s", line)
		details = append(details, line)
	}
	return succeeded(fmt.Sprintf("Submitted %d metrics", ack.Accepted), details...)
}

func (r *run) generateQR(ctx context.Context) StepResult {
	target := r.cfg.URL(config.ServiceWatchpost)

	progress := r.printer.StartProgress("Generating QR code")
	img, err := r.qr.Generate(ctx, services.QRRequest{
		Data:   target,
		Format: "svg",
		Size:   qrSize,
		Style:  "rounded",
	})
	progress.Stop()
	if err != nil {
		return r.callFailed("QR generation", err)
	}
	if img.IsError {
		return r.resultFailed("QR generation", img.Result)
	}
	if !img.HasImage() {
		r.printer.Warning("QR generation failed: response has no image")
		return failed(nil, "QR generation failed: response has no image")
	}

	r.printer.Success("QR code generated (%d bytes base64)", len(img.ImageBase64))
	r.printer.Detail("Points to: %s", target)
	r.printer.Detail("Style: rounded, %dpx", qrSize)
	return succeeded("QR code generated", "points to: "+target)
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	if runes[0] >= 'A' && runes[0] <= 'Z' {
		runes[0] += 'a' - 'A'
	}
	return string(runes)
}
