package workflow

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/Backland-Labs/hnrflow/internal/content"
)

// StepStatus is the outcome of one workflow step
type StepStatus string

const (
	StatusSuccess StepStatus = "success"
	StatusSkipped StepStatus = "skipped"
	StatusFailed  StepStatus = "failed"
)

// StepResult records what happened in one step
type StepResult struct {
	Number  int        `json:"number" yaml:"number"`
	Title   string     `json:"title" yaml:"title"`
	Status  StepStatus `json:"status" yaml:"status"`
	Message string     `json:"message" yaml:"message"`
	Details []string   `json:"details,omitempty" yaml:"details,omitempty"`

	// Err is the underlying error of a failed step, if there was one
	Err   error  `json:"-" yaml:"-"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ServiceHealth is the health check result of one endpoint
type ServiceHealth struct {
	Name    string `json:"name" yaml:"name"`
	URL     string `json:"url" yaml:"url"`
	Healthy bool   `json:"healthy" yaml:"healthy"`
	Status  string `json:"status" yaml:"status"`
}

// CleanupAction records one cleanup request
type CleanupAction struct {
	Action  string `json:"action" yaml:"action"`
	Target  string `json:"target" yaml:"target"`
	Success bool   `json:"success" yaml:"success"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
	Err     error  `json:"-" yaml:"-"`
}

// Report is the outcome of a full run
type Report struct {
	RunID       string          `json:"run_id" yaml:"run_id"`
	Agent       string          `json:"agent" yaml:"agent"`
	StartedAt   time.Time       `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time       `json:"finished_at" yaml:"finished_at"`
	Healthy     int             `json:"healthy" yaml:"healthy"`
	Total       int             `json:"total" yaml:"total"`
	Interrupted bool            `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
	Services    []ServiceHealth `json:"services" yaml:"services"`
	Steps       []StepResult    `json:"steps" yaml:"steps"`
	Cleanup     []CleanupAction `json:"cleanup,omitempty" yaml:"cleanup,omitempty"`
}

// Step returns the result of step n
func (r *Report) Step(n int) (StepResult, bool) {
	for _, s := range r.Steps {
		if s.Number == n {
			return s, true
		}
	}
	return StepResult{}, false
}

// Count returns the number of steps with the given status
func (r *Report) Count(status StepStatus) int {
	n := 0
	for _, s := range r.Steps {
		if s.Status == status {
			n++
		}
	}
	return n
}

// HasFailures reports whether any step failed
func (r *Report) HasFailures() bool {
	return r.Count(StatusFailed) > 0
}

// Err aggregates the failed steps into one error, or nil when none failed.
// Cleanup results are not included.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, s := range r.Steps {
		if s.Status != StatusFailed {
			continue
		}
		if s.Err != nil {
			result = multierror.Append(result, fmt.Errorf("step %d (%s): %w", s.Number, s.Title, s.Err))
		} else {
			result = multierror.Append(result, fmt.Errorf("step %d (%s): %s", s.Number, s.Title, s.Message))
		}
	}
	return result.ErrorOrNil()
}

// CleanupErr aggregates failed cleanup actions
func (r *Report) CleanupErr() error {
	var result *multierror.Error
	for _, c := range r.Cleanup {
		if c.Success {
			continue
		}
		if c.Err != nil {
			result = multierror.Append(result, fmt.Errorf("%s %s: %w", c.Action, c.Target, c.Err))
		} else {
			result = multierror.Append(result, fmt.Errorf("%s %s: %s", c.Action, c.Target, c.Message))
		}
	}
	return result.ErrorOrNil()
}

// summary is the template input derived from the health check
func (r *Report) summary(generated time.Time) content.Summary {
	s := content.Summary{
		Agent:     r.Agent,
		Generated: generated,
		Healthy:   r.Healthy,
		Total:     r.Total,
	}
	for _, svc := range r.Services {
		s.Services = append(s.Services, content.ServiceStatus{Name: svc.Name, URL: svc.URL, Healthy: svc.Healthy})
	}
	return s
}
