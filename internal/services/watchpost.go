package services

import (
	"context"

	"github.com/Backland-Labs/hnrflow/internal/apiclient"
)

// MonitorRequest is the body of POST /api/v1/monitors
type MonitorRequest struct {
	Name            string   `json:"name"`
	URL             string   `json:"url"`
	MonitorType     string   `json:"monitor_type"`
	IntervalSeconds int      `json:"interval_seconds"`
	Tags            []string `json:"tags,omitempty"`
}

// Monitor is a created Watchpost monitor
type Monitor struct {
	*apiclient.Result
	ID        string
	Name      string
	ManageKey string
}

// Watchpost wraps the uptime monitoring service
type Watchpost struct {
	client *apiclient.Client
}

// NewWatchpost creates a Watchpost wrapper
func NewWatchpost(c *apiclient.Client) *Watchpost {
	return &Watchpost{client: c}
}

// CreateMonitor registers a monitor. The response is either
// {"monitor": {...}, "manage_key": "..."} or the monitor fields at top level.
func (w *Watchpost) CreateMonitor(ctx context.Context, req MonitorRequest) (*Monitor, error) {
	result, err := w.client.Post(ctx, apiPrefix+"/monitors", req, nil)
	if err != nil {
		return nil, err
	}

	m := &Monitor{Result: result}
	if result.IsError {
		return m, nil
	}

	prefix := ""
	if result.Get("monitor").IsObject() {
		prefix = "monitor."
	}
	m.ID = result.String(prefix + "id")
	m.Name = result.String(prefix + "name")
	m.ManageKey = result.String("manage_key")
	return m, nil
}

// DeleteMonitor removes a monitor, authorised by its manage key
func (w *Watchpost) DeleteMonitor(ctx context.Context, id, manageKey string) (*apiclient.Result, error) {
	return w.client.Delete(ctx, apiPrefix+"/monitors/"+segment(id), apiclient.BearerAuth(manageKey))
}
