// Package hnrtest runs an in-process fake of the eight HNR services for tests.
package hnrtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Backland-Labs/hnrflow/internal/config"
)

// Call is one request received by the fake platform
type Call struct {
	Service string
	Method  string
	Path    string
	Query   string
	Header  http.Header
	Body    []byte
}

// JSON decodes the request body
func (c Call) JSON(v interface{}) error {
	return json.Unmarshal(c.Body, v)
}

// Key values handed out by the fake services
const (
	MonitorID    = "mon-1"
	MonitorKey   = "mon-key"
	BoardID      = "board-1"
	BoardKey     = "board-key"
	ColumnID     = 11
	WorkspaceKey = "ws-key"
	Workspace    = "workflow-docs"
	BlogID       = "blog-1"
	BlogKey      = "blog-key"
	QRImage      = "PHN2Zz48L3N2Zz4="
)

// Platform is a set of fake HNR services. Fields may be changed before the
// workflow runs; handlers read them under the lock.
type Platform struct {
	mu      sync.Mutex
	servers map[string]*httptest.Server
	calls   []Call

	// Unhealthy services answer the health check with status "degraded"
	Unhealthy map[string]bool

	// Failures maps "METHOD /path" to a status code returned with an error body
	Failures map[string]int

	// RoomsBody overrides the JSON returned by GET /api/v1/rooms
	RoomsBody string

	// BoardBody overrides the JSON returned by GET /api/v1/boards/{id}
	BoardBody string

	// QRBody overrides the JSON returned by POST /api/v1/qr/generate
	QRBody string

	// WrapMonitor controls whether the monitor is nested under "monitor"
	WrapMonitor bool

	// OnCall, when set, is invoked with each request before it is answered
	OnCall func(Call)
}

// New starts the eight fake services and stops them when the test ends
func New(t testing.TB) *Platform {
	t.Helper()
	p := &Platform{
		servers:     make(map[string]*httptest.Server),
		Unhealthy:   make(map[string]bool),
		Failures:    make(map[string]int),
		WrapMonitor: true,
	}
	for _, ep := range defaultEndpoints() {
		name := ep.Name
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p.serve(name, w, r)
		}))
		p.servers[name] = srv
		t.Cleanup(srv.Close)
	}
	return p
}

func defaultEndpoints() []config.Endpoint {
	return []config.Endpoint{
		{Name: config.ServiceChat},
		{Name: config.ServiceKanban},
		{Name: config.ServiceWatchpost},
		{Name: config.ServiceBlog},
		{Name: config.ServiceDocs},
		{Name: config.ServiceDashboard},
		{Name: config.ServiceQR},
		{Name: config.ServiceAppDirectory},
	}
}

// URL returns the base URL of a fake service
func (p *Platform) URL(service string) string {
	return p.servers[service].URL
}

// Down stops a service so that calls to it fail at the transport level
func (p *Platform) Down(service string) {
	p.servers[service].Close()
}

// Config returns a configuration pointing every endpoint at the fakes
func (p *Platform) Config() *config.Config {
	eps := defaultEndpoints()
	for i := range eps {
		eps[i].BaseURL = p.URL(eps[i].Name)
	}
	return &config.Config{
		Endpoints: eps,
		AgentName: config.DefaultAgentName,
		Timeout:   config.DefaultTimeout,
		Cleanup:   true,
		Verbosity: config.VerbosityNormal,
	}
}

// Calls returns the requests received, optionally filtered by service
func (p *Platform) Calls(service string) []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Call
	for _, c := range p.calls {
		if service == "" || c.Service == service {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the requests matching method and a path prefix
func (p *Platform) Find(method, pathPrefix string) []Call {
	var out []Call
	for _, c := range p.Calls("") {
		if c.Method == method && strings.HasPrefix(c.Path, pathPrefix) {
			out = append(out, c)
		}
	}
	return out
}

// Fail makes "METHOD path" return status with a JSON error body
func (p *Platform) Fail(method, path string, status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Failures[method+" "+path] = status
}

func (p *Platform) serve(service string, w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	call := Call{
		Service: service,
		Method:  r.Method,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Header:  r.Header.Clone(),
		Body:    body,
	}

	p.mu.Lock()
	p.calls = append(p.calls, call)
	status, failing := p.Failures[r.Method+" "+r.URL.Path]
	unhealthy := p.Unhealthy[service]
	roomsBody, boardBody, qrBody, wrap := p.RoomsBody, p.BoardBody, p.QRBody, p.WrapMonitor
	onCall := p.OnCall
	p.mu.Unlock()

	if onCall != nil {
		onCall(call)
	}

	if failing {
		writeJSON(w, status, fmt.Sprintf(`{"error": "%s failed"}`, r.URL.Path))
		return
	}

	route := r.Method + " " + r.URL.Path
	switch {
	case route == "GET /api/v1/health":
		if unhealthy {
			writeJSON(w, http.StatusOK, `{"status": "degraded"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"status": "ok"}`)

	case service == config.ServiceWatchpost && route == "POST /api/v1/monitors":
		if wrap {
			writeJSON(w, http.StatusCreated, fmt.Sprintf(`{"monitor": {"id": %q, "name": "Workflow Demo"}, "manage_key": %q}`, MonitorID, MonitorKey))
		} else {
			writeJSON(w, http.StatusCreated, fmt.Sprintf(`{"id": %q, "name": "Workflow Demo", "manage_key": %q}`, MonitorID, MonitorKey))
		}
	case service == config.ServiceWatchpost && route == "DELETE /api/v1/monitors/"+MonitorID:
		w.WriteHeader(http.StatusNoContent)

	case service == config.ServiceKanban && route == "POST /api/v1/boards":
		writeJSON(w, http.StatusCreated, fmt.Sprintf(`{"id": %q, "name": "Workflow Demo", "manage_key": %q}`, BoardID, BoardKey))
	case service == config.ServiceKanban && route == "GET /api/v1/boards/"+BoardID:
		if boardBody != "" {
			writeJSON(w, http.StatusOK, boardBody)
			return
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"id": %q, "columns": [{"id": %d, "name": "Backlog"}, {"id": 12, "name": "Done"}]}`, BoardID, ColumnID))
	case service == config.ServiceKanban && route == "POST /api/v1/boards/"+BoardID+"/tasks":
		writeJSON(w, http.StatusCreated, `{"id": "task-1", "title": "Investigate service health patterns", "priority": 2}`)
	case service == config.ServiceKanban && route == "POST /api/v1/boards/"+BoardID+"/archive":
		writeJSON(w, http.StatusOK, `{"archived": true}`)

	case service == config.ServiceDocs && route == "POST /api/v1/workspaces":
		writeJSON(w, http.StatusCreated, fmt.Sprintf(`{"slug": %q, "name": "Workflow Docs", "manage_key": %q}`, Workspace, WorkspaceKey))
	case service == config.ServiceDocs && route == "POST /api/v1/workspaces/"+Workspace+"/documents":
		writeJSON(w, http.StatusCreated, `{"title": "Platform Health Report", "slug": "platform-health-report"}`)

	case service == config.ServiceBlog && route == "POST /api/v1/blogs":
		writeJSON(w, http.StatusCreated, fmt.Sprintf(`{"id": %q, "name": "Workflow Updates", "manage_key": %q}`, BlogID, BlogKey))
	case service == config.ServiceBlog && route == "POST /api/v1/blogs/"+BlogID+"/posts":
		writeJSON(w, http.StatusCreated, `{"id": "post-1", "title": "Platform Status: All Systems Operational"}`)

	case service == config.ServiceChat && route == "GET /api/v1/rooms":
		if roomsBody != "" {
			writeJSON(w, http.StatusOK, roomsBody)
			return
		}
		writeJSON(w, http.StatusOK, `[{"id": "room-1", "name": "random"}, {"id": "room-2", "name": "general"}]`)
	case service == config.ServiceChat && strings.HasPrefix(route, "POST /api/v1/rooms/") && strings.HasSuffix(route, "/messages"):
		var msg map[string]interface{}
		_ = json.Unmarshal(body, &msg)
		content, _ := json.Marshal(msg["content"])
		writeJSON(w, http.StatusCreated, fmt.Sprintf(`{"id": "msg-1", "content": %s}`, content))

	case service == config.ServiceDashboard && route == "POST /api/v1/stats":
		var stats []interface{}
		_ = json.Unmarshal(body, &stats)
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"accepted": %d}`, len(stats)))

	case service == config.ServiceQR && route == "POST /api/v1/qr/generate":
		if qrBody != "" {
			writeJSON(w, http.StatusOK, qrBody)
			return
		}
		writeJSON(w, http.StatusOK, fmt.Sprintf(`{"image_base64": %q, "format": "svg"}`, QRImage))

	default:
		writeJSON(w, http.StatusNotFound, `{"error": "not found"}`)
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
