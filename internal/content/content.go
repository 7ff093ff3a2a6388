// Package content renders the documents, posts and messages the workflow
// publishes. Templates are embedded in the binary.
package content

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("content").Funcs(template.FuncMap{
	"rfc3339": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"clock":   func(t time.Time) string { return t.UTC().Format("15:04 UTC") },
}).ParseFS(templateFS, "templates/*.tmpl"))

// ServiceStatus is the health of one service at check time
type ServiceStatus struct {
	Name    string
	URL     string
	Healthy bool
}

// Summary is the input shared by all templates
type Summary struct {
	Agent     string
	Generated time.Time
	Services  []ServiceStatus
	Healthy   int
	Total     int
}

// AllHealthy reports whether every checked service was healthy
func (s Summary) AllHealthy() bool {
	return s.Total > 0 && s.Healthy == s.Total
}

// HealthReportTitle is the title of the health document
const HealthReportTitle = "Platform Health Report"

// StatusPostTitle returns the blog post title for s
func StatusPostTitle(s Summary) string {
	if s.AllHealthy() {
		return "Platform Status: All Systems Operational"
	}
	return fmt.Sprintf("Platform Status: %d/%d Services Healthy", s.Healthy, s.Total)
}

// HealthReport renders the Markdown health document
func HealthReport(s Summary) (string, error) {
	return render("health_report.md.tmpl", s)
}

// StatusPost renders the Markdown body of the status blog post
func StatusPost(s Summary) (string, error) {
	return render("status_post.md.tmpl", s)
}

// ChatMessage renders the one-line chat notification
func ChatMessage(s Summary) (string, error) {
	msg, err := render("chat_message.tmpl", s)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(msg), nil
}

func render(name string, s Summary) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, s); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}
