package docs_test

import (
	"os"
	"strings"
	"testing"
)

// TestREADMEDocumentsConfiguration verifies that README.md covers every flag and variable
func TestREADMEDocumentsConfiguration(t *testing.T) {
	content, err := os.ReadFile("../../README.md")
	if err != nil {
		t.Fatal("Failed to read README.md:", err)
	}

	doc := string(content)

	t.Run("CLI Flags", func(t *testing.T) {
		flags := []string{"--config", "--env-file", "--no-cleanup", "--report-file", "--strict", "--version"}
		for _, flag := range flags {
			if !strings.Contains(doc, "`"+flag) {
				t.Errorf("README.md missing documentation for flag: %s", flag)
			}
		}
	})

	t.Run("Service URLs", func(t *testing.T) {
		vars := map[string]string{
			"CHAT_URL":      "3006",
			"KANBAN_URL":    "3002",
			"WATCHPOST_URL": "3007",
			"BLOG_URL":      "3004",
			"DOCS_URL":      "3005",
			"DASHBOARD_URL": "3008",
			"QR_URL":        "3001",
			"APP_DIR_URL":   "3003",
		}
		for name, port := range vars {
			row := "| `" + name + "` | `http://localhost:" + port + "` |"
			if !strings.Contains(doc, row) {
				t.Errorf("README.md missing default URL row: %s", row)
			}
		}
	})

	t.Run("Settings", func(t *testing.T) {
		vars := []string{
			"DASHBOARD_KEY",
			"HNRFLOW_AGENT_NAME",
			"HNRFLOW_TIMEOUT_SECONDS",
			"HNRFLOW_CLEANUP",
			"HNRFLOW_VERBOSITY",
			"HNRFLOW_REPORT_FILE",
			"HNRFLOW_LOG_LEVEL",
			"HNRFLOW_LOG_FORMAT",
			"HNRFLOW_LOG_CALLER",
			"HNRFLOW_LOG_STACKTRACE",
		}
		for _, v := range vars {
			if !strings.Contains(doc, "`"+v+"`") {
				t.Errorf("README.md missing documentation for variable: %s", v)
			}
		}
	})

	t.Run("Workflow Steps", func(t *testing.T) {
		for i := 1; i <= 8; i++ {
			prefix := "\n" + string(rune('0'+i)) + ". "
			if !strings.Contains(doc, prefix) {
				t.Errorf("README.md missing workflow step %d", i)
			}
		}
	})
}
