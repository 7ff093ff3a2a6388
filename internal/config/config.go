// Package config provides configuration management for the hnrflow CLI.
// It loads configuration from an optional YAML file, an optional .env file and
// environment variables, with defaults pointing at a local HNR stack.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Verbosity represents the output verbosity level
type Verbosity string

const (
	// VerbosityNormal shows only essential output
	VerbosityNormal Verbosity = "normal"
	// VerbosityVerbose includes request details
	VerbosityVerbose Verbosity = "verbose"
	// VerbosityDebug provides full debug logging
	VerbosityDebug Verbosity = "debug"
)

// Service names, in the order the health check visits them.
const (
	ServiceChat         = "Chat"
	ServiceKanban       = "Kanban"
	ServiceWatchpost    = "Watchpost"
	ServiceBlog         = "Blog"
	ServiceDocs         = "Docs"
	ServiceDashboard    = "Dashboard"
	ServiceQR           = "QR"
	ServiceAppDirectory = "App Directory"
)

const (
	// DefaultAgentName is the sender name used in messages and tasks
	DefaultAgentName = "workflow-agent"

	// DefaultTimeout is the per-request timeout
	DefaultTimeout = 10 * time.Second
)

// serviceDef binds a service to its environment variable and default URL
type serviceDef struct {
	name       string
	envVar     string
	defaultURL string
}

var serviceDefs = []serviceDef{
	{ServiceChat, "CHAT_URL", "http://localhost:3006"},
	{ServiceKanban, "KANBAN_URL", "http://localhost:3002"},
	{ServiceWatchpost, "WATCHPOST_URL", "http://localhost:3007"},
	{ServiceBlog, "BLOG_URL", "http://localhost:3004"},
	{ServiceDocs, "DOCS_URL", "http://localhost:3005"},
	{ServiceDashboard, "DASHBOARD_URL", "http://localhost:3008"},
	{ServiceQR, "QR_URL", "http://localhost:3001"},
	{ServiceAppDirectory, "APP_DIR_URL", "http://localhost:3003"},
}

// Endpoint is a named service base URL
type Endpoint struct {
	Name    string
	BaseURL string
}

// Config holds all configuration for a workflow run
type Config struct {
	// Endpoints lists the eight services in health-check order
	Endpoints []Endpoint

	// DashboardKey is the bearer token for metric submission; empty skips that step
	DashboardKey string

	// AgentName identifies this agent in created artifacts
	AgentName string

	// Timeout is the per-request timeout
	Timeout time.Duration

	// Cleanup controls whether created resources are removed at the end of the run
	Cleanup bool

	// Verbosity controls output level
	Verbosity Verbosity

	// ReportFile, when set, receives the run report (.json, .yaml or .yml)
	ReportFile string
}

// FileConfig is the YAML file layout accepted by --config
type FileConfig struct {
	Services       map[string]string `yaml:"services"`
	DashboardKey   string            `yaml:"dashboard_key"`
	AgentName      string            `yaml:"agent_name"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	Cleanup        *bool             `yaml:"cleanup"`
	Verbosity      string            `yaml:"verbosity"`
	ReportFile     string            `yaml:"report_file"`
}

// Options selects the optional configuration sources
type Options struct {
	// ConfigFile is a YAML file applied over the defaults
	ConfigFile string

	// EnvFile is a dotenv file loaded into the process environment
	EnvFile string
}

// New creates a new Config instance from environment variables
func New() (*Config, error) {
	return Load(Options{})
}

// Load builds the configuration. Precedence, lowest first: defaults, YAML file,
// then the environment (which includes variables loaded from EnvFile).
func Load(opts Options) (*Config, error) {
	cfg := defaults()

	if opts.ConfigFile != "" {
		fc, err := readFile(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		if err := cfg.applyFile(fc); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", opts.ConfigFile, err)
		}
	}

	if opts.EnvFile != "" {
		// godotenv.Load never overrides variables already set in the process
		if err := godotenv.Load(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{
		AgentName: DefaultAgentName,
		Timeout:   DefaultTimeout,
		Cleanup:   true,
		Verbosity: VerbosityNormal,
	}
	for _, def := range serviceDefs {
		cfg.Endpoints = append(cfg.Endpoints, Endpoint{Name: def.name, BaseURL: def.defaultURL})
	}
	return cfg
}

func readFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

func (c *Config) applyFile(fc *FileConfig) error {
	for key, value := range fc.Services {
		idx := c.indexOf(key)
		if idx < 0 {
			return fmt.Errorf("unknown service %q", key)
		}
		c.Endpoints[idx].BaseURL = value
	}
	if fc.DashboardKey != "" {
		c.DashboardKey = fc.DashboardKey
	}
	if fc.AgentName != "" {
		c.AgentName = fc.AgentName
	}
	if fc.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be positive, got: %d", fc.TimeoutSeconds)
	}
	if fc.TimeoutSeconds > 0 {
		c.Timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	if fc.Cleanup != nil {
		c.Cleanup = *fc.Cleanup
	}
	if fc.Verbosity != "" {
		v, err := parseVerbosity(fc.Verbosity)
		if err != nil {
			return err
		}
		c.Verbosity = v
	}
	if fc.ReportFile != "" {
		c.ReportFile = fc.ReportFile
	}
	return nil
}

func (c *Config) applyEnv() error {
	for i, def := range serviceDefs {
		if value := os.Getenv(def.envVar); value != "" {
			c.Endpoints[i].BaseURL = value
		}
	}

	if key := os.Getenv("DASHBOARD_KEY"); key != "" {
		c.DashboardKey = key
	}

	if name := os.Getenv("HNRFLOW_AGENT_NAME"); name != "" {
		c.AgentName = name
	}

	if timeoutStr := os.Getenv("HNRFLOW_TIMEOUT_SECONDS"); timeoutStr != "" {
		secs, err := strconv.Atoi(timeoutStr)
		if err != nil {
			return fmt.Errorf("invalid HNRFLOW_TIMEOUT_SECONDS: %w", err)
		}
		if secs <= 0 {
			return fmt.Errorf("HNRFLOW_TIMEOUT_SECONDS must be positive, got: %d", secs)
		}
		c.Timeout = time.Duration(secs) * time.Second
	}

	cleanup, err := parseBoolEnv("HNRFLOW_CLEANUP", c.Cleanup)
	if err != nil {
		return err
	}
	c.Cleanup = cleanup

	if verbosity := os.Getenv("HNRFLOW_VERBOSITY"); verbosity != "" {
		v, err := parseVerbosity(verbosity)
		if err != nil {
			return fmt.Errorf("HNRFLOW_VERBOSITY %w", err)
		}
		c.Verbosity = v
	}

	if reportFile := os.Getenv("HNRFLOW_REPORT_FILE"); reportFile != "" {
		c.ReportFile = reportFile
	}
	return nil
}

// Validate checks that every endpoint is an absolute http(s) URL
func (c *Config) Validate() error {
	if len(c.Endpoints) != len(serviceDefs) {
		return fmt.Errorf("expected %d service endpoints, got %d", len(serviceDefs), len(c.Endpoints))
	}
	for _, ep := range c.Endpoints {
		if err := validateBaseURL(ep.BaseURL); err != nil {
			return fmt.Errorf("%s URL %w", ep.Name, err)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got: %s", c.Timeout)
	}
	if strings.TrimSpace(c.AgentName) == "" {
		return fmt.Errorf("agent name cannot be empty")
	}
	return nil
}

// URL returns the base URL of the named service, or "" if unknown
func (c *Config) URL(name string) string {
	if idx := c.indexOf(name); idx >= 0 {
		return c.Endpoints[idx].BaseURL
	}
	return ""
}

// HasDashboardKey reports whether metric submission is enabled
func (c *Config) HasDashboardKey() bool {
	return c.DashboardKey != ""
}

// IsVerbose returns true if verbosity is verbose or debug
func (c *Config) IsVerbose() bool {
	return c.Verbosity == VerbosityVerbose || c.Verbosity == VerbosityDebug
}

// IsDebug returns true if verbosity is debug
func (c *Config) IsDebug() bool {
	return c.Verbosity == VerbosityDebug
}

// indexOf matches a service by display name or env-style key ("app_dir", "APP_DIR_URL")
func (c *Config) indexOf(name string) int {
	norm := normalizeKey(name)
	for i, def := range serviceDefs {
		if normalizeKey(def.name) == norm || normalizeKey(strings.TrimSuffix(def.envVar, "_URL")) == norm {
			return i
		}
	}
	return -1
}

func normalizeKey(s string) string {
	s = strings.ToLower(s)
	s = strings.TrimSuffix(s, "_url")
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https, got: %s", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("must have a host, got: %s", raw)
	}
	return nil
}

func parseVerbosity(value string) (Verbosity, error) {
	switch Verbosity(value) {
	case VerbosityNormal, VerbosityVerbose, VerbosityDebug:
		return Verbosity(value), nil
	default:
		return "", fmt.Errorf("must be one of: normal, verbose, debug; got: %s", value)
	}
}

// parseBoolEnv parses a boolean environment variable with a default value
func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%s must be true or false, got: %s", key, value)
	}
}
