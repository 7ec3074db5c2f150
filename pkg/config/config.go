package config

import "time"

// Config is the root configuration structure for ragdoctor.
// It describes where the deployment's env files live, which service endpoints
// to probe, which containers to inspect, and how results are reported.
type Config struct {
	// Env controls how the configuration resolver sources env files.
	Env EnvConfig `yaml:"env"`

	// Probe contains the ordered health probe targets.
	Probe ProbeConfig `yaml:"probe"`

	// Logs contains container log inspection settings.
	Logs LogsConfig `yaml:"logs"`

	// Smoke contains the APRAG endpoint smoke check settings.
	Smoke SmokeConfig `yaml:"smoke"`

	// History contains the run history database settings.
	History HistoryConfig `yaml:"history"`

	// Monitor contains settings for the scheduled probe loop.
	Monitor MonitorConfig `yaml:"monitor"`

	// Telemetry contains logging configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// EnvConfig controls env file resolution.
type EnvConfig struct {
	// Files are dotenv files read in order; later files override earlier ones.
	// Default: [".env"]
	Files []string `yaml:"files"`

	// IncludeEnviron fills recognized keys from the process environment,
	// taking precedence over file values the way docker compose does.
	// Default: false
	IncludeEnviron bool `yaml:"include_environ"`

	// BrowserBuild marks NEXT_PUBLIC_* values as inlined into browser bundles,
	// which makes loopback hosts a violation.
	// Default: true
	BrowserBuild *bool `yaml:"browser_build"`

	// ExternalHost is the externally reachable host that NEXT_PUBLIC_* URLs
	// must point at. Empty disables the host comparison.
	ExternalHost string `yaml:"external_host"`
}

// ProbeConfig contains health probe settings.
type ProbeConfig struct {
	// DefaultTimeout applies to targets without their own timeout.
	// Default: 5s
	DefaultTimeout time.Duration `yaml:"default_timeout"`

	// Targets are probed in order. Defaults to the standard deployment ports.
	Targets []TargetConfig `yaml:"targets"`
}

// TargetConfig is a single probe target.
type TargetConfig struct {
	// Name identifies the service in reports (e.g., "reranker").
	Name string `yaml:"name"`

	// URL is the health endpoint (e.g., "http://localhost:8008/health").
	URL string `yaml:"url"`

	// Timeout bounds the request. Zero uses probe.default_timeout.
	Timeout time.Duration `yaml:"timeout"`

	// InfoURL is an optional /info document checked against RERANKER_TYPE.
	InfoURL string `yaml:"info_url"`
}

// LogsConfig contains container log inspection settings.
type LogsConfig struct {
	// DockerHost overrides DOCKER_HOST for the Docker Engine API client.
	DockerHost string `yaml:"docker_host"`

	// Tail is the number of trailing lines read per container.
	// Default: 200
	Tail int `yaml:"tail"`

	// Watches are the container/keyword pairs the doctor command greps.
	Watches []LogWatchConfig `yaml:"watches"`
}

// LogWatchConfig names a container and the keywords to look for in its logs.
type LogWatchConfig struct {
	Container string   `yaml:"container"`
	Keywords  []string `yaml:"keywords"`
}

// SmokeConfig contains APRAG smoke check settings.
type SmokeConfig struct {
	// APRAGURL is the base URL of the APRAG service.
	// Default: "http://localhost:8007"
	APRAGURL string `yaml:"aprag_url"`

	// DocumentURL is the base URL serving /sessions/{id}/chunks and /admin/stats.
	// Default: "http://localhost:8003"
	DocumentURL string `yaml:"document_url"`

	// UserID is sent in the hybrid query body.
	// Default: "ragdoctor"
	UserID string `yaml:"user_id"`

	// Query is the question sent to the hybrid query endpoint.
	Query string `yaml:"query"`

	// Timeout bounds each smoke request. Query latency is dominated by
	// inference, so the default is well above the probe timeout.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`

	// Repeat is how many times the query step runs in repeated mode.
	// Default: 1
	Repeat int `yaml:"repeat"`

	// Rate is the maximum repeated queries per second.
	// Default: 1
	Rate float64 `yaml:"rate"`
}

// HistoryConfig contains run history settings.
type HistoryConfig struct {
	// Enabled records every run to the history database.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Driver selects the SQLite driver: "sqlite" (pure Go) or "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Path is the database file path.
	// Default: "ragdoctor.db"
	Path string `yaml:"path"`

	// Retention is how long runs are kept by the monitor's pruning pass.
	// Zero keeps everything.
	// Default: 168h
	Retention time.Duration `yaml:"retention"`
}

// MonitorConfig contains scheduled probing settings.
type MonitorConfig struct {
	// Schedule is a cron expression or descriptor (e.g., "@every 1m").
	// Default: "@every 1m"
	Schedule string `yaml:"schedule"`

	// ListenAddress serves /metrics, /health and /report.
	// Default: "127.0.0.1:9109"
	ListenAddress string `yaml:"listen_address"`
}

// TelemetryConfig contains observability settings.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "warn"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// Redact masks API keys and tokens in log output.
	// Default: true
	Redact *bool `yaml:"redact"`
}

// IsBrowserBuild reports whether NEXT_PUBLIC_* values are treated as browser-side.
func (e EnvConfig) IsBrowserBuild() bool {
	return e.BrowserBuild == nil || *e.BrowserBuild
}

// RedactEnabled reports whether log redaction is on.
func (l LoggingConfig) RedactEnabled() bool {
	return l.Redact == nil || *l.Redact
}
