package config

import "time"

// Default values for configuration fields.
const (
	// Env defaults
	DefaultEnvFile = ".env"

	// Probe defaults
	DefaultProbeTimeout = 5 * time.Second

	// Logs defaults
	DefaultLogTail = 200

	// Smoke defaults
	DefaultAPRAGURL     = "http://localhost:8007"
	DefaultDocumentURL  = "http://localhost:8003"
	DefaultSmokeUserID  = "ragdoctor"
	DefaultSmokeQuery   = "What topics does this course cover?"
	DefaultSmokeTimeout = 60 * time.Second
	DefaultSmokeRepeat  = 1
	DefaultSmokeRate    = 1.0

	// History defaults
	DefaultHistoryDriver    = "sqlite"
	DefaultHistoryPath      = "ragdoctor.db"
	DefaultHistoryRetention = 7 * 24 * time.Hour

	// Monitor defaults
	DefaultMonitorSchedule = "@every 1m"
	DefaultMonitorListen   = "127.0.0.1:9109"

	// Logging defaults
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// DefaultTargets returns the standard deployment health endpoints in probe order.
func DefaultTargets() []TargetConfig {
	return []TargetConfig{
		{Name: "api-gateway", URL: "http://localhost:8000/health"},
		{Name: "model-inference", URL: "http://localhost:8002/health"},
		{Name: "document-processing", URL: "http://localhost:8003/health"},
		{Name: "aprag", URL: "http://localhost:8007/health"},
		{Name: "reranker", URL: "http://localhost:8008/health", InfoURL: "http://localhost:8008/info"},
		{Name: "auth", URL: "http://localhost:8080/health"},
		{Name: "chromadb", URL: "http://localhost:8888/health"},
	}
}

// DefaultLogWatches returns the container greps used by the doctor command.
func DefaultLogWatches() []LogWatchConfig {
	return []LogWatchConfig{
		{Container: "reranker-service", Keywords: []string{"reorder", "error"}},
		{Container: "aprag-service", Keywords: []string{"timeout", "error"}},
	}
}

// NewDefaultConfig returns a configuration with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields. Explicitly set values are kept.
func ApplyDefaults(cfg *Config) {
	if len(cfg.Env.Files) == 0 {
		cfg.Env.Files = []string{DefaultEnvFile}
	}

	if cfg.Probe.DefaultTimeout == 0 {
		cfg.Probe.DefaultTimeout = DefaultProbeTimeout
	}
	if len(cfg.Probe.Targets) == 0 {
		cfg.Probe.Targets = DefaultTargets()
	}

	if cfg.Logs.Tail == 0 {
		cfg.Logs.Tail = DefaultLogTail
	}
	if cfg.Logs.Watches == nil {
		cfg.Logs.Watches = DefaultLogWatches()
	}

	if cfg.Smoke.APRAGURL == "" {
		cfg.Smoke.APRAGURL = DefaultAPRAGURL
	}
	if cfg.Smoke.DocumentURL == "" {
		cfg.Smoke.DocumentURL = DefaultDocumentURL
	}
	if cfg.Smoke.UserID == "" {
		cfg.Smoke.UserID = DefaultSmokeUserID
	}
	if cfg.Smoke.Query == "" {
		cfg.Smoke.Query = DefaultSmokeQuery
	}
	if cfg.Smoke.Timeout == 0 {
		cfg.Smoke.Timeout = DefaultSmokeTimeout
	}
	if cfg.Smoke.Repeat == 0 {
		cfg.Smoke.Repeat = DefaultSmokeRepeat
	}
	if cfg.Smoke.Rate == 0 {
		cfg.Smoke.Rate = DefaultSmokeRate
	}

	if cfg.History.Driver == "" {
		cfg.History.Driver = DefaultHistoryDriver
	}
	if cfg.History.Path == "" {
		cfg.History.Path = DefaultHistoryPath
	}
	if cfg.History.Retention == 0 {
		cfg.History.Retention = DefaultHistoryRetention
	}

	if cfg.Monitor.Schedule == "" {
		cfg.Monitor.Schedule = DefaultMonitorSchedule
	}
	if cfg.Monitor.ListenAddress == "" {
		cfg.Monitor.ListenAddress = DefaultMonitorListen
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
}
