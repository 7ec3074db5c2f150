package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides named RAGDOCTOR_SECTION_FIELD.
//
// Unlike LoadConfig, a missing file is not an error: ragdoctor is usually run
// ad hoc from a deployment checkout without its own config file, so built-in
// defaults are used instead.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefaultConfig()
	} else {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
			cfg = NewDefaultConfig()
		default:
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies RAGDOCTOR_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	// Env overrides
	if val := os.Getenv("RAGDOCTOR_ENV_FILES"); val != "" {
		cfg.Env.Files = splitList(val)
	}
	if val := os.Getenv("RAGDOCTOR_ENV_INCLUDE_ENVIRON"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Env.IncludeEnviron = b
		}
	}
	if val := os.Getenv("RAGDOCTOR_ENV_BROWSER_BUILD"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Env.BrowserBuild = &b
		}
	}
	if val := os.Getenv("RAGDOCTOR_ENV_EXTERNAL_HOST"); val != "" {
		cfg.Env.ExternalHost = val
	}

	// Probe overrides
	if val := os.Getenv("RAGDOCTOR_PROBE_DEFAULT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Probe.DefaultTimeout = d
		}
	}

	// Logs overrides
	if val := os.Getenv("RAGDOCTOR_LOGS_DOCKER_HOST"); val != "" {
		cfg.Logs.DockerHost = val
	}
	if val := os.Getenv("RAGDOCTOR_LOGS_TAIL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Logs.Tail = i
		}
	}

	// Smoke overrides
	if val := os.Getenv("RAGDOCTOR_SMOKE_APRAG_URL"); val != "" {
		cfg.Smoke.APRAGURL = val
	}
	if val := os.Getenv("RAGDOCTOR_SMOKE_DOCUMENT_URL"); val != "" {
		cfg.Smoke.DocumentURL = val
	}
	if val := os.Getenv("RAGDOCTOR_SMOKE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Smoke.Timeout = d
		}
	}

	// History overrides
	if val := os.Getenv("RAGDOCTOR_HISTORY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.History.Enabled = b
		}
	}
	if val := os.Getenv("RAGDOCTOR_HISTORY_DRIVER"); val != "" {
		cfg.History.Driver = val
	}
	if val := os.Getenv("RAGDOCTOR_HISTORY_PATH"); val != "" {
		cfg.History.Path = val
	}

	// Monitor overrides
	if val := os.Getenv("RAGDOCTOR_MONITOR_SCHEDULE"); val != "" {
		cfg.Monitor.Schedule = val
	}
	if val := os.Getenv("RAGDOCTOR_MONITOR_LISTEN_ADDRESS"); val != "" {
		cfg.Monitor.ListenAddress = val
	}

	// Telemetry overrides
	if val := os.Getenv("RAGDOCTOR_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("RAGDOCTOR_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
}

// splitList splits a comma separated list, dropping empty entries.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
