package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "probe.targets[0].url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together as a ValidationError.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEnv(&cfg.Env)...)
	errs = append(errs, validateProbe(&cfg.Probe)...)
	errs = append(errs, validateLogs(&cfg.Logs)...)
	errs = append(errs, validateSmoke(&cfg.Smoke)...)
	errs = append(errs, validateHistory(&cfg.History)...)
	errs = append(errs, validateMonitor(&cfg.Monitor)...)
	errs = append(errs, validateLogging(&cfg.Telemetry.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateEnv(cfg *EnvConfig) []FieldError {
	var errs []FieldError

	for i, file := range cfg.Files {
		if strings.TrimSpace(file) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("env.files[%d]", i),
				Message: "file path cannot be empty",
			})
		}
	}

	if strings.Contains(cfg.ExternalHost, "/") {
		errs = append(errs, FieldError{
			Field:   "env.external_host",
			Message: "external host must be a bare host name, not a URL",
		})
	}

	return errs
}

func validateProbe(cfg *ProbeConfig) []FieldError {
	var errs []FieldError

	if cfg.DefaultTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "probe.default_timeout",
			Message: "default timeout must be positive",
		})
	}

	seen := make(map[string]bool, len(cfg.Targets))
	for i, target := range cfg.Targets {
		prefix := fmt.Sprintf("probe.targets[%d]", i)

		if target.Name == "" {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: "target name is required",
			})
		} else if seen[target.Name] {
			errs = append(errs, FieldError{
				Field:   prefix + ".name",
				Message: fmt.Sprintf("duplicate target name %q", target.Name),
			})
		}
		seen[target.Name] = true

		if !isHTTPURL(target.URL) {
			errs = append(errs, FieldError{
				Field:   prefix + ".url",
				Message: "must be a valid http or https URL",
			})
		}
		if target.InfoURL != "" && !isHTTPURL(target.InfoURL) {
			errs = append(errs, FieldError{
				Field:   prefix + ".info_url",
				Message: "must be a valid http or https URL",
			})
		}
		if target.Timeout < 0 {
			errs = append(errs, FieldError{
				Field:   prefix + ".timeout",
				Message: "timeout must be positive",
			})
		}
	}

	return errs
}

func validateLogs(cfg *LogsConfig) []FieldError {
	var errs []FieldError

	if cfg.Tail < 0 {
		errs = append(errs, FieldError{
			Field:   "logs.tail",
			Message: "tail must be non-negative",
		})
	}

	for i, watch := range cfg.Watches {
		if strings.TrimSpace(watch.Container) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("logs.watches[%d].container", i),
				Message: "container is required",
			})
		}
	}

	return errs
}

func validateSmoke(cfg *SmokeConfig) []FieldError {
	var errs []FieldError

	if !isHTTPURL(cfg.APRAGURL) {
		errs = append(errs, FieldError{
			Field:   "smoke.aprag_url",
			Message: "must be a valid http or https URL",
		})
	}
	if !isHTTPURL(cfg.DocumentURL) {
		errs = append(errs, FieldError{
			Field:   "smoke.document_url",
			Message: "must be a valid http or https URL",
		})
	}
	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "smoke.timeout",
			Message: "timeout must be positive",
		})
	}
	if cfg.Repeat < 0 {
		errs = append(errs, FieldError{
			Field:   "smoke.repeat",
			Message: "repeat must be non-negative",
		})
	}
	if cfg.Rate < 0 {
		errs = append(errs, FieldError{
			Field:   "smoke.rate",
			Message: "rate must be non-negative",
		})
	}

	return errs
}

func validateHistory(cfg *HistoryConfig) []FieldError {
	var errs []FieldError

	validDrivers := map[string]bool{"sqlite": true, "sqlite3": true}
	if !validDrivers[cfg.Driver] {
		errs = append(errs, FieldError{
			Field:   "history.driver",
			Message: fmt.Sprintf("invalid driver %q (must be: sqlite, sqlite3)", cfg.Driver),
		})
	}
	if cfg.Enabled && strings.TrimSpace(cfg.Path) == "" {
		errs = append(errs, FieldError{
			Field:   "history.path",
			Message: "path is required when history is enabled",
		})
	}
	if cfg.Retention < 0 {
		errs = append(errs, FieldError{
			Field:   "history.retention",
			Message: "retention must be non-negative",
		})
	}

	return errs
}

func validateMonitor(cfg *MonitorConfig) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(cfg.Schedule) == "" {
		errs = append(errs, FieldError{
			Field:   "monitor.schedule",
			Message: "schedule is required",
		})
	}
	if cfg.ListenAddress != "" && !strings.Contains(cfg.ListenAddress, ":") {
		errs = append(errs, FieldError{
			Field:   "monitor.listen_address",
			Message: "listen address must be host:port",
		})
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be: debug, info, warn, error)", cfg.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be: json, text)", cfg.Format),
		})
	}

	return errs
}

// isHTTPURL reports whether raw parses as an absolute http(s) URL with a host.
func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
