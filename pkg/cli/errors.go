package cli

import (
	"errors"
	"fmt"
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CheckFailedError reports that a command ran but some checks failed. The
// report has already been printed; only the exit status remains.
type CheckFailedError struct {
	Command  string
	Failures int
}

func (e *CheckFailedError) Error() string {
	noun := "checks"
	if e.Failures == 1 {
		noun = "check"
	}
	return fmt.Sprintf("%s: %d %s failed", e.Command, e.Failures, noun)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// NewCheckFailedError creates a CheckFailedError, or returns nil when
// nothing failed.
func NewCheckFailedError(command string, failures int) error {
	if failures <= 0 {
		return nil
	}
	return &CheckFailedError{Command: command, Failures: failures}
}

// IsCheckFailed reports whether err is, or wraps, a CheckFailedError.
func IsCheckFailed(err error) bool {
	var cf *CheckFailedError
	return errors.As(err, &cf)
}
