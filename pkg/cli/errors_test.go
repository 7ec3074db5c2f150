package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "with field",
			err:  &ConfigError{Field: "monitor.schedule", Message: "invalid cron expression"},
			want: "config error in monitor.schedule: invalid cron expression",
		},
		{
			name: "without field",
			err:  &ConfigError{Message: "no env files"},
			want: "config error: no env files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("field", "message")
	if err.Field != "field" {
		t.Errorf("Field = %q, want %q", err.Field, "field")
	}
	if err.Message != "message" {
		t.Errorf("Message = %q, want %q", err.Message, "message")
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("probe", underlyingErr)

	expected := "command probe failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should see through CommandError")
	}
}

func TestCheckFailedError(t *testing.T) {
	if err := NewCheckFailedError("doctor", 0); err != nil {
		t.Errorf("NewCheckFailedError(0) = %v, want nil", err)
	}

	one := NewCheckFailedError("env", 1)
	if one.Error() != "env: 1 check failed" {
		t.Errorf("Error() = %q", one.Error())
	}

	three := NewCheckFailedError("doctor", 3)
	if three.Error() != "doctor: 3 checks failed" {
		t.Errorf("Error() = %q", three.Error())
	}
}

func TestIsCheckFailed(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"check failed", NewCheckFailedError("probe", 2), true},
		{"wrapped", fmt.Errorf("run: %w", NewCheckFailedError("smoke", 1)), true},
		{"config", NewConfigError("x", "y"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCheckFailed(tt.err); got != tt.want {
				t.Errorf("IsCheckFailed() = %v, want %v", got, tt.want)
			}
		})
	}
}
