package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"ragops/ragdoctor/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid JSON config",
			config: Config{Level: "info", Format: "json", Redact: true},
		},
		{
			name:   "valid text config",
			config: Config{Level: "debug", Format: "text"},
		},
		{
			name:   "defaults",
			config: Config{},
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "invalid", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "info", Format: "console"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}

			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestLogger_Levels(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "warn", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := decodeLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines at warn level, got %d: %s", len(lines), buf.String())
	}
	if lines[0]["msg"] != "warn message" || lines[1]["msg"] != "error message" {
		t.Errorf("unexpected messages: %v", lines)
	}
}

func TestLogger_RedactsCredentials(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Redact: true, Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("loaded env",
		"ALIBABA_API_KEY", "sk-1234567890abcdef",
		"line", "DASHSCOPE_API_KEY=abcdef123456 RERANKER_TYPE=alibaba",
		"error", errors.New("upstream rejected Bearer abc.def.ghi"),
	)

	out := buf.String()
	for _, secret := range []string{"1234567890abcdef", "abcdef123456", "abc.def.ghi"} {
		if strings.Contains(out, secret) {
			t.Errorf("log output leaked %q: %s", secret, out)
		}
	}

	lines := decodeLines(t, buf)
	if lines[0]["line"] != "DASHSCOPE_API_KEY=*** RERANKER_TYPE=alibaba" {
		t.Errorf("line = %v", lines[0]["line"])
	}
	if lines[0]["ALIBABA_API_KEY"] != "sk-1***" {
		t.Errorf("ALIBABA_API_KEY = %v", lines[0]["ALIBABA_API_KEY"])
	}
}

func TestLogger_RedactionDisabled(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("raw", "api_key", "sk-1234567890abcdef")

	if !strings.Contains(buf.String(), "sk-1234567890abcdef") {
		t.Errorf("expected raw value without redaction: %s", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Redact: true, Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.With("token", "supersecretvalue", "component", "probe").Info("hello")

	lines := decodeLines(t, buf)
	if lines[0]["component"] != "probe" {
		t.Errorf("missing component field: %v", lines[0])
	}
	if lines[0]["token"] != "supe***" {
		t.Errorf("token = %v", lines[0]["token"])
	}
}

func TestLogger_ContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithRunID(context.Background(), "run-1")
	ctx = WithTarget(ctx, "reranker")
	logger.InfoContext(ctx, "probe finished")

	// Records sent through the slog.Logger directly get the same fields
	logger.Slog().InfoContext(WithContainer(context.Background(), "aprag-service"), "tail done")

	lines := decodeLines(t, buf)
	if lines[0]["run_id"] != "run-1" || lines[0]["target"] != "reranker" {
		t.Errorf("context fields missing: %v", lines[0])
	}
	if lines[1]["container"] != "aprag-service" {
		t.Errorf("container field missing: %v", lines[1])
	}
}

func TestFromConfig(t *testing.T) {
	off := false
	buf := &bytes.Buffer{}
	logger, err := FromConfig(config.LoggingConfig{Level: "debug", Format: "json", Redact: &off}, buf)
	if err != nil {
		t.Fatalf("FromConfig() error = %v", err)
	}

	logger.Debug("visible", "secret_token", "plain")
	if !strings.Contains(buf.String(), "plain") {
		t.Errorf("expected debug line without redaction: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"":        slog.LevelInfo,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("trace"); err == nil {
		t.Error("expected error for unknown level")
	}
}
