package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for diagnostic run IDs.
	RunIDKey contextKey = "run_id"

	// TargetKey is the context key for probe target names.
	TargetKey contextKey = "target"

	// ContainerKey is the context key for container names.
	ContainerKey contextKey = "container"

	// SessionKey is the context key for smoke-test session identifiers.
	SessionKey contextKey = "session"
)

// WithRunID adds a run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithTarget adds a probe target name to the context.
func WithTarget(ctx context.Context, target string) context.Context {
	return context.WithValue(ctx, TargetKey, target)
}

// GetTarget retrieves the probe target name from the context.
func GetTarget(ctx context.Context) string {
	if target, ok := ctx.Value(TargetKey).(string); ok {
		return target
	}
	return ""
}

// WithContainer adds a container name to the context.
func WithContainer(ctx context.Context, container string) context.Context {
	return context.WithValue(ctx, ContainerKey, container)
}

// GetContainer retrieves the container name from the context.
func GetContainer(ctx context.Context) string {
	if container, ok := ctx.Value(ContainerKey).(string); ok {
		return container
	}
	return ""
}

// WithSession adds a session identifier to the context.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSession retrieves the session identifier from the context.
func GetSession(ctx context.Context) string {
	if session, ok := ctx.Value(SessionKey).(string); ok {
		return session
	}
	return ""
}

// contextAttrs extracts the known fields from ctx as log attributes.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if runID := GetRunID(ctx); runID != "" {
		attrs = append(attrs, slog.String(string(RunIDKey), runID))
	}
	if target := GetTarget(ctx); target != "" {
		attrs = append(attrs, slog.String(string(TargetKey), target))
	}
	if container := GetContainer(ctx); container != "" {
		attrs = append(attrs, slog.String(string(ContainerKey), container))
	}
	if session := GetSession(ctx); session != "" {
		attrs = append(attrs, slog.String(string(SessionKey), session))
	}
	return attrs
}
