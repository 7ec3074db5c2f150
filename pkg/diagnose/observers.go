package diagnose

import (
	"context"
	"log/slog"
	"time"

	"ragops/ragdoctor/pkg/history"
	"ragops/ragdoctor/pkg/telemetry/metrics"
)

// HistoryObserver saves every run to a history store. Save errors are
// logged; they never fail the run.
type HistoryObserver struct {
	Store *history.Store
}

// Observe implements Observer.
func (h HistoryObserver) Observe(ctx context.Context, run Run) {
	rec, err := run.Record()
	if err == nil {
		err = h.Store.Save(ctx, rec)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to record run", "kind", run.Kind, "error", err)
	}
}

// MetricsObserver publishes every run to a metrics collector.
type MetricsObserver struct {
	Collector *metrics.Collector
}

// Observe implements Observer.
func (m MetricsObserver) Observe(ctx context.Context, run Run) {
	c := m.Collector

	if run.Env != nil {
		c.SetConfigViolations(run.Env.Failures())
	}
	if run.Probes != nil {
		for _, r := range run.Probes.Results {
			c.RecordProbe(r.Name, string(r.Outcome), r.Duration)
		}
	}
	for _, l := range run.Logs {
		c.SetLogMatches(l.Container, len(l.Matches))
	}

	c.RecordRun(string(run.Kind), run.Passed, run.StartedAt.Add(run.Duration))
}

// PruneObserver deletes history older than Retention after each run.
type PruneObserver struct {
	Store     *history.Store
	Retention time.Duration
}

// Observe implements Observer.
func (p PruneObserver) Observe(ctx context.Context, run Run) {
	if p.Retention <= 0 {
		return
	}
	if _, err := p.Store.Prune(ctx, time.Now().Add(-p.Retention)); err != nil {
		slog.ErrorContext(ctx, "failed to prune run history", "error", err)
	}
}
