package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks diagnostic runs.
//
// Metrics:
//   - ragdoctor_runs_total: finished runs by kind and result
//   - ragdoctor_last_run_timestamp_seconds: when each kind last finished
//   - ragdoctor_config_violations: violations in the latest env check
//   - ragdoctor_log_matches: matching lines in each container's latest scan
type RunMetrics struct {
	runs       *prometheus.CounterVec
	lastRun    *prometheus.GaugeVec
	violations prometheus.Gauge
	logMatches *prometheus.GaugeVec
}

// NewRunMetrics creates and registers run metrics.
func NewRunMetrics(cfg Config, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "runs_total",
				Help:      "Total diagnostic runs by kind and result",
			},
			[]string{"kind", "result"},
		),

		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time of the latest finished run of each kind",
			},
			[]string{"kind"},
		),

		violations: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "config_violations",
				Help:      "Configuration violations found by the latest env check",
			},
		),

		logMatches: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "log_matches",
				Help:      "Log lines matching the watch keywords in the latest scan",
			},
			[]string{"container"},
		),
	}

	registry.MustRegister(rm.runs, rm.lastRun, rm.violations, rm.logMatches)

	return rm
}

// RecordRun counts a run and stamps its finish time.
func (rm *RunMetrics) RecordRun(kind string, passed bool, finished time.Time) {
	result := "fail"
	if passed {
		result = "pass"
	}
	rm.runs.WithLabelValues(kind, result).Inc()
	rm.lastRun.WithLabelValues(kind).Set(float64(finished.Unix()))
}

// SetViolations sets the config violation gauge.
func (rm *RunMetrics) SetViolations(n int) {
	rm.violations.Set(float64(n))
}

// SetLogMatches sets the match gauge for a container.
func (rm *RunMetrics) SetLogMatches(container string, n int) {
	rm.logMatches.WithLabelValues(container).Set(float64(n))
}
