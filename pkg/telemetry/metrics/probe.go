package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProbeMetrics tracks health probe results.
//
// Metrics:
//   - ragdoctor_probe_up: 1 if the target's latest probe was reachable
//   - ragdoctor_probe_duration_seconds: probe latency
//   - ragdoctor_probe_outcomes_total: probes by outcome
type ProbeMetrics struct {
	up       *prometheus.GaugeVec
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewProbeMetrics creates and registers probe metrics.
func NewProbeMetrics(cfg Config, registry *prometheus.Registry) *ProbeMetrics {
	pm := &ProbeMetrics{
		up: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "probe_up",
				Help:      "Whether the target's latest health probe was reachable (1) or not (0)",
			},
			[]string{"target"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "probe_duration_seconds",
				Help:      "Health probe latency in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"target"},
		),

		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "probe_outcomes_total",
				Help:      "Total health probes by outcome",
			},
			[]string{"target", "outcome"},
		),
	}

	registry.MustRegister(pm.up, pm.duration, pm.outcomes)

	return pm
}

// Record updates all probe metrics for one result.
func (pm *ProbeMetrics) Record(target, outcome string, duration time.Duration) {
	up := 0.0
	if outcome == "reachable" {
		up = 1
	}
	pm.up.WithLabelValues(target).Set(up)
	pm.duration.WithLabelValues(target).Observe(duration.Seconds())
	pm.outcomes.WithLabelValues(target, outcome).Inc()
}
