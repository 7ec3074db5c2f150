package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "ragdoctor"

// DefaultMaxTargets bounds the number of distinct target label values.
const DefaultMaxTargets = 256

// otherLabel replaces label values beyond the cardinality limit.
const otherLabel = "other"

// Config configures a Collector.
type Config struct {
	// Namespace defaults to DefaultNamespace.
	Namespace string

	// DurationBuckets are the probe latency histogram buckets in seconds.
	// The defaults cover a fast health check up to a 30s timeout.
	DurationBuckets []float64

	// MaxTargets defaults to DefaultMaxTargets.
	MaxTargets int
}

// Collector owns the ragdoctor metrics and the registry they live in.
//
// Metrics are registered on a private registry so that tests and multiple
// monitors in one process never collide.
type Collector struct {
	registry *prometheus.Registry

	probeMetrics *ProbeMetrics
	runMetrics   *RunMetrics

	targets *CardinalityLimiter
}

// NewCollector creates a collector. A nil registry gets a fresh one.
//
// Example:
//
//	collector := metrics.NewCollector(metrics.Config{}, nil)
//	collector.RecordProbe("reranker", "timeout", 5*time.Second)
//	http.Handle("/metrics", collector.Handler())
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	}
	if cfg.MaxTargets <= 0 {
		cfg.MaxTargets = DefaultMaxTargets
	}

	return &Collector{
		registry:     registry,
		probeMetrics: NewProbeMetrics(cfg, registry),
		runMetrics:   NewRunMetrics(cfg, registry),
		targets:      NewCardinalityLimiter(cfg.MaxTargets),
	}
}

// RecordProbe records one probe outcome ("reachable", "timeout" or "error").
// The up gauge is 1 only for reachable targets.
func (c *Collector) RecordProbe(target, outcome string, duration time.Duration) {
	if !c.targets.Allow(target) {
		target = otherLabel
	}
	c.probeMetrics.Record(target, outcome, duration)
}

// SetConfigViolations sets the violation count of the latest env check.
func (c *Collector) SetConfigViolations(n int) {
	c.runMetrics.SetViolations(n)
}

// RecordRun counts a finished run of the given kind.
func (c *Collector) RecordRun(kind string, passed bool, finished time.Time) {
	c.runMetrics.RecordRun(kind, passed, finished)
}

// SetLogMatches sets how many lines matched in a container's latest scan.
func (c *Collector) SetLogMatches(container string, n int) {
	c.runMetrics.SetLogMatches(container, n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter caps the number of unique values a label can take.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter allowing maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already tracked or still fits under the
// limit. Values that fit are tracked from then on.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
