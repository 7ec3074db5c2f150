// Package metrics exposes ragdoctor results as Prometheus metrics.
//
// # Metrics
//
//   - ragdoctor_probe_up{target}
//   - ragdoctor_probe_duration_seconds{target}
//   - ragdoctor_probe_outcomes_total{target,outcome}
//   - ragdoctor_config_violations
//   - ragdoctor_log_matches{container}
//   - ragdoctor_runs_total{kind,result}
//   - ragdoctor_last_run_timestamp_seconds{kind}
//
// # Usage
//
//	collector := metrics.NewCollector(metrics.Config{}, nil)
//	collector.RecordProbe("reranker", "reachable", 12*time.Millisecond)
//	collector.SetConfigViolations(len(report.Violations))
//
//	router.Handle("/metrics", collector.Handler())
//
// # Cardinality
//
// Target names come from configuration, but a collector still caps them at
// Config.MaxTargets distinct values. Targets beyond the cap are recorded
// under the label value "other".
package metrics
