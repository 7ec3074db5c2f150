// Package diagnose runs ragdoctor's checks as recorded runs.
//
// A Doctor owns the configured resolver, prober, log inspector and smoke
// runner. Each entry point (Run, CheckEnv, Probe, Logs, Smoke, Tick) executes
// its sections in order and returns a Run with a fresh id, timing, a
// pass/fail verdict and a one-line summary such as
//
//	env: 1 violation; probes: 6/7 reachable; info: ok; logs: 3 matches
//
// Observers see every finished run; HistoryObserver, PruneObserver and
// MetricsObserver connect runs to the history store and Prometheus metrics.
package diagnose
