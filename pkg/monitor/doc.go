// Package monitor keeps a probe loop running during an incident.
//
// A Monitor calls the doctor's Tick (env check, health probes and /info
// checks) on a cron schedule, publishes each run as Prometheus metrics and
// serves:
//
//	GET /metrics   Prometheus exposition
//	GET /health    liveness, always 200
//	GET /ready     503 until the first tick, or when the loop stalls
//	GET /version   build information
//	GET /report    the latest run as JSON, 404 before the first tick
//
// The monitor is opt-in; every other ragdoctor command runs once and exits.
package monitor
