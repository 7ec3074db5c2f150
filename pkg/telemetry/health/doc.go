// Package health serves liveness and readiness endpoints for the monitor.
//
// A Checker holds named CheckFuncs. Liveness always reports ok; readiness
// runs every check with a per-check timeout and reports degraded (503) when
// any of them fails.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("scheduler", health.Freshness(mon.LastRun, 3*time.Minute))
//	checker.RegisterCheck("history", health.Ping(store))
//
//	r := chi.NewRouter()
//	health.Mount(r, checker, version, commit, buildTime)
package health
