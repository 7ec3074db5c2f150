package diagnose

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"ragops/ragdoctor/pkg/envcheck"
	"ragops/ragdoctor/pkg/logscan"
	"ragops/ragdoctor/pkg/probe"
	"ragops/ragdoctor/pkg/smoke"
	"ragops/ragdoctor/pkg/telemetry/logging"
)

// Observer is told about every finished run.
type Observer interface {
	Observe(ctx context.Context, run Run)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, run Run)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, run Run) { f(ctx, run) }

// Config wires a Doctor. Nil components disable the sections that need them.
type Config struct {
	// EnvFiles are read in order by the env section.
	EnvFiles []string

	// IncludeEnviron lets the process environment override file values for
	// the resolver's keys.
	IncludeEnviron bool

	// Environ defaults to os.Environ.
	Environ func() []string

	Resolver *envcheck.Resolver

	Prober      *probe.Prober
	Targets     []probe.Target
	InfoTargets []probe.Target

	Inspector *logscan.Inspector
	Watches   []logscan.Query

	Smoke *smoke.Runner

	Observers []Observer
}

// Doctor runs the diagnostic sections one after another. A failing section
// never stops the ones after it.
type Doctor struct {
	cfg Config
}

// New creates a doctor.
func New(cfg Config) *Doctor {
	if cfg.Environ == nil {
		cfg.Environ = os.Environ
	}
	if cfg.Resolver == nil {
		cfg.Resolver = envcheck.NewResolver(envcheck.DefaultOptions())
	}
	return &Doctor{cfg: cfg}
}

// AddObserver registers o for every later run.
func (d *Doctor) AddObserver(o Observer) {
	d.cfg.Observers = append(d.cfg.Observers, o)
}

// Run performs the env check, health probes, /info checks and log greps, in
// that order.
func (d *Doctor) Run(ctx context.Context) Run {
	return d.run(ctx, KindDoctor, d.envSection, d.probeSection, d.infoSection, d.logSection(nil))
}

// CheckEnv runs only the configuration resolver.
func (d *Doctor) CheckEnv(ctx context.Context) Run {
	return d.run(ctx, KindEnv, d.envSection)
}

// Probe runs the health probes and /info checks.
func (d *Doctor) Probe(ctx context.Context) Run {
	return d.run(ctx, KindProbe, d.probeSection, d.infoSection)
}

// Logs greps the given queries, or the configured watches when none are given.
func (d *Doctor) Logs(ctx context.Context, queries ...logscan.Query) Run {
	return d.run(ctx, KindLogs, d.logSection(queries))
}

// Tick is one monitor iteration: env check then health probes.
func (d *Doctor) Tick(ctx context.Context) Run {
	return d.run(ctx, KindMonitor, d.envSection, d.probeSection, d.infoSection)
}

// Smoke runs the APRAG smoke steps. With repeat > 1 only the query step is
// repeated, at most perSecond times a second.
func (d *Doctor) Smoke(ctx context.Context, req smoke.Request, repeat int, perSecond float64) Run {
	return d.run(ctx, KindSmoke, func(ctx context.Context, st *state) (int, string) {
		if d.cfg.Smoke == nil {
			return 1, "smoke: not configured"
		}

		var report smoke.Report
		if repeat > 1 {
			report = d.cfg.Smoke.RunRepeated(ctx, req, repeat, perSecond)
		} else {
			report = d.cfg.Smoke.Run(ctx, req)
		}
		st.run.Smoke = &report

		failed := report.Failed()
		return failed, fmt.Sprintf("smoke: %d/%d steps ok", len(report.Steps)-failed, len(report.Steps))
	})
}

// state is shared by the sections of one run.
type state struct {
	run *Run

	envLoaded bool
	values    map[string]string
	envErr    error
}

// section runs one part of a run and returns its failure count and summary.
type section func(ctx context.Context, st *state) (failures int, summary string)

func (d *Doctor) run(ctx context.Context, kind Kind, sections ...section) Run {
	run := Run{
		ID:        uuid.NewString(),
		Kind:      kind,
		StartedAt: time.Now(),
	}
	ctx = logging.WithRunID(ctx, run.ID)
	slog.DebugContext(ctx, "run started", "kind", kind)

	st := &state{run: &run}
	var parts []string
	for _, s := range sections {
		failures, summary := s(ctx, st)
		run.Failures += failures
		if summary != "" {
			parts = append(parts, summary)
		}
	}

	run.Duration = time.Since(run.StartedAt)
	run.Passed = run.Failures == 0
	run.Summary = strings.Join(parts, "; ")

	slog.InfoContext(ctx, "run finished",
		"kind", kind,
		"passed", run.Passed,
		"failures", run.Failures,
		"duration", run.Duration,
	)

	for _, o := range d.cfg.Observers {
		o.Observe(ctx, run)
	}
	return run
}

// loadEnv reads the env files once per run.
func (d *Doctor) loadEnv(st *state) (map[string]string, error) {
	if st.envLoaded {
		return st.values, st.envErr
	}
	st.envLoaded = true

	values, err := envcheck.LoadEnvFiles(d.cfg.EnvFiles...)
	if err != nil {
		st.envErr = err
		return nil, err
	}
	if d.cfg.IncludeEnviron {
		values = envcheck.MergeEnviron(values, d.cfg.Environ(), envcheck.Keys())
	}
	st.values = values
	return values, nil
}

func (d *Doctor) envSection(ctx context.Context, st *state) (int, string) {
	sec := &EnvSection{Files: d.cfg.EnvFiles, Report: envcheck.Report{Keys: []envcheck.KeyResult{}, Violations: []envcheck.Violation{}}}
	st.run.Env = sec

	values, err := d.loadEnv(st)
	if err != nil {
		sec.Error = err.Error()
		slog.WarnContext(ctx, "env files unreadable", "error", err)
		return 1, "env: unreadable"
	}

	sec.Report = d.cfg.Resolver.Resolve(values)
	for _, v := range sec.Report.Violations {
		slog.DebugContext(ctx, "config violation", "key", v.Key, "message", v.Message)
	}

	n := len(sec.Report.Violations)
	if n == 0 {
		return 0, "env: ok"
	}
	return n, fmt.Sprintf("env: %d %s", n, plural(n, "violation", "violations"))
}

func (d *Doctor) probeSection(ctx context.Context, st *state) (int, string) {
	if d.cfg.Prober == nil || len(d.cfg.Targets) == 0 {
		return 0, ""
	}

	results := d.cfg.Prober.ProbeAll(ctx, d.cfg.Targets)
	summary := probe.Summarize(results)
	st.run.Probes = &ProbeSection{Results: results, Summary: summary}

	return summary.Failed(), fmt.Sprintf("probes: %d/%d reachable", summary.Reachable, summary.Total)
}

func (d *Doctor) infoSection(ctx context.Context, st *state) (int, string) {
	if d.cfg.Prober == nil || len(d.cfg.InfoTargets) == 0 {
		return 0, ""
	}

	// An unreadable env leaves nothing to compare against; the env section
	// reports that on its own.
	values, _ := d.loadEnv(st)
	expected := strings.TrimSpace(values[envcheck.KeyRerankerType])

	failures := 0
	checks := make([]InfoCheck, 0, len(d.cfg.InfoTargets))
	for _, target := range d.cfg.InfoTargets {
		check := InfoCheck{Target: target.Name, URL: target.URL, Expected: expected}

		info, err := d.cfg.Prober.Info(ctx, target)
		if err != nil {
			check.Error = err.Error()
		} else {
			check.RerankerType = info.RerankerType()
			check.Message = probe.CheckRerankerInfo(info, expected)
		}

		if !check.OK() {
			failures++
		}
		checks = append(checks, check)
	}
	st.run.Info = checks

	if failures == 0 {
		return 0, "info: ok"
	}
	return failures, fmt.Sprintf("info: %d %s", failures, plural(failures, "mismatch", "mismatches"))
}

func (d *Doctor) logSection(queries []logscan.Query) section {
	return func(ctx context.Context, st *state) (int, string) {
		if len(queries) == 0 {
			queries = d.cfg.Watches
		}
		if len(queries) == 0 {
			return 0, ""
		}
		if d.cfg.Inspector == nil {
			return 1, "logs: no log source"
		}

		failures, matches := 0, 0
		checks := make([]LogCheck, 0, len(queries))
		for _, q := range queries {
			res, err := d.cfg.Inspector.Inspect(ctx, q)
			check := LogCheck{Result: res}
			if err != nil {
				check.Result = logscan.Result{Container: q.Container, Tail: q.Tail, Keywords: q.Keywords, Matches: []string{}}
				check.Error = err.Error()
				failures++
			}
			matches += len(check.Matches)
			checks = append(checks, check)
		}
		st.run.Logs = checks

		summary := fmt.Sprintf("logs: %d %s", matches, plural(matches, "match", "matches"))
		if failures > 0 {
			summary += fmt.Sprintf(", %d unreadable", failures)
		}
		return failures, summary
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
