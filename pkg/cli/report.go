package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"ragops/ragdoctor/pkg/diagnose"
	"ragops/ragdoctor/pkg/envcheck"
	"ragops/ragdoctor/pkg/history"
	"ragops/ragdoctor/pkg/telemetry/logging"
)

// RunReport renders a diagnose.Run. It marshals to JSON as the bare run.
type RunReport struct {
	Run diagnose.Run

	// Verbose adds response bodies and timing detail.
	Verbose bool
}

// MarshalJSON implements json.Marshaler.
func (r RunReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Run)
}

// RenderText implements TextRenderer.
func (r RunReport) RenderText(w io.Writer) error {
	run := r.Run
	ew := &errWriter{w: w}

	if run.Env != nil {
		renderEnv(ew, run.Env)
	}
	if run.Probes != nil {
		renderProbes(ew, run.Probes)
	}
	if len(run.Info) > 0 {
		renderInfo(ew, run.Info)
	}
	for _, l := range run.Logs {
		renderLogs(ew, l)
	}
	if run.Smoke != nil {
		renderSmoke(ew, run, r.Verbose)
	}

	verdict := "PASS"
	if !run.Passed {
		verdict = fmt.Sprintf("FAIL (%d failed)", run.Failures)
	}
	ew.printf("%s  %s\n", verdict, run.Summary)
	if r.Verbose {
		ew.printf("run %s (%s) took %s\n", run.ID, run.Kind, run.Duration.Round(time.Millisecond))
	}

	return ew.err
}

func renderEnv(ew *errWriter, env *diagnose.EnvSection) {
	ew.printf("Configuration (%s)\n", strings.Join(env.Files, ", "))
	if env.Error != "" {
		ew.printf("  %s %s\n\n", Mark(false), env.Error)
		return
	}

	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', 0)
	for _, k := range env.Report.Keys {
		mark := Mark(k.Status != envcheck.StatusFail)
		value := displayValue(k.Key, k.Value)
		if k.Status == envcheck.StatusUnset {
			mark, value = "-", "(unset)"
		}
		fmt.Fprintf(tw, "  %s %s\t%s\n", mark, k.Key, value)
	}
	tw.Flush()

	for _, v := range env.Report.Violations {
		ew.printf("      %s\n", v.Message)
	}
	ew.printf("\n")
}

func renderProbes(ew *errWriter, probes *diagnose.ProbeSection) {
	ew.printf("Health probes\n")

	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', 0)
	for _, res := range probes.Results {
		fmt.Fprintf(tw, "  %s %s\t%s\t%s\t%s\n",
			Mark(res.OK()), res.Name, res.String(), res.Duration.Round(time.Millisecond), res.URL)
	}
	tw.Flush()

	for _, res := range probes.Results {
		if !res.OK() && res.Message != "" {
			ew.printf("      %s: %s\n", res.Name, res.Message)
		}
	}
	ew.printf("\n")
}

func renderInfo(ew *errWriter, checks []diagnose.InfoCheck) {
	ew.printf("Reranker info\n")
	for _, c := range checks {
		switch {
		case c.Error != "":
			ew.printf("  %s %s: %s\n", Mark(false), c.Target, c.Error)
		case c.Message != "":
			ew.printf("  %s %s\n", Mark(false), c.Message)
		default:
			reported := c.RerankerType
			if reported == "" {
				reported = "(not reported)"
			}
			ew.printf("  %s %s reports %s\n", Mark(true), c.Target, reported)
		}
	}
	ew.printf("\n")
}

func renderLogs(ew *errWriter, l diagnose.LogCheck) {
	keywords := "any"
	if len(l.Keywords) > 0 {
		keywords = strings.Join(l.Keywords, ", ")
	}
	ew.printf("Logs: %s (last %d lines, keywords: %s)\n", l.Container, l.Tail, keywords)

	switch {
	case l.Error != "":
		ew.printf("  %s %s\n", Mark(false), l.Error)
	case len(l.Matches) == 0:
		ew.printf("  no matching lines in %d scanned\n", l.Scanned)
	default:
		for _, line := range l.Matches {
			ew.printf("  %s\n", line)
		}
	}
	ew.printf("\n")
}

func renderSmoke(ew *errWriter, run diagnose.Run, verbose bool) {
	ew.printf("Smoke (session %s)\n", run.Smoke.SessionID)

	tw := tabwriter.NewWriter(ew, 0, 0, 2, ' ', 0)
	for _, s := range run.Smoke.Steps {
		fmt.Fprintf(tw, "  %s %s\t%s\t%s\t%s\t%s\n",
			Mark(s.OK()), s.Name, s.Method, s.String(), s.Duration.Round(time.Millisecond), s.URL)
	}
	tw.Flush()

	for _, s := range run.Smoke.Steps {
		if s.Message != "" {
			ew.printf("      %s: %s\n", s.Name, s.Message)
		}
		if verbose && s.Body != "" {
			ew.printf("      %s body: %s\n", s.Name, s.Body)
		}
	}
	ew.printf("\n")
}

// displayValue masks anything that looks like a credential.
func displayValue(key, value string) string {
	upper := strings.ToUpper(key)
	if strings.Contains(upper, "KEY") || strings.Contains(upper, "SECRET") || strings.Contains(upper, "TOKEN") {
		return logging.RedactAPIKey(value)
	}
	return value
}

// RecordList renders history records as a table.
type RecordList []history.Record

// RenderText implements TextRenderer.
func (l RecordList) RenderText(w io.Writer) error {
	if len(l) == 0 {
		_, err := fmt.Fprintln(w, "no runs recorded")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTARTED\tDURATION\tRESULT\tSUMMARY")
	for _, rec := range l {
		result := "pass"
		if !rec.Passed {
			result = "FAIL"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID, rec.Kind, rec.StartedAt.Local().Format(time.DateTime),
			rec.Duration.Round(time.Millisecond), result, rec.Summary)
	}
	return tw.Flush()
}

// errWriter keeps the first write error so rendering code can stay linear.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
