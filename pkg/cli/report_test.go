package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ragops/ragdoctor/pkg/diagnose"
	"ragops/ragdoctor/pkg/envcheck"
	"ragops/ragdoctor/pkg/logscan"
	"ragops/ragdoctor/pkg/probe"
	"ragops/ragdoctor/pkg/smoke"
)

func sampleRun() diagnose.Run {
	return diagnose.Run{
		ID:       "run-1",
		Kind:     diagnose.KindDoctor,
		Duration: 1500 * time.Millisecond,
		Passed:   false,
		Summary:  "env: 1 violation(s); probes: 1/2 reachable",
		Failures: 2,
		Env: &diagnose.EnvSection{
			Files: []string{".env.production"},
			Report: envcheck.Report{
				Keys: []envcheck.KeyResult{
					{Key: "RERANKER_TYPE", Value: "cohere", Status: envcheck.StatusFail},
					{Key: "DASHSCOPE_API_KEY", Value: "sk-1234567890abcdef", Status: envcheck.StatusPass},
					{Key: "NEXT_PUBLIC_AUTH_URL", Status: envcheck.StatusUnset},
				},
				Violations: []envcheck.Violation{
					{Key: "RERANKER_TYPE", Message: "RERANKER_TYPE must be one of alibaba, bge, ms-marco"},
				},
			},
		},
		Probes: &diagnose.ProbeSection{
			Results: []probe.Result{
				{Name: "aprag", URL: "http://aprag:8007/health", Outcome: probe.OutcomeReachable, Duration: 12 * time.Millisecond},
				{Name: "reranker", URL: "http://reranker:8008/health", Outcome: probe.OutcomeError, StatusCode: 503, Message: "503 Service Unavailable"},
			},
		},
		Logs: []diagnose.LogCheck{
			{Result: logscan.Result{Container: "reranker-service", Tail: 200, Keywords: []string{"reorder"}, Scanned: 200, Matches: []string{"ERROR reorder failed"}}},
		},
		Smoke: &smoke.Report{
			SessionID: "s-1",
			Steps: []smoke.Step{
				{Name: smoke.StepQuery, Method: "POST", Outcome: probe.OutcomeReachable, Body: `{"answer":"ok"}`},
			},
		},
	}
}

func TestRunReport_RenderText(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (RunReport{Run: sampleRun()}).RenderText(buf); err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Configuration (.env.production)",
		"✗ RERANKER_TYPE",
		"RERANKER_TYPE must be one of alibaba, bge, ms-marco",
		"- NEXT_PUBLIC_AUTH_URL",
		"(unset)",
		"✓ aprag",
		"error(503)",
		"reranker: 503 Service Unavailable",
		"Logs: reranker-service (last 200 lines, keywords: reorder)",
		"ERROR reorder failed",
		"Smoke (session s-1)",
		"FAIL (2 failed)  env: 1 violation(s); probes: 1/2 reachable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "sk-1234567890abcdef") {
		t.Error("API key printed in clear")
	}
	if !strings.Contains(out, "sk-1***") {
		t.Errorf("redacted key missing:\n%s", out)
	}
	if strings.Contains(out, `{"answer":"ok"}`) {
		t.Error("bodies should only print in verbose mode")
	}
}

func TestRunReport_Verbose(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (RunReport{Run: sampleRun(), Verbose: true}).RenderText(buf); err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	if !strings.Contains(buf.String(), `hybrid-rag-query body: {"answer":"ok"}`) {
		t.Errorf("verbose output missing body:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "run run-1 (doctor) took 1.5s") {
		t.Errorf("verbose output missing timing:\n%s", buf.String())
	}
}

func TestRunReport_Pass(t *testing.T) {
	buf := &bytes.Buffer{}
	run := diagnose.Run{Passed: true, Summary: "env: ok"}
	if err := (RunReport{Run: run}).RenderText(buf); err != nil {
		t.Fatalf("RenderText() error = %v", err)
	}
	if buf.String() != "PASS  env: ok\n" {
		t.Errorf("RenderText() = %q", buf.String())
	}
}

func TestRunReport_JSONIsBareRun(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewFormatter(FormatJSON).FormatTo(buf, RunReport{Run: sampleRun()}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var got diagnose.Run
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "run-1" || got.Failures != 2 || got.Smoke == nil {
		t.Errorf("decoded run = %+v", got)
	}
}

func TestRunReport_WriteError(t *testing.T) {
	if err := (RunReport{Run: sampleRun()}).RenderText(failingWriter{}); err == nil {
		t.Error("expected write error")
	}
}

func TestRecordList_RenderText(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (RecordList{}).RenderText(buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "no runs recorded\n" {
		t.Errorf("empty list = %q", buf.String())
	}

	buf.Reset()
	list := RecordList{
		{ID: "a", Kind: "doctor", StartedAt: time.Now(), Passed: true, Summary: "env: ok"},
		{ID: "b", Kind: "probe", StartedAt: time.Now(), Passed: false, Summary: "probes: 0/1 reachable"},
	}
	if err := list.RenderText(buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"ID", "SUMMARY", "doctor", "pass", "FAIL", "probes: 0/1 reachable"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, "\n") != 3 {
		t.Errorf("want header plus 2 rows, got:\n%s", out)
	}
}

