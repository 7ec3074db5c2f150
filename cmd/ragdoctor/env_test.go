package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ragops/ragdoctor/pkg/cli"
	"ragops/ragdoctor/pkg/diagnose"
)

func TestEnvCheck(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		args       []string
		wantFailed bool
		want       []string
	}{
		{
			name: "valid bge",
			env:  "RERANKER_TYPE=bge\nNEXT_PUBLIC_API_URL=https://rag.example.com/api\n",
			want: []string{"✓ RERANKER_TYPE", "PASS"},
		},
		{
			name:       "unknown reranker and loopback url",
			env:        "RERANKER_TYPE=cohere\nNEXT_PUBLIC_API_URL=http://localhost:8000\n",
			wantFailed: true,
			want: []string{
				"RERANKER_TYPE must be one of alibaba, bge, ms-marco",
				"NEXT_PUBLIC_API_URL must not point at a loopback address in a browser-side build",
				"FAIL (2 failed)",
			},
		},
		{
			name:       "alibaba without key",
			env:        "RERANKER_TYPE=alibaba\n",
			wantFailed: true,
			want:       []string{"ALIBABA_API_KEY or DASHSCOPE_API_KEY required when RERANKER_TYPE=alibaba"},
		},
		{
			name: "server-side build allows loopback",
			env:  "NEXT_PUBLIC_AUTH_URL=http://127.0.0.1:8080\n",
			args: []string{"--browser-build=false"},
			want: []string{"PASS"},
		},
		{
			name:       "external host mismatch",
			env:        "NEXT_PUBLIC_API_URL=https://staging.example.com\n",
			args:       []string{"--external-host", "rag.example.com"},
			wantFailed: true,
			want:       []string{"does not match external host rag.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			envFile := writeFile(t, dir, ".env", tt.env)

			args := append([]string{"env", "check", "--config", dir + "/missing.yaml", "--file", envFile}, tt.args...)
			out, _, err := executeCommand(t, args...)

			if tt.wantFailed != cli.IsCheckFailed(err) {
				t.Fatalf("err = %v, wantFailed %v\n%s", err, tt.wantFailed, out)
			}
			if !tt.wantFailed && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestEnvCheck_RedactsKeys(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "RERANKER_TYPE=alibaba\nDASHSCOPE_API_KEY=sk-abcdef1234567890\n")

	out, _, err := executeCommand(t, "env", "check", "--config", dir+"/missing.yaml", "--file", envFile)
	if err != nil {
		t.Fatalf("env check error = %v\n%s", err, out)
	}
	if strings.Contains(out, "sk-abcdef1234567890") {
		t.Errorf("key printed in clear:\n%s", out)
	}
}

func TestEnvCheck_JSON(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "RERANKER_TYPE=cohere\n")

	out, _, err := executeCommand(t, "env", "check", "--config", dir+"/missing.yaml", "--file", envFile, "-o", "json")
	if !cli.IsCheckFailed(err) {
		t.Fatalf("err = %v, want check failure", err)
	}

	var run diagnose.Run
	if err := json.Unmarshal([]byte(out), &run); err != nil {
		t.Fatalf("output is not a run: %v\n%s", err, out)
	}
	if run.Kind != diagnose.KindEnv || run.Passed || run.Env == nil {
		t.Errorf("run = %+v", run)
	}
	if len(run.Env.Report.Violations) != 1 {
		t.Errorf("violations = %+v", run.Env.Report.Violations)
	}
}

func TestEnvCheck_MissingFile(t *testing.T) {
	dir := t.TempDir()

	out, _, err := executeCommand(t, "env", "check", "--config", dir+"/missing.yaml", "--file", dir+"/.env.nope")
	if !cli.IsCheckFailed(err) {
		t.Fatalf("err = %v, want check failure", err)
	}
	if !strings.Contains(out, ".env.nope") {
		t.Errorf("output should name the unreadable file:\n%s", out)
	}
}

func TestWatchEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "RERANKER_TYPE=bge\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var checks atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- watchEnv(ctx, envWatchCmd, []string{envFile}, 10*time.Millisecond, func(ctx context.Context) {
			checks.Add(1)
		})
	}()

	waitFor(t, func() bool { return checks.Load() >= 1 })

	// Give the watcher time to register the directory before editing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(envFile, []byte("RERANKER_TYPE=alibaba\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return checks.Load() >= 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchEnv() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watchEnv did not return after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
