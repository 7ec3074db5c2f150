package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ragops/ragdoctor/pkg/cli"
	"ragops/ragdoctor/pkg/probe"
)

// services fakes the deployment's HTTP endpoints.
func services(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/ok/health":
			w.Write([]byte(`{"status":"healthy"}`))
		case r.URL.Path == "/down/health":
			w.WriteHeader(http.StatusServiceUnavailable)
		case r.URL.Path == "/ok/info":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"reranker_type":"bge"}`))
		case r.URL.Path == "/api/aprag/hybrid-rag/query":
			w.Write([]byte(`{"answer":"RAG combines retrieval with generation"}`))
		case r.URL.Path == "/admin/stats":
			w.Write([]byte(`{"documents":3}`))
		case strings.HasPrefix(r.URL.Path, "/sessions/") && strings.HasSuffix(r.URL.Path, "/chunks"):
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// deploymentConfig writes a config pointing at srv with history in dir.
func deploymentConfig(t *testing.T, dir, url string) string {
	t.Helper()
	envFile := writeFile(t, dir, ".env", "RERANKER_TYPE=bge\n")
	return writeFile(t, dir, "ragdoctor.yaml", `
env:
  files: [`+envFile+`]
probe:
  default_timeout: 2s
  targets:
    - name: ok
      url: `+url+`/ok/health
      info_url: `+url+`/ok/info
    - name: down
      url: `+url+`/down/health
logs:
  watches: []
smoke:
  aprag_url: `+url+`
  document_url: `+url+`
  timeout: 2s
history:
  enabled: true
  path: `+dir+`/history.db
`)
}

func TestProbe(t *testing.T) {
	srv := services(t)
	cfg := deploymentConfig(t, t.TempDir(), srv.URL)

	out, _, err := executeCommand(t, "probe", "--config", cfg)
	if !cli.IsCheckFailed(err) {
		t.Fatalf("err = %v, want check failure\n%s", err, out)
	}
	for _, want := range []string{"✓ ok", "✗ down", "error(503)", "ok reports bge", "probes: 1/2 reachable"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestProbe_TargetFilter(t *testing.T) {
	srv := services(t)
	cfg := deploymentConfig(t, t.TempDir(), srv.URL)

	out, _, err := executeCommand(t, "probe", "--config", cfg, "--target", "ok")
	if err != nil {
		t.Fatalf("probe --target ok error = %v\n%s", err, out)
	}
	if strings.Contains(out, "down") {
		t.Errorf("filtered target was probed:\n%s", out)
	}

	_, _, err = executeCommand(t, "probe", "--config", cfg, "--target", "nope")
	if err == nil || cli.IsCheckFailed(err) {
		t.Errorf("unknown target should be a config error, got %v", err)
	}
}

func TestOverrideTimeout(t *testing.T) {
	targets := []probe.Target{{Name: "a", Timeout: time.Second}, {Name: "b"}}

	if got := overrideTimeout(targets, 0); got[0].Timeout != time.Second || got[1].Timeout != 0 {
		t.Errorf("zero override changed targets: %+v", got)
	}

	got := overrideTimeout(targets, 30*time.Second)
	for _, tg := range got {
		if tg.Timeout != 30*time.Second {
			t.Errorf("%s timeout = %s", tg.Name, tg.Timeout)
		}
	}
	if targets[0].Timeout != time.Second {
		t.Error("input modified")
	}
}
