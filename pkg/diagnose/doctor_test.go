package diagnose

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"ragops/ragdoctor/pkg/config"
	"ragops/ragdoctor/pkg/envcheck"
	"ragops/ragdoctor/pkg/history"
	"ragops/ragdoctor/pkg/logscan"
	"ragops/ragdoctor/pkg/probe"
	"ragops/ragdoctor/pkg/smoke"
	"ragops/ragdoctor/pkg/telemetry/metrics"
)

// deployment fakes the services' HTTP endpoints.
func deployment(t *testing.T, rerankerType string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok/health":
			w.Write([]byte(`{"status":"healthy"}`))
		case "/down/health":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/reranker/info":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"reranker_type":"` + rerankerType + `"}`))
		case "/api/aprag/hybrid-rag/query":
			w.Write([]byte(`{"answer":"ok"}`))
		case "/admin/stats":
			w.Write([]byte(`{}`))
		default:
			if strings.HasSuffix(r.URL.Path, "/chunks") {
				w.Write([]byte(`[]`))
				return
			}
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type fakeSource map[string][]string

func (f fakeSource) Tail(ctx context.Context, container string, lines int) ([]string, error) {
	out, ok := f[container]
	if !ok {
		return nil, logscan.ErrNoContainer
	}
	return out, nil
}

type recorder struct {
	mu   sync.Mutex
	runs []Run
}

func (r *recorder) Observe(ctx context.Context, run Run) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
}

func newDoctor(t *testing.T, env string, srv *httptest.Server, targets []probe.Target) (*Doctor, *recorder) {
	t.Helper()
	rec := &recorder{}
	d := New(Config{
		EnvFiles:    []string{writeEnv(t, env)},
		Environ:     func() []string { return nil },
		Resolver:    envcheck.NewResolver(envcheck.Options{}),
		Prober:      probe.NewProber(srv.Client(), time.Second),
		Targets:     targets,
		InfoTargets: []probe.Target{{Name: "reranker", URL: srv.URL + "/reranker/info"}},
		Inspector: logscan.NewInspector(fakeSource{
			"reranker-service": {"INFO start", "ERROR reorder failed", "INFO done"},
		}),
		Watches: []logscan.Query{{Container: "reranker-service", Keywords: []string{"error"}}},
		Smoke:   smoke.NewRunner(srv.Client(), smoke.Config{APRAGURL: srv.URL, DocumentURL: srv.URL}),
		Observers: []Observer{rec},
	})
	return d, rec
}

func TestDoctor_RunAllPass(t *testing.T) {
	srv := deployment(t, "bge")
	d, rec := newDoctor(t, "RERANKER_TYPE=bge\n", srv, []probe.Target{
		{Name: "api-gateway", URL: srv.URL + "/ok/health"},
		{Name: "reranker", URL: srv.URL + "/ok/health"},
	})

	run := d.Run(context.Background())

	if !run.Passed || run.Failures != 0 {
		t.Fatalf("expected pass, got %d failures: %s", run.Failures, run.Summary)
	}
	if run.Kind != KindDoctor || run.ID == "" {
		t.Errorf("Kind = %s, ID = %q", run.Kind, run.ID)
	}
	want := "env: ok; probes: 2/2 reachable; info: ok; logs: 1 match"
	if run.Summary != want {
		t.Errorf("Summary = %q, want %q", run.Summary, want)
	}
	if run.Env == nil || run.Probes == nil || len(run.Info) != 1 || len(run.Logs) != 1 {
		t.Fatalf("missing sections: %+v", run)
	}
	if run.Info[0].RerankerType != "bge" {
		t.Errorf("info reranker = %q", run.Info[0].RerankerType)
	}
	if len(rec.runs) != 1 || rec.runs[0].ID != run.ID {
		t.Errorf("observer saw %d runs", len(rec.runs))
	}
}

func TestDoctor_FailuresDoNotStopLaterSections(t *testing.T) {
	srv := deployment(t, "bge")
	d, _ := newDoctor(t, "RERANKER_TYPE=alibaba\n", srv, []probe.Target{
		{Name: "api-gateway", URL: srv.URL + "/ok/health"},
		{Name: "chromadb", URL: srv.URL + "/down/health"},
	})

	run := d.Run(context.Background())

	if run.Passed {
		t.Fatal("expected failure")
	}
	// One env violation, one probe, one info mismatch.
	if run.Failures != 3 {
		t.Errorf("Failures = %d, want 3 (%s)", run.Failures, run.Summary)
	}
	if got := run.Env.Report.Violations[0].Message; got != "ALIBABA_API_KEY or DASHSCOPE_API_KEY required when RERANKER_TYPE=alibaba" {
		t.Errorf("violation = %q", got)
	}
	if got := run.Probes.Results[1].String(); got != "error(503)" {
		t.Errorf("chromadb = %s", got)
	}
	if got := run.Info[0].Message; got != "reranker reports reranker type bge but RERANKER_TYPE=alibaba" {
		t.Errorf("info message = %q", got)
	}
	if len(run.Logs) != 1 {
		t.Error("log section should still run")
	}
}

func TestDoctor_UnreadableEnv(t *testing.T) {
	srv := deployment(t, "bge")
	d := New(Config{
		EnvFiles:    []string{filepath.Join(t.TempDir(), "missing.env")},
		Prober:      probe.NewProber(srv.Client(), time.Second),
		InfoTargets: []probe.Target{{Name: "reranker", URL: srv.URL + "/reranker/info"}},
	})

	run := d.Tick(context.Background())

	if run.Kind != KindMonitor {
		t.Errorf("Kind = %s", run.Kind)
	}
	if run.Env.Error == "" {
		t.Error("expected env read error")
	}
	if run.Failures != 1 {
		t.Errorf("Failures = %d, want 1 (info has nothing to compare)", run.Failures)
	}
	if !strings.HasPrefix(run.Summary, "env: unreadable") {
		t.Errorf("Summary = %q", run.Summary)
	}
}

func TestDoctor_IncludeEnviron(t *testing.T) {
	d := New(Config{
		EnvFiles:       []string{writeEnv(t, "RERANKER_TYPE=bge\n")},
		IncludeEnviron: true,
		Environ:        func() []string { return []string{"RERANKER_TYPE=gte-rerank-v2"} },
	})

	run := d.CheckEnv(context.Background())
	if run.Passed {
		t.Fatal("process environment should override the file")
	}
	if msg := run.Env.Report.Violations[0].Message; msg != "RERANKER_TYPE must be one of alibaba, bge, ms-marco" {
		t.Errorf("violation = %q", msg)
	}
	if run.Summary != "env: 1 violation" {
		t.Errorf("Summary = %q", run.Summary)
	}
}

func TestDoctor_Logs(t *testing.T) {
	srv := deployment(t, "bge")
	d, _ := newDoctor(t, "", srv, nil)

	run := d.Logs(context.Background(), logscan.Query{Container: "missing"})
	if run.Passed || run.Logs[0].Error == "" {
		t.Errorf("missing container should fail: %+v", run.Logs)
	}
	if run.Logs[0].Matches == nil {
		t.Error("Matches should be empty, not nil")
	}

	run = d.Logs(context.Background())
	if !run.Passed || len(run.Logs[0].Matches) != 1 {
		t.Errorf("configured watches: %+v", run.Logs)
	}

	noSource := New(Config{Watches: []logscan.Query{{Container: "x"}}})
	if run := noSource.Logs(context.Background()); run.Passed || run.Summary != "logs: no log source" {
		t.Errorf("no source: %+v", run)
	}
}

func TestDoctor_Smoke(t *testing.T) {
	srv := deployment(t, "bge")
	d, _ := newDoctor(t, "", srv, nil)

	run := d.Smoke(context.Background(), smoke.Request{SessionID: "s"}, 1, 0)
	if !run.Passed || run.Smoke == nil || len(run.Smoke.Steps) != 3 {
		t.Fatalf("smoke run = %+v", run)
	}
	if run.Summary != "smoke: 3/3 steps ok" {
		t.Errorf("Summary = %q", run.Summary)
	}

	run = d.Smoke(context.Background(), smoke.Request{}, 3, 0)
	if len(run.Smoke.Steps) != 3 || run.Smoke.Steps[0].Name != smoke.StepQuery {
		t.Errorf("repeated smoke = %+v", run.Smoke.Steps)
	}

	if run := New(Config{}).Smoke(context.Background(), smoke.Request{}, 1, 0); run.Passed {
		t.Error("unconfigured smoke should fail")
	}
}

func TestRun_RecordRoundTrip(t *testing.T) {
	srv := deployment(t, "bge")
	d, _ := newDoctor(t, "RERANKER_TYPE=bge\n", srv, []probe.Target{{Name: "api", URL: srv.URL + "/ok/health"}})
	run := d.Probe(context.Background())

	rec, err := run.Record()
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if rec.ID != run.ID || rec.Kind != "probe" || rec.Summary != run.Summary {
		t.Errorf("record = %+v", rec)
	}

	back, err := FromRecord(rec)
	if err != nil {
		t.Fatalf("FromRecord() error = %v", err)
	}
	if back.ID != run.ID || back.Probes == nil || back.Probes.Results[0].Outcome != probe.OutcomeReachable {
		t.Errorf("decoded run = %+v", back)
	}

	bare, err := FromRecord(history.Record{ID: "x", Kind: "env", Passed: true})
	if err != nil || bare.ID != "x" || !bare.Passed {
		t.Errorf("bare record = %+v, %v", bare, err)
	}

	if _, err := FromRecord(history.Record{ID: "bad", Payload: []byte("{")}); err == nil {
		t.Error("expected decode error")
	}
}

func TestObservers(t *testing.T) {
	srv := deployment(t, "bge")
	d, _ := newDoctor(t, "RERANKER_TYPE=nope\n", srv, []probe.Target{
		{Name: "aprag", URL: srv.URL + "/down/health"},
	})

	store, err := history.Open(history.Config{Path: filepath.Join(t.TempDir(), "h.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	collector := metrics.NewCollector(metrics.Config{}, nil)
	d.AddObserver(HistoryObserver{Store: store})
	d.AddObserver(MetricsObserver{Collector: collector})
	d.AddObserver(PruneObserver{Store: store, Retention: time.Hour})

	run := d.Run(context.Background())

	got, err := store.Get(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("run not recorded: %v", err)
	}
	if got.Passed || got.Kind != "doctor" {
		t.Errorf("stored record = %+v", got)
	}

	if n, err := testutil.GatherAndCount(collector.Registry(), "ragdoctor_probe_up"); err != nil || n != 1 {
		t.Errorf("probe_up series = %d", n)
	}
	expected := `
# HELP ragdoctor_config_violations Configuration violations found by the latest env check
# TYPE ragdoctor_config_violations gauge
ragdoctor_config_violations 1
`
	if err := testutil.GatherAndCompare(collector.Registry(), strings.NewReader(expected), "ragdoctor_config_violations"); err != nil {
		t.Error(err)
	}
}

func TestHistoryObserver_LogsErrors(t *testing.T) {
	store, err := history.Open(history.Config{Path: filepath.Join(t.TempDir(), "h.db")})
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	// Must not panic on a closed store.
	HistoryObserver{Store: store}.Observe(context.Background(), Run{ID: "x", Kind: KindEnv})
	PruneObserver{Store: store, Retention: time.Hour}.Observe(context.Background(), Run{})
}

func TestFromConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Env.Files = []string{writeEnv(t, "RERANKER_TYPE=bge\nNEXT_PUBLIC_API_URL=http://localhost:8000\n")}

	d := FromConfig(cfg, nil, nil)

	if len(d.cfg.Targets) != len(config.DefaultTargets()) {
		t.Errorf("targets = %d", len(d.cfg.Targets))
	}
	if len(d.cfg.InfoTargets) != 1 || d.cfg.InfoTargets[0].Name != "reranker" {
		t.Errorf("info targets = %+v", d.cfg.InfoTargets)
	}
	if len(d.cfg.Watches) != 2 || d.cfg.Watches[0].Tail != config.DefaultLogTail {
		t.Errorf("watches = %+v", d.cfg.Watches)
	}

	// Browser builds are the default, so a loopback public URL is a violation.
	run := d.CheckEnv(context.Background())
	if run.Passed {
		t.Error("expected loopback violation")
	}
}

func TestInfoCheckAndLogCheckOK(t *testing.T) {
	if !(InfoCheck{}).OK() || (InfoCheck{Error: "x"}).OK() || (InfoCheck{Message: "x"}).OK() {
		t.Error("InfoCheck.OK")
	}
	if !(LogCheck{}).OK() || (LogCheck{Error: errors.New("x").Error()}).OK() {
		t.Error("LogCheck.OK")
	}
}
