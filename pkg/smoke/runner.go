package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"ragops/ragdoctor/pkg/probe"
	"ragops/ragdoctor/pkg/telemetry/logging"
)

// MaxBody is how much of each response body a Step keeps.
const MaxBody = 2 << 10

// Step names.
const (
	StepQuery  = "hybrid-rag-query"
	StepChunks = "session-chunks"
	StepStats  = "admin-stats"
)

// Config holds the endpoints and defaults for smoke checks.
type Config struct {
	// APRAGURL is the base URL of the APRAG service.
	APRAGURL string

	// DocumentURL is the base URL of the document-processing service.
	DocumentURL string

	// UserID and Query are used when a Request leaves them empty.
	UserID string
	Query  string

	// Timeout bounds each request. Zero means no timeout beyond ctx.
	Timeout time.Duration
}

// Request describes one smoke run.
type Request struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
}

// Step is the outcome of one HTTP call.
type Step struct {
	Name       string        `json:"name"`
	Method     string        `json:"method"`
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code,omitempty"`
	Outcome    probe.Outcome `json:"outcome"`
	Message    string        `json:"message,omitempty"`
	Duration   time.Duration `json:"duration"`

	// Body holds at most MaxBody bytes of the response.
	Body      string `json:"body,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`
}

// OK reports whether the call returned a 2xx response.
func (s Step) OK() bool {
	return s.Outcome == probe.OutcomeReachable
}

// String renders the outcome like a probe result.
func (s Step) String() string {
	if s.Outcome == probe.OutcomeError {
		return fmt.Sprintf("error(%d)", s.StatusCode)
	}
	return string(s.Outcome)
}

// Report collects the steps of one run.
type Report struct {
	SessionID string `json:"session_id"`
	Steps     []Step `json:"steps"`
}

// Passed reports whether every step succeeded.
func (r Report) Passed() bool {
	for _, s := range r.Steps {
		if !s.OK() {
			return false
		}
	}
	return true
}

// Failed returns the number of failed steps.
func (r Report) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if !s.OK() {
			n++
		}
	}
	return n
}

// Runner issues the APRAG and document-processing calls.
type Runner struct {
	client   *http.Client
	cfg      Config
	progress func(done, total int)
}

// NewRunner creates a runner. A nil client uses a fresh http.Client.
func NewRunner(client *http.Client, cfg Config) *Runner {
	if client == nil {
		client = &http.Client{}
	}
	cfg.APRAGURL = strings.TrimRight(cfg.APRAGURL, "/")
	cfg.DocumentURL = strings.TrimRight(cfg.DocumentURL, "/")
	return &Runner{client: client, cfg: cfg}
}

// SetProgress registers fn to be called after each repeated query.
func (r *Runner) SetProgress(fn func(done, total int)) {
	r.progress = fn
}

// Run issues the query, then lists the session's chunks, then fetches the
// admin stats. Every step runs even if an earlier one fails.
func (r *Runner) Run(ctx context.Context, req Request) Report {
	req = r.normalize(req)
	ctx = logging.WithSession(ctx, req.SessionID)

	return Report{
		SessionID: req.SessionID,
		Steps: []Step{
			r.Query(ctx, req),
			r.Chunks(ctx, req.SessionID),
			r.Stats(ctx),
		},
	}
}

// RunRepeated issues the query step n times, at most perSecond times a
// second, to reproduce intermittent timeouts. perSecond <= 0 means no pacing.
// It stops early only when ctx is done.
func (r *Runner) RunRepeated(ctx context.Context, req Request, n int, perSecond float64) Report {
	req = r.normalize(req)
	ctx = logging.WithSession(ctx, req.SessionID)

	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	report := Report{SessionID: req.SessionID, Steps: make([]Step, 0, n)}
	for i := 0; i < n; i++ {
		if err := limiter.Wait(ctx); err != nil {
			slog.DebugContext(ctx, "repeated query stopped", "completed", i, "error", err)
			break
		}
		report.Steps = append(report.Steps, r.Query(ctx, req))
		if r.progress != nil {
			r.progress(i+1, n)
		}
	}
	return report
}

// Query posts req to the hybrid RAG query endpoint.
func (r *Runner) Query(ctx context.Context, req Request) Step {
	req = r.normalize(req)

	body, err := json.Marshal(req)
	if err != nil {
		return Step{Name: StepQuery, Method: http.MethodPost, Outcome: probe.OutcomeError, Message: err.Error()}
	}

	return r.do(ctx, StepQuery, http.MethodPost, r.cfg.APRAGURL+"/api/aprag/hybrid-rag/query", body)
}

// Chunks lists the chunks stored for a session.
func (r *Runner) Chunks(ctx context.Context, sessionID string) Step {
	return r.do(ctx, StepChunks, http.MethodGet,
		r.cfg.DocumentURL+"/sessions/"+url.PathEscape(sessionID)+"/chunks", nil)
}

// Stats fetches the document service's admin statistics.
func (r *Runner) Stats(ctx context.Context) Step {
	return r.do(ctx, StepStats, http.MethodGet, r.cfg.DocumentURL+"/admin/stats", nil)
}

func (r *Runner) normalize(req Request) Request {
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.UserID == "" {
		req.UserID = r.cfg.UserID
	}
	if req.Query == "" {
		req.Query = r.cfg.Query
	}
	return req
}

func (r *Runner) do(ctx context.Context, name, method, target string, body []byte) Step {
	step := Step{Name: name, Method: method, URL: target}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		step.Outcome = probe.OutcomeError
		step.Message = err.Error()
		return step
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		step.Duration = time.Since(start)
		step.Outcome = probe.ClassifyError(err)
		step.Message = err.Error()
		r.log(ctx, step)
		return step
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBody+1))
	step.Duration = time.Since(start)
	step.StatusCode = resp.StatusCode
	step.Outcome = probe.ClassifyStatus(resp.StatusCode)
	if err != nil {
		// Headers arrived but the body did not finish in time.
		step.Outcome = probe.ClassifyError(err)
		step.Message = err.Error()
	}
	if len(data) > MaxBody {
		data = data[:MaxBody]
		step.Truncated = true
	}
	step.Body = string(data)

	r.log(ctx, step)
	return step
}

func (r *Runner) log(ctx context.Context, step Step) {
	slog.DebugContext(ctx, "smoke step finished",
		"step", step.Name,
		"url", step.URL,
		"outcome", step.String(),
		"duration", step.Duration,
	)
}
