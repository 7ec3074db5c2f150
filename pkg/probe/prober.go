package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"ragops/ragdoctor/pkg/telemetry/logging"
)

// DefaultTimeout is used for targets without their own timeout when the
// prober is created with a zero default.
const DefaultTimeout = 5 * time.Second

// maxDrain bounds how much of a response body is read before closing, so
// keep-alive connections can be reused without reading huge bodies.
const maxDrain = 64 << 10

// Outcome classifies a single probe.
type Outcome string

const (
	// OutcomeReachable means a 2xx response was received in time.
	OutcomeReachable Outcome = "reachable"

	// OutcomeTimeout means the probe's deadline expired.
	OutcomeTimeout Outcome = "timeout"

	// OutcomeError covers non-2xx responses and transport failures.
	OutcomeError Outcome = "error"
)

// Target is one endpoint to probe.
type Target struct {
	Name    string        `json:"name"`
	URL     string        `json:"url"`
	Timeout time.Duration `json:"timeout"`
}

// Result is the outcome of probing one target.
type Result struct {
	Name    string  `json:"name"`
	URL     string  `json:"url"`
	Outcome Outcome `json:"outcome"`

	// StatusCode is the HTTP status when a response was received, else 0.
	StatusCode int `json:"status_code,omitempty"`

	// Message carries the transport error for failed probes.
	Message string `json:"message,omitempty"`

	Duration time.Duration `json:"duration"`
}

// String renders the outcome the way operators read it: reachable, timeout
// or error(503).
func (r Result) String() string {
	if r.Outcome == OutcomeError {
		return fmt.Sprintf("error(%d)", r.StatusCode)
	}
	return string(r.Outcome)
}

// OK reports whether the target was reachable.
func (r Result) OK() bool {
	return r.Outcome == OutcomeReachable
}

// Prober issues one GET per target. It never retries.
type Prober struct {
	client         *http.Client
	defaultTimeout time.Duration
}

// NewProber creates a prober. A nil client uses a fresh http.Client; a zero
// defaultTimeout uses DefaultTimeout.
func NewProber(client *http.Client, defaultTimeout time.Duration) *Prober {
	if client == nil {
		client = &http.Client{}
	}
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultTimeout
	}

	return &Prober{
		client:         client,
		defaultTimeout: defaultTimeout,
	}
}

// Probe sends a single GET to target and classifies the outcome.
func (p *Prober) Probe(ctx context.Context, target Target) Result {
	result := Result{Name: target.Name, URL: target.URL}

	resp, duration, err := p.get(ctx, target)
	result.Duration = duration

	switch {
	case err != nil:
		result.Outcome = ClassifyError(err)
		result.Message = err.Error()
		if result.Outcome == OutcomeTimeout {
			result.Message = fmt.Sprintf("no response within %s", p.timeout(target))
		}
	default:
		drainAndClose(resp.Body)
		result.StatusCode = resp.StatusCode
		result.Outcome = ClassifyStatus(resp.StatusCode)
		if result.Outcome != OutcomeReachable {
			result.Message = resp.Status
		}
	}

	slog.DebugContext(logging.WithTarget(ctx, target.Name), "probe finished",
		"url", target.URL,
		"outcome", result.String(),
		"duration", result.Duration,
	)

	return result
}

// ProbeAll probes targets one after another and returns results in the same
// order. A failed probe does not stop the remaining ones.
func (p *Prober) ProbeAll(ctx context.Context, targets []Target) []Result {
	results := make([]Result, 0, len(targets))
	for _, target := range targets {
		results = append(results, p.Probe(ctx, target))
	}
	return results
}

// get issues the request under the target's timeout. The response body is
// left open for the caller.
func (p *Prober) get(ctx context.Context, target Target) (*http.Response, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout(target))

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.URL, nil)
	if err != nil {
		cancel()
		return nil, 0, fmt.Errorf("invalid target url: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		cancel()
		return nil, time.Since(start), err
	}

	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, time.Since(start), nil
}

func (p *Prober) timeout(target Target) time.Duration {
	if target.Timeout > 0 {
		return target.Timeout
	}
	return p.defaultTimeout
}

// ClassifyStatus maps an HTTP status code to an outcome: 2xx is reachable,
// anything else an error.
func ClassifyStatus(code int) Outcome {
	if code >= 200 && code < 300 {
		return OutcomeReachable
	}
	return OutcomeError
}

// ClassifyError maps a failed request to an outcome: an expired deadline is
// a timeout, anything else an error.
func ClassifyError(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return OutcomeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return OutcomeTimeout
	}
	return OutcomeError
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.CopyN(io.Discard, body, maxDrain)
	_ = body.Close()
}

// cancelOnClose releases the request context once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
