package diagnose

import (
	"encoding/json"
	"fmt"
	"time"

	"ragops/ragdoctor/pkg/envcheck"
	"ragops/ragdoctor/pkg/history"
	"ragops/ragdoctor/pkg/logscan"
	"ragops/ragdoctor/pkg/probe"
	"ragops/ragdoctor/pkg/smoke"
)

// Kind names what a run checked.
type Kind string

const (
	KindDoctor  Kind = "doctor"
	KindEnv     Kind = "env"
	KindProbe   Kind = "probe"
	KindLogs    Kind = "logs"
	KindSmoke   Kind = "smoke"
	KindMonitor Kind = "monitor"
)

// Run is the outcome of one diagnostic run. Only the sections that ran are
// set.
type Run struct {
	ID        string        `json:"id"`
	Kind      Kind          `json:"kind"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Passed    bool          `json:"passed"`
	Summary   string        `json:"summary"`

	// Failures counts failed checks across all sections.
	Failures int `json:"failures"`

	Env    *EnvSection   `json:"env,omitempty"`
	Probes *ProbeSection `json:"probes,omitempty"`
	Info   []InfoCheck   `json:"info,omitempty"`
	Logs   []LogCheck    `json:"logs,omitempty"`
	Smoke  *smoke.Report `json:"smoke,omitempty"`
}

// EnvSection holds the configuration resolver's result.
type EnvSection struct {
	Files  []string        `json:"files"`
	Report envcheck.Report `json:"report"`

	// Error is set when the env files could not be read.
	Error string `json:"error,omitempty"`
}

// Failures counts violations, or one for a read error.
func (s EnvSection) Failures() int {
	if s.Error != "" {
		return 1
	}
	return len(s.Report.Violations)
}

// ProbeSection holds the health probe results in target order.
type ProbeSection struct {
	Results []probe.Result `json:"results"`
	Summary probe.Summary  `json:"summary"`
}

// InfoCheck compares a service's /info document with RERANKER_TYPE.
type InfoCheck struct {
	Target       string `json:"target"`
	URL          string `json:"url"`
	Expected     string `json:"expected,omitempty"`
	RerankerType string `json:"reranker_type,omitempty"`

	// Message is the mismatch diagnostic, empty when they agree.
	Message string `json:"message,omitempty"`

	// Error is set when the document could not be fetched.
	Error string `json:"error,omitempty"`
}

// OK reports whether the document was fetched and agrees with the config.
func (c InfoCheck) OK() bool {
	return c.Error == "" && c.Message == ""
}

// LogCheck is the grep result for one container.
type LogCheck struct {
	logscan.Result

	// Error is set when the container's logs could not be read.
	Error string `json:"error,omitempty"`
}

// OK reports whether the logs were read. Matching lines do not fail a check;
// they are shown for the operator to judge.
func (c LogCheck) OK() bool {
	return c.Error == ""
}

// Record converts the run into a history record with the full run as payload.
func (r Run) Record() (history.Record, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return history.Record{}, fmt.Errorf("failed to encode run %s: %w", r.ID, err)
	}

	return history.Record{
		ID:        r.ID,
		Kind:      string(r.Kind),
		StartedAt: r.StartedAt,
		Duration:  r.Duration,
		Passed:    r.Passed,
		Summary:   r.Summary,
		Payload:   payload,
	}, nil
}

// FromRecord decodes a run stored by Record.
func FromRecord(rec history.Record) (Run, error) {
	var run Run
	if len(rec.Payload) == 0 {
		return Run{
			ID:        rec.ID,
			Kind:      Kind(rec.Kind),
			StartedAt: rec.StartedAt,
			Duration:  rec.Duration,
			Passed:    rec.Passed,
			Summary:   rec.Summary,
		}, nil
	}
	if err := json.Unmarshal(rec.Payload, &run); err != nil {
		return Run{}, fmt.Errorf("failed to decode run %s: %w", rec.ID, err)
	}
	return run, nil
}
