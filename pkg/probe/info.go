package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// maxInfoBody caps how much of an /info document is decoded.
const maxInfoBody = 1 << 20

// InfoResult is a decoded /info document.
type InfoResult struct {
	Name       string         `json:"name"`
	URL        string         `json:"url"`
	StatusCode int            `json:"status_code"`
	Fields     map[string]any `json:"fields"`
	Duration   time.Duration  `json:"duration"`
}

// RerankerType returns the backend the reranker service reports, read from
// "reranker_type" or, failing that, "type". It returns "" when neither is a
// string.
func (i InfoResult) RerankerType() string {
	for _, key := range []string{"reranker_type", "type"} {
		if v, ok := i.Fields[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Info fetches and decodes target's /info document. Unlike Probe, failures
// are returned as errors since there is nothing to classify without a body.
func (p *Prober) Info(ctx context.Context, target Target) (InfoResult, error) {
	info := InfoResult{Name: target.Name, URL: target.URL}

	resp, duration, err := p.get(ctx, target)
	info.Duration = duration
	if err != nil {
		return info, fmt.Errorf("failed to fetch %s: %w", target.URL, err)
	}
	defer drainAndClose(resp.Body)

	info.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return info, fmt.Errorf("failed to fetch %s: unexpected status %s", target.URL, resp.Status)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxInfoBody)).Decode(&info.Fields); err != nil {
		return info, fmt.Errorf("failed to decode %s: %w", target.URL, err)
	}

	return info, nil
}

// CheckRerankerInfo compares the backend the reranker reports with the
// configured RERANKER_TYPE. It returns "" when they agree or when nothing is
// configured, and a diagnostic otherwise.
func CheckRerankerInfo(info InfoResult, expected string) string {
	expected = strings.TrimSpace(expected)
	if expected == "" {
		return ""
	}

	actual := info.RerankerType()
	switch {
	case actual == "":
		return fmt.Sprintf("%s /info does not report a reranker type (expected %s)", info.Name, expected)
	case !strings.EqualFold(actual, expected):
		return fmt.Sprintf("%s reports reranker type %s but RERANKER_TYPE=%s", info.Name, actual, expected)
	}
	return ""
}
