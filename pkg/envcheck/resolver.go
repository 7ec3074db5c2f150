package envcheck

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Recognized configuration keys.
const (
	KeyRerankerType    = "RERANKER_TYPE"
	KeyAlibabaAPIKey   = "ALIBABA_API_KEY"
	KeyDashScopeAPIKey = "DASHSCOPE_API_KEY"
	KeyPublicAPIURL    = "NEXT_PUBLIC_API_URL"
	KeyPublicAuthURL   = "NEXT_PUBLIC_AUTH_URL"
)

// Reranker backends accepted for RERANKER_TYPE.
const (
	RerankerAlibaba = "alibaba"
	RerankerBGE     = "bge"
	RerankerMSMarco = "ms-marco"
)

// RerankerTypes lists the accepted RERANKER_TYPE values in documented order.
var RerankerTypes = []string{RerankerAlibaba, RerankerBGE, RerankerMSMarco}

// Status is the outcome of checking a single key.
type Status string

const (
	// StatusPass means the key is set and satisfies its rules.
	StatusPass Status = "pass"

	// StatusFail means the key has at least one violation.
	StatusFail Status = "fail"

	// StatusUnset means the key is absent or blank.
	StatusUnset Status = "unset"
)

// Violation describes one broken rule.
type Violation struct {
	// Key is the key whose rule was broken. Dependent requirements are
	// attributed to the key that selects them.
	Key string `json:"key"`

	// Message is the operator-facing diagnostic.
	Message string `json:"message"`

	// Accepted lists the legal values when the key has a closed value set.
	Accepted []string `json:"accepted,omitempty"`
}

// KeyResult is the per-key line of a Report.
type KeyResult struct {
	Key    string `json:"key"`
	Value  string `json:"value,omitempty"`
	Status Status `json:"status"`
}

// Report is the result of resolving one configuration mapping.
type Report struct {
	Keys       []KeyResult `json:"keys"`
	Violations []Violation `json:"violations"`
}

// Passed reports whether no violations were found.
func (r Report) Passed() bool {
	return len(r.Violations) == 0
}

// Status returns the status recorded for key, or StatusUnset if the key was
// not checked.
func (r Report) Status(key string) Status {
	for _, k := range r.Keys {
		if k.Key == key {
			return k.Status
		}
	}
	return StatusUnset
}

// Options controls the context-dependent URL rules.
type Options struct {
	// BrowserBuild marks NEXT_PUBLIC_* values as inlined into a browser
	// bundle, where loopback hosts resolve on the client machine.
	BrowserBuild bool

	// ExternalHost is the host browsers use to reach the deployment. When
	// set, public URLs must point at it.
	ExternalHost string
}

// DefaultOptions returns the options used when nothing else is configured.
func DefaultOptions() Options {
	return Options{BrowserBuild: true}
}

// Resolver validates configuration mappings. It holds no state between
// calls and is safe for concurrent use.
type Resolver struct {
	opts Options
}

// NewResolver creates a resolver with the given options.
func NewResolver(opts Options) *Resolver {
	opts.ExternalHost = strings.TrimSpace(opts.ExternalHost)
	return &Resolver{opts: opts}
}

// Keys returns every key the resolver reads, including the API keys that
// only matter as dependent requirements.
func Keys() []string {
	return []string{
		KeyRerankerType,
		KeyAlibabaAPIKey,
		KeyDashScopeAPIKey,
		KeyPublicAPIURL,
		KeyPublicAuthURL,
	}
}

// Resolve checks values and returns a report listing every violation.
// values is only read.
func (r *Resolver) Resolve(values map[string]string) Report {
	report := Report{
		Keys:       make([]KeyResult, 0, 3),
		Violations: []Violation{},
	}

	report.add(KeyRerankerType, lookup(values, KeyRerankerType), r.checkReranker(values))
	for _, key := range []string{KeyPublicAPIURL, KeyPublicAuthURL} {
		value := lookup(values, key)
		report.add(key, value, r.checkPublicURL(key, value))
	}

	return report
}

func (r *Report) add(key, value string, violations []Violation) {
	status := StatusPass
	switch {
	case len(violations) > 0:
		status = StatusFail
	case value == "":
		status = StatusUnset
	}

	r.Keys = append(r.Keys, KeyResult{Key: key, Value: value, Status: status})
	r.Violations = append(r.Violations, violations...)
}

func (r *Resolver) checkReranker(values map[string]string) []Violation {
	value := lookup(values, KeyRerankerType)
	if value == "" {
		return nil
	}

	if !contains(RerankerTypes, value) {
		return []Violation{{
			Key:      KeyRerankerType,
			Message:  fmt.Sprintf("%s must be one of %s", KeyRerankerType, strings.Join(RerankerTypes, ", ")),
			Accepted: append([]string(nil), RerankerTypes...),
		}}
	}

	if value == RerankerAlibaba &&
		lookup(values, KeyAlibabaAPIKey) == "" &&
		lookup(values, KeyDashScopeAPIKey) == "" {
		return []Violation{{
			Key: KeyRerankerType,
			Message: fmt.Sprintf("%s or %s required when %s=%s",
				KeyAlibabaAPIKey, KeyDashScopeAPIKey, KeyRerankerType, RerankerAlibaba),
		}}
	}

	return nil
}

func (r *Resolver) checkPublicURL(key, value string) []Violation {
	if value == "" {
		return nil
	}

	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return []Violation{{
			Key:     key,
			Message: fmt.Sprintf("%s must be a well-formed http(s) URL", key),
		}}
	}

	var violations []Violation
	host := u.Hostname()

	if r.opts.BrowserBuild && isLoopback(host) {
		violations = append(violations, Violation{
			Key:     key,
			Message: fmt.Sprintf("%s must not point at a loopback address in a browser-side build", key),
		})
	}

	if r.opts.ExternalHost != "" && !strings.EqualFold(host, externalHostname(r.opts.ExternalHost)) {
		violations = append(violations, Violation{
			Key:     key,
			Message: fmt.Sprintf("%s host %s does not match external host %s", key, host, r.opts.ExternalHost),
		})
	}

	return violations
}

// lookup returns the trimmed value of key; absent and blank are the same.
func lookup(values map[string]string, key string) string {
	return strings.TrimSpace(values[key])
}

// isLoopback reports whether host only resolves on the local machine.
func isLoopback(host string) bool {
	host = strings.ToLower(host)
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}

// externalHostname strips an optional port from the configured external host.
func externalHostname(h string) string {
	if host, _, err := net.SplitHostPort(h); err == nil {
		return host
	}
	return h
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
