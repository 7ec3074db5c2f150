package diagnose

import (
	"net/http"

	"ragops/ragdoctor/pkg/config"
	"ragops/ragdoctor/pkg/envcheck"
	"ragops/ragdoctor/pkg/logscan"
	"ragops/ragdoctor/pkg/probe"
	"ragops/ragdoctor/pkg/smoke"
)

// ResolverOptions derives the resolver's URL rules from configuration.
func ResolverOptions(cfg config.EnvConfig) envcheck.Options {
	return envcheck.Options{
		BrowserBuild: cfg.IsBrowserBuild(),
		ExternalHost: cfg.ExternalHost,
	}
}

// Watches converts the configured log watches into queries.
func Watches(cfg config.LogsConfig) []logscan.Query {
	queries := make([]logscan.Query, 0, len(cfg.Watches))
	for _, w := range cfg.Watches {
		queries = append(queries, logscan.Query{
			Container: w.Container,
			Tail:      cfg.Tail,
			Keywords:  w.Keywords,
		})
	}
	return queries
}

// SmokeConfig converts the smoke settings for smoke.NewRunner.
func SmokeConfig(cfg config.SmokeConfig) smoke.Config {
	return smoke.Config{
		APRAGURL:    cfg.APRAGURL,
		DocumentURL: cfg.DocumentURL,
		UserID:      cfg.UserID,
		Query:       cfg.Query,
		Timeout:     cfg.Timeout,
	}
}

// FromConfig builds a doctor from loaded configuration. inspector may be nil
// when no Docker daemon is available; client may be nil.
func FromConfig(cfg *config.Config, inspector *logscan.Inspector, client *http.Client) *Doctor {
	return New(NewConfig(cfg, inspector, client))
}

// NewConfig is FromConfig without building the doctor, for callers that
// adjust components first.
func NewConfig(cfg *config.Config, inspector *logscan.Inspector, client *http.Client) Config {
	return Config{
		EnvFiles:       cfg.Env.Files,
		IncludeEnviron: cfg.Env.IncludeEnviron,
		Resolver:       envcheck.NewResolver(ResolverOptions(cfg.Env)),
		Prober:         probe.NewProber(client, cfg.Probe.DefaultTimeout),
		Targets:        probe.TargetsFromConfig(cfg.Probe.Targets),
		InfoTargets:    probe.InfoTargetsFromConfig(cfg.Probe.Targets),
		Inspector:      inspector,
		Watches:        Watches(cfg.Logs),
		Smoke:          smoke.NewRunner(client, SmokeConfig(cfg.Smoke)),
	}
}
