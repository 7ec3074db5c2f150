// Package telemetry groups ragdoctor's observability packages.
//
// # Components
//
//   - logging: log/slog setup with credential redaction and run context
//   - metrics: Prometheus metrics for probes and runs
//   - health: liveness and readiness checks for the monitor's HTTP surface
//
// # Usage
//
//	logger, err := logging.FromConfig(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	collector := metrics.NewCollector(metrics.Config{}, nil)
//	collector.RecordProbe("reranker", "timeout", 5*time.Second)
//
// # Redaction
//
// Log attributes under sensitive key names (api_key, token, secret) and
// values that look like API keys are masked before they are written:
//
//   - sk-abc123def456 → sk-***
//   - DASHSCOPE_API_KEY=... → DASHSCOPE_API_KEY=***
//   - Bearer tokens → Bearer ***
package telemetry
